package storage

import (
	"fmt"
	"path/filepath"

	"github.com/hndinh/tabstore/internal/alias/bx"
	"github.com/hndinh/tabstore/internal/blob"
	"github.com/hndinh/tabstore/internal/logging"
)

// DirectoryHeader carries the monotonic page and row counters.
// numPages always equals the number of entries on disk.
type DirectoryHeader struct {
	NumPages   uint32
	NextPageID uint32
	NumRows    uint32
	NextRowID  uint32
}

// DirectoryEntry tracks the free bytes of one page.
type DirectoryEntry struct {
	PageID         uint16
	AvailableSpace uint16
}

// PageDirectory is the single authority for page count, id assignment
// and free-space accounting. It is loaded once and rewritten in full on
// every entry change (Append, Upsert); counter bumps stay in memory
// until the next Persist.
type PageDirectory struct {
	path    string
	store   blob.Store
	logger  logging.Logger
	header  DirectoryHeader
	entries []DirectoryEntry
}

func NewPageDirectory(tableDir string, store blob.Store, logger logging.Logger) *PageDirectory {
	if logger == nil {
		logger = logging.Global()
	}
	return &PageDirectory{
		path:   filepath.Join(tableDir, PageDirectoryFile),
		store:  store,
		logger: logger,
	}
}

// Initialize creates the directory file with a zero header when absent,
// otherwise loads the header and all entries into memory.
func (pd *PageDirectory) Initialize() error {
	if !pd.store.Exists(pd.path) {
		pd.logger.Log("page directory does not exist, creating: " + pd.path)
		pd.header = DirectoryHeader{}
		pd.entries = nil
		return pd.Persist()
	}

	headerBuf := make([]byte, DirHeaderSize)
	if err := pd.store.Read(pd.path, headerBuf, 0); err != nil {
		return fmt.Errorf("read directory header: %w", err)
	}
	pd.header = DirectoryHeader{
		NumPages:   bx.U32At(headerBuf, 0),
		NextPageID: bx.U32At(headerBuf, 4),
		NumRows:    bx.U32At(headerBuf, 8),
		NextRowID:  bx.U32At(headerBuf, 12),
	}
	pd.logger.Log(fmt.Sprintf("page directory header: numPages=%d nextPageID=%d numRows=%d nextRowID=%d",
		pd.header.NumPages, pd.header.NextPageID, pd.header.NumRows, pd.header.NextRowID))

	size, err := pd.store.Size(pd.path)
	if err != nil {
		return fmt.Errorf("stat directory: %w", err)
	}
	want := int64(DirHeaderSize) + int64(pd.header.NumPages)*DirEntrySize
	if size < want {
		return fmt.Errorf("%w: file is %d bytes, header wants %d", ErrCorruptDirectory, size, want)
	}

	pd.entries = make([]DirectoryEntry, 0, pd.header.NumPages)
	entryBuf := make([]byte, DirEntrySize)
	for i := uint32(0); i < pd.header.NumPages; i++ {
		offset := int64(DirHeaderSize) + int64(i)*DirEntrySize
		if err := pd.store.Read(pd.path, entryBuf, offset); err != nil {
			return fmt.Errorf("read directory entry %d: %w", i, err)
		}
		pd.entries = append(pd.entries, DirectoryEntry{
			PageID:         bx.U16At(entryBuf, 0),
			AvailableSpace: bx.U16At(entryBuf, 2),
		})
	}
	return nil
}

// NextPageID hands out the next page id and bumps the counter in
// memory. The new value reaches disk on the next Persist.
func (pd *PageDirectory) NextPageID() uint16 {
	id := uint16(pd.header.NextPageID)
	pd.header.NextPageID++
	return id
}

// NextRowID hands out the next row id and bumps the counter in memory.
func (pd *PageDirectory) NextRowID() uint32 {
	id := pd.header.NextRowID
	pd.header.NextRowID++
	return id
}

// AddRows bumps the persistent row tally.
func (pd *PageDirectory) AddRows(n int) {
	pd.header.NumRows += uint32(n)
}

func (pd *PageDirectory) Header() DirectoryHeader   { return pd.header }
func (pd *PageDirectory) Entries() []DirectoryEntry { return pd.entries }
func (pd *PageDirectory) NumPages() int             { return len(pd.entries) }

// GetByID returns the entry for pageID, or nil. Linear scan.
func (pd *PageDirectory) GetByID(pageID uint16) *DirectoryEntry {
	for i := range pd.entries {
		if pd.entries[i].PageID == pageID {
			return &pd.entries[i]
		}
	}
	pd.logger.Log(fmt.Sprintf("no directory entry for page %d", pageID))
	return nil
}

// FindFit returns the first entry, in insertion order, with at least
// required bytes available, or nil.
func (pd *PageDirectory) FindFit(required int) *DirectoryEntry {
	for i := range pd.entries {
		if int(pd.entries[i].AvailableSpace) >= required {
			pd.logger.Log(fmt.Sprintf("page %d fits %d bytes (avail=%d)",
				pd.entries[i].PageID, required, pd.entries[i].AvailableSpace))
			return &pd.entries[i]
		}
	}
	pd.logger.Log(fmt.Sprintf("no page with %d bytes available", required))
	return nil
}

// Upsert overwrites the entry with the same page id, or appends it.
// The directory is rewritten either way.
func (pd *PageDirectory) Upsert(entry DirectoryEntry) error {
	for i := range pd.entries {
		if pd.entries[i].PageID == entry.PageID {
			pd.entries[i] = entry
			return pd.Persist()
		}
	}
	pd.entries = append(pd.entries, entry)
	return pd.Persist()
}

// Append adds the entry unconditionally and rewrites the directory.
func (pd *PageDirectory) Append(entry DirectoryEntry) error {
	pd.logger.Log(fmt.Sprintf("adding directory entry: pageID=%d availableSpace=%d",
		entry.PageID, entry.AvailableSpace))
	pd.entries = append(pd.entries, entry)
	return pd.Persist()
}

// Persist serializes the header followed by all entries into one
// buffer and writes it at offset 0, replacing prior content.
func (pd *PageDirectory) Persist() error {
	pd.header.NumPages = uint32(len(pd.entries))

	buf := make([]byte, DirHeaderSize+len(pd.entries)*DirEntrySize)
	bx.PutU32At(buf, 0, pd.header.NumPages)
	bx.PutU32At(buf, 4, pd.header.NextPageID)
	bx.PutU32At(buf, 8, pd.header.NumRows)
	bx.PutU32At(buf, 12, pd.header.NextRowID)
	for i, e := range pd.entries {
		base := DirHeaderSize + i*DirEntrySize
		bx.PutU16At(buf, base, e.PageID)
		bx.PutU16At(buf, base+2, e.AvailableSpace)
	}

	if err := pd.store.Write(pd.path, buf, 0); err != nil {
		return fmt.Errorf("persist page directory: %w", err)
	}
	return nil
}
