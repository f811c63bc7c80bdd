package storage

import (
	"fmt"
	"path/filepath"

	"github.com/hndinh/tabstore/internal/blob"
	"github.com/hndinh/tabstore/internal/logging"
)

// PageManager orchestrates bulk insertion: it assigns row ids, sizes
// the batch, picks an existing page or allocates fresh ones, writes
// page bytes at pageID*PageSize and keeps the directory current.
type PageManager struct {
	pageFilePath string
	store        blob.Store
	logger       logging.Logger
	slotted      SlottedPage
	dir          *PageDirectory
	page         []byte // reusable buffer for the single-page fast path
	initialized  bool
}

func NewPageManager(tableDir string, store blob.Store, logger logging.Logger) *PageManager {
	if logger == nil {
		logger = logging.Global()
	}
	return &PageManager{
		pageFilePath: filepath.Join(tableDir, PageFile),
		store:        store,
		logger:       logger,
		slotted:      NewSlottedPage(logger),
		dir:          NewPageDirectory(tableDir, store, logger),
		page:         make([]byte, PageSize),
	}
}

// Initialize opens or creates the page directory and page file.
// Idempotent.
func (pm *PageManager) Initialize() error {
	if pm.initialized {
		return nil
	}
	if err := pm.dir.Initialize(); err != nil {
		return fmt.Errorf("initialize page directory: %w", err)
	}
	if !pm.store.Exists(pm.pageFilePath) {
		if err := pm.store.Create(pm.pageFilePath); err != nil {
			return fmt.Errorf("create page file: %w", err)
		}
	}
	pm.initialized = true
	return nil
}

// Directory exposes the page directory, mainly for inspection.
func (pm *PageManager) Directory() *PageDirectory { return pm.dir }

// loadPage reads the page for entry into the reusable buffer and
// verifies it.
func (pm *PageManager) loadPage(entry *DirectoryEntry) error {
	offset := int64(entry.PageID) * PageSize
	if err := pm.store.Read(pm.pageFilePath, pm.page, offset); err != nil {
		return fmt.Errorf("load page %d: %w", entry.PageID, err)
	}
	if err := pm.slotted.Verify(pm.page); err != nil {
		return fmt.Errorf("load page %d: %w", entry.PageID, err)
	}
	return nil
}

// persistPage writes buf back at the page's offset.
func (pm *PageManager) persistPage(buf []byte, pageID uint16) error {
	if err := pm.store.Write(pm.pageFilePath, buf, int64(pageID)*PageSize); err != nil {
		return fmt.Errorf("persist page %d: %w", pageID, err)
	}
	return nil
}

// InsertData ingests an ordered batch of pre-serialized rows.
// expectedDataSize and expectedNumRows are the parser's totals; the
// size includes per-row slot overhead. The directory is rewritten as
// each entry is appended or updated (a new page's entry is appended
// before the page bytes are written); the full rewrite after validation
// is the last write of the call.
func (pm *PageManager) InsertData(serialized [][]byte, expectedDataSize, expectedNumRows int) ([]InsertResult, error) {
	if err := pm.Initialize(); err != nil {
		return nil, err
	}
	pm.logger.Log(fmt.Sprintf("starting insertion of %d rows", expectedNumRows))

	// Reject oversized rows before any page or id state changes.
	for i, data := range serialized {
		if len(data)+SlotSize > PageSize-HeaderSize {
			return nil, fmt.Errorf("%w: row %d is %d bytes, page fits %d",
				ErrRowTooLarge, i, len(data), MaxRecordSize)
		}
	}

	batch := make([]Record, 0, len(serialized))
	for _, data := range serialized {
		batch = append(batch, Record{ID: pm.dir.NextRowID(), Data: data})
	}
	if len(batch) > 0 {
		pm.logger.Log(fmt.Sprintf("assigned row ids %d..%d", batch[0].ID, batch[len(batch)-1].ID))
	}

	required := 0
	for _, d := range batch {
		required += len(d.Data) + SlotSize
	}
	pm.logger.Log(fmt.Sprintf("batch requires %d bytes", required))

	var results []InsertResult
	if entry := pm.dir.FindFit(required); entry != nil {
		res, err := pm.insertIntoExisting(batch, entry)
		if err != nil {
			return nil, err
		}
		results = res
	} else {
		pm.logger.Log("no existing page has enough space, allocating new pages")
		res, err := pm.insertIntoNewPages(batch)
		if err != nil {
			return nil, err
		}
		results = res
	}

	if len(results) != expectedNumRows || required != expectedDataSize {
		return nil, fmt.Errorf("%w: inserted %d rows / %d bytes, caller expected %d rows / %d bytes",
			ErrInsertionSizeMismatch, len(results), required, expectedNumRows, expectedDataSize)
	}

	pm.dir.AddRows(len(results))
	if err := pm.dir.Persist(); err != nil {
		return nil, err
	}
	pm.logger.Log("insertion completed, directory persisted")
	return results, nil
}

// insertIntoExisting places the whole batch into one page that already
// has room for it.
func (pm *PageManager) insertIntoExisting(batch []Record, entry *DirectoryEntry) ([]InsertResult, error) {
	pm.logger.Log(fmt.Sprintf("reusing page %d (avail=%d)", entry.PageID, entry.AvailableSpace))

	if err := pm.loadPage(entry); err != nil {
		return nil, err
	}

	results, err := pm.slotted.Insert(pm.page, batch, entry.PageID)
	if err != nil {
		return nil, err
	}

	updated := DirectoryEntry{PageID: entry.PageID, AvailableSpace: uint16(FreeSpace(pm.page))}
	if err := pm.persistPage(pm.page, entry.PageID); err != nil {
		return nil, err
	}
	if err := pm.dir.Upsert(updated); err != nil {
		return nil, err
	}
	return results, nil
}

// insertIntoNewPages greedily packs the batch into freshly allocated
// pages, one page at a time, until everything is placed.
func (pm *PageManager) insertIntoNewPages(batch []Record) ([]InsertResult, error) {
	var results []InsertResult

	current := 0
	for current < len(batch) {
		pageID := pm.dir.NextPageID()
		if err := pm.dir.Append(DirectoryEntry{PageID: pageID, AvailableSpace: PageSize}); err != nil {
			return nil, err
		}
		pm.logger.Log(fmt.Sprintf("created page %d", pageID))

		local := make([]byte, PageSize)
		InitEmpty(local)

		capacity := PageSize - HeaderSize
		pageUsed := 0
		start := current
		for current < len(batch) {
			need := len(batch[current].Data) + SlotSize
			if pageUsed+need > capacity {
				break
			}
			pageUsed += need
			current++
		}

		res, err := pm.slotted.Insert(local, batch[start:current], pageID)
		if err != nil {
			return nil, err
		}
		results = append(results, res...)

		updated := DirectoryEntry{PageID: pageID, AvailableSpace: uint16(FreeSpace(local))}
		if err := pm.persistPage(local, pageID); err != nil {
			return nil, err
		}
		if err := pm.dir.Upsert(updated); err != nil {
			return nil, err
		}
	}
	return results, nil
}
