package storage

import (
	"fmt"

	"github.com/hndinh/tabstore/internal/alias/bx"
	"github.com/hndinh/tabstore/internal/logging"
)

// Header offsets
const (
	offNumSlots       = 0
	offLastDataOffset = 2
)

// Slot entry offsets, relative to the slot's own position
const (
	slotOffRowID  = 0
	slotOffOffset = 4
	slotOffLength = 6
)

// Record is one pre-serialized row plus its assigned row id.
type Record struct {
	ID   uint32
	Data []byte
}

// RowLocation addresses a stored record: the owning page and the
// ordinal of its slot entry.
type RowLocation struct {
	PageID uint16
	SlotID uint16
}

// InsertResult reports where one record of a batch ended up.
type InsertResult struct {
	RowID    uint32
	Location RowLocation
}

// SlottedPage manipulates the bytes of a single fixed-size page:
//
//	+--------------------+ 0
//	| numSlots u16       |
//	| lastDataOffset u16 |
//	+--------------------+ 4
//	| slot directory     |  grows down the page
//	+--------------------+
//	| free space         |
//	+--------------------+ <- lastDataOffset
//	| row payloads       |  grows up from the end
//	+--------------------+ PageSize
//
// The most recently inserted row starts at the lowest used offset.
type SlottedPage struct {
	logger logging.Logger
}

func NewSlottedPage(logger logging.Logger) SlottedPage {
	if logger == nil {
		logger = logging.Global()
	}
	return SlottedPage{logger: logger}
}

func numSlots(buf []byte) uint16       { return bx.U16At(buf, offNumSlots) }
func lastDataOffset(buf []byte) uint16 { return bx.U16At(buf, offLastDataOffset) }

func writeHeader(buf []byte, slots, lastData uint16) {
	bx.PutU16At(buf, offNumSlots, slots)
	bx.PutU16At(buf, offLastDataOffset, lastData)
}

// InitEmpty stamps the canonical empty-page form onto buf: zero slots,
// lastDataOffset at PageSize, every byte after the header zero.
func InitEmpty(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	writeHeader(buf, 0, PageSize)
}

// Verify checks every structural invariant of the page and names the
// violated one on failure.
func (sp SlottedPage) Verify(buf []byte) error {
	if len(buf) != PageSize {
		return fmt.Errorf("%w: buffer is %d bytes, want %d", ErrCorruptPage, len(buf), PageSize)
	}

	slots := numSlots(buf)
	lastData := lastDataOffset(buf)

	maxSlots := uint16((PageSize - HeaderSize) / SlotSize)
	if slots > maxSlots {
		return fmt.Errorf("%w: numSlots %d exceeds slot directory capacity %d", ErrCorruptPage, slots, maxSlots)
	}
	if lastData > PageSize {
		return fmt.Errorf("%w: lastDataOffset %d is beyond the page end", ErrCorruptPage, lastData)
	}
	slotDirEnd := HeaderSize + int(slots)*SlotSize
	if slotDirEnd > int(lastData) {
		return fmt.Errorf("%w: slot directory (end %d) overlaps data region (start %d)", ErrCorruptPage, slotDirEnd, lastData)
	}
	if slots == 0 {
		if lastData != PageSize {
			return fmt.Errorf("%w: empty page has lastDataOffset %d, want %d", ErrCorruptPage, lastData, PageSize)
		}
		for i := HeaderSize; i < PageSize; i++ {
			if buf[i] != 0 {
				return fmt.Errorf("%w: empty page has non-zero byte at offset %d", ErrCorruptPage, i)
			}
		}
	}
	return nil
}

// Insert appends the batch into buf in order and returns the location
// of every record. On ErrPageFull the failing record has no effect but
// records already written in this call remain, with the header updated
// to cover them.
func (sp SlottedPage) Insert(buf []byte, batch []Record, owningPageID uint16) ([]InsertResult, error) {
	if err := sp.Verify(buf); err != nil {
		return nil, err
	}

	slots := numSlots(buf)
	lastData := lastDataOffset(buf)

	results := make([]InsertResult, 0, len(batch))
	for _, d := range batch {
		slotDirEnd := HeaderSize + int(slots)*SlotSize
		newDataOffset := int(lastData) - len(d.Data)

		if newDataOffset < slotDirEnd {
			return results, fmt.Errorf("%w: row %d needs %d bytes, %d free",
				ErrPageFull, d.ID, len(d.Data)+SlotSize, int(lastData)-slotDirEnd)
		}

		copy(buf[newDataOffset:newDataOffset+len(d.Data)], d.Data)

		bx.PutU32At(buf, slotDirEnd+slotOffRowID, d.ID)
		bx.PutU16At(buf, slotDirEnd+slotOffOffset, uint16(newDataOffset))
		bx.PutU16At(buf, slotDirEnd+slotOffLength, uint16(len(d.Data)))

		slots++
		lastData = uint16(newDataOffset)
		writeHeader(buf, slots, lastData)

		results = append(results, InsertResult{
			RowID:    d.ID,
			Location: RowLocation{PageID: owningPageID, SlotID: slots - 1},
		})
	}

	sp.logger.Log(fmt.Sprintf("inserted %d records into page %d: numSlots=%d lastDataOffset=%d",
		len(results), owningPageID, slots, lastData))
	return results, nil
}

// FreeSpace reports the bytes between the slot directory end and the
// data region, i.e. room to grow either side.
func FreeSpace(buf []byte) int {
	return int(lastDataOffset(buf)) - (HeaderSize + int(numSlots(buf))*SlotSize)
}

// NumSlots reads the slot count from a page buffer.
func NumSlots(buf []byte) int { return int(numSlots(buf)) }

// Slot reads the i-th slot entry from a page buffer.
func Slot(buf []byte, i int) (rowID uint32, dataOffset, length uint16) {
	base := HeaderSize + i*SlotSize
	return bx.U32At(buf, base+slotOffRowID),
		bx.U16At(buf, base+slotOffOffset),
		bx.U16At(buf, base+slotOffLength)
}
