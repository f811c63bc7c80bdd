// Package catalog persists table schemas.
package catalog

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hndinh/tabstore/internal/alias/bx"
	"github.com/hndinh/tabstore/internal/blob"
	"github.com/hndinh/tabstore/internal/logging"
	"github.com/hndinh/tabstore/internal/record"
)

const (
	// SchemaFile lives under the table directory.
	SchemaFile = "schema.dat"

	schemaHeaderSize = 2 // numColumns u16
)

var ErrCorruptSchema = errors.New("catalog: schema file is corrupted")

// SchemaStore reads and writes a table's column list.
//
// File format: numColumns u16, then per column a u16 name length, the
// name bytes and a u8 type tag.
type SchemaStore struct {
	path   string
	store  blob.Store
	logger logging.Logger
	schema record.Schema
}

func NewSchemaStore(tableDir string, store blob.Store, logger logging.Logger) *SchemaStore {
	if logger == nil {
		logger = logging.Global()
	}
	return &SchemaStore{
		path:   filepath.Join(tableDir, SchemaFile),
		store:  store,
		logger: logger,
	}
}

// Initialize creates an empty schema file when absent, otherwise loads
// the stored columns.
func (ss *SchemaStore) Initialize() error {
	if !ss.store.Exists(ss.path) {
		ss.logger.Log("schema file does not exist, creating: " + ss.path)
		return ss.store.Create(ss.path)
	}
	ss.logger.Log("schema file exists, reading: " + ss.path)
	_, err := ss.Read()
	return err
}

// Exists reports whether the schema file is present on disk.
func (ss *SchemaStore) Exists() bool {
	return ss.store.Exists(ss.path)
}

// Columns returns the cached in-memory schema.
func (ss *SchemaStore) Columns() record.Schema {
	return ss.schema
}

// Write persists the column list at offset 0 and updates the cache.
func (ss *SchemaStore) Write(schema record.Schema) error {
	size := schemaHeaderSize
	for _, col := range schema.Cols {
		size += 2 + len(col.Name) + 1
	}

	buf := make([]byte, size)
	bx.PutU16At(buf, 0, uint16(schema.NumCols()))
	off := schemaHeaderSize
	for _, col := range schema.Cols {
		bx.PutU16At(buf, off, uint16(len(col.Name)))
		off += 2
		copy(buf[off:], col.Name)
		off += len(col.Name)
		buf[off] = byte(col.Type)
		off++
	}

	if err := ss.store.Write(ss.path, buf, 0); err != nil {
		return fmt.Errorf("write schema: %w", err)
	}
	ss.schema = schema
	return nil
}

// Read loads the column list from disk into the cache. An empty file is
// an empty schema; a file too short for its own header is corrupt.
func (ss *SchemaStore) Read() (record.Schema, error) {
	size, err := ss.store.Size(ss.path)
	if err != nil {
		return record.Schema{}, fmt.Errorf("stat schema: %w", err)
	}
	if size == 0 {
		ss.schema = record.Schema{}
		return ss.schema, nil
	}
	if size < schemaHeaderSize {
		return record.Schema{}, fmt.Errorf("%w: file is %d bytes", ErrCorruptSchema, size)
	}

	buf := make([]byte, size)
	if err := ss.store.Read(ss.path, buf, 0); err != nil {
		return record.Schema{}, fmt.Errorf("read schema: %w", err)
	}

	numColumns := int(bx.U16At(buf, 0))
	cols := make([]record.Column, 0, numColumns)
	off := schemaHeaderSize
	for i := 0; i < numColumns; i++ {
		if off+2 > len(buf) {
			return record.Schema{}, fmt.Errorf("%w: truncated at column %d", ErrCorruptSchema, i)
		}
		nameLen := int(bx.U16At(buf, off))
		off += 2
		if off+nameLen+1 > len(buf) {
			return record.Schema{}, fmt.Errorf("%w: truncated at column %d", ErrCorruptSchema, i)
		}
		name := string(buf[off : off+nameLen])
		off += nameLen
		typ := record.ColumnType(buf[off])
		off++
		cols = append(cols, record.Column{Name: name, Type: typ})
	}

	ss.schema = record.Schema{Cols: cols}
	ss.logger.Log(fmt.Sprintf("read schema with %d columns from %s", numColumns, ss.path))
	return ss.schema, nil
}
