// Package table is the user-facing facade: a schema, a page manager
// and a parser composed over one table directory.
package table

import (
	"errors"
	"fmt"

	"github.com/hndinh/tabstore/internal/blob"
	"github.com/hndinh/tabstore/internal/catalog"
	"github.com/hndinh/tabstore/internal/ingest"
	"github.com/hndinh/tabstore/internal/logging"
	"github.com/hndinh/tabstore/internal/record"
	"github.com/hndinh/tabstore/internal/storage"
)

var ErrNotInitialized = errors.New("table: not initialized")

type Table struct {
	dir         string
	logger      logging.Logger
	schema      *catalog.SchemaStore
	pages       *storage.PageManager
	parser      *ingest.Parser
	initialized bool
}

// New wires a table over dir. Call Initialize before anything else.
func New(dir string, store blob.Store, logger logging.Logger) *Table {
	if logger == nil {
		logger = logging.Global()
	}
	return &Table{
		dir:    dir,
		logger: logger,
		schema: catalog.NewSchemaStore(dir, store, logger),
		pages:  storage.NewPageManager(dir, store, logger),
		parser: ingest.NewParser(logger),
	}
}

// Initialize brings up the schema store and the page manager. Both
// must succeed for the table to become usable.
func (t *Table) Initialize() error {
	t.logger.Log("initializing table: " + t.dir)
	if err := t.schema.Initialize(); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	if err := t.pages.Initialize(); err != nil {
		return fmt.Errorf("initialize page manager: %w", err)
	}
	t.initialized = true
	return nil
}

// CreateSchema persists the column list for this table.
func (t *Table) CreateSchema(schema record.Schema) error {
	if !t.initialized {
		return ErrNotInitialized
	}
	t.logger.Log("creating schema for table: " + t.dir)
	return t.schema.Write(schema)
}

// Schema returns the cached in-memory column list.
func (t *Table) Schema() (record.Schema, error) {
	if !t.initialized {
		return record.Schema{}, ErrNotInitialized
	}
	return t.schema.Columns(), nil
}

// LoadFromFile parses a delimited file against the current schema and
// bulk-inserts the resulting rows.
func (t *Table) LoadFromFile(path string, delimiter rune) ([]storage.InsertResult, error) {
	if !t.initialized {
		return nil, ErrNotInitialized
	}

	data, err := t.parser.ParseFile(path, delimiter, t.schema.Columns())
	if err != nil {
		return nil, err
	}
	if data.NumRows == 0 {
		return nil, fmt.Errorf("no loadable rows in %s", path)
	}

	return t.pages.InsertData(data.Rows, data.SerializedSize, data.NumRows)
}

// Pages exposes the page manager, mainly for inspection.
func (t *Table) Pages() *storage.PageManager { return t.pages }
