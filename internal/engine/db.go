// Package engine manages the tables living under one data directory.
package engine

import (
	"fmt"
	"path/filepath"

	"github.com/hndinh/tabstore/internal/blob"
	"github.com/hndinh/tabstore/internal/logging"
	"github.com/hndinh/tabstore/internal/record"
	"github.com/hndinh/tabstore/internal/table"
)

type Database struct {
	DataDir string
	store   blob.Store
	logger  logging.Logger
}

// NewDatabase creates a database handle without touching the
// filesystem; table directories appear on first use.
func NewDatabase(dataDir string, logger logging.Logger) *Database {
	if logger == nil {
		logger = logging.Global()
	}
	return &Database{
		DataDir: dataDir,
		store:   blob.NewFileStore(logger),
		logger:  logger,
	}
}

func (db *Database) tableDir(name string) string {
	return filepath.Join(db.DataDir, name)
}

// OpenTable initializes the table under dataDir/name, creating its
// files when absent.
func (db *Database) OpenTable(name string) (*table.Table, error) {
	t := table.New(db.tableDir(name), db.store, db.logger)
	if err := t.Initialize(); err != nil {
		return nil, fmt.Errorf("open table %s: %w", name, err)
	}
	return t, nil
}

// CreateTable opens the table and writes its schema.
func (db *Database) CreateTable(name string, schema record.Schema) (*table.Table, error) {
	t, err := db.OpenTable(name)
	if err != nil {
		return nil, err
	}
	if err := t.CreateSchema(schema); err != nil {
		return nil, fmt.Errorf("create table %s: %w", name, err)
	}
	return t, nil
}
