package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hndinh/tabstore/internal/logging"
	"github.com/hndinh/tabstore/internal/record"
)

func TestDatabase_CreateAndReopenTable(t *testing.T) {
	dataDir := t.TempDir()
	db := NewDatabase(dataDir, logging.NopLogger{})

	schema := record.Schema{Cols: []record.Column{
		{Name: "id", Type: record.TypeInt},
		{Name: "label", Type: record.TypeText},
	}}

	_, err := db.CreateTable("events", schema)
	require.NoError(t, err)

	// table files live under dataDir/<name>/
	_, err = os.Stat(filepath.Join(dataDir, "events", "schema.dat"))
	require.NoError(t, err)

	reopened, err := db.OpenTable("events")
	require.NoError(t, err)
	got, err := reopened.Schema()
	require.NoError(t, err)
	assert.Equal(t, schema, got)
}

func TestDatabase_EndToEndLoad(t *testing.T) {
	db := NewDatabase(t.TempDir(), logging.NopLogger{})

	schema := record.Schema{Cols: []record.Column{
		{Name: "qty", Type: record.TypeInt},
		{Name: "price", Type: record.TypeFloat},
	}}
	tbl, err := db.CreateTable("orders", schema)
	require.NoError(t, err)

	input := filepath.Join(t.TempDir(), "orders.tsv")
	require.NoError(t, os.WriteFile(input, []byte(
		"qty\tprice\n"+
			"3\t9.99\n"+
			"1\t0.5\n"), 0o644))

	results, err := tbl.LoadFromFile(input, '\t')
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
