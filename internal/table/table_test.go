package table

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hndinh/tabstore/internal/blob"
	"github.com/hndinh/tabstore/internal/logging"
	"github.com/hndinh/tabstore/internal/record"
	"github.com/hndinh/tabstore/internal/storage"
)

func newTestTable(t *testing.T) (*Table, string) {
	t.Helper()

	dir := t.TempDir()
	tbl := New(dir, blob.NewFileStore(logging.NopLogger{}), logging.NopLogger{})
	require.NoError(t, tbl.Initialize())
	return tbl, dir
}

func usersSchema() record.Schema {
	return record.Schema{Cols: []record.Column{
		{Name: "id", Type: record.TypeInt},
		{Name: "name", Type: record.TypeText},
		{Name: "joined", Type: record.TypeDate},
	}}
}

func TestTable_RequiresInitialize(t *testing.T) {
	tbl := New(t.TempDir(), blob.NewFileStore(logging.NopLogger{}), logging.NopLogger{})

	require.ErrorIs(t, tbl.CreateSchema(usersSchema()), ErrNotInitialized)

	_, err := tbl.Schema()
	require.ErrorIs(t, err, ErrNotInitialized)

	_, err = tbl.LoadFromFile("whatever.tsv", '\t')
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestTable_CreateSchemaAndReopen(t *testing.T) {
	tbl, dir := newTestTable(t)

	require.NoError(t, tbl.CreateSchema(usersSchema()))

	schema, err := tbl.Schema()
	require.NoError(t, err)
	assert.Equal(t, usersSchema(), schema)

	reopened := New(dir, blob.NewFileStore(logging.NopLogger{}), logging.NopLogger{})
	require.NoError(t, reopened.Initialize())
	schema, err = reopened.Schema()
	require.NoError(t, err)
	assert.Equal(t, usersSchema(), schema)
}

func TestTable_LoadFromFile(t *testing.T) {
	tbl, _ := newTestTable(t)
	require.NoError(t, tbl.CreateSchema(usersSchema()))

	input := filepath.Join(t.TempDir(), "users.tsv")
	require.NoError(t, os.WriteFile(input, []byte(
		"id\tname\tjoined\n"+
			"1\talice\t01/01/2020\n"+
			"2\tbob\t15/06/2021\n"+
			"3\tcarol\t31/12/2019\n"), 0o644))

	results, err := tbl.LoadFromFile(input, '\t')
	require.NoError(t, err)
	require.Len(t, results, 3)

	dirHeader := tbl.Pages().Directory().Header()
	assert.Equal(t, uint32(3), dirHeader.NumRows)
	assert.Equal(t, 1, tbl.Pages().Directory().NumPages())

	// a second load lands in the same page with continued row ids
	results, err = tbl.LoadFromFile(input, '\t')
	require.NoError(t, err)
	assert.Equal(t, uint32(3), results[0].RowID)
	assert.Equal(t, 1, tbl.Pages().Directory().NumPages())
}

func TestTable_LoadRejectsAllBadFile(t *testing.T) {
	tbl, _ := newTestTable(t)
	require.NoError(t, tbl.CreateSchema(usersSchema()))

	input := filepath.Join(t.TempDir(), "bad.tsv")
	require.NoError(t, os.WriteFile(input, []byte(
		"id\tname\tjoined\n"+
			"x\ty\tz\n"), 0o644))

	_, err := tbl.LoadFromFile(input, '\t')
	require.Error(t, err)
	assert.Equal(t, 0, tbl.Pages().Directory().NumPages())
}

func TestTable_FilesLiveUnderTableDir(t *testing.T) {
	tbl, dir := newTestTable(t)
	require.NoError(t, tbl.CreateSchema(usersSchema()))

	for _, name := range []string{"schema.dat", storage.PageDirectoryFile, storage.PageFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
	}
}
