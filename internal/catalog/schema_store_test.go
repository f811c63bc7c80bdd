package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hndinh/tabstore/internal/blob"
	"github.com/hndinh/tabstore/internal/logging"
	"github.com/hndinh/tabstore/internal/record"
)

func newTestStore(t *testing.T) (*SchemaStore, string) {
	t.Helper()

	dir := t.TempDir()
	ss := NewSchemaStore(dir, blob.NewFileStore(logging.NopLogger{}), logging.NopLogger{})
	require.NoError(t, ss.Initialize())
	return ss, dir
}

func TestSchemaStore_InitializeCreatesEmptyFile(t *testing.T) {
	ss, dir := newTestStore(t)

	assert.True(t, ss.Exists())
	assert.Equal(t, 0, ss.Columns().NumCols())

	info, err := os.Stat(filepath.Join(dir, SchemaFile))
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())
}

func TestSchemaStore_WriteReadRoundTrip(t *testing.T) {
	ss, dir := newTestStore(t)

	schema := record.Schema{Cols: []record.Column{
		{Name: "a", Type: record.TypeInt},
		{Name: "b", Type: record.TypeText},
		{Name: "c", Type: record.TypeDate},
	}}
	require.NoError(t, ss.Write(schema))
	assert.Equal(t, schema, ss.Columns())

	reopened := NewSchemaStore(dir, blob.NewFileStore(logging.NopLogger{}), logging.NopLogger{})
	require.NoError(t, reopened.Initialize())
	assert.Equal(t, schema, reopened.Columns())
}

func TestSchemaStore_OverwriteShrinks(t *testing.T) {
	ss, dir := newTestStore(t)

	big := record.Schema{Cols: []record.Column{
		{Name: "quite_a_long_column_name", Type: record.TypeText},
		{Name: "another_column", Type: record.TypeFloat},
	}}
	require.NoError(t, ss.Write(big))

	small := record.Schema{Cols: []record.Column{{Name: "x", Type: record.TypeInt}}}
	require.NoError(t, ss.Write(small))

	reopened := NewSchemaStore(dir, blob.NewFileStore(logging.NopLogger{}), logging.NopLogger{})
	require.NoError(t, reopened.Initialize())
	assert.Equal(t, small, reopened.Columns())
}

func TestSchemaStore_ReadCorruptFile(t *testing.T) {
	ss, dir := newTestStore(t)

	schema := record.Schema{Cols: []record.Column{
		{Name: "name", Type: record.TypeText},
	}}
	require.NoError(t, ss.Write(schema))

	// cut the file inside the column record
	path := filepath.Join(dir, SchemaFile)
	require.NoError(t, os.Truncate(path, 4))

	reopened := NewSchemaStore(dir, blob.NewFileStore(logging.NopLogger{}), logging.NopLogger{})
	err := reopened.Initialize()
	require.ErrorIs(t, err, ErrCorruptSchema)
}

func TestSchemaStore_ReadOneByteFile(t *testing.T) {
	ss, dir := newTestStore(t)
	_ = ss

	path := filepath.Join(dir, SchemaFile)
	require.NoError(t, os.WriteFile(path, []byte{7}, 0o644))

	reopened := NewSchemaStore(dir, blob.NewFileStore(logging.NopLogger{}), logging.NopLogger{})
	require.ErrorIs(t, reopened.Initialize(), ErrCorruptSchema)
}
