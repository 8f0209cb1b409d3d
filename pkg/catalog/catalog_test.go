package catalog

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heapdb/pkg/dberror"
	"heapdb/pkg/primitives"
	"heapdb/pkg/storage/heap"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

func newHeapFile(t *testing.T, dir, name string) *heap.HeapFile {
	t.Helper()
	td := tuple.MustNewTupleDesc([]types.Type{types.IntType, types.StringType}, []string{"id", "name"})
	hf, err := heap.NewHeapFile(primitives.Filepath(filepath.Join(dir, name)), td)
	require.NoError(t, err)
	t.Cleanup(func() { _ = hf.Close() })
	return hf
}

func TestCatalog_AddAndLookup(t *testing.T) {
	dir := t.TempDir()
	c := NewCatalog(nil)
	users := newHeapFile(t, dir, "users.dat")

	require.NoError(t, c.AddTable(users, "users", "id"))

	id, err := c.GetTableID("users")
	require.NoError(t, err)
	assert.Equal(t, users.GetID(), id)

	name, err := c.GetTableName(id)
	require.NoError(t, err)
	assert.Equal(t, "users", name)

	td, err := c.GetTupleDesc(id)
	require.NoError(t, err)
	assert.True(t, td.Equals(users.GetTupleDesc()))

	file, err := c.GetDatabaseFile(id)
	require.NoError(t, err)
	assert.Same(t, users, file)

	pk, err := c.GetPrimaryKey(id)
	require.NoError(t, err)
	assert.Equal(t, "id", pk)
}

func TestCatalog_NotFound(t *testing.T) {
	c := NewCatalog(nil)

	_, err := c.GetTableID("missing")
	assert.ErrorIs(t, err, dberror.ErrNotFound)

	_, err = c.GetTableName(42)
	assert.ErrorIs(t, err, dberror.ErrNotFound)

	_, err = c.GetDatabaseFile(42)
	assert.ErrorIs(t, err, dberror.ErrNotFound)

	_, err = c.GetTupleDesc(42)
	assert.ErrorIs(t, err, dberror.ErrNotFound)

	assert.ErrorIs(t, c.RemoveTable("missing"), dberror.ErrNotFound)
}

func TestCatalog_ReplaceByNameAndID(t *testing.T) {
	dir := t.TempDir()
	c := NewCatalog(nil)
	a := newHeapFile(t, dir, "a.dat")
	b := newHeapFile(t, dir, "b.dat")

	require.NoError(t, c.AddTable(a, "t", ""))
	require.NoError(t, c.AddTable(b, "t", ""))

	id, err := c.GetTableID("t")
	require.NoError(t, err)
	assert.Equal(t, b.GetID(), id)
	_, err = c.GetTableName(a.GetID())
	assert.ErrorIs(t, err, dberror.ErrNotFound)

	// the replaced file is closed
	_, err = a.NumPages()
	assert.ErrorIs(t, err, dberror.ErrIOFailure)

	// re-registering the same file under a new name keeps it open
	require.NoError(t, c.AddTable(b, "renamed", ""))
	_, err = c.GetTableID("t")
	assert.ErrorIs(t, err, dberror.ErrNotFound)
	assert.Equal(t, []primitives.TableID{b.GetID()}, c.TableIDs())
	_, err = b.NumPages()
	assert.NoError(t, err)
}

func TestCatalog_UnnamedTableGetsUUID(t *testing.T) {
	c := NewCatalog(nil)
	f := newHeapFile(t, t.TempDir(), "anon.dat")
	require.NoError(t, c.AddTable(f, "", ""))

	name, err := c.GetTableName(f.GetID())
	require.NoError(t, err)
	_, err = uuid.Parse(name)
	assert.NoError(t, err)
}

func TestCatalog_ClearAndRemove(t *testing.T) {
	dir := t.TempDir()
	c := NewCatalog(nil)
	require.NoError(t, c.AddTable(newHeapFile(t, dir, "x.dat"), "x", ""))
	require.NoError(t, c.AddTable(newHeapFile(t, dir, "y.dat"), "y", ""))
	assert.Len(t, c.TableIDs(), 2)

	require.NoError(t, c.RemoveTable("x"))
	assert.Len(t, c.TableIDs(), 1)

	c.Clear()
	assert.Empty(t, c.TableIDs())
}
