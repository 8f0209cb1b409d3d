package heap

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/primitives"
	"heapdb/pkg/storage/page"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// cachingFetcher is a minimal page fetcher: it reads each page once and keeps it.
type cachingFetcher struct {
	file  *HeapFile
	pages map[primitives.PageID]page.Page
	gets  int
}

func newCachingFetcher(file *HeapFile) *cachingFetcher {
	return &cachingFetcher{file: file, pages: make(map[primitives.PageID]page.Page)}
}

func (f *cachingFetcher) GetPage(_ *transaction.TransactionID, pid primitives.PageID, _ primitives.Permissions) (page.Page, error) {
	f.gets++
	if p, ok := f.pages[pid]; ok {
		return p, nil
	}
	p, err := f.file.ReadPage(pid)
	if err != nil {
		return nil, err
	}
	f.pages[pid] = p
	return p, nil
}

func intDesc(names ...string) *tuple.TupleDescription {
	fieldTypes := make([]types.Type, len(names))
	for i := range names {
		fieldTypes[i] = types.IntType
	}
	return tuple.MustNewTupleDesc(fieldTypes, names)
}

func intTuple(td *tuple.TupleDescription, values ...int32) *tuple.Tuple {
	t := tuple.NewTuple(td)
	for i, v := range values {
		t.SetField(i, types.NewIntField(v))
	}
	return t
}

func useSmallPages(t *testing.T, size int) {
	t.Helper()
	page.SetPageSize(size)
	t.Cleanup(page.ResetPageSize)
}

func newTestHeapFile(t *testing.T, td *tuple.TupleDescription) *HeapFile {
	t.Helper()
	hf, err := NewHeapFile(primitives.Filepath(filepath.Join(t.TempDir(), "table.dat")), td)
	require.NoError(t, err)
	t.Cleanup(func() { _ = hf.Close() })
	return hf
}
