package memory

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heapdb/pkg/dberror"
	"heapdb/pkg/primitives"
)

func TestNewPolicy(t *testing.T) {
	tests := []struct {
		name    string
		want    any
		wantErr bool
	}{
		{"", &RandomPolicy{}, false},
		{PolicyRandom, &RandomPolicy{}, false},
		{PolicyLRU, &LRUPolicy{}, false},
		{"clock", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPolicy(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, dberror.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, p)
		})
	}
}

func TestRandomPolicy(t *testing.T) {
	r := NewRandomPolicy(rand.NewPCG(1, 2))
	_, ok := r.Victim()
	assert.False(t, ok)

	pids := []primitives.PageID{{TableID: 1, PageNo: 0}, {TableID: 1, PageNo: 1}, {TableID: 1, PageNo: 2}}
	for _, pid := range pids {
		r.RecordAccess(pid)
	}
	r.RecordAccess(pids[0])
	assert.Len(t, r.pids, 3)

	r.Remove(pids[1])
	for i := 0; i < 20; i++ {
		v, ok := r.Victim()
		require.True(t, ok)
		assert.NotEqual(t, pids[1], v)
	}

	r.Remove(pids[0])
	r.Remove(pids[2])
	_, ok = r.Victim()
	assert.False(t, ok)
}

func TestLRUPolicy(t *testing.T) {
	l := NewLRUPolicy()
	a := primitives.NewPageID(1, 0)
	b := primitives.NewPageID(1, 1)
	c := primitives.NewPageID(1, 2)

	l.RecordAccess(a)
	l.RecordAccess(b)
	l.RecordAccess(c)
	l.RecordAccess(a)

	v, ok := l.Victim()
	require.True(t, ok)
	assert.Equal(t, b, v)

	l.Remove(b)
	v, _ = l.Victim()
	assert.Equal(t, c, v)

	l.Remove(c)
	l.Remove(a)
	_, ok = l.Victim()
	assert.False(t, ok)
}

func TestPageCache(t *testing.T) {
	c := NewPageCache(1)
	a := primitives.NewPageID(2, 1)
	b := primitives.NewPageID(1, 5)

	require.NoError(t, c.Put(a, nil))
	require.NoError(t, c.Put(a, nil))
	assert.ErrorIs(t, c.Put(b, nil), dberror.ErrCacheExhausted)

	c.Remove(a)
	require.NoError(t, c.Put(b, nil))
	assert.Equal(t, []primitives.PageID{b}, c.GetAll())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}
