package execution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heapdb/pkg/dberror"
	"heapdb/pkg/iterator"
	"heapdb/pkg/primitives"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

func pairSource() *iterator.TupleSliceIterator {
	return iterator.NewTupleSliceIterator(pairDesc(), []*tuple.Tuple{
		pairTuple(1, "alice"),
		pairTuple(2, "bob"),
		pairTuple(3, "carol"),
		pairTuple(4, "dave"),
	})
}

func TestPredicate_Filter(t *testing.T) {
	tup := pairTuple(5, "eve")

	tests := []struct {
		name string
		pred *Predicate
		want bool
	}{
		{"int equals", NewPredicate(0, primitives.Equals, types.NewIntField(5)), true},
		{"int greater", NewPredicate(0, primitives.GreaterThan, types.NewIntField(5)), false},
		{"int greater or equal", NewPredicate(0, primitives.GreaterThanOrEqual, types.NewIntField(5)), true},
		{"string like", NewPredicate(1, primitives.Like, types.NewStringField("v")), true},
		{"string not equal", NewPredicate(1, primitives.NotEqual, types.NewStringField("eve")), false},
		{"missing field", NewPredicate(7, primitives.Equals, types.NewIntField(5)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.pred.Filter(tup)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPredicate_TypeMismatch(t *testing.T) {
	_, err := NewPredicate(0, primitives.Equals, types.NewStringField("5")).Filter(pairTuple(5, "x"))
	assert.Error(t, err)

	_, err = NewPredicate(0, primitives.Equals, types.NewIntField(5)).Filter(nil)
	assert.ErrorIs(t, err, dberror.ErrInvalidArgument)
}

func TestPredicate_String(t *testing.T) {
	p := NewPredicate(2, primitives.GreaterThan, types.NewIntField(100))
	assert.Equal(t, "field[2] > 100", p.String())
	assert.Equal(t, 2, p.FieldIndex())
	assert.Equal(t, primitives.GreaterThan, p.Op())
}

func TestFilter(t *testing.T) {
	f, err := NewFilter(NewPredicate(0, primitives.GreaterThan, types.NewIntField(2)), pairSource())
	require.NoError(t, err)
	assert.True(t, f.GetTupleDesc().Equals(pairDesc()))

	require.NoError(t, f.Open())
	defer f.Close()

	got, err := iterator.Collect(f)
	require.NoError(t, err)
	assert.Equal(t, []int32{3, 4}, ids(t, got))

	require.NoError(t, f.Rewind())
	got, err = iterator.Collect(f)
	require.NoError(t, err)
	assert.Equal(t, []int32{3, 4}, ids(t, got))
}

func TestFilter_NoMatches(t *testing.T) {
	f, err := NewFilter(NewPredicate(1, primitives.Equals, types.NewStringField("zed")), pairSource())
	require.NoError(t, err)
	require.NoError(t, f.Open())

	hasNext, err := f.HasNext()
	require.NoError(t, err)
	assert.False(t, hasNext)

	_, err = f.Next()
	assert.ErrorIs(t, err, dberror.ErrNoMoreTuples)
}

func TestFilter_StateErrors(t *testing.T) {
	f, err := NewFilter(NewPredicate(0, primitives.Equals, types.NewIntField(1)), pairSource())
	require.NoError(t, err)

	_, err = f.HasNext()
	assert.ErrorIs(t, err, dberror.ErrIteratorState)

	require.NoError(t, f.Open())
	require.NoError(t, f.Close())
	_, err = f.Next()
	assert.ErrorIs(t, err, dberror.ErrIteratorState)

	// close then open starts over
	require.NoError(t, f.Open())
	got, err := iterator.Collect(f)
	require.NoError(t, err)
	assert.Equal(t, []int32{1}, ids(t, got))
}

func TestNewFilter_InvalidArguments(t *testing.T) {
	_, err := NewFilter(nil, pairSource())
	assert.ErrorIs(t, err, dberror.ErrInvalidArgument)

	_, err = NewFilter(NewPredicate(0, primitives.Equals, types.NewIntField(1)), nil)
	assert.ErrorIs(t, err, dberror.ErrInvalidArgument)
}
