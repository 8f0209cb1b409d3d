package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heapdb/pkg/dberror"
	"heapdb/pkg/primitives"
)

func uniformHistogram(t *testing.T) *IntHistogram {
	t.Helper()
	h, err := NewIntHistogram(10, 1, 100)
	require.NoError(t, err)
	for v := int32(1); v <= 100; v++ {
		h.AddValue(v)
	}
	return h
}

func TestNewIntHistogram_Invalid(t *testing.T) {
	_, err := NewIntHistogram(0, 1, 10)
	assert.ErrorIs(t, err, dberror.ErrInvalidArgument)

	_, err = NewIntHistogram(10, 5, 1)
	assert.ErrorIs(t, err, dberror.ErrInvalidArgument)
}

func TestIntHistogram_BucketsNeverNarrowerThanOneValue(t *testing.T) {
	h, err := NewIntHistogram(100, 3, 7)
	require.NoError(t, err)
	assert.Len(t, h.counts, 5)
	assert.InDelta(t, 1.0, h.width, 1e-9)
}

func TestIntHistogram_EstimateSelectivity(t *testing.T) {
	h := uniformHistogram(t)

	tests := []struct {
		name string
		op   primitives.Predicate
		v    int32
		want float64
	}{
		{"eq inside", primitives.Equals, 50, 0.01},
		{"eq below range", primitives.Equals, -3, 0},
		{"eq above range", primitives.Equals, 101, 0},
		{"like acts as eq", primitives.Like, 50, 0.01},
		{"ne", primitives.NotEqual, 50, 0.99},
		{"gt middle", primitives.GreaterThan, 50, 0.50},
		{"gt below min", primitives.GreaterThan, 0, 1},
		{"gt at max", primitives.GreaterThan, 100, 0},
		{"ge middle", primitives.GreaterThanOrEqual, 50, 0.51},
		{"lt middle", primitives.LessThan, 50, 0.49},
		{"lt at min", primitives.LessThan, 1, 0},
		{"lt above max", primitives.LessThan, 500, 1},
		{"le middle", primitives.LessThanOrEqual, 50, 0.50},
		{"le at max", primitives.LessThanOrEqual, 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := h.EstimateSelectivity(tt.op, tt.v)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestIntHistogram_Skewed(t *testing.T) {
	h, err := NewIntHistogram(4, 0, 99)
	require.NoError(t, err)
	for i := 0; i < 90; i++ {
		h.AddValue(10)
	}
	for i := 0; i < 10; i++ {
		h.AddValue(90)
	}

	assert.InDelta(t, 0.1, h.EstimateSelectivity(primitives.GreaterThan, 50), 1e-9)
	assert.InDelta(t, 0.9, h.EstimateSelectivity(primitives.LessThan, 50), 1e-9)
	assert.Equal(t, 100, h.Total())
}

func TestIntHistogram_IgnoresOutOfRange(t *testing.T) {
	h, err := NewIntHistogram(10, 0, 9)
	require.NoError(t, err)
	h.AddValue(-1)
	h.AddValue(10)
	assert.Equal(t, 0, h.Total())
	assert.Equal(t, 0.0, h.EstimateSelectivity(primitives.Equals, 5))
}

func TestIntHistogram_AvgSelectivity(t *testing.T) {
	h := uniformHistogram(t)

	eq := h.AvgSelectivity(primitives.Equals)
	assert.InDelta(t, 0.01, eq, 1e-9)
	assert.InDelta(t, 0.99, h.AvgSelectivity(primitives.NotEqual), 1e-9)
	assert.InDelta(t, 0.495, h.AvgSelectivity(primitives.LessThan), 1e-9)
	assert.InDelta(t, 0.505, h.AvgSelectivity(primitives.GreaterThanOrEqual), 1e-9)

	empty, err := NewIntHistogram(10, 0, 9)
	require.NoError(t, err)
	assert.Equal(t, 0.0, empty.AvgSelectivity(primitives.Equals))
}

func TestStringToInt_PreservesOrder(t *testing.T) {
	assert.Equal(t, int32(0), stringToInt(""))
	assert.Equal(t, int32(0x7a7a7a7a), stringToInt("zzzz"))
	assert.Equal(t, stringToInt("abcd"), stringToInt("abcdefgh"))
	assert.Less(t, stringToInt("a"), stringToInt("ab"))
	assert.Less(t, stringToInt("apple"), stringToInt("banana"))
	// bytes above 'z' clamp to the top of the range
	assert.Equal(t, int32(0x7a7a7a7a), stringToInt("~~~~"))
}

func TestStringHistogram(t *testing.T) {
	h, err := NewStringHistogram(100)
	require.NoError(t, err)
	for _, s := range []string{"apple", "avocado", "banana", "cherry"} {
		h.AddValue(s)
	}
	assert.Equal(t, 4, h.Total())

	lt := h.EstimateSelectivity(primitives.LessThan, "b")
	assert.InDelta(t, 0.5, lt, 0.05)

	assert.Greater(t, h.EstimateSelectivity(primitives.Equals, "apple"), 0.0)
	assert.Equal(t, 0.0, h.EstimateSelectivity(primitives.GreaterThan, "zzzz"))
	assert.Equal(t, 0.0, h.EstimateSelectivity(primitives.LessThan, ""))
	assert.InDelta(t, 1.0, h.EstimateSelectivity(primitives.GreaterThanOrEqual, ""), 1e-9)
	assert.Contains(t, h.String(), "total=4")
}
