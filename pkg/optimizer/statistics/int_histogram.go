package statistics

import (
	"fmt"
	"strings"

	"heapdb/pkg/dberror"
	"heapdb/pkg/primitives"
)

// IntHistogram is a fixed-width histogram over an inclusive integer range.
//
// The range is split into min(buckets, max-min+1) buckets of equal width, so a
// bucket always spans at least one integer value.
type IntHistogram struct {
	counts []int
	min    int64
	max    int64
	width  float64
	total  int
}

// NewIntHistogram creates an empty histogram over [minVal, maxVal].
func NewIntHistogram(buckets int, minVal, maxVal int32) (*IntHistogram, error) {
	if buckets < 1 {
		return nil, dberror.ErrInvalidArgument.Detailf("histogram needs at least one bucket, got %d", buckets)
	}
	if minVal > maxVal {
		return nil, dberror.ErrInvalidArgument.Detailf("histogram min %d exceeds max %d", minVal, maxVal)
	}

	span := int64(maxVal) - int64(minVal) + 1
	n := int64(buckets)
	if span < n {
		n = span
	}

	return &IntHistogram{
		counts: make([]int, n),
		min:    int64(minVal),
		max:    int64(maxVal),
		width:  float64(span) / float64(n),
	}, nil
}

// AddValue records one occurrence of v. Values outside the range are ignored.
func (h *IntHistogram) AddValue(v int32) {
	if int64(v) < h.min || int64(v) > h.max {
		return
	}
	h.counts[h.bucketOf(int64(v))]++
	h.total++
}

// Total returns the number of recorded values.
func (h *IntHistogram) Total() int {
	return h.total
}

func (h *IntHistogram) bucketOf(v int64) int {
	idx := int(float64(v-h.min) / h.width)
	if idx >= len(h.counts) {
		idx = len(h.counts) - 1
	}
	return idx
}

func (h *IntHistogram) left(b int) float64 {
	return float64(h.min) + float64(b)*h.width
}

func (h *IntHistogram) right(b int) float64 {
	return float64(h.min) + float64(b+1)*h.width
}

// EstimateSelectivity estimates the fraction of recorded values v for which
// "v op constant" holds. The result is in [0, 1]; an empty histogram gives 0.
func (h *IntHistogram) EstimateSelectivity(op primitives.Predicate, constant int32) float64 {
	if h.total == 0 {
		return 0
	}

	v := int64(constant)
	var sel float64
	switch op {
	case primitives.Equals, primitives.Like:
		sel = h.equal(v)
	case primitives.NotEqual:
		sel = 1 - h.equal(v)
	case primitives.GreaterThan:
		sel = h.greater(v)
	case primitives.GreaterThanOrEqual:
		sel = h.greater(v) + h.equal(v)
	case primitives.LessThan:
		sel = h.less(v)
	case primitives.LessThanOrEqual:
		sel = h.less(v) + h.equal(v)
	default:
		return 0
	}
	return clamp(sel)
}

func (h *IntHistogram) equal(v int64) float64 {
	if v < h.min || v > h.max {
		return 0
	}
	height := float64(h.counts[h.bucketOf(v)])
	return height / h.width / float64(h.total)
}

func (h *IntHistogram) greater(v int64) float64 {
	if v < h.min {
		return 1
	}
	if v >= h.max {
		return 0
	}

	b := h.bucketOf(v)
	part := (h.right(b) - float64(v+1)) / h.width
	sel := clamp(part) * float64(h.counts[b])
	for i := b + 1; i < len(h.counts); i++ {
		sel += float64(h.counts[i])
	}
	return sel / float64(h.total)
}

func (h *IntHistogram) less(v int64) float64 {
	if v <= h.min {
		return 0
	}
	if v > h.max {
		return 1
	}

	b := h.bucketOf(v)
	part := (float64(v) - h.left(b)) / h.width
	sel := clamp(part) * float64(h.counts[b])
	for i := 0; i < b; i++ {
		sel += float64(h.counts[i])
	}
	return sel / float64(h.total)
}

// AvgSelectivity is the expected selectivity of "v op c" when c is drawn from
// the recorded values themselves.
func (h *IntHistogram) AvgSelectivity(op primitives.Predicate) float64 {
	if h.total == 0 {
		return 0
	}

	total := float64(h.total)
	var eq float64
	for _, c := range h.counts {
		frac := float64(c) / total
		eq += frac * (float64(c) / h.width / total)
	}
	eq = clamp(eq)

	switch op {
	case primitives.Equals, primitives.Like:
		return eq
	case primitives.NotEqual:
		return 1 - eq
	case primitives.GreaterThan, primitives.LessThan:
		return (1 - eq) / 2
	case primitives.GreaterThanOrEqual, primitives.LessThanOrEqual:
		return (1-eq)/2 + eq
	default:
		return 0
	}
}

func (h *IntHistogram) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "IntHistogram[min=%d max=%d buckets=%d width=%.2f total=%d]", h.min, h.max, len(h.counts), h.width, h.total)
	for i, c := range h.counts {
		if c == 0 {
			continue
		}
		fmt.Fprintf(&sb, " [%.0f,%.0f):%d", h.left(i), h.right(i), c)
	}
	return sb.String()
}

func clamp(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
