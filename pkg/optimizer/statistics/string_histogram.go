package statistics

import "heapdb/pkg/primitives"

// "zzzz" packed big-endian; the largest projected value.
const maxPackedString = 0x7a7a7a7a

var (
	minStringValue = stringToInt("")
	maxStringValue = stringToInt("zzzz")
)

// StringHistogram estimates string predicates by projecting each string onto
// an integer built from its first four bytes and delegating to an IntHistogram.
// The projection preserves ordering for strings whose bytes are at most 'z'.
type StringHistogram struct {
	hist *IntHistogram
}

func NewStringHistogram(buckets int) (*StringHistogram, error) {
	hist, err := NewIntHistogram(buckets, minStringValue, maxStringValue)
	if err != nil {
		return nil, err
	}
	return &StringHistogram{hist: hist}, nil
}

// stringToInt packs the first four bytes of s big-endian, zero-filling short
// strings, and clamps the result into the histogram range.
func stringToInt(s string) int32 {
	var v int64
	for i := 0; i < 4; i++ {
		v <<= 8
		if i < len(s) {
			v |= int64(s[i])
		}
	}
	if v > maxPackedString {
		v = maxPackedString
	}
	return int32(v) // #nosec G115
}

func (h *StringHistogram) AddValue(s string) {
	h.hist.AddValue(stringToInt(s))
}

func (h *StringHistogram) EstimateSelectivity(op primitives.Predicate, s string) float64 {
	return h.hist.EstimateSelectivity(op, stringToInt(s))
}

func (h *StringHistogram) AvgSelectivity(op primitives.Predicate) float64 {
	return h.hist.AvgSelectivity(op)
}

func (h *StringHistogram) Total() int {
	return h.hist.Total()
}

func (h *StringHistogram) String() string {
	return "String" + h.hist.String()
}
