package aggregation

import (
	"strings"

	"heapdb/pkg/dberror"
)

// NoGrouping indicates that no grouping field is used in aggregation.
const NoGrouping = -1

// AggregateOp represents the type of aggregation operation to perform.
type AggregateOp int

const (
	Min AggregateOp = iota
	Max
	Sum
	Avg
	Count
	// SumCount emits both the sum and the count of each group.
	SumCount
)

// String returns a string representation of the aggregation operation.
func (op AggregateOp) String() string {
	switch op {
	case Min:
		return "MIN"
	case Max:
		return "MAX"
	case Sum:
		return "SUM"
	case Avg:
		return "AVG"
	case Count:
		return "COUNT"
	case SumCount:
		return "SUM_COUNT"
	default:
		return "UNKNOWN"
	}
}

// ParseAggregateOp converts an operator name, case-insensitively, to an AggregateOp.
func ParseAggregateOp(name string) (AggregateOp, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "MIN":
		return Min, nil
	case "MAX":
		return Max, nil
	case "SUM":
		return Sum, nil
	case "AVG":
		return Avg, nil
	case "COUNT":
		return Count, nil
	case "SUM_COUNT":
		return SumCount, nil
	default:
		return 0, dberror.ErrUnsupportedAggregate.Detailf("unknown aggregate operation %q", name)
	}
}
