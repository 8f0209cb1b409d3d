package statistics

import (
	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/dberror"
	"heapdb/pkg/iterator"
	"heapdb/pkg/primitives"
	"heapdb/pkg/storage/page"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"

	"github.com/pkg/errors"
)

const (
	// DefaultHistogramBins is the bucket count used when none is configured.
	DefaultHistogramBins = 100
	// DefaultIOCostPerPage is the cost charged for reading one page.
	DefaultIOCostPerPage = 1000
)

// TableStats holds the histograms and counts for one table.
type TableStats struct {
	tableID       primitives.TableID
	tupleDesc     *tuple.TupleDescription
	numPages      primitives.PageNumber
	ioCostPerPage int
	totalTuples   int
	intHists      map[int]*IntHistogram
	stringHists   map[int]*StringHistogram
}

type intRange struct {
	min, max int32
}

// NewTableStats scans file twice through pages inside its own transaction.
// The first pass counts tuples, finds integer column ranges and fills string
// histograms; the second fills integer histograms sized to those ranges.
func NewTableStats(file page.DbFile, pages page.PageFetcher, ioCostPerPage, bins int) (*TableStats, error) {
	if file == nil || pages == nil {
		return nil, dberror.ErrInvalidArgument.Detailf("table stats need a file and a page fetcher")
	}
	if bins <= 0 {
		bins = DefaultHistogramBins
	}

	numPages, err := file.NumPages()
	if err != nil {
		return nil, err
	}

	td := file.GetTupleDesc()
	ts := &TableStats{
		tableID:       file.GetID(),
		tupleDesc:     td,
		numPages:      numPages,
		ioCostPerPage: ioCostPerPage,
		intHists:      make(map[int]*IntHistogram),
		stringHists:   make(map[int]*StringHistogram),
	}

	for i, fieldType := range td.Types {
		if fieldType == types.StringType {
			if ts.stringHists[i], err = NewStringHistogram(bins); err != nil {
				return nil, err
			}
		}
	}

	tid := transaction.NewTransactionID()
	it := file.Iterator(tid, pages)
	if err := it.Open(); err != nil {
		return nil, errors.Wrapf(err, "open scan of table %d", ts.tableID)
	}
	defer it.Close()

	ranges := make(map[int]*intRange)
	err = iterator.ForEach(it, func(t *tuple.Tuple) error {
		ts.totalTuples++
		for i := range td.Types {
			switch f := t.GetField(i).(type) {
			case *types.IntField:
				r, ok := ranges[i]
				if !ok {
					ranges[i] = &intRange{min: f.Value, max: f.Value}
					continue
				}
				r.min = min(r.min, f.Value)
				r.max = max(r.max, f.Value)
			case *types.StringField:
				ts.stringHists[i].AddValue(f.Value)
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "first statistics pass over table %d", ts.tableID)
	}

	if len(ranges) == 0 {
		return ts, nil
	}
	for i, r := range ranges {
		if ts.intHists[i], err = NewIntHistogram(bins, r.min, r.max); err != nil {
			return nil, err
		}
	}

	if err := it.Rewind(); err != nil {
		return nil, errors.Wrapf(err, "rewind scan of table %d", ts.tableID)
	}
	err = iterator.ForEach(it, func(t *tuple.Tuple) error {
		for i, hist := range ts.intHists {
			if f, ok := t.GetField(i).(*types.IntField); ok {
				hist.AddValue(f.Value)
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "second statistics pass over table %d", ts.tableID)
	}

	return ts, nil
}

func (ts *TableStats) TableID() primitives.TableID {
	return ts.tableID
}

func (ts *TableStats) NumPages() primitives.PageNumber {
	return ts.numPages
}

// TotalTuples returns the number of tuples seen by the scan.
func (ts *TableStats) TotalTuples() int {
	return ts.totalTuples
}

// EstimateScanCost charges every page twice, matching the two-pass read.
func (ts *TableStats) EstimateScanCost() float64 {
	return float64(ts.numPages) * float64(ts.ioCostPerPage) * 2
}

// EstimateTableCardinality returns the truncated number of tuples expected to
// pass a predicate of the given selectivity.
func (ts *TableStats) EstimateTableCardinality(selectivity float64) int {
	return int(float64(ts.totalTuples) * selectivity)
}

// EstimateSelectivity estimates "field op constant" from the field's histogram.
func (ts *TableStats) EstimateSelectivity(field int, op primitives.Predicate, constant types.Field) (float64, error) {
	fieldType, err := ts.tupleDesc.TypeAtIndex(field)
	if err != nil {
		return 0, err
	}
	if constant == nil || constant.Type() != fieldType {
		return 0, dberror.ErrSchemaMismatch.Detailf("constant for field %d must be %s", field, fieldType)
	}

	switch c := constant.(type) {
	case *types.IntField:
		if hist, ok := ts.intHists[field]; ok {
			return hist.EstimateSelectivity(op, c.Value), nil
		}
	case *types.StringField:
		if hist, ok := ts.stringHists[field]; ok {
			return hist.EstimateSelectivity(op, c.Value), nil
		}
	}
	// empty table
	return 0, nil
}

// AvgSelectivity returns the expected selectivity of "field op c" for an
// unknown constant c.
func (ts *TableStats) AvgSelectivity(field int, op primitives.Predicate) (float64, error) {
	fieldType, err := ts.tupleDesc.TypeAtIndex(field)
	if err != nil {
		return 0, err
	}

	switch fieldType {
	case types.IntType:
		if hist, ok := ts.intHists[field]; ok {
			return hist.AvgSelectivity(op), nil
		}
	case types.StringType:
		if hist, ok := ts.stringHists[field]; ok {
			return hist.AvgSelectivity(op), nil
		}
	}
	return 0, nil
}
