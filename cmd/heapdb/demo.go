package main

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/dberror"
	"heapdb/pkg/execution"
	"heapdb/pkg/execution/aggregation"
	"heapdb/pkg/iterator"
	"heapdb/pkg/primitives"
	"heapdb/pkg/registry"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

const demoTable = "employees"

var demoDepartments = []string{"engineering", "sales", "support", "finance"}

func demoDesc() *tuple.TupleDescription {
	return tuple.MustNewTupleDesc(
		[]types.Type{types.IntType, types.StringType},
		[]string{"id", "dept"},
	)
}

type demoReport struct {
	Inserted    int32
	Matched     int
	Threshold   int32
	Departments map[string]int32
	Selectivity float64
	Cardinality int
	ScanCost    float64
	TotalTuples int
}

func (r *demoReport) Print(w io.Writer) {
	fmt.Fprintf(w, "inserted %d rows into %s\n", r.Inserted, demoTable)
	fmt.Fprintf(w, "id >= %d matched %d rows (estimated %.3f, ~%d rows)\n",
		r.Threshold, r.Matched, r.Selectivity, r.Cardinality)
	for _, dept := range demoDepartments {
		if n, ok := r.Departments[dept]; ok {
			fmt.Fprintf(w, "  %-12s %d\n", dept, n)
		}
	}
	fmt.Fprintf(w, "table holds %d tuples, scan cost %.0f\n", r.TotalTuples, r.ScanCost)
}

// runDemo inserts rows ids 0..rows-1, filters the upper half, counts rows per
// department and compares the filter against the histogram estimate.
func runDemo(ctx context.Context, dbCtx *registry.DatabaseContext, rows int) (*demoReport, error) {
	if rows <= 0 {
		return nil, dberror.ErrInvalidArgument.Detailf("demo needs at least one row, got %d", rows)
	}

	td := demoDesc()
	hf, err := dbCtx.OpenTable(demoTable, td, "id")
	if err != nil {
		return nil, err
	}
	tableID := hf.GetID()
	tid := transaction.NewTransactionID()
	report := &demoReport{Threshold: int32(rows / 2)}

	tuples := make([]*tuple.Tuple, rows)
	for i := range tuples {
		tuples[i] = tuple.NewTupleWithFields(td,
			types.NewIntField(int32(i)),
			types.NewStringField(demoDepartments[i%len(demoDepartments)]))
	}

	if report.Inserted, err = insertRows(dbCtx, tid, tableID, iterator.NewTupleSliceIterator(td, tuples)); err != nil {
		return nil, err
	}
	if err := dbCtx.BufferPool().FlushAllPages(); err != nil {
		return nil, err
	}

	if report.Matched, err = countMatching(dbCtx, tid, tableID, report.Threshold); err != nil {
		return nil, err
	}
	if report.Departments, err = countByDepartment(dbCtx, tid, tableID); err != nil {
		return nil, err
	}

	if err := dbCtx.ComputeStatistics(ctx); err != nil {
		return nil, err
	}
	stats, ok := dbCtx.Stats().Get(demoTable)
	if !ok {
		return nil, dberror.ErrNotFound.Detailf("no statistics for %s", demoTable)
	}
	report.Selectivity, err = stats.EstimateSelectivity(0, primitives.GreaterThanOrEqual, types.NewIntField(report.Threshold))
	if err != nil {
		return nil, err
	}
	report.Cardinality = stats.EstimateTableCardinality(report.Selectivity)
	report.ScanCost = stats.EstimateScanCost()
	report.TotalTuples = stats.TotalTuples()

	dbCtx.Logger().Info("demo finished",
		zap.Int32("inserted", report.Inserted),
		zap.Int("matched", report.Matched),
		zap.Float64("selectivity", report.Selectivity))
	return report, nil
}

func insertRows(dbCtx *registry.DatabaseContext, tid *transaction.TransactionID, tableID primitives.TableID, rows iterator.DbIterator) (int32, error) {
	ins, err := execution.NewInsert(dbCtx, tid, rows, tableID)
	if err != nil {
		return 0, err
	}
	if err := ins.Open(); err != nil {
		return 0, errors.Wrap(err, "open insert")
	}
	defer ins.Close()

	result, err := ins.Next()
	if err != nil {
		return 0, err
	}
	count, ok := result.GetField(0).(*types.IntField)
	if !ok {
		return 0, dberror.ErrSchemaMismatch.Detailf("insert produced %s", result)
	}
	return count.Value, nil
}

func countMatching(dbCtx *registry.DatabaseContext, tid *transaction.TransactionID, tableID primitives.TableID, threshold int32) (int, error) {
	scan, err := execution.NewSeqScan(dbCtx, tid, tableID, "")
	if err != nil {
		return 0, err
	}
	pred := execution.NewPredicate(0, primitives.GreaterThanOrEqual, types.NewIntField(threshold))
	filter, err := execution.NewFilter(pred, scan)
	if err != nil {
		return 0, err
	}
	if err := filter.Open(); err != nil {
		return 0, err
	}
	defer filter.Close()
	return iterator.Count(filter)
}

func countByDepartment(dbCtx *registry.DatabaseContext, tid *transaction.TransactionID, tableID primitives.TableID) (map[string]int32, error) {
	scan, err := execution.NewSeqScan(dbCtx, tid, tableID, "e")
	if err != nil {
		return nil, err
	}
	agg, err := aggregation.NewAggregateOperator(scan, 0, 1, aggregation.Count)
	if err != nil {
		return nil, err
	}
	if err := agg.Open(); err != nil {
		return nil, err
	}
	defer agg.Close()

	counts := make(map[string]int32)
	err = iterator.ForEach(agg, func(t *tuple.Tuple) error {
		n, ok := t.GetField(1).(*types.IntField)
		if !ok {
			return dberror.ErrSchemaMismatch.Detailf("unexpected aggregate row %s", t)
		}
		counts[t.GetField(0).String()] = n.Value
		return nil
	})
	return counts, err
}
