// Package statistics maintains per-table statistics for cost estimation.
//
// A TableStats is built by scanning a table twice through the buffer pool.
// Integer columns get an IntHistogram sized to the observed [min, max] range.
// String columns get a StringHistogram, which maps each value onto an integer
// from its first four bytes. Both histograms are equi-width.
//
// A Registry holds the TableStats of every table by name. It is owned by the
// database context rather than being a package global, and ComputeStatistics
// rebuilds every entry in parallel.
package statistics
