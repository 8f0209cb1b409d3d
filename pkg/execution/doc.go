// Package execution implements the pull-based query operators.
//
// Every operator satisfies iterator.DbIterator: Open, then HasNext/Next until
// exhausted, optionally Rewind, then Close. Operators obtain pages through the
// buffer pool of the registry.DatabaseContext they were built with.
//
// Operators:
//   - SeqScan reads every tuple of a table.
//   - Filter keeps the tuples satisfying a single-field Predicate.
//   - Insert and Delete drain their child into the buffer pool and emit a
//     single tuple holding the number of tuples affected.
//
// Grouped aggregation lives in the aggregation subpackage.
package execution
