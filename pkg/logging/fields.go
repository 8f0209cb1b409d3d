package logging

import (
	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/primitives"

	"go.uber.org/zap"
)

// WithComponent tags log entries with the subsystem that produced them.
func WithComponent(logger *zap.Logger, component string) *zap.Logger {
	return orGlobal(logger).With(zap.String("component", component))
}

// WithTx tags log entries with a transaction id. A nil tid is omitted.
func WithTx(logger *zap.Logger, tid *transaction.TransactionID) *zap.Logger {
	logger = orGlobal(logger)
	if tid == nil {
		return logger
	}
	return logger.With(zap.Stringer("tx_id", tid))
}

func WithTable(logger *zap.Logger, tableID primitives.TableID) *zap.Logger {
	return orGlobal(logger).With(zap.Uint64("table_id", uint64(tableID)))
}

func WithPage(logger *zap.Logger, pid primitives.PageID) *zap.Logger {
	return orGlobal(logger).With(
		zap.Uint64("table_id", uint64(pid.TableID)),
		zap.Uint64("page_no", uint64(pid.PageNo)),
	)
}

func orGlobal(logger *zap.Logger) *zap.Logger {
	if logger != nil {
		return logger
	}
	return GetLogger()
}
