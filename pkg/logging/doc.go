// Package logging provides the process-wide structured logger, built on zap.
//
// Call Init once at program startup. Until then GetLogger lazily returns a
// console logger at INFO level writing to stderr, so packages that log early
// are safe.
//
//	if err := logging.Init(logging.Config{Level: "debug", OutputPath: "logs/heapdb.log"}); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Close()
//
// File output is rotated by lumberjack according to the MaxSizeMB, MaxBackups
// and MaxAgeDays settings.
//
// Components receive a *zap.Logger at construction; the helpers in this
// package (WithTx, WithTable, WithPage, WithComponent) derive child loggers
// carrying the usual structured fields.
package logging
