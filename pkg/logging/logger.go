package logging

import (
	"os"
	"strings"
	"sync"

	"github.com/natefinch/lumberjack"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level: debug, info, warn or error.
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	// Format is json or console.
	Format string `yaml:"format" validate:"omitempty,oneof=json console"`
	// OutputPath is stdout, stderr, or a file path. Empty means stderr.
	OutputPath string `yaml:"output_path"`
	// MaxSizeMB is the size at which a log file is rotated.
	MaxSizeMB int `yaml:"max_size_mb" validate:"gte=0"`
	// MaxBackups is the number of rotated files kept.
	MaxBackups int `yaml:"max_backups" validate:"gte=0"`
	// MaxAgeDays is how long rotated files are kept.
	MaxAgeDays int `yaml:"max_age_days" validate:"gte=0"`
	// Compress gzips rotated files.
	Compress bool `yaml:"compress"`
}

// DefaultConfig returns INFO level console logging to stderr.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		OutputPath: "stderr",
		MaxSizeMB:  100,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
}

var (
	global   *zap.Logger
	closeFn  func() error
	loggerMu sync.RWMutex
)

// New builds a logger from config without touching the global logger.
// The returned closer releases the log file, if any.
func New(config Config) (*zap.Logger, func() error, error) {
	level := zap.NewAtomicLevel()
	if config.Level == "" {
		level.SetLevel(zap.InfoLevel)
	} else if err := level.UnmarshalText([]byte(config.Level)); err != nil {
		return nil, nil, errors.Wrapf(err, "invalid log level %q", config.Level)
	}

	writer, closer := writeSyncer(config)
	core := zapcore.NewCore(encoder(config.Format), writer, level)
	logger := zap.New(core, zap.AddCaller()).With(zap.String("service", "heapdb"))
	return logger, closer, nil
}

func encoder(format string) zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	if strings.EqualFold(format, "json") {
		return zapcore.NewJSONEncoder(encoderConfig)
	}
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func writeSyncer(config Config) (zapcore.WriteSyncer, func() error) {
	noop := func() error { return nil }

	switch strings.ToLower(config.OutputPath) {
	case "stdout":
		return zapcore.AddSync(os.Stdout), noop
	case "stderr", "":
		return zapcore.AddSync(os.Stderr), noop
	default:
		lj := &lumberjack.Logger{
			Filename:   config.OutputPath,
			MaxSize:    config.MaxSizeMB,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAgeDays,
			Compress:   config.Compress,
		}
		return zapcore.AddSync(lj), lj.Close
	}
}

// Init replaces the global logger with one built from config.
// A previously initialized logger is flushed and its file closed.
func Init(config Config) error {
	logger, closer, err := New(config)
	if err != nil {
		return err
	}

	loggerMu.Lock()
	defer loggerMu.Unlock()

	closeLocked()
	global = logger
	closeFn = closer
	return nil
}

// InitDefault installs the DefaultConfig logger.
func InitDefault() error {
	return Init(DefaultConfig())
}

// GetLogger returns the global logger, building the default one on first use.
func GetLogger() *zap.Logger {
	loggerMu.RLock()
	logger := global
	loggerMu.RUnlock()
	if logger != nil {
		return logger
	}

	loggerMu.Lock()
	defer loggerMu.Unlock()
	if global == nil {
		l, closer, err := New(DefaultConfig())
		if err != nil {
			l, closer = zap.NewNop(), func() error { return nil }
		}
		global, closeFn = l, closer
	}
	return global
}

// Close flushes the global logger and releases its output file.
func Close() error {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	return closeLocked()
}

func closeLocked() error {
	if global == nil {
		return nil
	}
	// Sync on stderr/stdout returns EINVAL on some platforms.
	_ = global.Sync()
	var err error
	if closeFn != nil {
		err = closeFn()
	}
	global, closeFn = nil, nil
	return err
}
