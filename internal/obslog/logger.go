// Package obslog wires the engine's structured logging: a process-wide
// zap.Logger, optionally tee'd to a rotating file sink via lumberjack.
// Grounded on _examples/xkilldash9x-scalpel-cli's internal/observability,
// trimmed of its colorized-console encoder (no terminal UI in this repo).
package obslog

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config configures the process-wide logger. Zero value is a sane
// production default (info level, JSON, stderr only).
type Config struct {
	Level       string // "debug", "info", "warn", "error"; default "info"
	ServiceName string
	AddSource   bool

	// LogFile, when non-empty, tees output to a lumberjack-rotated file
	// in addition to the console writer passed to Init.
	LogFile    string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

var current atomic.Pointer[zap.Logger]

// Init builds a zap.Logger from cfg, writing to w (typically
// zapcore.Lock(os.Stderr)), stores it as the process-wide logger
// retrievable via L, and returns it.
func Init(cfg Config, w zapcore.WriteSyncer) *zap.Logger {
	level := zap.NewAtomicLevel()
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			level.SetLevel(zap.InfoLevel)
		}
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cores := []zapcore.Core{zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), w, level)}

	if cfg.LogFile != "" {
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), fileWriter, level))
	}

	opts := []zap.Option{zap.AddStacktrace(zap.ErrorLevel)}
	if cfg.AddSource {
		opts = append(opts, zap.AddCaller())
	}

	logger := zap.New(zapcore.NewTee(cores...), opts...)
	if cfg.ServiceName != "" {
		logger = logger.Named(cfg.ServiceName)
	}
	current.Store(logger)
	return logger
}

// L returns the process-wide logger, defaulting to stderr at info level
// if Init was never called.
func L() *zap.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	return Init(Config{}, zapcore.Lock(os.Stderr))
}
