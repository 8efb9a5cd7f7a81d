package log

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu    sync.Mutex
	sugar *zap.SugaredLogger
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Init configures the global logger. In development mode output is
// human-readable console encoding; otherwise JSON suitable for collection.
func Init(development bool) {
	mu.Lock()
	defer mu.Unlock()

	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = level

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// zap only fails on invalid config; fall back to a no-op logger.
		logger = zap.NewNop()
	}
	sugar = logger.Sugar()
}

// SetDebug lowers the minimum level to debug.
func SetDebug() {
	level.SetLevel(zapcore.DebugLevel)
}

func get() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	if sugar == nil {
		logger, _ := zap.NewProduction(zap.AddCallerSkip(1))
		sugar = logger.Sugar()
	}
	return sugar
}

func Debug(msg string, kv ...any) {
	get().Debugw(msg, kv...)
}

func Info(msg string, kv ...any) {
	get().Infow(msg, kv...)
}

// Error logs msg with err prepended to the key-value list as "err".
func Error(msg string, err error, kv ...any) {
	extended := append([]any{"err", err}, kv...)
	get().Errorw(msg, extended...)
}

// Sync flushes buffered log entries. Safe to call at process exit.
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	if sugar != nil {
		_ = sugar.Sync()
	}
}
