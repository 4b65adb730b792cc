// Package logging provides config-driven categorized file logging for vqa.
// The terminal belongs to the form while it runs, so diagnostics go to
// .vqa/logs/<date>_vqa.log instead. Nothing is written unless debug_mode is on.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"vqa/internal/config"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot       Category = "boot"       // Startup and shutdown
	CategoryConfig     Category = "config"     // Config load and hot reload
	CategorySubmission Category = "submission" // Form state and HTTP submissions
	CategorySpeech     Category = "speech"     // Speech synthesis
	CategoryServer     Category = "server"     // vqa serve
	CategoryUI         Category = "ui"         // Form view events
)

var (
	mu      sync.RWMutex
	cfg     config.LoggingConfig
	root    *zap.Logger
	file    *os.File
	logsDir string
	loggers = make(map[Category]*zap.Logger)
)

// Initialize opens the shared log file under dir/logs. It may be called
// again to apply a new logging config; previously handed out loggers keep
// writing to the old core until fetched again.
func Initialize(dir string, lc config.LoggingConfig) error {
	if dir == "" {
		return fmt.Errorf("log directory required")
	}

	CloseAll()

	mu.Lock()
	defer mu.Unlock()

	cfg = lc
	logsDir = filepath.Join(dir, "logs")

	if !cfg.DebugMode {
		return nil // Silent no-op in production mode
	}

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	// Date prefix for easy rotation
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_vqa.log", time.Now().Format("2006-01-02")))
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}
	file = f

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if cfg.JSONFormat {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	root = zap.New(zapcore.NewCore(enc, zapcore.AddSync(f), parseLevel(cfg.Level)))

	boot := root.Named(string(CategoryBoot))
	boot.Info("logging initialized",
		zap.String("dir", logsDir),
		zap.String("level", cfg.Level),
		zap.Bool("json", cfg.JSONFormat))
	if len(cfg.Categories) == 0 {
		boot.Info("all categories enabled (no category filter)")
	} else {
		for cat, enabled := range cfg.Categories {
			boot.Debug("category filter", zap.String("category", cat), zap.Bool("enabled", enabled))
		}
	}
	return nil
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// IsDebugMode returns whether debug logging is enabled
func IsDebugMode() bool {
	mu.RLock()
	defer mu.RUnlock()
	return cfg.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return cfg.IsCategoryEnabled(string(category))
}

// Dir returns the logs directory, empty before Initialize.
func Dir() string {
	mu.RLock()
	defer mu.RUnlock()
	return logsDir
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode is disabled or category is disabled.
func Get(category Category) *zap.Logger {
	if !IsCategoryEnabled(category) {
		return zap.NewNop()
	}

	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	if root == nil {
		return zap.NewNop()
	}
	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}
	l := root.Named(string(category))
	loggers[category] = l
	return l
}

// Sync flushes buffered entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if root != nil {
		_ = root.Sync()
	}
}

// CloseAll flushes and closes the log file. Subsequent Get calls return
// no-op loggers until Initialize runs again.
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()

	if root != nil {
		_ = root.Sync()
		root = nil
	}
	if file != nil {
		file.Close()
		file = nil
	}
	loggers = make(map[Category]*zap.Logger)
	cfg = config.LoggingConfig{}
}

// Boot logs to the boot category at Info level.
func Boot(msg string, fields ...zap.Field) {
	Get(CategoryBoot).Info(msg, fields...)
}

// BootDebug logs to the boot category at Debug level.
func BootDebug(msg string, fields ...zap.Field) {
	Get(CategoryBoot).Debug(msg, fields...)
}

// Timer measures an operation and logs its duration on Stop.
type Timer struct {
	category  Category
	operation string
	start     time.Time
}

// StartTimer starts timing operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, operation: operation, start: time.Now()}
}

// Stop logs the elapsed time at Debug level and returns it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("operation finished",
		zap.String("operation", t.operation),
		zap.Duration("elapsed", elapsed))
	return elapsed
}

// StopWithThreshold logs at Warn level when elapsed exceeds threshold.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("slow operation",
			zap.String("operation", t.operation),
			zap.Duration("elapsed", elapsed),
			zap.Duration("threshold", threshold))
		return elapsed
	}
	return t.Stop()
}
