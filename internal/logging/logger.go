// Package logging provides categorized logging on top of zap.
// Each subsystem logs through its own named logger so output can be filtered by category.
// Before Initialize is called every logger is a no-op.
package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names a subsystem.
type Category string

const (
	CategoryBoot       Category = "boot"       // startup, config
	CategoryRouting    Category = "routing"    // native decisions, CLI routing flow
	CategoryEngine     Category = "engine"     // rule-engine probes and verdicts
	CategoryPerception Category = "perception" // intent extraction
	CategoryAPI        Category = "api"        // LLM API calls
	CategoryAgent      Category = "agent"      // agent loop turns
	CategoryTools      Category = "tools"      // tool execution
	CategoryStore      Category = "store"      // conversation memory
	CategoryServer     Category = "server"     // HTTP serve mode
)

// Options configures the root logger.
type Options struct {
	Verbose    bool
	JSONFormat bool
	// Disabled categories are dropped entirely.
	Disabled []string
}

// Logger is a category logger with printf-style methods.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu       sync.RWMutex
	root     = zap.NewNop()
	loggers  = make(map[Category]*Logger)
	disabled = make(map[Category]bool)
	level    = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Initialize builds the root logger. It writes to stderr so stdout stays clean for command output.
func Initialize(opts Options) error {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Sampling = nil
	if !opts.JSONFormat {
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	if opts.Verbose {
		level.SetLevel(zapcore.DebugLevel)
	} else {
		level.SetLevel(zapcore.WarnLevel)
	}
	cfg.Level = level

	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	root = logger
	loggers = make(map[Category]*Logger)
	disabled = make(map[Category]bool)
	for _, c := range opts.Disabled {
		disabled[Category(strings.ToLower(c))] = true
	}
	return nil
}

// SetLogger installs an existing zap logger as root. Used by tests with zaptest/observer.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	root = l
	loggers = make(map[Category]*Logger)
}

// Root returns the underlying zap logger.
func Root() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// Sync flushes buffered entries.
func Sync() {
	if err := Root().Sync(); err != nil && !isIgnorableSyncError(err) {
		fmt.Fprintf(os.Stderr, "[logging] sync failed: %v\n", err)
	}
}

// stderr on a terminal returns EINVAL/ENOTTY from fsync.
func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "invalid argument") || strings.Contains(msg, "inappropriate ioctl")
}

// IsVerbose reports whether debug logging is on.
func IsVerbose() bool {
	return level.Enabled(zapcore.DebugLevel)
}

// Get returns the logger for a category.
func Get(category Category) *Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	base := root
	if disabled[category] {
		base = zap.NewNop()
	}
	l := &Logger{category: category, sugar: base.Named(string(category)).Sugar()}
	loggers[category] = l
	return l
}

func (l *Logger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// With returns a child logger carrying structured key/value context.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

// =============================================================================
// CONVENIENCE FUNCTIONS
// =============================================================================

func Boot(format string, args ...interface{})      { Get(CategoryBoot).Info(format, args...) }
func BootDebug(format string, args ...interface{}) { Get(CategoryBoot).Debug(format, args...) }

func Routing(format string, args ...interface{})      { Get(CategoryRouting).Info(format, args...) }
func RoutingDebug(format string, args ...interface{}) { Get(CategoryRouting).Debug(format, args...) }

func Engine(format string, args ...interface{})      { Get(CategoryEngine).Info(format, args...) }
func EngineDebug(format string, args ...interface{}) { Get(CategoryEngine).Debug(format, args...) }

func Perception(format string, args ...interface{})      { Get(CategoryPerception).Info(format, args...) }
func PerceptionDebug(format string, args ...interface{}) { Get(CategoryPerception).Debug(format, args...) }

func API(format string, args ...interface{})      { Get(CategoryAPI).Info(format, args...) }
func APIDebug(format string, args ...interface{}) { Get(CategoryAPI).Debug(format, args...) }

func Agent(format string, args ...interface{})      { Get(CategoryAgent).Info(format, args...) }
func AgentDebug(format string, args ...interface{}) { Get(CategoryAgent).Debug(format, args...) }

func Tools(format string, args ...interface{})      { Get(CategoryTools).Info(format, args...) }
func ToolsDebug(format string, args ...interface{}) { Get(CategoryTools).Debug(format, args...) }

func Store(format string, args ...interface{})      { Get(CategoryStore).Info(format, args...) }
func StoreDebug(format string, args ...interface{}) { Get(CategoryStore).Debug(format, args...) }

func Server(format string, args ...interface{})      { Get(CategoryServer).Info(format, args...) }
func ServerDebug(format string, args ...interface{}) { Get(CategoryServer).Debug(format, args...) }

// =============================================================================
// TIMING
// =============================================================================

// Timer measures an operation and logs its duration on Stop.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs a warning if the duration exceeds threshold.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
