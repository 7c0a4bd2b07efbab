// Package logger provides the process-wide zap logger.
// Init must be called early in the application lifecycle before using other logger functions.
// Functions like AttachBuffer and SetEnabled will return errors if called before Init.
//
// Node processes log to stderr only: stdout carries the protocol.
package logger

import (
	"errors"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var ErrNotInitialized = errors.New("logger not initialized: call logger.Init() first")

type state struct {
	mu     sync.Mutex
	level  zap.AtomicLevel
	cores  []zapcore.Core
	prefix string
	root   *zap.Logger
}

var (
	global *state
	once   sync.Once

	globalBuffer *LogBuffer
	bufferOnce   sync.Once
)

// GetGlobalLogBuffer returns the global log buffer
func GetGlobalLogBuffer() *LogBuffer {
	bufferOnce.Do(func() {
		globalBuffer = NewLogBuffer(1000) // Keep last 1000 log entries
	})
	return globalBuffer
}

// Init initializes the global logger. Entries are console-encoded onto out;
// a nil out keeps them off every stream until a buffer is attached.
// prefix names the process-level logger used by Printf and friends.
func Init(prefix string, out io.Writer) {
	once.Do(func() {
		s := &state{
			level:  zap.NewAtomicLevelAt(zapcore.InfoLevel),
			prefix: prefix,
		}
		if out != nil {
			s.cores = append(s.cores, zapcore.NewCore(consoleEncoder(), zapcore.Lock(zapcore.AddSync(out)), s.level))
		}
		s.rebuild()
		global = s
	})
}

func consoleEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	cfg.EncodeCaller = nil
	cfg.CallerKey = ""
	cfg.StacktraceKey = ""
	return zapcore.NewConsoleEncoder(cfg)
}

// rebuild must be called with mu held or before s is published.
func (s *state) rebuild() {
	s.root = zap.New(zapcore.NewTee(s.cores...))
}

// AttachBuffer tees every entry into buf, keyed by logger name.
// Loggers obtained from Named before the call keep their old outputs.
// Returns an error if called before Init.
func AttachBuffer(buf *LogBuffer) error {
	if global == nil {
		return ErrNotInitialized
	}
	global.mu.Lock()
	defer global.mu.Unlock()
	global.cores = append(global.cores, NewBufferCore(buf, global.level))
	global.rebuild()
	return nil
}

// SetEnabled enables or disables logging.
// Returns an error if called before Init.
func SetEnabled(enabled bool) error {
	if global == nil {
		return ErrNotInitialized
	}
	if enabled {
		global.level.SetLevel(zapcore.InfoLevel)
	} else {
		global.level.SetLevel(zapcore.FatalLevel + 1)
	}
	return nil
}

// SetDebug lowers the threshold to debug.
// Returns an error if called before Init.
func SetDebug() error {
	if global == nil {
		return ErrNotInitialized
	}
	global.level.SetLevel(zapcore.DebugLevel)
	return nil
}

// L returns the unnamed root logger, or a no-op logger before Init.
func L() *zap.Logger {
	if global == nil {
		return zap.NewNop()
	}
	global.mu.Lock()
	defer global.mu.Unlock()
	return global.root
}

// Named returns a sugared logger whose entries are attributed to name.
func Named(name string) *zap.SugaredLogger {
	return L().Named(name).Sugar()
}

func process() *zap.SugaredLogger {
	if global == nil {
		return zap.NewNop().Sugar()
	}
	return Named(global.prefix)
}

// Printf logs a formatted message at info level.
func Printf(format string, v ...interface{}) {
	process().Infof(strings.TrimSuffix(format, "\n"), v...)
}

// Infof logs an info-level formatted message
func Infof(format string, v ...interface{}) {
	process().Infof(format, v...)
}

// Warnf logs a warn-level formatted message
func Warnf(format string, v ...interface{}) {
	process().Warnf(format, v...)
}

// Errorf logs an error-level formatted message
func Errorf(format string, v ...interface{}) {
	process().Errorf(format, v...)
}

// Debugf logs a debug-level formatted message
func Debugf(format string, v ...interface{}) {
	process().Debugf(format, v...)
}

// Sync flushes any buffered entries.
func Sync() error {
	return L().Sync()
}
