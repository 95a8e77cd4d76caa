package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"video-pipeline-service/pkg/config"
)

// Logger wraps a logrus logger plus the optional log file it owns.
type Logger struct {
	entry *logrus.Logger
	file  *os.File
}

// NewLogger builds a logger from service configuration.
func NewLogger(cfg *config.Config) *Logger {
	l := logrus.New()

	level := logrus.InfoLevel
	if cfg != nil {
		if parsed, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
			level = parsed
		}
	}
	l.SetLevel(level)

	format := ""
	if cfg != nil {
		format = cfg.Log.Format
	}
	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05.000"})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05.000"})
	}

	logger := &Logger{entry: l}

	if cfg != nil && cfg.Log.Output == "file" && cfg.Log.Filename != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.Filename), 0o755); err == nil {
			if f, err := os.OpenFile(cfg.Log.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
				logger.file = f
				l.SetOutput(io.MultiWriter(os.Stdout, f))
			}
		}
	}

	return logger
}

// Close releases the log file if one was opened.
func (l *Logger) Close() {
	if l.file != nil {
		_ = l.file.Close()
	}
}

func (l *Logger) WithFields(fields map[string]interface{}) *logrus.Entry {
	return l.entry.WithFields(fields)
}

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// SetGlobalLogger installs the process-wide logger.
func SetGlobalLogger(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

func global() *logrus.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger == nil {
		return logrus.StandardLogger()
	}
	return globalLogger.entry
}

// Debug logs at debug level with optional structured fields.
func Debug(msg string, fields ...map[string]interface{}) {
	log(logrus.DebugLevel, msg, fields...)
}

// Info logs at info level with optional structured fields.
func Info(msg string, fields ...map[string]interface{}) {
	log(logrus.InfoLevel, msg, fields...)
}

// Warn logs at warn level with optional structured fields.
func Warn(msg string, fields ...map[string]interface{}) {
	log(logrus.WarnLevel, msg, fields...)
}

// Error logs at error level with optional structured fields.
func Error(msg string, fields ...map[string]interface{}) {
	log(logrus.ErrorLevel, msg, fields...)
}

// Fatal logs and exits the process.
func Fatal(msg string) {
	global().Fatal(msg)
}

func Debugf(format string, args ...interface{}) { global().Debugf(format, args...) }
func Infof(format string, args ...interface{})  { global().Infof(format, args...) }
func Warnf(format string, args ...interface{})  { global().Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { global().Errorf(format, args...) }

func log(level logrus.Level, msg string, fields ...map[string]interface{}) {
	l := global()
	if len(fields) > 0 && fields[0] != nil {
		l.WithFields(logrus.Fields(fields[0])).Log(level, msg)
		return
	}
	l.Log(level, msg)
}
