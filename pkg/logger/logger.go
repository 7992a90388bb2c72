package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Leveled logger shared by the service, the sweeper and the commands.
// Backed by logrus; the package-level helpers keep call sites short and
// WithFields gives structured entries where a record id or count matters.

type Fields = logrus.Fields

var base = newLogrus(os.Stdout)

func newLogrus(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Unknown values fall back to info.
func Init(l string) {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		base.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		base.SetLevel(logrus.WarnLevel)
	case "error":
		base.SetLevel(logrus.ErrorLevel)
	case "fatal":
		base.SetLevel(logrus.FatalLevel)
	default:
		base.SetLevel(logrus.InfoLevel)
	}
}

// SetOutput redirects all log output; tests use it to capture entries.
func SetOutput(w io.Writer) { base.SetOutput(w) }

// WithFields returns an entry carrying structured fields.
func WithFields(f Fields) *logrus.Entry { return base.WithFields(f) }

// WithField is the single-field shorthand of WithFields.
func WithField(key string, value interface{}) *logrus.Entry { return base.WithField(key, value) }

func Debugf(format string, v ...interface{}) { base.Debugf(format, v...) }
func Infof(format string, v ...interface{})  { base.Infof(format, v...) }
func Warnf(format string, v ...interface{})  { base.Warnf(format, v...) }
func Errorf(format string, v ...interface{}) { base.Errorf(format, v...) }

// Fatalf logs and exits with status 1.
func Fatalf(format string, v ...interface{}) { base.Fatalf(format, v...) }

func Debug(v string) { base.Debug(v) }
func Info(v string)  { base.Info(v) }
func Warn(v string)  { base.Warn(v) }
func Error(v string) { base.Error(v) }

// LevelString returns the current level as text.
func LevelString() string {
	switch base.GetLevel() {
	case logrus.DebugLevel, logrus.TraceLevel:
		return "debug"
	case logrus.WarnLevel:
		return "warn"
	case logrus.ErrorLevel:
		return "error"
	case logrus.FatalLevel, logrus.PanicLevel:
		return "fatal"
	}
	return "info"
}
