package internal

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

var once sync.Once
var logger *logrus.Logger

// GetLogger returns the process-wide logger. Level and format are adjusted once the
// config is loaded.
func GetLogger() *logrus.Logger {
	once.Do(func() {
		logger = logrus.New()
		logger.Out = os.Stdout
		logger.SetLevel(logrus.WarnLevel)
		logger.SetFormatter(formatter(LogFormatText))
	})

	return logger
}

func SetLogLevel(level logrus.Level) {
	GetLogger().SetLevel(level)
}

// SetLogFormat switches between the human readable text format and JSON lines.
// Unknown formats fall back to text.
func SetLogFormat(format string) {
	GetLogger().SetFormatter(formatter(format))
}

func formatter(format string) logrus.Formatter {
	if strings.EqualFold(format, LogFormatJSON) {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{
		FullTimestamp: true,
		PadLevelText:  true,
	}
}

// ComponentLogger returns an entry tagged with the component that logs through it.
func ComponentLogger(component string) *logrus.Entry {
	return GetLogger().WithField("component", component)
}

// LeveledLogger is the key/value logger interface of go-retryablehttp.
type LeveledLogger interface {
	Error(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

var _ LeveledLogger = &LeveledLogrus{}

// LeveledLogrus adapts a logrus entry to LeveledLogger. Key/value pairs become fields.
type LeveledLogrus struct {
	entry *logrus.Entry
}

// NewLeveledLogrus wraps logger, tagging every line with component.
func NewLeveledLogrus(logger *logrus.Logger, component string) *LeveledLogrus {
	return &LeveledLogrus{entry: logger.WithField("component", component)}
}

func (l *LeveledLogrus) fields(keysAndValues ...interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(keysAndValues)/2)

	for i := 0; i < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if i+1 == len(keysAndValues) {
			fields[key] = nil
			break
		}
		fields[key] = keysAndValues[i+1]
	}

	return fields
}

func (l *LeveledLogrus) Error(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(l.fields(keysAndValues...)).Error(msg)
}

func (l *LeveledLogrus) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(l.fields(keysAndValues...)).Info(msg)
}

// Warn is used by retryablehttp for retried requests.
func (l *LeveledLogrus) Warn(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(l.fields(keysAndValues...)).Warn(msg)
}

func (l *LeveledLogrus) Debug(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(l.fields(keysAndValues...)).Debug(msg)
}
