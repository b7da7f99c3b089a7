package fsci

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the logging surface used by every package of the driver.
type Logger interface {
	Info(...interface{})
	Debug(...interface{})
	Error(...interface{})
	Warn(...interface{})

	Infof(string, ...interface{})
	Debugf(string, ...interface{})
	Errorf(string, ...interface{})
	Warnf(string, ...interface{})

	ChildLogger(tags map[string]interface{}) Logger
}

// Tag keys set by the driver on its loggers.
const (
	TagComponent = "component"
	TagIface     = "iface"
)

var (
	loggerMu sync.Mutex
	logger   Logger
)

// SetLogger replaces the logger every component derives its own from.
// Components created earlier keep the logger they were built with.
func SetLogger(l Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}

// GetLogger returns the driver logger, building a logrus one on first use.
func GetLogger() Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if logger == nil {
		logger = newLogrusLogger(logrus.InfoLevel)
	}
	return logger
}

// ComponentLogger returns a child of the driver logger tagged with the
// component name and serial interface.
func ComponentLogger(component string, iface uint32) Logger {
	return GetLogger().ChildLogger(map[string]interface{}{
		TagComponent: component,
		TagIface:     iface,
	})
}

// SetLogLevel sets the level of the default logger. It is a no-op once
// SetLogger installed another one.
func SetLogLevel(lvl logrus.Level) {
	if lg, ok := GetLogger().(*logrusLogger); ok {
		lg.Entry.Logger.SetLevel(lvl)
	}
}

// SetLogLevelMax turns on trace output, which dumps every frame crossing
// the link.
func SetLogLevelMax() {
	l := GetLogger()
	if _, ok := l.(*logrusLogger); !ok {
		l.Warn("custom logger installed, level left unchanged")
		return
	}
	SetLogLevel(logrus.TraceLevel)
}

type logrusLogger struct {
	*logrus.Entry
}

func newLogrusLogger(lvl logrus.Level) Logger {
	l := &logrus.Logger{
		Formatter: &logrus.TextFormatter{DisableTimestamp: true},
		Level:     lvl,
		Out:       os.Stderr,
		Hooks:     make(logrus.LevelHooks),
	}
	return &logrusLogger{Entry: l.WithField(TagComponent, "fsci")}
}

func (d *logrusLogger) ChildLogger(ff map[string]interface{}) Logger {
	return &logrusLogger{d.Entry.WithFields(ff)}
}
