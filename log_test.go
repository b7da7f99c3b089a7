package fsci

import (
	"testing"

	"github.com/sirupsen/logrus"
)

type tagLogger struct {
	Logger
	tags map[string]interface{}
}

func (l *tagLogger) ChildLogger(ff map[string]interface{}) Logger {
	tags := map[string]interface{}{}
	for k, v := range l.tags {
		tags[k] = v
	}
	for k, v := range ff {
		tags[k] = v
	}
	return &tagLogger{Logger: l.Logger, tags: tags}
}

func TestComponentLogger(t *testing.T) {
	defer SetLogger(nil)

	root := &tagLogger{Logger: newLogrusLogger(logrus.InfoLevel), tags: map[string]interface{}{}}
	SetLogger(root)

	l, ok := ComponentLogger("link", 3).(*tagLogger)
	if !ok {
		t.Fatalf("component logger not derived from the installed one")
	}
	if l.tags[TagComponent] != "link" {
		t.Fatalf("component tag: %v", l.tags[TagComponent])
	}
	if l.tags[TagIface] != uint32(3) {
		t.Fatalf("iface tag: %v", l.tags[TagIface])
	}
}

func TestDefaultLoggerComponent(t *testing.T) {
	l, ok := newLogrusLogger(logrus.WarnLevel).(*logrusLogger)
	if !ok {
		t.Fatalf("default logger type %T", l)
	}
	if l.Entry.Data[TagComponent] != "fsci" {
		t.Fatalf("component tag: %v", l.Entry.Data[TagComponent])
	}
	if l.Entry.Logger.GetLevel() != logrus.WarnLevel {
		t.Fatalf("level %v", l.Entry.Logger.GetLevel())
	}

	c := l.ChildLogger(map[string]interface{}{TagComponent: "host"}).(*logrusLogger)
	if c.Entry.Data[TagComponent] != "host" {
		t.Fatalf("child component tag: %v", c.Entry.Data[TagComponent])
	}
}
