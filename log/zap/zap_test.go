package zap

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	ec "github.com/unkn0wn-root/entitycache"
)

var _ ec.Logger = ZapLogger{}

func TestZapLoggerLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := ZapLogger{L: zap.New(core)}

	l.Debug("d", nil)
	l.Info("cache loaded", ec.Fields{"cache": "verb", "entities": 3})
	l.Warn("w", ec.Fields{})
	l.Error("e", ec.Fields{"err": "boom"})

	all := logs.All()
	if len(all) != 4 {
		t.Fatalf("entries = %d, want 4", len(all))
	}
	want := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range all {
		if e.Level != want[i] {
			t.Fatalf("entry %d level %v, want %v", i, e.Level, want[i])
		}
	}
	ctx := all[1].ContextMap()
	if ctx["cache"] != "verb" || ctx["entities"] != int64(3) {
		t.Fatalf("fields = %v", ctx)
	}
	if len(all[0].Context) != 0 {
		t.Fatalf("nil fields should log no context")
	}
}

func TestZapLoggerSortsFieldsAndNamesErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := ZapLogger{L: zap.New(core)}

	l.Warn("stored value failed to decode", ec.Fields{"key": "verb:id:1", "err": errors.New("bad json"), "cache": "verb"})

	e := logs.All()[0]
	var keys []string
	for _, f := range e.Context {
		keys = append(keys, f.Key)
	}
	if strings.Join(keys, ",") != "cache,err,key" {
		t.Fatalf("field order = %v", keys)
	}
	if e.Context[1].Type != zapcore.ErrorType {
		t.Fatalf("err field type = %v, want ErrorType", e.Context[1].Type)
	}
}
