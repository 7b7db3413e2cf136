package sloghooks

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newBuffered(opts Options) (*Hooks, *bytes.Buffer) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(l, opts), &buf
}

func TestRedactsStorageKeys(t *testing.T) {
	h, buf := newBuffered(Options{})
	secret := "apikey:lookup:ab12cd34:9f86d081884c7d65"

	h.DecodeFailed(secret, errors.New("bad payload"))
	h.PartitionMigrated(secret, 1, 1)
	h.DanglingMember(secret, "7")

	out := buf.String()
	if strings.Contains(out, "ab12cd34") || strings.Contains(out, "9f86d081") {
		t.Fatalf("key material leaked: %s", out)
	}
	if n := strings.Count(out, h.redact(secret)); n != 3 {
		t.Fatalf("redacted key appears %d times: %s", n, out)
	}
}

func TestCustomRedactor(t *testing.T) {
	h, buf := newBuffered(Options{Redact: func(string) string { return "<redacted>" }})
	h.DecodeFailed("verb:id:1", errors.New("x"))
	if !strings.Contains(buf.String(), `"key":"<redacted>"`) {
		t.Fatalf("custom redactor not used: %s", buf.String())
	}
}

func TestSampling(t *testing.T) {
	h, buf := newBuffered(Options{DecodeFailedEvery: 5})
	for i := 0; i < 20; i++ {
		h.DecodeFailed("k", errors.New("x"))
	}
	if n := strings.Count(buf.String(), "entitycache.decode_failed"); n != 4 {
		t.Fatalf("logged %d decode failures, want 4", n)
	}
}

func TestLoadedAndCleared(t *testing.T) {
	h, buf := newBuffered(Options{})
	h.Cleared("test:verb", 12)
	h.Loaded("test:verb", 3, 5, 10*time.Millisecond)
	out := buf.String()
	if !strings.Contains(out, `"cache":"test:verb"`) || !strings.Contains(out, `"partitions":5`) {
		t.Fatalf("output: %s", out)
	}
}

func TestNilLoggerIsSilent(t *testing.T) {
	h := New(nil, Options{})
	h.Loaded("c", 1, 1, 0)
	h.Cleared("c", 1)
	h.DecodeFailed("k", nil)
	h.DanglingMember("p", "1")
	h.PartitionMigrated("k", 1, 1)
}

func TestKeepSegments(t *testing.T) {
	h, buf := newBuffered(Options{KeepSegments: 2})
	h.DecodeFailed("apikey:lookup:ab12cd34:h1", errors.New("x"))
	out := buf.String()
	if !strings.Contains(out, `"key":"apikey:lookup:#`) || strings.Contains(out, "ab12cd34") {
		t.Fatalf("output: %s", out)
	}
}
