//go:build go1.21

// Package slog adapts a *slog.Logger to entitycache.Logger.
//
// Engine fields become attributes sorted by name, grouped under "entitycache" when
// Group is set, e.g. {"msg":"cache loaded","entitycache":{"cache":"test:verb",...}}.
package slog

import (
	"context"
	stdslog "log/slog"
	"sort"

	ec "github.com/unkn0wn-root/entitycache"
)

var _ ec.Logger = Logger{}

type Logger struct {
	L     *stdslog.Logger
	Group string // optional attribute group for engine fields
}

func (s Logger) Debug(msg string, f ec.Fields) { s.log(stdslog.LevelDebug, msg, f) }
func (s Logger) Info(msg string, f ec.Fields)  { s.log(stdslog.LevelInfo, msg, f) }
func (s Logger) Warn(msg string, f ec.Fields)  { s.log(stdslog.LevelWarn, msg, f) }
func (s Logger) Error(msg string, f ec.Fields) { s.log(stdslog.LevelError, msg, f) }

func (s Logger) log(lvl stdslog.Level, msg string, f ec.Fields) {
	ctx := context.Background()
	if !s.L.Enabled(ctx, lvl) {
		return
	}
	as := attrs(f)
	if s.Group != "" && len(as) > 0 {
		args := make([]any, len(as))
		for i, a := range as {
			args[i] = a
		}
		as = []stdslog.Attr{stdslog.Group(s.Group, args...)}
	}
	s.L.LogAttrs(ctx, lvl, msg, as...)
}

func attrs(f ec.Fields) []stdslog.Attr {
	if len(f) == 0 {
		return nil
	}
	names := make([]string, 0, len(f))
	for k := range f {
		names = append(names, k)
	}
	sort.Strings(names)
	out := make([]stdslog.Attr, 0, len(f))
	for _, k := range names {
		out = append(out, stdslog.Any(k, f[k]))
	}
	return out
}
