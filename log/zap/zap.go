// Package zap adapts a *zap.Logger to entitycache.Logger.
//
// Engine fields become zap.Any fields sorted by name, e.g. a load logs
// cache="test:verb" cleared=12 entities=3 generation=4 partitions=5 took=1.2ms.
package zap

import (
	"sort"

	"go.uber.org/zap"

	ec "github.com/unkn0wn-root/entitycache"
)

var _ ec.Logger = ZapLogger{}

type ZapLogger struct{ L *zap.Logger }

func (z ZapLogger) Debug(msg string, f ec.Fields) { z.L.Debug(msg, zf(f)...) }
func (z ZapLogger) Info(msg string, f ec.Fields)  { z.L.Info(msg, zf(f)...) }
func (z ZapLogger) Warn(msg string, f ec.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z ZapLogger) Error(msg string, f ec.Fields) { z.L.Error(msg, zf(f)...) }

func zf(f ec.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	names := make([]string, 0, len(f))
	for k := range f {
		names = append(names, k)
	}
	sort.Strings(names)
	out := make([]zap.Field, 0, len(f))
	for _, k := range names {
		if err, ok := f[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
