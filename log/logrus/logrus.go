// Package logrus adapts a *logrus.Entry to entitycache.Logger.
//
// Engine fields map one to one onto logrus.Fields; the "err" field of decode
// failures lands under logrus.ErrorKey.
package logrus

import (
	"github.com/sirupsen/logrus"

	ec "github.com/unkn0wn-root/entitycache"
)

var _ ec.Logger = LogrusLogger{}

type LogrusLogger struct{ E *logrus.Entry }

func (l LogrusLogger) Debug(msg string, f ec.Fields) { l.with(f).Debug(msg) }
func (l LogrusLogger) Info(msg string, f ec.Fields)  { l.with(f).Info(msg) }
func (l LogrusLogger) Warn(msg string, f ec.Fields)  { l.with(f).Warn(msg) }
func (l LogrusLogger) Error(msg string, f ec.Fields) { l.with(f).Error(msg) }

func (l LogrusLogger) with(f ec.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	out := make(logrus.Fields, len(f))
	for k, v := range f {
		if k == "err" {
			k = logrus.ErrorKey
		}
		out[k] = v
	}
	return l.E.WithFields(out)
}
