// Package sloghooks logs cache hook events through log/slog.
//
// Storage keys are redacted before they are logged: denormalized lookup keys embed
// credential material (API key prefix and hash).
package sloghooks

import (
	"log/slog"
	"sync/atomic"
	"time"

	ec "github.com/unkn0wn-root/entitycache"
	"github.com/unkn0wn-root/entitycache/internal/util"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	DecodeFailedEvery   uint64
	DanglingMemberEvery uint64
	MigratedEvery       uint64
	// Segments of a storage key kept readable by the default redactor; the rest is
	// replaced by a SHA-256 prefix. 0 hashes the whole key.
	KeepSegments int
	// Optional key redactor. Overrides KeepSegments.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	decodeCtr   atomic.Uint64
	danglingCtr atomic.Uint64
	migratedCtr atomic.Uint64
}

var _ ec.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	return util.RedactKey(k, h.opts.KeepSegments)
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Loaded(cache string, entities, partitions int, took time.Duration) {
	if h.l == nil {
		return
	}
	h.l.Info("entitycache.loaded",
		"cache", cache,
		"entities", entities,
		"partitions", partitions,
		"took", took)
}

func (h *Hooks) Cleared(cache string, keys int) {
	if h.l == nil {
		return
	}
	h.l.Debug("entitycache.cleared",
		"cache", cache,
		"keys", keys)
}

func (h *Hooks) DecodeFailed(storageKey string, err error) {
	if h.l == nil || !sample(h.opts.DecodeFailedEvery, &h.decodeCtr) {
		return
	}
	h.l.Warn("entitycache.decode_failed",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) DanglingMember(partitionKey, id string) {
	if h.l == nil || !sample(h.opts.DanglingMemberEvery, &h.danglingCtr) {
		return
	}
	h.l.Warn("entitycache.dangling_member",
		"partition", h.redact(partitionKey),
		"id", id)
}

func (h *Hooks) PartitionMigrated(storageKey string, left, entered int) {
	if h.l == nil || !sample(h.opts.MigratedEvery, &h.migratedCtr) {
		return
	}
	h.l.Debug("entitycache.partition_migrated",
		"key", h.redact(storageKey),
		"left", left,
		"entered", entered)
}
