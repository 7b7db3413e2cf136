// Package memory is an in-process Provider backed by Go maps.
// It suits tests and single-process deployments; it is not shared across processes.
package memory

import (
	"context"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"

	pr "github.com/unkn0wn-root/entitycache/provider"
)

type Provider struct {
	mu     sync.RWMutex
	values map[string][]byte
	sets   map[string]map[string]struct{}
}

var _ pr.Provider = (*Provider)(nil)

func New() *Provider {
	return &Provider{
		values: make(map[string][]byte),
		sets:   make(map[string]map[string]struct{}),
	}
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[key]
	if !ok {
		return nil, false, nil
	}
	return clone(v), true, nil
}

func (p *Provider) MGet(_ context.Context, keys ...string) ([][]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([][]byte, len(keys))
	for i, k := range keys {
		if v, ok := p.values[k]; ok {
			out[i] = clone(v)
		}
	}
	return out, nil
}

func (p *Provider) SMembers(_ context.Context, key string) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return members(p.sets[key]), nil
}

func (p *Provider) SRandMember(_ context.Context, key string) (string, bool, error) {
	p.mu.RLock()
	ms := members(p.sets[key])
	p.mu.RUnlock()
	if len(ms) == 0 {
		return "", false, nil
	}
	return ms[rand.IntN(len(ms))], true, nil
}

func (p *Provider) SInter(_ context.Context, keys ...string) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []string
	for m := range p.sets[keys[0]] {
		in := true
		for _, k := range keys[1:] {
			if _, ok := p.sets[k][m]; !ok {
				in = false
				break
			}
		}
		if in {
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ScanPrefix snapshots matching keys under the read lock, then pages through them
// without holding it, so fn may issue further commands.
func (p *Provider) ScanPrefix(ctx context.Context, prefix string, count int64, fn func(keys []string) error) error {
	if count <= 0 {
		count = 10
	}
	p.mu.RLock()
	var keys []string
	for k := range p.values {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	for k := range p.sets {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	p.mu.RUnlock()
	sort.Strings(keys)

	for len(keys) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := min(int(count), len(keys))
		if err := fn(keys[:n]); err != nil {
			return err
		}
		keys = keys[n:]
	}
	return nil
}

// Pipeline applies the batch under one write lock once fn returns.
func (p *Provider) Pipeline(ctx context.Context, fn func(b pr.Batch)) error {
	b := &batch{}
	fn(b)
	if len(b.ops) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, op := range b.ops {
		op(p)
	}
	return nil
}

func (p *Provider) Close(context.Context) error { return nil }

// Snapshot returns a deep copy of every plain value and set (members sorted).
func (p *Provider) Snapshot() (map[string][]byte, map[string][]string) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	vals := make(map[string][]byte, len(p.values))
	for k, v := range p.values {
		vals[k] = clone(v)
	}
	sets := make(map[string][]string, len(p.sets))
	for k, s := range p.sets {
		sets[k] = members(s)
	}
	return vals, sets
}

// Len is the number of keys currently stored.
func (p *Provider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.values) + len(p.sets)
}

type batch struct {
	ops []func(*Provider)
}

func (b *batch) Set(key string, value []byte) {
	v := clone(value)
	b.ops = append(b.ops, func(p *Provider) {
		delete(p.sets, key)
		p.values[key] = v
	})
}

func (b *batch) Del(keys ...string) {
	ks := append([]string(nil), keys...)
	b.ops = append(b.ops, func(p *Provider) {
		for _, k := range ks {
			delete(p.values, k)
			delete(p.sets, k)
		}
	})
}

func (b *batch) SAdd(key string, ms ...string) {
	if len(ms) == 0 {
		return
	}
	cp := append([]string(nil), ms...)
	b.ops = append(b.ops, func(p *Provider) {
		delete(p.values, key)
		s, ok := p.sets[key]
		if !ok {
			s = make(map[string]struct{}, len(cp))
			p.sets[key] = s
		}
		for _, m := range cp {
			s[m] = struct{}{}
		}
	})
}

func (b *batch) SRem(key string, ms ...string) {
	if len(ms) == 0 {
		return
	}
	cp := append([]string(nil), ms...)
	b.ops = append(b.ops, func(p *Provider) {
		s, ok := p.sets[key]
		if !ok {
			return
		}
		for _, m := range cp {
			delete(s, m)
		}
		// redis drops empty sets
		if len(s) == 0 {
			delete(p.sets, key)
		}
	})
}

func members(s map[string]struct{}) []string {
	out := make([]string, 0, len(s))
	for m := range s {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
