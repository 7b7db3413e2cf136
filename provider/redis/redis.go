package redis

import (
	"context"
	"errors"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/entitycache/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

// Redis is safe for concurrent use. On a *goredis.ClusterClient multi-key reads are
// split into single-key commands so keys may live in different slots; prefer hash-tagged
// key layouts there to keep a cache on one slot.
type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
	cluster     bool
}

var _ pr.Provider = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this provider exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	_, cluster := cfg.Client.(*goredis.ClusterClient)
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient, cluster: cluster}, nil
}

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := p.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

func (p *Redis) MGet(ctx context.Context, keys ...string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	if p.cluster {
		return p.pipelinedGet(ctx, keys)
	}
	vals, err := p.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(vals))
	for i, v := range vals {
		switch vv := v.(type) {
		case nil:
		case string:
			out[i] = []byte(vv)
		case []byte:
			out[i] = vv
		}
	}
	return out, nil
}

func (p *Redis) SMembers(ctx context.Context, key string) ([]string, error) {
	return p.rdb.SMembers(ctx, key).Result()
}

func (p *Redis) SRandMember(ctx context.Context, key string) (string, bool, error) {
	m, err := p.rdb.SRandMember(ctx, key).Result()
	if err == goredis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return m, true, nil
}

func (p *Redis) SInter(ctx context.Context, keys ...string) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	if p.cluster && len(keys) > 1 {
		return p.pipelinedInter(ctx, keys)
	}
	return p.rdb.SInter(ctx, keys...).Result()
}

// pipelinedGet is MGET as one GET per key, routed by slot.
func (p *Redis) pipelinedGet(ctx context.Context, keys []string) ([][]byte, error) {
	pipe := p.rdb.Pipeline()
	cmds := make([]*goredis.StringCmd, len(keys))
	for i, k := range keys {
		cmds[i] = pipe.Get(ctx, k)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, goredis.Nil) {
		return nil, err
	}
	out := make([][]byte, len(keys))
	for i, c := range cmds {
		b, err := c.Bytes()
		if errors.Is(err, goredis.Nil) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

// pipelinedInter is SINTER computed in process from one SMEMBERS per key.
func (p *Redis) pipelinedInter(ctx context.Context, keys []string) ([]string, error) {
	pipe := p.rdb.Pipeline()
	cmds := make([]*goredis.StringSliceCmd, len(keys))
	for i, k := range keys {
		cmds[i] = pipe.SMembers(ctx, k)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	return intersect(cmds[0].Val(), cmds[1:]), nil
}

func intersect(first []string, rest []*goredis.StringSliceCmd) []string {
	count := make(map[string]int, len(first))
	for _, m := range first {
		count[m] = 1
	}
	for i, c := range rest {
		for _, m := range c.Val() {
			if count[m] == i+1 {
				count[m]++
			}
		}
	}
	out := make([]string, 0, len(count))
	for _, m := range first {
		if count[m] == len(rest)+1 {
			out = append(out, m)
		}
	}
	return out
}

// ScanPrefix walks the keyspace with SCAN MATCH <prefix>*. On a cluster client every
// master is scanned concurrently, so fn must be safe for concurrent use.
func (p *Redis) ScanPrefix(ctx context.Context, prefix string, count int64, fn func(keys []string) error) error {
	match := escapeGlob(prefix) + "*"
	if cc, ok := p.rdb.(*goredis.ClusterClient); ok {
		return cc.ForEachMaster(ctx, func(ctx context.Context, node *goredis.Client) error {
			return scanNode(ctx, node, match, count, fn)
		})
	}
	return scanNode(ctx, p.rdb, match, count, fn)
}

func scanNode(ctx context.Context, c goredis.Cmdable, match string, count int64, fn func([]string) error) error {
	var cursor uint64
	for {
		keys, next, err := c.Scan(ctx, cursor, match, count).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Pipeline sends the batch without MULTI/EXEC.
func (p *Redis) Pipeline(ctx context.Context, fn func(b pr.Batch)) error {
	pipe := p.rdb.Pipeline()
	b := &batch{ctx: ctx, p: pipe}
	fn(b)
	if b.n == 0 {
		return nil
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Close releases the underlying redis client only when this provider owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

type batch struct {
	ctx context.Context
	p   goredis.Pipeliner
	n   int
}

func (b *batch) Set(key string, value []byte) {
	b.p.Set(b.ctx, key, value, 0)
	b.n++
}

// Del issues one DEL per key; a multi-key DEL fails with CROSSSLOT on a cluster.
func (b *batch) Del(keys ...string) {
	for _, k := range keys {
		b.p.Del(b.ctx, k)
		b.n++
	}
}

func (b *batch) SAdd(key string, members ...string) {
	if len(members) == 0 {
		return
	}
	b.p.SAdd(b.ctx, key, toArgs(members)...)
	b.n++
}

func (b *batch) SRem(key string, members ...string) {
	if len(members) == 0 {
		return
	}
	b.p.SRem(b.ctx, key, toArgs(members)...)
	b.n++
}

func toArgs(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string { return globEscaper.Replace(s) }
