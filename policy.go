package redcache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// PolicyFactory builds a policy bound to a cache. The cache owns its
// policy; the policy holds a non-owning back reference to the cache for
// prefix, name, size and ttl settings and for the client handle.
type PolicyFactory func(c *Cache) Policy

// Policy is an eviction policy binding: key derivation, fingerprinting,
// the server-side script pair, and maintenance operations.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - CalcKeys/CalcHash: deterministic for equal inputs within one process.
type Policy interface {
	// Tag is the short policy identifier embedded in keys, e.g. "lru-cm".
	Tag() string

	// CalcKeys derives the (index, value) server-side key pair. The
	// callable may be nil for single keyspace modes.
	CalcKeys(f *Func, args []any, kwds map[string]any) (indexKey, valueKey string, err error)

	// CalcHash derives the invocation fingerprint.
	CalcHash(f *Func, args []any, kwds map[string]any) (string, error)

	// CalcExtArgs returns policy-specific extra script arguments appended
	// after the common argument vector. May be nil.
	CalcExtArgs(f *Func, args []any, kwds map[string]any) []any

	// Scripts returns the (GET, PUT) script pair.
	Scripts() (get, put *redis.Script)

	// Purge deletes every key pair the policy created and returns the
	// number of keys removed.
	Purge(ctx context.Context) (int64, error)

	// Size reports the number of cached entries. The callable may be nil
	// for single keyspace modes.
	Size(ctx context.Context, f *Func) (int64, error)
}

// indexKind is the container type of the index key.
type indexKind int

const (
	indexSorted indexKind = iota // sorted set scored by eviction priority
	indexSet                     // plain set, random replacement only
)

// basePolicy implements Policy as a composition of a key strategy, a
// script pair, an index container kind, and fixed ext args. All twenty
// named policies are instances of it.
type basePolicy struct {
	cache   *Cache
	tag     string
	mode    keyMode
	index   indexKind
	scripts scriptPair
	extArgs []any
}

func newPolicy(c *Cache, tag string, mode keyMode, index indexKind, scripts scriptPair, extArgs []any) *basePolicy {
	return &basePolicy{
		cache:   c,
		tag:     tag,
		mode:    mode,
		index:   index,
		scripts: scripts,
		extArgs: extArgs,
	}
}

// attached resolves the back reference, guarding against use of a policy
// that outlived its cache.
func (p *basePolicy) attached() (*Cache, error) {
	if p.cache == nil {
		return nil, ErrDetachedPolicy
	}
	return p.cache, nil
}

func (p *basePolicy) Tag() string { return p.tag }

func (p *basePolicy) CalcKeys(f *Func, _ []any, _ map[string]any) (string, string, error) {
	c, err := p.attached()
	if err != nil {
		return "", "", err
	}
	return p.mode.calcKeys(c.prefix, c.name, p.tag, f)
}

func (p *basePolicy) CalcHash(f *Func, args []any, kwds map[string]any) (string, error) {
	c, err := p.attached()
	if err != nil {
		return "", err
	}
	return c.fingerprinter.fingerprint(f, args, kwds)
}

func (p *basePolicy) CalcExtArgs(_ *Func, _ []any, _ map[string]any) []any {
	return p.extArgs
}

func (p *basePolicy) Scripts() (*redis.Script, *redis.Script) {
	return p.scripts.get, p.scripts.put
}

// Purge deletes the policy's keys directly, bypassing the script library.
// Single keyspaces delete the one pair; multiple keyspaces sweep the
// policy namespace with SCAN.
func (p *basePolicy) Purge(ctx context.Context) (int64, error) {
	c, err := p.attached()
	if err != nil {
		return 0, err
	}
	rc, err := c.Client()
	if err != nil {
		return 0, err
	}
	if !p.mode.multiple {
		indexKey, valueKey, err := p.mode.calcKeys(c.prefix, c.name, p.tag, nil)
		if err != nil {
			return 0, err
		}
		deleted, err := rc.Del(ctx, indexKey, valueKey).Result()
		if err != nil {
			return 0, err
		}
		c.logger.WithField("policy", p.tag).WithField("deleted", deleted).Debug("purged cache keys")
		return deleted, nil
	}

	pattern := p.mode.purgePattern(c.prefix, c.name, p.tag)
	var deleted int64
	var cursor uint64
	for {
		page, next, err := rc.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return deleted, err
		}
		if len(page) > 0 {
			n, err := rc.Del(ctx, page...).Result()
			if err != nil {
				return deleted, err
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	c.logger.WithField("policy", p.tag).WithField("deleted", deleted).Debug("purged cache keys")
	return deleted, nil
}

// Size reports the cardinality of the index key.
func (p *basePolicy) Size(ctx context.Context, f *Func) (int64, error) {
	c, err := p.attached()
	if err != nil {
		return 0, err
	}
	rc, err := c.Client()
	if err != nil {
		return 0, err
	}
	indexKey, _, err := p.mode.calcKeys(c.prefix, c.name, p.tag, f)
	if err != nil {
		return 0, err
	}
	if p.index == indexSet {
		return rc.SCard(ctx, indexKey).Result()
	}
	return rc.ZCard(ctx, indexKey).Result()
}

var _ Policy = (*basePolicy)(nil)
