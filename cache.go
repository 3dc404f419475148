package redcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Defaults applied by New when the corresponding option is zero.
const (
	DefaultMaxsize = 1024
	DefaultTTL     = time.Hour
	DefaultPrefix  = "func-cache:"
)

const tracerName = "github.com/tanbro/redcache"

// Client is the surface of a go-redis client the cache requires. Both
// *redis.Client and *redis.ClusterClient satisfy it, as does any
// redis.UniversalClient.
type Client interface {
	redis.Scripter
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	ZCard(ctx context.Context, key string) *redis.IntCmd
	SCard(ctx context.Context, key string) *redis.IntCmd
}

// Options configures a Cache. The zero value of each field selects the
// documented default.
type Options struct {
	// Client is an established connection handle. Exactly one of Client
	// and ClientFactory should be set; with neither, operations fail with
	// ErrNoClient on first use.
	Client Client

	// ClientFactory produces a client on demand. It is invoked on every
	// client access, so it may hand out rotating or lazily dialed
	// connections.
	ClientFactory func() Client

	// Maxsize caps the stored entry count. Zero selects DefaultMaxsize;
	// a negative value means unbounded.
	Maxsize int

	// TTL bounds the age of stored entries. Zero selects DefaultTTL; a
	// negative value means no expiry is applied. Sub-second precision is
	// truncated.
	TTL time.Duration

	// Prefix namespaces every key. Empty selects DefaultPrefix.
	Prefix string

	// Serializer encodes and decodes user return values. Nil selects
	// JSONSerializer.
	Serializer Serializer

	// Hash selects the fingerprint digest. Nil selects MD5.
	Hash HashFactory

	// ArgsMarshal serializes arguments for fingerprinting. Nil selects
	// canonical JSON with sorted map keys.
	ArgsMarshal ArgsMarshalFunc

	// Logger receives debug-level operational logs. Nil discards.
	Logger logrus.FieldLogger

	// TracerProvider overrides the global OpenTelemetry provider.
	TracerProvider trace.TracerProvider
}

// Cache wraps user callables in a cache-aside flow backed by a redis
// server. All correctness-critical ordering is delegated to the server's
// atomic script execution; the cache adds no client-side locking and no
// single-flight deduplication: two concurrent callers with the same
// fingerprint may both miss, both invoke the callable, and both PUT, the
// second PUT overwriting the first. A Cache is safe for concurrent use.
type Cache struct {
	name          string
	prefix        string
	maxsize       int
	ttl           time.Duration
	serializer    Serializer
	fingerprinter fingerprinter
	logger        logrus.FieldLogger
	tracer        trace.Tracer

	client        Client
	clientFactory func() Client

	policyFactory PolicyFactory
	policyOnce    sync.Once
	policy        Policy
}

// New builds a cache named name, bound to the eviction policy produced by
// factory. The policy instance itself is created lazily on first use.
func New(name string, factory PolicyFactory, opts Options) *Cache {
	if factory == nil {
		panic("redcache: nil policy factory")
	}
	c := &Cache{
		name:          name,
		prefix:        opts.Prefix,
		maxsize:       opts.Maxsize,
		ttl:           opts.TTL,
		serializer:    opts.Serializer,
		fingerprinter: newFingerprinter(opts.Hash, opts.ArgsMarshal),
		client:        opts.Client,
		clientFactory: opts.ClientFactory,
		policyFactory: factory,
	}
	if c.prefix == "" {
		c.prefix = DefaultPrefix
	}
	switch {
	case c.maxsize == 0:
		c.maxsize = DefaultMaxsize
	case c.maxsize < 0:
		c.maxsize = 0 // unbounded
	}
	switch {
	case c.ttl == 0:
		c.ttl = DefaultTTL
	case c.ttl < 0:
		c.ttl = 0 // no expiry
	}
	if c.serializer == nil {
		c.serializer = JSONSerializer{}
	}
	c.logger = opts.Logger
	if c.logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		c.logger = discard
	}
	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	c.tracer = tp.Tracer(tracerName)
	return c
}

// Name returns the cache label used in key construction.
func (c *Cache) Name() string { return c.name }

// Prefix returns the key prefix.
func (c *Cache) Prefix() string { return c.prefix }

// Maxsize returns the entry cap; zero means unbounded.
func (c *Cache) Maxsize() int { return c.maxsize }

// TTL returns the entry time-to-live; zero means no expiry.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Policy returns the bound policy instance, creating it on first access.
func (c *Cache) Policy() Policy {
	c.policyOnce.Do(func() {
		c.policy = c.policyFactory(c)
	})
	return c.policy
}

// Client resolves the redis client handle. A factory is invoked on every
// call.
func (c *Cache) Client() (Client, error) {
	if c.client != nil {
		return c.client, nil
	}
	if c.clientFactory != nil {
		return c.clientFactory(), nil
	}
	return nil, ErrNoClient
}

// Exec runs the cache-aside flow around f: on a hit the decoded stored
// value is returned and f is never invoked; on a miss f runs, its result
// is stored, and the original (not re-decoded) value is returned. Errors
// from f propagate unchanged and nothing is stored. options is an opaque
// per-call mapping forwarded to the scripts.
//
// Cancellation of ctx takes effect at each script round trip and inside f
// if f observes it; aborting between GET and PUT leaves the store
// untouched.
func (c *Cache) Exec(ctx context.Context, f *Func, args []any, kwds map[string]any, options map[string]any) (any, error) {
	return c.exec(ctx, f, args, kwds, options, c.decodeAny)
}

// decodeAny decodes a hit payload into a dynamically typed value.
func (c *Cache) decodeAny(data []byte) (any, error) {
	var v any
	if err := c.serializer.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// exec is the single orchestrator under Exec and the typed wrappers; only
// the hit decoding differs between them.
func (c *Cache) exec(ctx context.Context, f *Func, args []any, kwds map[string]any, options map[string]any, decode func([]byte) (any, error)) (any, error) {
	if f == nil || f.call == nil {
		return nil, ErrNotCallable
	}
	p := c.Policy()
	getScript, putScript := p.Scripts()
	indexKey, valueKey, err := p.CalcKeys(f, args, kwds)
	if err != nil {
		return nil, err
	}
	fp, err := p.CalcHash(f, args, kwds)
	if err != nil {
		return nil, err
	}
	extArgs := p.CalcExtArgs(f, args, kwds)

	ctx, span := c.tracer.Start(ctx, "redcache.exec",
		trace.WithAttributes(
			attribute.String("cache.name", c.name),
			attribute.String("cache.policy", p.Tag()),
			attribute.String("cache.func", f.Name()),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	payload, err := c.execGetScript(ctx, getScript, indexKey, valueKey, fp, options, extArgs)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return nil, err
	}
	if payload != nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		v, err := decode(payload)
		if err != nil {
			err = fmt.Errorf("%w: %v", ErrDecode, err)
			span.SetStatus(codes.Error, err.Error())
			span.RecordError(err)
			return nil, err
		}
		return v, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	v, err := f.Call(ctx, args, kwds)
	if err != nil {
		// User callable failure: propagate unchanged, nothing stored.
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return nil, err
	}
	data, err := c.serializer.Marshal(v)
	if err != nil {
		err = fmt.Errorf("redcache: serialize return value: %w", err)
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return nil, err
	}
	if err := c.execPutScript(ctx, putScript, indexKey, valueKey, fp, data, options, extArgs); err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return nil, err
	}
	return v, nil
}

// encodeOptions encodes the opaque per-call options mapping for the
// scripts' reserved argument channel.
func encodeOptions(options map[string]any) ([]byte, error) {
	if options == nil {
		options = map[string]any{}
	}
	b, err := canonicalize(options)
	if err != nil {
		return nil, fmt.Errorf("redcache: serialize options: %w", err)
	}
	return b, nil
}

// execGetScript runs a policy GET script. Returns nil without error on a
// miss.
func (c *Cache) execGetScript(ctx context.Context, script *redis.Script, indexKey, valueKey, fp string, options map[string]any, extArgs []any) ([]byte, error) {
	rc, err := c.Client()
	if err != nil {
		return nil, err
	}
	encoded, err := encodeOptions(options)
	if err != nil {
		return nil, err
	}
	argv := make([]any, 0, 3+len(extArgs))
	argv = append(argv, c.ttlSeconds(), fp, encoded)
	argv = append(argv, extArgs...)

	res, err := script.Run(ctx, rc, []string{indexKey, valueKey}, argv...).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.logger.WithField("key", indexKey).WithField("hash", fp).Debug("cache get")
	return payloadBytes(res)
}

// execPutScript runs a policy PUT script.
func (c *Cache) execPutScript(ctx context.Context, script *redis.Script, indexKey, valueKey, fp string, value []byte, options map[string]any, extArgs []any) error {
	rc, err := c.Client()
	if err != nil {
		return err
	}
	encoded, err := encodeOptions(options)
	if err != nil {
		return err
	}
	argv := make([]any, 0, 5+len(extArgs))
	argv = append(argv, int64(c.maxsize), c.ttlSeconds(), fp, value, encoded)
	argv = append(argv, extArgs...)

	if err := script.Run(ctx, rc, []string{indexKey, valueKey}, argv...).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	c.logger.WithField("key", indexKey).WithField("hash", fp).Debug("cache put")
	return nil
}

func (c *Cache) ttlSeconds() int64 {
	return int64(c.ttl / time.Second)
}

// payloadBytes normalizes a script reply into the stored payload bytes.
func payloadBytes(res any) ([]byte, error) {
	switch v := res.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("redcache: unexpected script reply of type %T", res)
	}
}
