// Package redcache caches function results in redis with pluggable
// eviction policies.
//
// It wraps pure-ish callables in a cache-aside flow: repeated invocations
// with equal arguments return the previously stored result instead of
// re-executing. A fixed-capacity eviction policy (LRU, MRU, FIFO, LFU, or
// random replacement) bounds the stored entry count and a TTL bounds entry
// age. Lookup, eviction, and insertion happen inside server-resident lua
// scripts, so they are atomic with respect to every other cache client.
//
// # Core Components
//
//   - [Cache]: the orchestrator; owns the policy, serializer, and client
//   - [Policy]: eviction policy binding (keys, fingerprint, script pair)
//   - [PolicyFactory] values: {LRU, MRU, FIFO, LFU, RR} x {shared,
//     per-callable keyspace} x {standalone, cluster}, twenty in total
//   - [Func]: callable identity (qualified name, optional source marker)
//   - [Serializer]: return-value codec; [JSONSerializer] default,
//     [MsgpackSerializer] binary alternative
//   - [Wrap0], [Wrap], [Wrap2]: typed wrappers with the same signature as
//     the wrapped callable
//
// # Quick Start
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	c := redcache.New("geo", redcache.LRU, redcache.Options{
//	    Client:  rdb,
//	    Maxsize: 1024,
//	    TTL:     time.Hour,
//	})
//
//	distance := redcache.Wrap2(c, geo.Distance)
//	d, err := distance(ctx, paris, lyon) // second call with equal args hits redis
//
// # Storage Layout
//
// Every cached callable maps to two sibling keys: an index key (sorted set
// or plain set of fingerprints carrying eviction priority) and a value key
// (hash map from fingerprint to encoded payload). The set of fingerprints
// in the index always equals the set of fields in the value map. Cluster
// keyspace modes wrap the hash-tag portion of the key in braces so both
// siblings route to the same shard.
//
// # Concurrency
//
// A Cache is safe for concurrent use; sharing the underlying go-redis
// client across goroutines is the client's own contract. The cache takes
// no client-side locks and performs no single-flight deduplication: two
// concurrent callers that miss on the same fingerprint both invoke the
// callable and both store, the second store winning. Correctness-critical
// ordering lives entirely in the server's atomic script execution.
//
// # Error Handling
//
// Sentinel errors (use errors.Is):
//
//   - [ErrNoClient]: built with neither client nor factory; first use fails
//   - [ErrNotCallable]: a concrete callable was required and absent
//   - [ErrDetachedPolicy]: policy used without a live owning cache
//   - [ErrDecode]: a stored payload no longer decodes; the callable is NOT
//     silently re-executed
//
// Transport errors from go-redis surface unchanged: the cache is not a
// resilience layer and never falls back to invoking the callable when the
// server is unreachable. NOSCRIPT is the one retried condition, handled
// inside go-redis by re-uploading the script text once. Errors raised by
// the wrapped callable propagate unchanged and nothing is stored.
package redcache
