package redcache

import "errors"

// Sentinel errors for cache operations.
var (
	// ErrNoClient means the cache was built with neither a client nor a
	// client factory. It surfaces on first use, not at construction.
	ErrNoClient = errors.New("redcache: no redis client or factory provided")

	// ErrNotCallable means an operation that needs a concrete callable
	// (fingerprinting, multiple-keyspace key derivation, execution) was
	// given none.
	ErrNotCallable = errors.New("redcache: a callable is required")

	// ErrDetachedPolicy means a policy was used without a live back
	// reference to its owning cache.
	ErrDetachedPolicy = errors.New("redcache: policy is not attached to a cache")

	// ErrDecode means a cached payload could not be decoded. The cache
	// does not silently re-execute the callable in this case.
	ErrDecode = errors.New("redcache: cached payload cannot be decoded")
)
