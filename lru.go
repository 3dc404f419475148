package redcache

// Least Recently Used. A hit refreshes the member's recency tick; an
// overflowing PUT evicts the member with the smallest tick.

var lruExtArgs = []any{"lru"}

// LRU caches every callable in one shared key pair.
func LRU(c *Cache) Policy {
	return newPolicy(c, "lru", keyMode{}, indexSorted, recencyScripts, lruExtArgs)
}

// LRUMultiple gives each callable its own key pair.
func LRUMultiple(c *Cache) Policy {
	return newPolicy(c, "lru-m", keyMode{multiple: true}, indexSorted, recencyScripts, lruExtArgs)
}

// LRUCluster is LRU with hash-tagged keys for redis cluster deployments.
func LRUCluster(c *Cache) Policy {
	return newPolicy(c, "lru-c", keyMode{cluster: true}, indexSorted, recencyScripts, lruExtArgs)
}

// LRUClusterMultiple is LRUMultiple with hash-tagged keys for redis
// cluster deployments.
func LRUClusterMultiple(c *Cache) Policy {
	return newPolicy(c, "lru-cm", keyMode{multiple: true, cluster: true}, indexSorted, recencyScripts, lruExtArgs)
}
