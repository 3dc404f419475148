package redcache

// Most Recently Used. Shares the recency script pair with LRU; the ext
// argument flips the victim to the member with the largest tick. On a cold
// cache filled in order, that is the newest insertion.

var mruExtArgs = []any{"mru"}

// MRU caches every callable in one shared key pair.
func MRU(c *Cache) Policy {
	return newPolicy(c, "mru", keyMode{}, indexSorted, recencyScripts, mruExtArgs)
}

// MRUMultiple gives each callable its own key pair.
func MRUMultiple(c *Cache) Policy {
	return newPolicy(c, "mru-m", keyMode{multiple: true}, indexSorted, recencyScripts, mruExtArgs)
}

// MRUCluster is MRU with hash-tagged keys for redis cluster deployments.
func MRUCluster(c *Cache) Policy {
	return newPolicy(c, "mru-c", keyMode{cluster: true}, indexSorted, recencyScripts, mruExtArgs)
}

// MRUClusterMultiple is MRUMultiple with hash-tagged keys for redis
// cluster deployments.
func MRUClusterMultiple(c *Cache) Policy {
	return newPolicy(c, "mru-cm", keyMode{multiple: true, cluster: true}, indexSorted, recencyScripts, mruExtArgs)
}
