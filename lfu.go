package redcache

// Least Frequently Used. Scores count accesses; an overflowing PUT evicts
// the member with the lowest count, ties broken arbitrarily.

// LFU caches every callable in one shared key pair.
func LFU(c *Cache) Policy {
	return newPolicy(c, "lfu", keyMode{}, indexSorted, lfuScripts, nil)
}

// LFUMultiple gives each callable its own key pair.
func LFUMultiple(c *Cache) Policy {
	return newPolicy(c, "lfu-m", keyMode{multiple: true}, indexSorted, lfuScripts, nil)
}

// LFUCluster is LFU with hash-tagged keys for redis cluster deployments.
func LFUCluster(c *Cache) Policy {
	return newPolicy(c, "lfu-c", keyMode{cluster: true}, indexSorted, lfuScripts, nil)
}

// LFUClusterMultiple is LFUMultiple with hash-tagged keys for redis
// cluster deployments.
func LFUClusterMultiple(c *Cache) Policy {
	return newPolicy(c, "lfu-cm", keyMode{multiple: true, cluster: true}, indexSorted, lfuScripts, nil)
}
