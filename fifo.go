package redcache

// First In First Out. Hits never reorder members; an overflowing PUT
// evicts the oldest insertion.

// FIFO caches every callable in one shared key pair.
func FIFO(c *Cache) Policy {
	return newPolicy(c, "fifo", keyMode{}, indexSorted, fifoScripts, nil)
}

// FIFOMultiple gives each callable its own key pair.
func FIFOMultiple(c *Cache) Policy {
	return newPolicy(c, "fifo-m", keyMode{multiple: true}, indexSorted, fifoScripts, nil)
}

// FIFOCluster is FIFO with hash-tagged keys for redis cluster deployments.
func FIFOCluster(c *Cache) Policy {
	return newPolicy(c, "fifo-c", keyMode{cluster: true}, indexSorted, fifoScripts, nil)
}

// FIFOClusterMultiple is FIFOMultiple with hash-tagged keys for redis
// cluster deployments.
func FIFOClusterMultiple(c *Cache) Policy {
	return newPolicy(c, "fifo-cm", keyMode{multiple: true, cluster: true}, indexSorted, fifoScripts, nil)
}
