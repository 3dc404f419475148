package redcache

// Random Replacement. The index is a plain set; an overflowing PUT evicts
// a uniformly random member via SRANDMEMBER.

// RR caches every callable in one shared key pair.
func RR(c *Cache) Policy {
	return newPolicy(c, "rr", keyMode{}, indexSet, rrScripts, nil)
}

// RRMultiple gives each callable its own key pair.
func RRMultiple(c *Cache) Policy {
	return newPolicy(c, "rr-m", keyMode{multiple: true}, indexSet, rrScripts, nil)
}

// RRCluster is RR with hash-tagged keys for redis cluster deployments.
func RRCluster(c *Cache) Policy {
	return newPolicy(c, "rr-c", keyMode{cluster: true}, indexSet, rrScripts, nil)
}

// RRClusterMultiple is RRMultiple with hash-tagged keys for redis cluster
// deployments.
func RRClusterMultiple(c *Cache) Policy {
	return newPolicy(c, "rr-cm", keyMode{multiple: true, cluster: true}, indexSet, rrScripts, nil)
}
