package redcache

// keyMode selects the keyspace layout: one key pair shared by every
// callable (single) versus one pair per callable (multiple), and whether
// the hash-tag portion is wrapped in braces so a redis cluster routes both
// sibling keys to the same shard.
type keyMode struct {
	multiple bool
	cluster  bool
}

// calcKeys derives the (index, value) key pair for a policy tag.
//
// Layouts:
//
//	single standalone   {prefix}{name}:{tag}:0 / :1
//	single cluster      {prefix}{{name}:{tag}}:0 / :1
//	multiple standalone {prefix}{name}:{tag}:{fullname}#{checksum}:0 / :1
//	multiple cluster    {prefix}{name}:{tag}:{fullname}#{{checksum}}:0 / :1
//
// In the multiple cluster layout only the checksum is brace-wrapped:
// sibling callables spread across shards while each callable's own pair
// co-locates.
func (m keyMode) calcKeys(prefix, name, tag string, f *Func) (indexKey, valueKey string, err error) {
	if !m.multiple {
		var k string
		if m.cluster {
			k = prefix + "{" + name + ":" + tag + "}"
		} else {
			k = prefix + name + ":" + tag
		}
		return k + ":0", k + ":1", nil
	}
	if f == nil {
		return "", "", ErrNotCallable
	}
	checksum := checksumOf(f)
	k := prefix + name + ":" + tag + ":" + f.Name() + "#"
	if m.cluster {
		k += "{" + checksum + "}"
	} else {
		k += checksum
	}
	return k + ":0", k + ":1", nil
}

// purgePattern is the SCAN match expression covering every key pair a
// multiple-keyspace policy may have created.
func (m keyMode) purgePattern(prefix, name, tag string) string {
	return prefix + name + ":" + tag + ":*"
}
