package redcache

import (
	"context"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// noScriptErr mimics the server's NOSCRIPT reply so that Script.Run falls
// back from EVALSHA to EVAL and hands the fake the full script source.
type noScriptErr string

func (e noScriptErr) Error() string { return string(e) }
func (noScriptErr) RedisError()     {}

// scriptCall records one script invocation for observability assertions.
type scriptCall struct {
	src  string
	keys []string
	args []any
}

// fakeRedis is an in-memory double for the Client interface. It executes
// the library's script pairs by dispatching on script source to Go
// re-implementations of the same semantics, with a deterministic monotonic
// tick in place of the server clock. Expiry is not modeled.
type fakeRedis struct {
	mu     sync.Mutex
	zsets  map[string]map[string]float64
	sets   map[string]map[string]struct{}
	hashes map[string]map[string]string
	tick   float64
	calls  []scriptCall
	gets   int
	puts   int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		zsets:  make(map[string]map[string]float64),
		sets:   make(map[string]map[string]struct{}),
		hashes: make(map[string]map[string]string),
	}
}

var _ Client = (*fakeRedis)(nil)

func (f *fakeRedis) Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, scriptCall{src: script, keys: keys, args: args})
	reply, ok := f.evalScript(script, keys, args)
	if !ok {
		return redis.NewCmdResult(nil, redis.Nil)
	}
	return redis.NewCmdResult(reply, nil)
}

func (f *fakeRedis) EvalSha(ctx context.Context, sha1 string, keys []string, args ...any) *redis.Cmd {
	return redis.NewCmdResult(nil, noScriptErr("NOSCRIPT No matching script"))
}

func (f *fakeRedis) EvalRO(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd {
	return f.Eval(ctx, script, keys, args...)
}

func (f *fakeRedis) EvalShaRO(ctx context.Context, sha1 string, keys []string, args ...any) *redis.Cmd {
	return f.EvalSha(ctx, sha1, keys, args...)
}

func (f *fakeRedis) ScriptExists(ctx context.Context, hashes ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceResult(make([]bool, len(hashes)), nil)
}

func (f *fakeRedis) ScriptLoad(ctx context.Context, script string) *redis.StringCmd {
	return redis.NewStringResult("", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for _, k := range keys {
		_, z := f.zsets[k]
		_, s := f.sets[k]
		_, h := f.hashes[k]
		if z || s || h {
			deleted++
		}
		delete(f.zsets, k)
		delete(f.sets, k)
		delete(f.hashes, k)
	}
	return redis.NewIntResult(deleted, nil)
}

func (f *fakeRedis) Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := strings.TrimSuffix(match, "*")
	var page []string
	seen := make(map[string]struct{})
	collect := func(k string) {
		if _, dup := seen[k]; !dup && strings.HasPrefix(k, prefix) {
			seen[k] = struct{}{}
			page = append(page, k)
		}
	}
	for k := range f.zsets {
		collect(k)
	}
	for k := range f.sets {
		collect(k)
	}
	for k := range f.hashes {
		collect(k)
	}
	return redis.NewScanCmdResult(page, 0, nil)
}

func (f *fakeRedis) ZCard(ctx context.Context, key string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	return redis.NewIntResult(int64(len(f.zsets[key])), nil)
}

func (f *fakeRedis) SCard(ctx context.Context, key string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	return redis.NewIntResult(int64(len(f.sets[key])), nil)
}

// evalScript mirrors the lua pair semantics. The second return is false
// for a nil reply (a GET miss or a PUT, which returns nothing).
func (f *fakeRedis) evalScript(src string, keys []string, args []any) (any, bool) {
	switch src {
	case lruGetSrc:
		f.gets++
		return f.recencyGet(keys, args)
	case lruPutSrc:
		f.puts++
		return f.recencyPut(keys, args)
	case fifoGetSrc:
		f.gets++
		return f.plainGet(keys, args, false)
	case fifoPutSrc:
		f.puts++
		return f.tickPut(keys, args)
	case lfuGetSrc:
		f.gets++
		return f.plainGet(keys, args, true)
	case lfuPutSrc:
		f.puts++
		return f.countPut(keys, args)
	case rrGetSrc:
		f.gets++
		return f.randomGet(keys, args)
	case rrPutSrc:
		f.puts++
		return f.randomPut(keys, args)
	default:
		panic("fakeRedis: unknown script source")
	}
}

func (f *fakeRedis) zset(key string) map[string]float64 {
	z, ok := f.zsets[key]
	if !ok {
		z = make(map[string]float64)
		f.zsets[key] = z
	}
	return z
}

func (f *fakeRedis) set(key string) map[string]struct{} {
	s, ok := f.sets[key]
	if !ok {
		s = make(map[string]struct{})
		f.sets[key] = s
	}
	return s
}

func (f *fakeRedis) hash(key string) map[string]string {
	h, ok := f.hashes[key]
	if !ok {
		h = make(map[string]string)
		f.hashes[key] = h
	}
	return h
}

// recencyGet: miss on absent member, otherwise refresh the tick.
func (f *fakeRedis) recencyGet(keys []string, args []any) (any, bool) {
	hash := argString(args, 1)
	z := f.zset(keys[0])
	if _, ok := z[hash]; !ok {
		return nil, false
	}
	f.tick++
	z[hash] = f.tick
	return f.hash(keys[1])[hash], true
}

// plainGet: miss on absent member; optionally bump the access count.
func (f *fakeRedis) plainGet(keys []string, args []any, bump bool) (any, bool) {
	hash := argString(args, 1)
	z := f.zset(keys[0])
	if _, ok := z[hash]; !ok {
		return nil, false
	}
	if bump {
		z[hash]++
	}
	return f.hash(keys[1])[hash], true
}

func (f *fakeRedis) randomGet(keys []string, args []any) (any, bool) {
	hash := argString(args, 1)
	if _, ok := f.set(keys[0])[hash]; !ok {
		return nil, false
	}
	return f.hash(keys[1])[hash], true
}

func (f *fakeRedis) recencyPut(keys []string, args []any) (any, bool) {
	maxsize := argInt(args, 0)
	hash := argString(args, 2)
	value := argString(args, 3)
	direction := argString(args, 5)
	z := f.zset(keys[0])
	h := f.hash(keys[1])
	if _, member := z[hash]; maxsize > 0 && !member && int64(len(z)) >= maxsize {
		victim := extremeMember(z, direction == "mru")
		delete(z, victim)
		delete(h, victim)
	}
	f.tick++
	z[hash] = f.tick
	h[hash] = value
	return nil, false
}

func (f *fakeRedis) tickPut(keys []string, args []any) (any, bool) {
	maxsize := argInt(args, 0)
	hash := argString(args, 2)
	value := argString(args, 3)
	z := f.zset(keys[0])
	h := f.hash(keys[1])
	if _, member := z[hash]; maxsize > 0 && !member && int64(len(z)) >= maxsize {
		victim := extremeMember(z, false)
		delete(z, victim)
		delete(h, victim)
	}
	f.tick++
	z[hash] = f.tick
	h[hash] = value
	return nil, false
}

func (f *fakeRedis) countPut(keys []string, args []any) (any, bool) {
	maxsize := argInt(args, 0)
	hash := argString(args, 2)
	value := argString(args, 3)
	z := f.zset(keys[0])
	h := f.hash(keys[1])
	if _, member := z[hash]; maxsize > 0 && !member && int64(len(z)) >= maxsize {
		victim := extremeMember(z, false)
		delete(z, victim)
		delete(h, victim)
	}
	z[hash]++
	h[hash] = value
	return nil, false
}

func (f *fakeRedis) randomPut(keys []string, args []any) (any, bool) {
	maxsize := argInt(args, 0)
	hash := argString(args, 2)
	value := argString(args, 3)
	s := f.set(keys[0])
	h := f.hash(keys[1])
	if _, member := s[hash]; maxsize > 0 && !member && int64(len(s)) >= maxsize {
		// Any member will do; map iteration order is random enough here.
		for victim := range s {
			delete(s, victim)
			delete(h, victim)
			break
		}
	}
	s[hash] = struct{}{}
	h[hash] = value
	return nil, false
}

// extremeMember returns the member with the smallest (or, for largest,
// greatest) score, breaking score ties the way ZRANGE does: ascending
// lexicographic member order.
func extremeMember(z map[string]float64, largest bool) string {
	var best string
	first := true
	for member, score := range z {
		if first {
			best, first = member, false
			continue
		}
		bestScore := z[best]
		switch {
		case largest && (score > bestScore || (score == bestScore && member > best)):
			best = member
		case !largest && (score < bestScore || (score == bestScore && member < best)):
			best = member
		}
	}
	return best
}

func argString(args []any, i int) string {
	if i >= len(args) {
		return ""
	}
	switch v := args[i].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func argInt(args []any, i int) int64 {
	if i >= len(args) {
		return 0
	}
	switch v := args[i].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}

// membershipParity reports whether the fingerprints in the index key equal
// the fields of the value key. True for untouched keys as well.
func (f *fakeRedis) membershipParity(indexKey, valueKey string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	members := make(map[string]struct{})
	for m := range f.zsets[indexKey] {
		members[m] = struct{}{}
	}
	for m := range f.sets[indexKey] {
		members[m] = struct{}{}
	}
	fields := f.hashes[valueKey]
	if len(members) != len(fields) {
		return false
	}
	for m := range members {
		if _, ok := fields[m]; !ok {
			return false
		}
	}
	return true
}

// storedValues returns the raw payloads currently held under the value key.
func (f *fakeRedis) storedValues(valueKey string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, v := range f.hashes[valueKey] {
		out = append(out, v)
	}
	return out
}

func (f *fakeRedis) scriptCounts() (gets, puts int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets, f.puts
}
