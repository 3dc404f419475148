package redcache

import (
	"embed"

	"github.com/redis/go-redis/v9"
)

// The script library ships inside the module. Each script executes
// atomically on the server: lookup, eviction, and insertion are indivisible
// with respect to other clients. go-redis invokes by digest (EVALSHA) and
// falls back to uploading the text once on NOSCRIPT.
//
//go:embed lua/*.lua
var luaFS embed.FS

// scriptPair is the (GET, PUT) server-resident script pair of one policy.
type scriptPair struct {
	get *redis.Script
	put *redis.Script
}

func mustScript(name string) (string, *redis.Script) {
	src, err := luaFS.ReadFile("lua/" + name)
	if err != nil {
		panic("redcache: missing embedded script " + name + ": " + err.Error())
	}
	return string(src), redis.NewScript(string(src))
}

// Script sources are kept alongside the compiled handles so tests and
// diagnostics can identify scripts by text.
var (
	lruGetSrc, lruGetScript   = mustScript("lru_get.lua")
	lruPutSrc, lruPutScript   = mustScript("lru_put.lua")
	fifoGetSrc, fifoGetScript = mustScript("fifo_get.lua")
	fifoPutSrc, fifoPutScript = mustScript("fifo_put.lua")
	lfuGetSrc, lfuGetScript   = mustScript("lfu_get.lua")
	lfuPutSrc, lfuPutScript   = mustScript("lfu_put.lua")
	rrGetSrc, rrGetScript     = mustScript("rr_get.lua")
	rrPutSrc, rrPutScript     = mustScript("rr_put.lua")
)

// The recency pair serves both LRU and MRU; the ext-args channel carries
// the victim direction.
var (
	recencyScripts = scriptPair{get: lruGetScript, put: lruPutScript}
	fifoScripts    = scriptPair{get: fifoGetScript, put: fifoPutScript}
	lfuScripts     = scriptPair{get: lfuGetScript, put: lfuPutScript}
	rrScripts      = scriptPair{get: rrGetScript, put: rrPutScript}
)
