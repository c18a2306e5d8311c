package rdriver

import (
	"embed"

	"github.com/redis/go-redis/v9"
)

//go:embed scripts/*.lua
var scriptFS embed.FS

// scripts holds one redis.Script per TxScript operation. redis.Script.Run
// handles the EVALSHA-then-EVAL-on-NOSCRIPT dispatch itself, and caches the
// digest it resolves - this is the "digest-or-source" behavior the driver
// would otherwise have to implement by hand.
type scripts struct {
	insert           *redis.Script
	update           *redis.Script
	upsert           *redis.Script
	receive          *redis.Script
	popOldest        *redis.Script
	popListOldest    *redis.Script
	dropCollection   *redis.Script
	clearCollection  *redis.Script
	dropList         *redis.Script
	collectionInfo   *redis.Script
	listInfo         *redis.Script
	oldestTime       *redis.Script
	verifyCollection *redis.Script
}

func mustLoadRaw(name string) string {
	src, err := scriptFS.ReadFile("scripts/" + name)
	if err != nil {
		panic("rdriver: missing embedded script " + name + ": " + err.Error())
	}
	return string(src)
}

func mustLoad(name string) *redis.Script {
	return redis.NewScript(mustLoadRaw(name))
}

// mustLoadWithLib prepends the shared Evictor/Guard/invariant-bookkeeping
// helpers to name's source before compiling it. Redis Lua gives every EVAL
// its own chunk - there is no require or cross-script local function
// sharing - so the only way to reuse cc_clean, cc_evict_oldest, and the
// rest across insert/update/upsert/popoldest/poplistoldest/receive is to
// textually include them ahead of each script body.
func mustLoadWithLib(name string) *redis.Script {
	return redis.NewScript(sharedLib + "\n" + mustLoadRaw(name))
}

var sharedLib = mustLoadRaw("lib_txscript.lua")

func newScripts() *scripts {
	return &scripts{
		insert:           mustLoadWithLib("insert.lua"),
		update:           mustLoadWithLib("update.lua"),
		upsert:           mustLoadWithLib("upsert.lua"),
		receive:          mustLoadWithLib("receive.lua"),
		popOldest:        mustLoadWithLib("popoldest.lua"),
		popListOldest:    mustLoadWithLib("poplistoldest.lua"),
		dropCollection:   mustLoad("dropcollection.lua"),
		clearCollection:  mustLoad("clearcollection.lua"),
		dropList:         mustLoad("droplist.lua"),
		collectionInfo:   mustLoad("collectioninfo.lua"),
		listInfo:         mustLoad("listinfo.lua"),
		oldestTime:       mustLoad("oldesttime.lua"),
		verifyCollection: mustLoad("verifycollection.lua"),
	}
}
