// Package callcache stores typed values in Redis under random UUID keys and
// records, for every instrumented call, how many times it ran and what went
// in and came out.
//
// Components:
//   - kv.Store: the key-value collaborator (kv/redis for Redis, kv/memory in-process).
//   - Value: text, binary, integer or float, each with a fixed literal stored form.
//   - Middleware: CountCalls and CallHistory wrap an operation's core write.
//   - codec: decoders for typed reads (GetInt, GetStr, GetFloat, GetAs).
//
// Keys (optionally under "<prefix>:"):
//
//	<uuid>                  stored values
//	Cache.Store             call counter
//	Cache.Store:inputs      rendered arguments, one per call
//	Cache.Store:outputs     returned keys, one per call
//
// New flushes the active database unless Options.NoFlush is set. That makes a
// fresh Cache behave like a clean test fixture; do not point it at a shared DB.
//
//	c, _ := callcache.New(ctx, callcache.Options{Store: store})
//	key, _ := c.Store(ctx, callcache.Int(42))
//	n, ok, _ := c.GetInt(ctx, key) // 42, true
//	r, _ := c.Replay(ctx, callcache.OpStore)
//	fmt.Print(r)
package callcache
