package callcache

import (
	"github.com/unkn0wn-root/callcache/kv"
)

// OpStore is the operation name that Cache.Store is counted and recorded under.
const OpStore = "Cache.Store"

// Options tune a Cache. Only Store is required.
type Options struct {
	// Required
	Store kv.Store

	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // if nil, NopHooks is used

	// NoFlush skips the FLUSHDB New issues by default. Set it when the
	// database holds anything worth keeping, or to resume counters and
	// history from a previous Cache.
	NoFlush bool

	// Addr and DB are reported in errors, hooks and logs; they do not select
	// a server or database. Dial fills them in.
	Addr string
	DB   int

	Prefix string // optional; every key becomes "<prefix>:<key>"

	// Middleware is appended inside the default CallHistory, CountCalls chain
	// of Store, closest to the core write.
	Middleware []Middleware

	// CloseStore makes Close also close Store. Dial sets it.
	CloseStore bool
}
