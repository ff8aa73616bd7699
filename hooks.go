package callcache

// Hooks are lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking; they run inline on every call.
type Hooks interface {
	// The active database was flushed during construction.
	Flushed(db int)

	// An instrumented call committed; out is the value recorded as its output.
	Called(op, out string)

	// A read found no value for key.
	Miss(key string)

	// The write batch for an instrumented call failed; nothing was applied.
	TxFailed(op string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Flushed(int)            {}
func (NopHooks) Called(string, string)  {}
func (NopHooks) Miss(string)            {}
func (NopHooks) TxFailed(string, error) {}
