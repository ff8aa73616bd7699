package callcache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/callcache/codec"
	"github.com/unkn0wn-root/callcache/config"
	"github.com/unkn0wn-root/callcache/internal/keys"
	"github.com/unkn0wn-root/callcache/kv"
	kvredis "github.com/unkn0wn-root/callcache/kv/redis"
)

// Cache stores values under fresh UUID keys and instruments Store with a call
// counter and call history. Safe for concurrent use when its kv.Store is.
type Cache struct {
	store      kv.Store
	keys       keys.Keys
	log        Logger
	hooks      Hooks
	addr       string
	db         int
	closeStore bool

	newKey  func() string
	storeFn Invocation
}

// New connects to opts.Store and, unless opts.NoFlush is set, flushes its
// active database. An unreachable store yields *ConnectionError.
func New(ctx context.Context, opts Options) (*Cache, error) {
	if opts.Store == nil {
		return nil, ErrNilStore
	}

	c := &Cache{
		store:      opts.Store,
		keys:       keys.New(opts.Prefix),
		addr:       opts.Addr,
		db:         opts.DB,
		closeStore: opts.CloseStore,
		newKey:     uuid.NewString,
	}
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})

	if err := c.store.Ping(ctx); err != nil {
		return nil, &ConnectionError{Addr: opts.Addr, Err: err}
	}

	if !opts.NoFlush {
		if err := c.store.FlushDB(ctx); err != nil {
			return nil, fmt.Errorf("callcache: flush db %d: %w", c.db, err)
		}
		c.hooks.Flushed(c.db)
		c.log.Info("flushed active database", Fields{"addr": c.addr, "db": c.db})
	}

	mws := make([]Middleware, 0, 2+len(opts.Middleware))
	mws = append(mws, CallHistory, CountCalls)
	mws = append(mws, opts.Middleware...)
	c.storeFn = Chain(c, OpStore, c.storeCore, mws...)

	return c, nil
}

// Dial builds a go-redis client from cfg, owns it, and passes it to New.
// opts.Store is ignored.
func Dial(ctx context.Context, cfg config.RedisConfig, opts Options) (*Cache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	store, err := kvredis.New(kvredis.Config{Client: client, CloseClient: true})
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	opts.Store = store
	opts.Addr = cfg.Addr
	opts.DB = cfg.DB
	opts.CloseStore = true

	c, err := New(ctx, opts)
	if err != nil {
		_ = store.Close(ctx)
		return nil, err
	}
	return c, nil
}

// Close closes the store if the cache owns it.
func (c *Cache) Close(ctx context.Context) error {
	if c.closeStore && c.store != nil {
		return c.store.Close(ctx)
	}
	return nil
}

// Key places name under the cache's prefix. Middleware writing its own keys
// should go through it.
func (c *Cache) Key(name string) string { return c.keys.Value(name) }

// Store writes v under a new random key and returns that key.
// Counter increment, input record, value write and output record commit as
// one batch; if any part fails none of them land.
func (c *Cache) Store(ctx context.Context, v Value) (string, error) {
	return c.call(ctx, OpStore, c.storeFn, []Value{v})
}

// StoreAny converts x with ValueOf and stores it.
func (c *Cache) StoreAny(ctx context.Context, x any) (string, error) {
	v, err := ValueOf(x)
	if err != nil {
		return "", err
	}
	return c.Store(ctx, v)
}

// StoreEncoded encodes v and stores the payload as a binary Value.
func StoreEncoded[V any](ctx context.Context, c *Cache, v V, enc codec.Encoder[V]) (string, error) {
	b, err := enc.Encode(v)
	if err != nil {
		return "", &SerializationError{Type: fmt.Sprintf("%T", v), Reason: "encode", Err: err}
	}
	return c.Store(ctx, Bytes(b))
}

// Instrument wires core into a counted, recorded operation named op.
// mws run inside the default CallHistory, CountCalls layers.
func (c *Cache) Instrument(op string, core Invocation, mws ...Middleware) func(ctx context.Context, args ...Value) (string, error) {
	all := make([]Middleware, 0, 2+len(mws))
	all = append(all, CallHistory, CountCalls)
	all = append(all, mws...)
	inv := Chain(c, op, core, all...)
	return func(ctx context.Context, args ...Value) (string, error) {
		return c.call(ctx, op, inv, args)
	}
}

func (c *Cache) call(ctx context.Context, op string, inv Invocation, args []Value) (string, error) {
	if op == "" {
		return "", ErrEmptyOp
	}
	var out string
	err := c.store.Tx(ctx, func(tx kv.Tx) error {
		var err error
		out, err = inv(ctx, tx, args)
		return err
	})
	if err != nil {
		c.hooks.TxFailed(op, err)
		c.log.Warn("instrumented call failed", Fields{"op": op, "err": err})
		return "", err
	}
	c.hooks.Called(op, out)
	c.log.Debug("instrumented call", Fields{"op": op, "out": out})
	return out, nil
}

func (c *Cache) storeCore(_ context.Context, tx kv.Tx, args []Value) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("callcache: %s takes one value, got %d", OpStore, len(args))
	}
	raw, err := args[0].Encode()
	if err != nil {
		return "", err
	}
	key := c.newKey()
	tx.Set(c.keys.Value(key), raw)
	return key, nil
}

// Get returns the raw stored bytes. A missing key is (nil, false, nil).
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, ok, err := c.store.Get(ctx, c.keys.Value(key))
	if err != nil {
		return nil, false, err
	}
	if !ok {
		c.hooks.Miss(key)
		c.log.Debug("miss", Fields{"key": key})
		return nil, false, nil
	}
	return b, true, nil
}

// GetAs reads key and decodes it with dec. A missing key yields the zero V
// and ok=false without calling dec. Decoder errors come back as *DecodeError.
func GetAs[V any](ctx context.Context, c *Cache, key string, dec codec.Decoder[V]) (V, bool, error) {
	var zero V
	b, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	v, err := dec.Decode(b)
	if err != nil {
		return zero, false, &DecodeError{Key: key, Err: err}
	}
	return v, true, nil
}

// GetInt reads key as a base-10 integer.
func (c *Cache) GetInt(ctx context.Context, key string) (int64, bool, error) {
	return GetAs[int64](ctx, c, key, codec.Int{})
}

// GetStr reads key as text.
func (c *Cache) GetStr(ctx context.Context, key string) (string, bool, error) {
	return GetAs[string](ctx, c, key, codec.String{})
}

// GetFloat reads key as a float. Integer forms parse too.
func (c *Cache) GetFloat(ctx context.Context, key string) (float64, bool, error) {
	return GetAs[float64](ctx, c, key, codec.Float{})
}

// Calls returns how many times op has committed. Unknown ops are 0.
func (c *Cache) Calls(ctx context.Context, op string) (int64, error) {
	if op == "" {
		return 0, ErrEmptyOp
	}
	b, ok, err := c.store.Get(ctx, c.keys.Counter(op))
	if err != nil || !ok {
		return 0, err
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("callcache: counter %q: %w", op, err)
	}
	return n, nil
}
