package callcache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/callcache/codec"
	"github.com/unkn0wn-root/callcache/config"
	"github.com/unkn0wn-root/callcache/kv"
	"github.com/unkn0wn-root/callcache/kv/memory"
	kvredis "github.com/unkn0wn-root/callcache/kv/redis"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, kv.Store) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	store, err := kvredis.New(kvredis.Config{Client: client, CloseClient: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return mr, store
}

func newTestCache(t *testing.T, store kv.Store, optsOpt func(*Options)) *Cache {
	t.Helper()
	opts := Options{Store: store}
	if optsOpt != nil {
		optsOpt(&opts)
	}
	c, err := New(context.Background(), opts)
	require.NoError(t, err)
	return c
}

// recordingHooks counts callbacks; tests run single-goroutine.
type recordingHooks struct {
	flushed  []int
	called   []string
	misses   []string
	txFailed []error
}

func (h *recordingHooks) Flushed(db int)              { h.flushed = append(h.flushed, db) }
func (h *recordingHooks) Called(_, out string)         { h.called = append(h.called, out) }
func (h *recordingHooks) Miss(key string)              { h.misses = append(h.misses, key) }
func (h *recordingHooks) TxFailed(_ string, err error) { h.txFailed = append(h.txFailed, err) }

// ==============================
// Construction
// ==============================

func TestNewRequiresStore(t *testing.T) {
	c, err := New(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrNilStore)
	assert.Nil(t, c)
}

func TestNewFlushesByDefault(t *testing.T) {
	mr, store := setupRedis(t)
	require.NoError(t, mr.Set("leftover", "x"))

	hooks := &recordingHooks{}
	_ = newTestCache(t, store, func(o *Options) { o.Hooks = hooks })

	assert.False(t, mr.Exists("leftover"), "construction must flush the active db")
	assert.Equal(t, []int{0}, hooks.flushed)
}

func TestNewNoFlushKeepsKeys(t *testing.T) {
	mr, store := setupRedis(t)
	require.NoError(t, mr.Set("leftover", "x"))

	hooks := &recordingHooks{}
	_ = newTestCache(t, store, func(o *Options) { o.NoFlush = true; o.Hooks = hooks })

	assert.True(t, mr.Exists("leftover"))
	assert.Empty(t, hooks.flushed)
}

func TestNewUnreachableIsConnectionError(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Dial(context.Background(), config.RedisConfig{
		Addr:        addr,
		DialTimeout: 200 * time.Millisecond,
	}, Options{})

	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr), "want *ConnectionError, got %T: %v", err, err)
	assert.Equal(t, addr, connErr.Addr)
	assert.NotNil(t, connErr.Unwrap())
}

func TestDialOwnsClient(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	c, err := Dial(ctx, config.RedisConfig{Addr: mr.Addr()}, Options{})
	require.NoError(t, err)

	key, err := c.Store(ctx, String("hello"))
	require.NoError(t, err)
	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	require.NoError(t, c.Close(ctx))
	require.NoError(t, c.Close(ctx))
}

// ==============================
// Store / Get
// ==============================

func TestStoreGetRoundTrip(t *testing.T) {
	_, store := setupRedis(t)
	ctx := context.Background()
	c := newTestCache(t, store, nil)

	cases := []struct {
		v    Value
		want string
	}{
		{String("hello"), "hello"},
		{Bytes([]byte{0x00, 'a', 0xff}), "\x00a\xff"},
		{Int(42), "42"},
		{Int(-7), "-7"},
		{Float(3.5), "3.5"},
		{Float(3.0), "3.0"},
		{Float(1234567.0), "1234567.0"},
		{String(""), ""},
	}
	for _, tc := range cases {
		key, err := c.Store(ctx, tc.v)
		require.NoError(t, err)

		raw, ok, err := c.Get(ctx, key)
		require.NoError(t, err)
		require.True(t, ok, "value %v missing", tc.v)
		assert.Equal(t, tc.want, string(raw))
	}
}

func TestStoreKeysAreFreshUUIDs(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	c := newTestCache(t, store, nil)

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		key, err := c.Store(ctx, String("same"))
		require.NoError(t, err)

		parsed, err := uuid.Parse(key)
		require.NoError(t, err, "key %q is not a uuid", key)
		assert.Equal(t, uuid.Version(4), parsed.Version())

		_, dup := seen[key]
		require.False(t, dup, "key %q returned twice", key)
		seen[key] = struct{}{}
	}
}

func TestGetMissIsNotAnError(t *testing.T) {
	_, store := setupRedis(t)
	ctx := context.Background()
	hooks := &recordingHooks{}
	c := newTestCache(t, store, func(o *Options) { o.Hooks = hooks })

	raw, ok, err := c.Get(ctx, "nonexistent-key")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, raw)

	n, ok, err := c.GetInt(ctx, "nonexistent-key")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, n)

	assert.Equal(t, []string{"nonexistent-key", "nonexistent-key"}, hooks.misses)
}

func TestTypedGetters(t *testing.T) {
	_, store := setupRedis(t)
	ctx := context.Background()
	c := newTestCache(t, store, nil)

	k, err := c.Store(ctx, Int(42))
	require.NoError(t, err)
	n, ok, err := c.GetInt(ctx, k)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)

	k, err = c.Store(ctx, String("hello"))
	require.NoError(t, err)
	s, ok, err := c.GetStr(ctx, k)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello", s)

	k, err = c.Store(ctx, Float(2.25))
	require.NoError(t, err)
	f, ok, err := c.GetFloat(ctx, k)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2.25, f)

	// ints read back as floats
	k, err = c.Store(ctx, Int(9))
	require.NoError(t, err)
	f, _, err = c.GetFloat(ctx, k)
	require.NoError(t, err)
	assert.Equal(t, 9.0, f)
}

func TestFloatStaysDistinctFromInt(t *testing.T) {
	mr, store := setupRedis(t)
	ctx := context.Background()
	c := newTestCache(t, store, nil)

	ki, err := c.Store(ctx, Int(3))
	require.NoError(t, err)
	kf, err := c.Store(ctx, Float(3.0))
	require.NoError(t, err)

	raw, err := mr.Get(kf)
	require.NoError(t, err)
	assert.Equal(t, "3.0", raw)

	_, _, err = c.GetInt(ctx, kf)
	var numErr *strconv.NumError
	assert.True(t, errors.As(err, &numErr), "a float must not read back as an int")

	f, ok, err := c.GetFloat(ctx, kf)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3.0, f)

	r, err := c.Replay(ctx, OpStore)
	require.NoError(t, err)
	assert.Equal(t, "Cache.Store was called 2 times:\n"+
		"Cache.Store(*(3,)) -> "+ki+"\n"+
		"Cache.Store(*(3.0,)) -> "+kf+"\n", r.String())
}

func TestGetIntDecodeErrorSurfaces(t *testing.T) {
	_, store := setupRedis(t)
	ctx := context.Background()
	c := newTestCache(t, store, nil)

	k, err := c.Store(ctx, String("abc"))
	require.NoError(t, err)

	_, ok, err := c.GetInt(ctx, k)
	assert.False(t, ok)

	var decErr *DecodeError
	require.True(t, errors.As(err, &decErr), "want *DecodeError, got %T", err)
	assert.Equal(t, k, decErr.Key)

	var numErr *strconv.NumError
	assert.True(t, errors.As(err, &numErr), "decoder error must stay reachable")
}

func TestGetAsCustomDecoder(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	c := newTestCache(t, store, nil)

	k, err := c.Store(ctx, String("a,b,c"))
	require.NoError(t, err)

	calls := 0
	dec := codec.DecodeFunc[int](func(b []byte) (int, error) {
		calls++
		return len(b), nil
	})
	n, ok, err := GetAs[int](ctx, c, k, dec)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 5, n)

	_, ok, err = GetAs[int](ctx, c, "missing", dec)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, calls, "decoder must not run on a miss")
}

type school struct {
	Name   string   `json:"name" msgpack:"name" cbor:"name"`
	Topics []string `json:"topics" msgpack:"topics" cbor:"topics"`
}

func TestStoreEncoded(t *testing.T) {
	_, store := setupRedis(t)
	ctx := context.Background()
	c := newTestCache(t, store, nil)

	in := school{Name: "Holberton", Topics: []string{"C", "Python"}}
	codecs := map[string]codec.Codec[school]{
		"json":    codec.JSON[school]{},
		"msgpack": codec.Msgpack[school]{},
		"cbor":    codec.MustCBOR[school](true),
	}
	for name, cd := range codecs {
		t.Run(name, func(t *testing.T) {
			key, err := StoreEncoded[school](ctx, c, in, cd)
			require.NoError(t, err)

			out, ok, err := GetAs[school](ctx, c, key, cd)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, in, out)
		})
	}

	hist, err := c.History(ctx, OpStore)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	for _, call := range hist {
		assert.Regexp(t, `^\(b".*",\)$`, call.Input, "encoded payloads are recorded as binary")
	}
}

type failingEncoder struct{}

func (failingEncoder) Encode(school) ([]byte, error) { return nil, errors.New("nope") }

func TestStoreEncodedEncoderError(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	c := newTestCache(t, store, nil)

	_, err := StoreEncoded[school](ctx, c, school{}, failingEncoder{})
	var serErr *SerializationError
	require.True(t, errors.As(err, &serErr))
	assert.EqualError(t, serErr.Unwrap(), "nope")

	n, err := c.Calls(ctx, OpStore)
	require.NoError(t, err)
	assert.Zero(t, n, "a call that never reached the store is not counted")
}

func TestStoreAnyRejectsUnsupported(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	c := newTestCache(t, store, nil)

	_, err := c.StoreAny(ctx, struct{}{})
	var serErr *SerializationError
	require.True(t, errors.As(err, &serErr))
	assert.Equal(t, "struct {}", serErr.Type)

	key, err := c.StoreAny(ctx, uint16(7))
	require.NoError(t, err)
	n, ok, err := c.GetInt(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(7), n)
}

// ==============================
// Counting and history
// ==============================

func TestCallCounter(t *testing.T) {
	mr, store := setupRedis(t)
	ctx := context.Background()
	c := newTestCache(t, store, nil)

	for i := 0; i < 5; i++ {
		_, err := c.Store(ctx, Int(int64(i)))
		require.NoError(t, err)
	}

	n, err := c.Calls(ctx, OpStore)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	raw, err := mr.Get(OpStore)
	require.NoError(t, err)
	assert.Equal(t, "5", raw)

	n, err = c.Calls(ctx, "Cache.Never")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = c.Calls(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyOp)
}

func TestCounterSurvivesNewCacheWithoutFlush(t *testing.T) {
	_, store := setupRedis(t)
	ctx := context.Background()

	first := newTestCache(t, store, nil)
	for i := 0; i < 3; i++ {
		_, err := first.Store(ctx, String("x"))
		require.NoError(t, err)
	}

	second := newTestCache(t, store, func(o *Options) { o.NoFlush = true })
	_, err := second.Store(ctx, String("y"))
	require.NoError(t, err)

	n, err := second.Calls(ctx, OpStore)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	third := newTestCache(t, store, nil)
	n, err = third.Calls(ctx, OpStore)
	require.NoError(t, err)
	assert.Zero(t, n, "flush resets the counter")
}

func TestHistoryOrder(t *testing.T) {
	mr, store := setupRedis(t)
	ctx := context.Background()
	c := newTestCache(t, store, nil)

	ka, err := c.Store(ctx, String("a"))
	require.NoError(t, err)
	kb, err := c.Store(ctx, Int(2))
	require.NoError(t, err)
	kc, err := c.Store(ctx, Float(3.5))
	require.NoError(t, err)

	ins, err := mr.List(OpStore + ":inputs")
	require.NoError(t, err)
	assert.Equal(t, []string{`("a",)`, `(2,)`, `(3.5,)`}, ins)

	outs, err := mr.List(OpStore + ":outputs")
	require.NoError(t, err)
	assert.Equal(t, []string{ka, kb, kc}, outs)

	hist, err := c.History(ctx, OpStore)
	require.NoError(t, err)
	assert.Equal(t, []Call{
		{Input: `("a",)`, Output: ka},
		{Input: `(2,)`, Output: kb},
		{Input: `(3.5,)`, Output: kc},
	}, hist)
}

func TestReplay(t *testing.T) {
	_, store := setupRedis(t)
	ctx := context.Background()
	c := newTestCache(t, store, nil)

	keys := make([]string, 0, 3)
	for _, v := range []Value{String("foo"), String("bar"), Int(42)} {
		k, err := c.Store(ctx, v)
		require.NoError(t, err)
		keys = append(keys, k)
	}

	r, err := c.Replay(ctx, OpStore)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Count)
	require.Len(t, r.Calls, 3)

	want := fmt.Sprintf("Cache.Store was called 3 times:\n"+
		"Cache.Store(*(\"foo\",)) -> %s\n"+
		"Cache.Store(*(\"bar\",)) -> %s\n"+
		"Cache.Store(*(42,)) -> %s\n", keys[0], keys[1], keys[2])
	assert.Equal(t, want, r.String())

	// replay is read-only
	n, err := c.Calls(ctx, OpStore)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestReplayNeverCalled(t *testing.T) {
	store := memory.New()
	c := newTestCache(t, store, nil)

	r, err := c.Replay(context.Background(), OpStore)
	require.NoError(t, err)
	assert.Equal(t, "Cache.Store was called 0 times:\n", r.String())
}

func TestPrefixIsolatesKeys(t *testing.T) {
	mr, store := setupRedis(t)
	ctx := context.Background()
	c := newTestCache(t, store, func(o *Options) { o.Prefix = "ex" })

	key, err := c.Store(ctx, String("v"))
	require.NoError(t, err)

	assert.True(t, mr.Exists("ex:"+key))
	assert.True(t, mr.Exists("ex:"+OpStore))
	assert.True(t, mr.Exists("ex:"+OpStore+":inputs"))
	assert.False(t, mr.Exists(key))
	assert.Equal(t, "ex:abc", c.Key("abc"))

	s, ok, err := c.GetStr(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", s)
}

// ==============================
// Atomicity
// ==============================

func TestFailedStoreLeavesNoTrace(t *testing.T) {
	mr, store := setupRedis(t)
	ctx := context.Background()
	hooks := &recordingHooks{}
	c := newTestCache(t, store, func(o *Options) { o.Hooks = hooks })

	_, err := c.Store(ctx, Float(nanValue()))
	var serErr *SerializationError
	require.True(t, errors.As(err, &serErr))

	_, err = c.Store(ctx, Value{})
	require.True(t, errors.As(err, &serErr))

	assert.False(t, mr.Exists(OpStore))
	assert.False(t, mr.Exists(OpStore+":inputs"))
	assert.False(t, mr.Exists(OpStore+":outputs"))
	assert.Len(t, hooks.txFailed, 2)
	assert.Empty(t, hooks.called)
}

func TestConcurrentStoresKeepPairs(t *testing.T) {
	_, store := setupRedis(t)
	ctx := context.Background()
	c := newTestCache(t, store, nil)

	const workers, per = 8, 20
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			for i := 0; i < per; i++ {
				if _, err := c.Store(ctx, String(fmt.Sprintf("w%d-%d", w, i))); err != nil {
					errs <- err
					return
				}
			}
			errs <- nil
		}(w)
	}
	for w := 0; w < workers; w++ {
		require.NoError(t, <-errs)
	}

	hist, err := c.History(ctx, OpStore)
	require.NoError(t, err)
	require.Len(t, hist, workers*per)
	for _, call := range hist {
		raw, ok, err := c.Get(ctx, call.Output)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, strconv.Quote(string(raw)), call.Input[1:len(call.Input)-2],
			"input %s must belong to output %s", call.Input, call.Output)
	}

	n, err := c.Calls(ctx, OpStore)
	require.NoError(t, err)
	assert.Equal(t, int64(workers*per), n)
}
