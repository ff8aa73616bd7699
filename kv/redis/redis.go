package redis

import (
	"context"
	"errors"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/callcache/kv"
)

var ErrNilClient = errors.New("redis store: nil client")

// Redis is a kv.Store over a go-redis client.
type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

var _ kv.Store = (*Redis)(nil)

// Config configures New.
type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this store exclusively owns the client
}

// New wraps cfg.Client. It returns ErrNilClient when Client is nil.
func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

// Client exposes the underlying client (e.g. for diagnostics).
func (s *Redis) Client() goredis.UniversalClient { return s.rdb }

func (s *Redis) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Redis) FlushDB(ctx context.Context) error {
	return s.rdb.FlushDB(ctx).Err()
}

func (s *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, wrongType(err)
	}
	return b, true, nil
}

func (s *Redis) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	vals, err := s.rdb.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, wrongType(err)
	}
	return vals, nil
}

// Tx queues fn's writes on a MULTI/EXEC pipeline. Nothing is sent when fn fails.
func (s *Redis) Tx(ctx context.Context, fn func(kv.Tx) error) error {
	_, err := s.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		return fn(tx{ctx: ctx, p: p})
	})
	return wrongType(err)
}

// Close releases the underlying redis client only when this store owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (s *Redis) Close(context.Context) error {
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

type tx struct {
	ctx context.Context
	p   goredis.Pipeliner
}

func (t tx) Incr(key string)              { t.p.Incr(t.ctx, key) }
func (t tx) Set(key string, value []byte) { t.p.Set(t.ctx, key, value, 0) }
func (t tx) RPush(key, value string)      { t.p.RPush(t.ctx, key, value) }

func wrongType(err error) error {
	if err != nil && strings.HasPrefix(err.Error(), "WRONGTYPE") {
		return errors.Join(kv.ErrWrongType, err)
	}
	return err
}
