package redis

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	redisotel "github.com/redis/go-redis/extra/redisotel/v9"
	goredis "github.com/redis/go-redis/v9"

	"example.com/shop-demo/internal/infra/persistence"
)

type SlotStore struct {
	rdb    *goredis.Client
	prefix string
}

// NewClient accepts either a redis:// URL or a bare host:port. Commands are
// traced through the global OpenTelemetry provider.
func NewClient(addr string, db int) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(addr)
	if err != nil {
		opts = &goredis.Options{
			Addr:         addr,
			DB:           db,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		}
	}
	rdb := goredis.NewClient(opts)
	if err := redisotel.InstrumentTracing(rdb); err != nil {
		_ = rdb.Close()
		return nil, pkgerrors.Wrap(err, "instrument redis tracing")
	}
	return rdb, nil
}

func NewSlotStore(rdb *goredis.Client, prefix string) *SlotStore {
	return &SlotStore{rdb: rdb, prefix: prefix}
}

func (s *SlotStore) key(k string) string {
	return s.prefix + k
}

func (s *SlotStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, persistence.ErrSlotNotFound
		}
		return nil, pkgerrors.Wrapf(err, "get slot %q", key)
	}
	return v, nil
}

func (s *SlotStore) Set(ctx context.Context, key string, value []byte) error {
	return pkgerrors.Wrapf(s.rdb.Set(ctx, s.key(key), value, 0).Err(), "set slot %q", key)
}

func (s *SlotStore) Delete(ctx context.Context, key string) error {
	return pkgerrors.Wrapf(s.rdb.Del(ctx, s.key(key)).Err(), "delete slot %q", key)
}

func (s *SlotStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
