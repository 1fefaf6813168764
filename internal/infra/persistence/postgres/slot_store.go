package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pkgerrors "github.com/pkg/errors"

	"example.com/shop-demo/internal/infra/persistence"
)

const createSlotsTable = `
    CREATE TABLE IF NOT EXISTS kv_slots (
        slot_key   TEXT        PRIMARY KEY,
        value      BYTEA       NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )
`

type SlotStore struct {
	pool *pgxpool.Pool
}

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "pg connect")
	}
	return pool, nil
}

func NewSlotStore(pool *pgxpool.Pool) *SlotStore {
	return &SlotStore{pool: pool}
}

func (s *SlotStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, createSlotsTable)
	return pkgerrors.Wrap(err, "create kv_slots")
}

func (s *SlotStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `
        SELECT value
        FROM kv_slots
        WHERE slot_key = $1
    `, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, persistence.ErrSlotNotFound
		}
		return nil, pkgerrors.Wrapf(err, "get slot %q", key)
	}
	return value, nil
}

func (s *SlotStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.pool.Exec(ctx, `
        INSERT INTO kv_slots (slot_key, value, updated_at)
        VALUES ($1, $2, now())
        ON CONFLICT (slot_key) DO UPDATE
        SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
    `, key, value)
	return pkgerrors.Wrapf(err, "set slot %q", key)
}

func (s *SlotStore) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM kv_slots WHERE slot_key = $1`, key)
	return pkgerrors.Wrapf(err, "delete slot %q", key)
}

func (s *SlotStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
