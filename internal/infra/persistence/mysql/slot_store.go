package mysql

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/go-sql-driver/mysql"
	pkgerrors "github.com/pkg/errors"

	"example.com/shop-demo/internal/infra/persistence"
)

const createSlotsTable = `
    CREATE TABLE IF NOT EXISTS kv_slots (
        slot_key   VARCHAR(191) NOT NULL PRIMARY KEY,
        value      LONGBLOB     NOT NULL,
        updated_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
    )
`

type SlotStore struct {
	db *sql.DB
}

func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "mysql open")
	}
	return db, nil
}

func NewSlotStore(db *sql.DB) *SlotStore {
	return &SlotStore{db: db}
}

func (s *SlotStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, createSlotsTable)
	return pkgerrors.Wrap(err, "create kv_slots")
}

func (s *SlotStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `
        SELECT value
        FROM kv_slots
        WHERE slot_key = ?
    `, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrSlotNotFound
		}
		return nil, pkgerrors.Wrapf(err, "get slot %q", key)
	}
	return value, nil
}

func (s *SlotStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO kv_slots (slot_key, value)
        VALUES (?, ?)
        ON DUPLICATE KEY UPDATE value = VALUES(value)
    `, key, value)
	return pkgerrors.Wrapf(err, "set slot %q", key)
}

func (s *SlotStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv_slots WHERE slot_key = ?`, key)
	return pkgerrors.Wrapf(err, "delete slot %q", key)
}

func (s *SlotStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
