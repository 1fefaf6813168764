// Package persistence holds the durable slot store: a small named key-value
// space that outlives the process, plus in-process and file backends.
// Database backends live in the sub-packages.
package persistence

import (
	"context"
	"errors"
)

var ErrSlotNotFound = errors.New("slot not found")

// Store reads and writes whole values under a slot key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by backends that hold a connection.
type Pinger interface {
	Ping(ctx context.Context) error
}
