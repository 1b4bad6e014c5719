package db

import (
	"context"
	"time"
)

// Store is the key-value facade the document repository reads from.
type Store interface {
	Pinger
	HashReader
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashReader enumerates keys and reads hashes.
type HashReader interface {
	Scan(ctx context.Context, pattern string) ([]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
}
