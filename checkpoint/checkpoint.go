// Package checkpoint persists serialized conversation state between
// turns, keyed by thread ID. Backends cover in-memory, PostgreSQL,
// Redis and MongoDB so the orchestrator can resume a thread from
// whichever store the deployment uses.
package checkpoint

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the thread has no saved state.
var ErrNotFound = errors.New("checkpoint not found")

// Store saves and restores conversation snapshots. Implementations
// must treat the state bytes as opaque.
type Store interface {
	Get(ctx context.Context, threadID string) ([]byte, error)
	Put(ctx context.Context, threadID string, state []byte) error
	Delete(ctx context.Context, threadID string) error
}
