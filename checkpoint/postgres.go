package checkpoint

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps checkpoints in the conversation_checkpoints
// table, one row per thread.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, threadID string) ([]byte, error) {
	var state []byte
	err := s.pool.QueryRow(ctx,
		`SELECT state FROM conversation_checkpoints WHERE thread_id = $1`,
		threadID,
	).Scan(&state)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get checkpoint: %w", err)
	}
	return state, nil
}

func (s *PostgresStore) Put(ctx context.Context, threadID string, state []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO conversation_checkpoints (thread_id, state, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (thread_id)
		 DO UPDATE SET state = EXCLUDED.state, updated_at = now()`,
		threadID, state,
	)
	if err != nil {
		return fmt.Errorf("put checkpoint: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, threadID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM conversation_checkpoints WHERE thread_id = $1`,
		threadID,
	)
	if err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	return nil
}

var _ Store = &PostgresStore{}
