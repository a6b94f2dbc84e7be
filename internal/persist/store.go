package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/greenhouse-node/internal/infrastructure/database"
)

// DefaultNamespace is the namespace the actuator levels live in.
const DefaultNamespace = "gh"

// Store is a durable integer map backed by the preferences table.
//
// Store is used only from the control loop; it holds no in-memory state,
// so every read reflects what is on disk.
type Store struct {
	db        *database.DB
	namespace string
}

// NewStore returns a Store scoped to namespace. The preferences migration
// must already have been applied to db.
func NewStore(db *database.DB, namespace string) *Store {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Store{db: db, namespace: namespace}
}

// GetInt returns the value stored under key. ok is false when the key has
// never been written; that is not an error.
func (s *Store) GetInt(ctx context.Context, key string) (value int, ok bool, err error) {
	if key == "" {
		return 0, false, ErrInvalidKey
	}

	err = s.db.QueryRowContext(ctx,
		"SELECT value FROM preferences WHERE namespace = ? AND key = ?",
		s.namespace, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s: %w", ErrReadFailed, key, err)
	}
	return value, true, nil
}

// PutInt writes value under key, replacing any previous value.
func (s *Store) PutInt(ctx context.Context, key string, value int) error {
	if key == "" {
		return ErrInvalidKey
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (namespace, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (namespace, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, s.namespace, key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, key, err)
	}
	return nil
}
