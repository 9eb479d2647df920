package auth

import (
	"context"
	"database/sql"
	"time"
)

const queryTimeout = 3 * time.Second

type PostgresRefreshStore struct {
	db *sql.DB
}

func NewPostgresRefreshStore(db *sql.DB) *PostgresRefreshStore {
	return &PostgresRefreshStore{db: db}
}

func (s *PostgresRefreshStore) Save(ctx context.Context, jti string, customerID int64, expiresAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (jti, customer_id, expires_at)
		VALUES ($1, $2, $3)
	`, jti, customerID, expiresAt)
	return err
}

func (s *PostgresRefreshStore) Consume(ctx context.Context, jti string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var expiresAt time.Time
	err := s.db.QueryRowContext(ctx, `
		DELETE FROM refresh_tokens
		WHERE jti = $1
		RETURNING expires_at
	`, jti).Scan(&expiresAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return time.Now().Before(expiresAt), nil
}

func (s *PostgresRefreshStore) RevokeAll(ctx context.Context, customerID int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM refresh_tokens
		WHERE customer_id = $1
	`, customerID)
	return err
}
