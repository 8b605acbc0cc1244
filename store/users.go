package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

func (s *Store) CreateUser(ctx context.Context, username string, passwordHash []byte) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO user (username, password_hash, created_at) VALUES (?, ?, ?)
		ON CONFLICT (username) DO NOTHING`,
		username,
		passwordHash,
		s.now(),
	)
	if err != nil {
		return errors.Wrap(err, "insert user")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "insert user")
	}
	if n < 1 {
		return ErrConflict
	}
	return nil
}

func (s *Store) PasswordHash(ctx context.Context, username string) ([]byte, error) {
	var hash []byte
	err := s.db.
		QueryRowContext(ctx, "SELECT password_hash FROM user WHERE username = ?", username).
		Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return hash, errors.Wrap(err, "get password hash")
}

func (s *Store) StoreToken(ctx context.Context, username, tokenID, refreshTokenID string, expiration time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO token (username, token_id, refresh_token_id, expiration)
		VALUES (?, ?, ?, ?)`,
		username,
		tokenID,
		refreshTokenID,
		expiration.UTC(),
	)
	return errors.Wrap(err, "insert token")
}

func (s *Store) ConsumeToken(ctx context.Context, username, tokenID, refreshTokenID string) (time.Time, error) {
	var expiration time.Time
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return expiration, errors.Wrap(err, "consume token: begin")
	}
	defer tx.Rollback()

	const where = "WHERE username = ? AND token_id = ? AND refresh_token_id = ?"
	err = tx.
		QueryRowContext(ctx, "SELECT expiration FROM token "+where, username, tokenID, refreshTokenID).
		Scan(&expiration)
	if errors.Is(err, sql.ErrNoRows) {
		return expiration, ErrNotFound
	}
	if err != nil {
		return expiration, errors.Wrap(err, "consume token")
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM token "+where, username, tokenID, refreshTokenID)
	if err != nil {
		return expiration, errors.Wrap(err, "consume token: delete")
	}
	return expiration, errors.Wrap(tx.Commit(), "consume token: commit")
}

func (s *Store) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM token WHERE expiration < ?", s.now())
	if err != nil {
		return 0, errors.Wrap(err, "purge tokens")
	}
	n, err := res.RowsAffected()
	return n, errors.Wrap(err, "purge tokens")
}
