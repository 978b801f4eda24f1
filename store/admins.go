package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// SeedAdmin creates the admin account when no admin exists yet. It reports
// whether an account was created.
func (s *Store) SeedAdmin(ctx context.Context, username, password string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admin`).Scan(&n)
	if err != nil {
		return false, errors.Wrap(err, "db.seed_admin.count")
	}
	if n > 0 {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, errors.Wrap(err, "db.seed_admin.hash")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO admin (username, password_hash) VALUES (?, ?)`,
		username,
		hash,
	)
	if err != nil {
		return false, errors.Wrap(err, "db.seed_admin.insert")
	}
	return true, nil
}

// CheckAdmin verifies a username/password pair against the stored bcrypt
// hash. Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (s *Store) CheckAdmin(ctx context.Context, username, password string) error {
	var hash []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT password_hash FROM admin WHERE username = ?`,
		username,
	).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return errors.Wrap(err, "db.check_admin")
	}

	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// StoreToken records an issued refresh token for username.
func (s *Store) StoreToken(ctx context.Context, username, tokenID, refreshTokenID string, expiration time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO token (username, token_id, refresh_token_id, expiration) VALUES (?, ?, ?, ?)`,
		username,
		tokenID,
		refreshTokenID,
		expiration.UTC(),
	)
	return errors.Wrap(err, "db.store_token")
}

// ConsumeToken deletes a recorded refresh token, failing when it is unknown
// or expired. A refresh token can therefore be used only once.
func (s *Store) ConsumeToken(ctx context.Context, username, tokenID, refreshTokenID string) error {
	var expiration time.Time
	err := s.db.QueryRowContext(ctx, `
		DELETE FROM token
		WHERE username = ?
			AND token_id = ?
			AND refresh_token_id = ?
		RETURNING expiration`,
		username,
		tokenID,
		refreshTokenID,
	).Scan(&expiration)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return errors.Wrap(err, "db.consume_token")
	}

	if expiration.Before(s.now()) {
		return ErrNotFound
	}
	return nil
}

// RevokeTokens forgets every refresh token issued to username.
func (s *Store) RevokeTokens(ctx context.Context, username string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM token WHERE username = ?`, username)
	if err != nil {
		return 0, errors.Wrap(err, "db.revoke_tokens")
	}
	n, err := res.RowsAffected()
	return n, errors.Wrap(err, "db.revoke_tokens.rows")
}
