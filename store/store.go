// Package store holds every SQL statement run against the survey database.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("not found")

// querier is satisfied by both *sql.DB and *sql.Tx, so single-row helpers
// can run standalone or inside a larger transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	// now is replaced in tests.
	now func() time.Time
}

func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) DB() *sql.DB {
	return s.db
}

// timestamp is the store's clock, in UTC at second precision so that stored
// values sort lexically and survive a text round trip.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

func (s *Store) withTx(ctx context.Context, code string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, code+".begin_tx")
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	return errors.Wrap(tx.Commit(), code+".commit")
}
