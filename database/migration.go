package database

import (
	"database/sql"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"

	"github.com/mbolis/survey-desk/log"
)

//go:embed migrations
var dbMigrations embed.FS

// ErrDirtySchema means a previous migration stopped halfway and the file
// needs manual repair before the server can use it.
var ErrDirtySchema = errors.New("database schema is dirty")

// The returned migrator shares db; closing it would close db too.
func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(dbMigrations, "migrations")
	if err != nil {
		return nil, errors.Wrap(err, "migrate.source")
	}

	dst, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "migrate.driver")
	}

	migrator, err := migrate.NewWithInstance("iofs", src, "sqlite3", dst)
	if err != nil {
		return nil, errors.Wrap(err, "migrate.init")
	}
	return migrator, nil
}

func migrateDB(db *sql.DB) error {
	migrator, err := newMigrator(db)
	if err != nil {
		return err
	}

	from, dirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return errors.Wrap(err, "migrate.version")
	}
	if dirty {
		return errors.Wrapf(ErrDirtySchema, "version %d", from)
	}

	err = migrator.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Debugf("db.migrate: schema up to date at version %d", from)
	case err != nil:
		return errors.Wrap(err, "migrate.up")
	default:
		to, _, _ := migrator.Version()
		log.WithFields(log.Fields{"from": from, "to": to}).Info("db.migrate: schema migrated")
	}
	return nil
}

// SchemaVersion reports the migration version the database is at. Zero means
// no migration has run.
func SchemaVersion(db *sql.DB) (uint, error) {
	migrator, err := newMigrator(db)
	if err != nil {
		return 0, err
	}

	version, _, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "migrate.version")
	}
	return version, nil
}
