package database

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Open connects to the SQLite file at path and brings its schema up to date.
func Open(path string) (db *sql.DB, err error) {
	db, err = sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, errors.Wrap(err, "database.open")
	}

	// db tuning options
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database.ping")
	}

	err = migrateDB(db)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database.migrate")
	}

	return db, nil
}

// dsn turns a file path into a go-sqlite3 DSN with foreign keys enforced on
// every pooled connection and a busy timeout for concurrent writers.
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}
