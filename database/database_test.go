package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey.sqlite")

	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"admin", "token", "survey", "question", "response"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestOpen_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey.sqlite")

	db, err := Open(path)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO survey (title, created_at) VALUES ('kept', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM survey`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestOpen_EnforcesForeignKeys(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "survey.sqlite"))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`INSERT INTO question (survey_id, text, type) VALUES (42, 'orphan', 'text')`)
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "file:a.db?_foreign_keys=on&_busy_timeout=5000", dsn("a.db"))
	assert.Equal(t, "file:a.db?mode=rwc&_foreign_keys=on&_busy_timeout=5000", dsn("file:a.db?mode=rwc"))
}

func TestSchemaVersion(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "survey.sqlite"))
	require.NoError(t, err)
	defer db.Close()

	version, err := SchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}
