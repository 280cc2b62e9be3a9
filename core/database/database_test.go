package database

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigNormalize(t *testing.T) {
	t.Run("postgres defaults", func(t *testing.T) {
		cfg := Config{Host: "db", User: "bot", Password: "p@ss", Name: "qazo"}
		require.NoError(t, cfg.Normalize())
		assert.Equal(t, DriverPostgres, cfg.Driver)
		assert.Equal(t, "postgres://bot:p%40ss@db:5432/qazo?sslmode=disable", cfg.DSN())
		assert.Equal(t, cfg.DSN(), cfg.MigrateURL())
		assert.Equal(t, "db:5432/qazo", cfg.Target())
		assert.Equal(t, 10, cfg.MaxConnections)
	})

	t.Run("postgres url wins", func(t *testing.T) {
		cfg := Config{URL: "postgres://u:secret@pg:6543/app?sslmode=require", Host: "ignored"}
		require.NoError(t, cfg.Normalize())
		assert.Equal(t, cfg.URL, cfg.DSN())
		assert.Equal(t, "pg:6543/app", cfg.Target())
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := Config{Driver: "sqlite", Path: "/tmp/q.db", MaxConnections: 8}
		require.NoError(t, cfg.Normalize())
		assert.Equal(t, DriverSQLite, cfg.Driver)
		assert.Equal(t, "/tmp/q.db?_foreign_keys=on&_busy_timeout=5000", cfg.DSN())
		assert.Equal(t, "sqlite3:///tmp/q.db?_foreign_keys=on", cfg.MigrateURL())
		assert.Equal(t, 1, cfg.MaxConnections)
	})

	t.Run("rejects", func(t *testing.T) {
		assert.Error(t, (&Config{Driver: "mysql"}).Normalize())
		assert.Error(t, (&Config{Driver: DriverPostgres}).Normalize())
	})
}

func TestRunMigrationsSQLite(t *testing.T) {
	fsys := fstest.MapFS{
		"sqlite3/000001_notes.up.sql":   {Data: []byte("CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT);")},
		"sqlite3/000001_notes.down.sql": {Data: []byte("DROP TABLE notes;")},
		"sqlite3/000002_seed.up.sql":    {Data: []byte("INSERT INTO notes (body) VALUES ('first');")},
		"sqlite3/000002_seed.down.sql":  {Data: []byte("DELETE FROM notes;")},
	}
	cfg := Config{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "nested", "m.db")}

	db, err := Connect(cfg)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(cfg, fsys))
	// second run is a no-op
	require.NoError(t, RunMigrations(cfg, fsys))

	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM notes"))
	assert.Equal(t, 1, n)
}

func TestSelectApplied(t *testing.T) {
	files := []string{"000001_init.up.sql", "000002_faq.up.sql", "000003_idx.up.sql"}
	assert.Equal(t, []string{"000002_faq.up.sql", "000003_idx.up.sql"}, selectApplied(files, 1, 3))
	assert.Nil(t, selectApplied(files, 3, 3))
	assert.Equal(t, uint64(12), parseVersion("000012_x.up.sql"))
	assert.Equal(t, []string{"000001_notes.up.sql"}, listMigrationFiles(fstest.MapFS{
		"sqlite3/000001_notes.up.sql":   {},
		"sqlite3/000001_notes.down.sql": {},
	}, "sqlite3"))
}
