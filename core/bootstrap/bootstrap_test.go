package bootstrap

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/qazobot/qazobot/core/config"
	coredatabase "github.com/qazobot/qazobot/core/database"
)

func stubOptions(t *testing.T) (Options, *[]string) {
	t.Helper()
	var calls []string
	opts := Options{
		Config:     &coreconfig.Config{},
		Database:   coredatabase.Config{Driver: coredatabase.DriverSQLite, Path: ":memory:"},
		Migrations: fstest.MapFS{},
		LoggerInit: func(*coreconfig.Config) error {
			calls = append(calls, "logger")
			return nil
		},
		Connect: func(cfg coredatabase.Config) (*sqlx.DB, error) {
			calls = append(calls, "connect")
			return sqlx.Open("sqlite3", cfg.Path)
		},
		Migrate: func(coredatabase.Config, fs.FS) error {
			calls = append(calls, "migrate")
			return nil
		},
	}
	return opts, &calls
}

func TestRunOrder(t *testing.T) {
	opts, calls := stubOptions(t)
	opts.Seeders = []Seeder{SeederFunc(func(context.Context, *sqlx.DB) error {
		*calls = append(*calls, "seed")
		return nil
	})}

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	defer res.DB.Close()
	assert.Equal(t, []string{"logger", "connect", "migrate", "seed"}, *calls)
}

func TestRunStopsOnSeedError(t *testing.T) {
	opts, _ := stubOptions(t)
	boom := errors.New("boom")
	opts.Seeders = []Seeder{SeederFunc(func(context.Context, *sqlx.DB) error { return boom })}

	_, err := Run(context.Background(), opts)
	require.ErrorIs(t, err, boom)
}

func TestRunRequiresConfig(t *testing.T) {
	_, err := Run(context.Background(), Options{})
	assert.Error(t, err)
}
