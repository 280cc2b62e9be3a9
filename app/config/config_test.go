package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coredatabase "github.com/qazobot/qazobot/core/database"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
  admin_id: 42
database:
  driver: sqlite
  path: /tmp/q.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.CoreConfig().Telegram.AdminID)
	assert.Equal(t, coredatabase.DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "22:10", cfg.Reminder.Time)
	assert.Equal(t, "Asia/Tashkent", cfg.Reminder.Timezone)
	assert.Equal(t, time.Minute, cfg.Reminder.MisfireGrace)
	assert.True(t, cfg.Reminder.On())
	assert.Equal(t, "https://api.aladhan.com/v1", cfg.PrayerTimes.BaseURL)
	assert.Equal(t, "Uzbekistan", cfg.PrayerTimes.Country)

	loc, err := cfg.Reminder.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tashkent", loc.String())
}

func TestLoadEnvOverlay(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
  admin_id: 42
database:
  driver: sqlite
reminder:
  time: "20:00"
  enabled: false
`)
	t.Setenv("REMINDER_TIME", "21:30")
	t.Setenv("ADMIN_ID", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "21:30", cfg.Reminder.Time)
	assert.Equal(t, int64(7), cfg.Telegram.AdminID)
	assert.False(t, cfg.Reminder.On())
}

func TestLoadRejectsInvalidReminder(t *testing.T) {
	for name, body := range map[string]string{
		"time":     "reminder:\n  time: \"25:99\"\n",
		"timezone": "reminder:\n  timezone: Mars/Olympus\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, "telegram:\n  token: x\n  admin_id: 1\ndatabase:\n  driver: sqlite\n"+body)
			_, err := Load(path)
			assert.ErrorContains(t, err, "reminder")
		})
	}
}
