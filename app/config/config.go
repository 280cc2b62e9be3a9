// Package config describes qazobot's configuration: the shared core settings
// plus storage, reminder and prayer-times sections.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	coreconfig "github.com/qazobot/qazobot/core/config"
	coredatabase "github.com/qazobot/qazobot/core/database"
)

// ReminderConfig schedules the daily qazo reminder.
type ReminderConfig struct {
	Enabled      *bool         `yaml:"enabled" envconfig:"REMINDER_ENABLED"`
	Time         string        `yaml:"time" envconfig:"REMINDER_TIME" validate:"datetime=15:04"`
	Timezone     string        `yaml:"timezone" envconfig:"REMINDER_TIMEZONE" validate:"timezone"`
	MisfireGrace time.Duration `yaml:"misfire_grace" envconfig:"REMINDER_MISFIRE_GRACE" validate:"gte=0"`
}

// On reports whether the reminder job should be scheduled.
func (r ReminderConfig) On() bool {
	return r.Enabled == nil || *r.Enabled
}

// Location resolves the configured timezone.
func (r ReminderConfig) Location() (*time.Location, error) {
	return time.LoadLocation(r.Timezone)
}

// PrayerTimesConfig points at the timings API.
type PrayerTimesConfig struct {
	BaseURL string        `yaml:"base_url" envconfig:"PRAYER_TIMES_BASE_URL" validate:"url"`
	Country string        `yaml:"country" envconfig:"PRAYER_TIMES_COUNTRY" validate:"required"`
	Timeout time.Duration `yaml:"timeout" envconfig:"PRAYER_TIMES_TIMEOUT" validate:"gt=0"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database    coredatabase.Config `yaml:"database"`
	Reminder    ReminderConfig      `yaml:"reminder"`
	PrayerTimes PrayerTimesConfig   `yaml:"prayer_times"`
}

// CoreConfig exposes the embedded core configuration to the runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// Load reads path and the environment, fills defaults and validates.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize applies defaults and validates every section.
func Normalize(cfg *Config) error {
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}
	if err := cfg.Database.Normalize(); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if cfg.Reminder.Time == "" {
		cfg.Reminder.Time = "22:10"
	}
	if cfg.Reminder.Timezone == "" {
		cfg.Reminder.Timezone = "Asia/Tashkent"
	}
	if cfg.Reminder.MisfireGrace == 0 {
		cfg.Reminder.MisfireGrace = 60 * time.Second
	}
	if cfg.PrayerTimes.BaseURL == "" {
		cfg.PrayerTimes.BaseURL = "https://api.aladhan.com/v1"
	}
	if cfg.PrayerTimes.Country == "" {
		cfg.PrayerTimes.Country = "Uzbekistan"
	}
	if cfg.PrayerTimes.Timeout == 0 {
		cfg.PrayerTimes.Timeout = 5 * time.Second
	}

	v := validator.New()
	if err := v.Struct(cfg.Reminder); err != nil {
		return fmt.Errorf("reminder: %w", err)
	}
	if err := v.Struct(cfg.PrayerTimes); err != nil {
		return fmt.Errorf("prayer_times: %w", err)
	}
	return nil
}
