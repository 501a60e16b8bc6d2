// Package config loads the bot settings from a YAML file, HIFZ_ environment
// variables and command-line flags, later sources overriding earlier ones.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read into the config
const EnvPrefix = "HIFZ_"

// LegacyTokenEnv is read when no token is configured otherwise
const LegacyTokenEnv = "TELEGRAM_BOT_TOKEN"

// Config holds the process settings
type Config struct {
	TelegramToken    string `koanf:"telegram_token" validate:"required"`
	DBDriver         string `koanf:"db_driver" validate:"oneof=sqlite3 sqlite postgres"`
	DBDSN            string `koanf:"db_dsn" validate:"required"`
	Timezone         string `koanf:"timezone" validate:"required"`
	ReminderHour     int    `koanf:"reminder_hour" validate:"gte=0,lte=23"`
	RemindersEnabled bool   `koanf:"reminders_enabled"`
	HistoryLimit     int    `koanf:"history_limit" validate:"gte=1,lte=50"`
	Debug            bool   `koanf:"debug"`

	location *time.Location
}

// Location returns the time zone calendar dates are computed in
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// NewFlagSet declares the command-line flags with their defaults
func NewFlagSet(name string) *pflag.FlagSet {
	f := pflag.NewFlagSet(name, pflag.ContinueOnError)
	f.String("config", "", "path to a YAML config file")
	f.String("telegram-token", "", "Telegram bot token")
	f.String("db-driver", "sqlite3", "database driver: sqlite3, sqlite or postgres")
	f.String("db-dsn", "data/hifz.db", "database file or connection string")
	f.String("timezone", "Europe/Moscow", "IANA time zone for calendar days")
	f.Int("reminder-hour", 8, "hour of the daily reminder, 0-23")
	f.Bool("reminders-enabled", true, "send daily reminders")
	f.Int("history-limit", 10, "number of actions shown in the history")
	f.Bool("debug", false, "log Telegram API traffic")
	return f
}

// Load parses args and builds the config. A .env file in the working
// directory is loaded into the environment first if present.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	flags := NewFlagSet("hifzbot")
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	k := koanf.New(".")

	if path, _ := flags.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagKey(flags)), nil); err != nil {
		return nil, fmt.Errorf("failed to read flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.TelegramToken == "" {
		cfg.TelegramToken = os.Getenv(LegacyTokenEnv)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field ranges and resolves the time zone
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid config: timezone %q: %w", c.Timezone, err)
	}
	c.location = loc
	return nil
}

// envKey maps HIFZ_DB_DSN to db_dsn
func envKey(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

// flagKey maps --db-dsn to db_dsn and skips --config
func flagKey(flags *pflag.FlagSet) func(f *pflag.Flag) (string, interface{}) {
	return func(f *pflag.Flag) (string, interface{}) {
		if f.Name == "config" {
			return "", nil
		}
		return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
	}
}
