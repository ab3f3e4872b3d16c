package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/robfig/cron/v3"
)

const (
	StorageDriverFile     = "file"
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		SentryUrl string `env:"SENTRY_URL"`
	}
	Telegram struct {
		Token           string `env:"TELEGRAM_TOKEN" env-description:"bot token issued by BotFather"`
		ClientID        string `env:"CLIENT_ID" env-description:"enables command registration when set"`
		FallbackChannel string `env:"CHANNEL_ID" env-description:"chat id or @username used when no group has a mapping"`
	}
	Feed struct {
		BaseURL  string        `env:"FEED_BASE_URL" env-default:"https://gamerpower.com/api"`
		Platform string        `env:"PLATFORM" env-default:"pc"`
		Type     string        `env:"TYPE" env-default:"game"`
		Timeout  time.Duration `env:"FEED_TIMEOUT" env-default:"20s"`
	}
	Schedule struct {
		Cron        string        `env:"CRON_SCHEDULE" env-default:"*/30 * * * *"`
		Timezone    string        `env:"SCHEDULE_TIMEZONE" env-default:"UTC"`
		TickTimeout time.Duration `env:"TICK_TIMEOUT" env-default:"25m"`
	}
	Delivery struct {
		SendInterval time.Duration `env:"SEND_INTERVAL" env-default:"800ms"`
		SendBurst    int           `env:"SEND_BURST" env-default:"1"`
	}
	Command struct {
		RatePer time.Duration `env:"COMMAND_RATE_PER" env-default:"5s"`
		Burst   int           `env:"COMMAND_BURST" env-default:"3"`
		Workers int           `env:"COMMAND_WORKERS" env-default:"5"`
	}
	Limits struct {
		PostedMax  int `env:"POSTED_MAX" env-default:"5000"`
		PostedKeep int `env:"POSTED_KEEP" env-default:"3000"`
		CacheMax   int `env:"CACHE_MAX" env-default:"1000"`
		CacheKeep  int `env:"CACHE_KEEP" env-default:"500"`
	}
	Storage struct {
		Driver     string `env:"STORAGE_DRIVER" env-default:"file"`
		Dir        string `env:"STORAGE_DIR" env-default:"./data"`
		SQLitePath string `env:"SQLITE_PATH" env-default:"./data/giveaways.db"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT" env-default:"5432"`
		Host    string `env:"POSTGRES_HOST" env-default:"localhost"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
}

// New reads the bot configuration from the environment.
func New() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewStorage reads the configuration for tools that only open storage.
// Bot settings such as TELEGRAM_TOKEN are not required.
func NewStorage() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateStorage(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func read() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		help, _ := cleanenv.GetDescription(cfg, nil)
		return nil, fmt.Errorf("failed to read configuration: %w\n%s", err, help)
	}
	return cfg, nil
}

// Validate checks values cleanenv cannot express as tags.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is not set")
	}
	if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
		return fmt.Errorf("invalid CRON_SCHEDULE %q: %w", c.Schedule.Cron, err)
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("invalid SCHEDULE_TIMEZONE %q: %w", c.Schedule.Timezone, err)
	}
	if err := c.ValidateStorage(); err != nil {
		return err
	}
	if c.Limits.PostedKeep <= 0 || c.Limits.PostedKeep > c.Limits.PostedMax {
		return fmt.Errorf("POSTED_KEEP must be in (0, POSTED_MAX]")
	}
	if c.Limits.CacheKeep <= 0 || c.Limits.CacheKeep > c.Limits.CacheMax {
		return fmt.Errorf("CACHE_KEEP must be in (0, CACHE_MAX]")
	}
	if c.Delivery.SendBurst < 1 {
		c.Delivery.SendBurst = 1
	}
	return nil
}

// ValidateStorage checks the storage driver.
func (c *Config) ValidateStorage() error {
	switch c.Storage.Driver {
	case StorageDriverFile, StorageDriverPostgres, StorageDriverSQLite:
		return nil
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
}

// Location returns the schedule timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetDSN builds the postgres connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User,
		c.Postgres.Pass,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.Name,
		c.Postgres.SslMode,
	)
}
