package config

import (
	"testing"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Telegram.Token = "123:abc"
	cfg.Schedule.Cron = "*/30 * * * *"
	cfg.Schedule.Timezone = "UTC"
	cfg.Storage.Driver = StorageDriverFile
	cfg.Limits.PostedMax = 5000
	cfg.Limits.PostedKeep = 3000
	cfg.Limits.CacheMax = 1000
	cfg.Limits.CacheKeep = 500
	cfg.Delivery.SendBurst = 1
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing token", mutate: func(c *Config) { c.Telegram.Token = " " }, wantErr: true},
		{name: "bad cron", mutate: func(c *Config) { c.Schedule.Cron = "every now and then" }, wantErr: true},
		{name: "bad timezone", mutate: func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "redis" }, wantErr: true},
		{name: "keep above max", mutate: func(c *Config) { c.Limits.CacheKeep = 2000 }, wantErr: true},
		{name: "zero posted keep", mutate: func(c *Config) { c.Limits.PostedKeep = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewRequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	if _, err := New(); err == nil {
		t.Fatal("expected error without TELEGRAM_TOKEN")
	}
}

func TestNewDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	cfg, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if cfg.Schedule.Cron != "*/30 * * * *" {
		t.Errorf("cron = %q", cfg.Schedule.Cron)
	}
	if cfg.Feed.Platform != "pc" || cfg.Feed.Type != "game" {
		t.Errorf("feed filters = %q/%q", cfg.Feed.Platform, cfg.Feed.Type)
	}
	if cfg.Delivery.SendInterval.Milliseconds() != 800 {
		t.Errorf("send interval = %v", cfg.Delivery.SendInterval)
	}
	if cfg.Location().String() != "UTC" {
		t.Errorf("location = %v", cfg.Location())
	}
}

func TestNewStorageWithoutToken(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("STORAGE_DRIVER", StorageDriverSQLite)
	cfg, err := NewStorage()
	if err != nil {
		t.Fatalf("NewStorage() error: %v", err)
	}
	if cfg.Storage.Driver != StorageDriverSQLite {
		t.Errorf("driver = %q", cfg.Storage.Driver)
	}

	t.Setenv("STORAGE_DRIVER", "redis")
	if _, err := NewStorage(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
