package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 8457 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 8457)
	}
	if cfg.Store.Driver != DriverSQLite {
		t.Errorf("Store.Driver = %q, want %q", cfg.Store.Driver, DriverSQLite)
	}
	if cfg.Engine.MaxEvaluationPasses != 16 {
		t.Errorf("Engine.MaxEvaluationPasses = %d, want 16", cfg.Engine.MaxEvaluationPasses)
	}
	if cfg.Notifications.MaxPerDay != 3 {
		t.Errorf("Notifications.MaxPerDay = %d, want 3", cfg.Notifications.MaxPerDay)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfig_NoFile(t *testing.T) {
	t.Setenv("WILDTRAIL_HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.API.Port != DefaultConfig().API.Port {
		t.Errorf("expected default port, got %d", cfg.API.Port)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	t.Setenv("WILDTRAIL_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Store.Driver = DriverMemory
	cfg.Engine.Timezone = "Europe/Berlin"
	cfg.Notifications.MaxPerDay = 7
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	got, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if got.Store.Driver != DriverMemory {
		t.Errorf("Store.Driver = %q, want memory", got.Store.Driver)
	}
	if got.Engine.Timezone != "Europe/Berlin" {
		t.Errorf("Engine.Timezone = %q", got.Engine.Timezone)
	}
	if got.Notifications.MaxPerDay != 7 {
		t.Errorf("Notifications.MaxPerDay = %d, want 7", got.Notifications.MaxPerDay)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("WILDTRAIL_HOME", home)
	writeConfig(t, home, "[api]\nport = 9000\n")
	t.Setenv("WILDTRAIL_API_PORT", "9100")
	t.Setenv("WILDTRAIL_STORE_DRIVER", "redis")
	t.Setenv("WILDTRAIL_STORE_REDIS_ADDR", "cache:6379")
	t.Setenv("WILDTRAIL_ENGINE_STRICT_INVARIANTS", "true")
	t.Setenv("WILDTRAIL_NOTIFY_MAX_PER_DAY", "10")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.API.Port != 9100 {
		t.Errorf("environment should win over the file, got port %d", cfg.API.Port)
	}
	if cfg.Store.Driver != DriverRedis || cfg.Store.RedisAddr != "cache:6379" {
		t.Errorf("unexpected store config %+v", cfg.Store)
	}
	if !cfg.Engine.StrictInvariants {
		t.Error("StrictInvariants should be set from the environment")
	}
	if cfg.Notifications.MaxPerDay != 10 {
		t.Errorf("Notifications.MaxPerDay = %d, want 10", cfg.Notifications.MaxPerDay)
	}
	if cfg.Engine.Timezone != "Local" {
		t.Errorf("unset variables should keep defaults, got timezone %q", cfg.Engine.Timezone)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"syntax", "[api\nport = 1"},
		{"driver", "[store]\ndriver = \"postgres\""},
		{"timezone", "[engine]\ntimezone = \"Mars/Olympus\""},
		{"port", "[api]\nport = 70000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			t.Setenv("WILDTRAIL_HOME", home)
			writeConfig(t, home, tt.toml)
			if _, err := LoadConfig(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestConfig_Intervals(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.SweepEvery(); got != time.Minute {
		t.Errorf("SweepEvery() = %v, want 1m", got)
	}
	cfg.Engine.SweepInterval = "0"
	if got := cfg.SweepEvery(); got != 0 {
		t.Errorf("SweepEvery() = %v, want 0", got)
	}
	cfg.Engine.HealthInterval = "garbage"
	if got := cfg.HealthEvery(); got != 60*time.Second {
		t.Errorf("HealthEvery() = %v, want fallback 60s", got)
	}
}

func TestConfig_Location(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.Timezone = ""
	loc, err := cfg.Location()
	if err != nil {
		t.Fatal(err)
	}
	if loc != time.UTC {
		t.Errorf("empty timezone should be UTC, got %v", loc)
	}
}

func TestHome(t *testing.T) {
	t.Setenv("WILDTRAIL_HOME", "/tmp/wt-home")
	if Home() != "/tmp/wt-home" {
		t.Errorf("Home() = %q", Home())
	}
}

func writeConfig(t *testing.T, home, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
}
