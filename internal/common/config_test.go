package common

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Extraction.MinConfidence != 0.60 {
		t.Errorf("MinConfidence = %v, want 0.60", cfg.Extraction.MinConfidence)
	}
	if cfg.Ingest.Workers != 4 || cfg.Ingest.QueueSize != 256 {
		t.Errorf("ingest = %+v", cfg.Ingest)
	}
	if cfg.Ingest.Debounce != 500*time.Millisecond {
		t.Errorf("Debounce = %v", cfg.Ingest.Debounce)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte(`
database:
  driver: postgres
  dsn: postgres://file/db
server:
  grpc_addr: ":9000"
ingest:
  watch_dirs: [/data/in, /data/more]
  workers: 2
log:
  format: json
`)
	if err := os.WriteFile(path, yaml, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DB_URL", "postgres://env/db")
	t.Setenv("MIN_CONFIDENCE", "0.75")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("Driver = %q", cfg.Database.Driver)
	}
	if cfg.Database.DSN != "postgres://env/db" {
		t.Errorf("DSN = %q, want env value", cfg.Database.DSN)
	}
	if cfg.Server.GRPCAddr != ":9000" {
		t.Errorf("GRPCAddr = %q", cfg.Server.GRPCAddr)
	}
	if cfg.Extraction.MinConfidence != 0.75 {
		t.Errorf("MinConfidence = %v", cfg.Extraction.MinConfidence)
	}
	if diff := cmp.Diff([]string{"/data/in", "/data/more"}, cfg.Ingest.WatchDirs); diff != "" {
		t.Errorf("WatchDirs mismatch (-want +got):\n%s", diff)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q", cfg.Log.Format)
	}
}

func TestLoadConfigCommaSeparatedEnv(t *testing.T) {
	t.Setenv("WATCH_DIRS", "/a, /b")
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"/a", "/b"}, cfg.Ingest.WatchDirs); diff != "" {
		t.Errorf("WatchDirs mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatal(err)
		}
		return cfg
	}
	tests := map[string]func(*Config){
		"bad driver":      func(c *Config) { c.Database.Driver = "mysql" },
		"missing dsn":     func(c *Config) { c.Database.DSN = "" },
		"no listeners":    func(c *Config) { c.Server.GRPCAddr, c.Server.HTTPAddr = "", "" },
		"confidence high": func(c *Config) { c.Extraction.MinConfidence = 1.5 },
		"no workers":      func(c *Config) { c.Ingest.Workers = 0 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := base()
			mutate(cfg)
			err := cfg.Validate()
			var appErr *AppError
			if !errors.As(err, &appErr) || appErr.Code != CodeConfig {
				t.Fatalf("Validate() = %v, want CONFIG_ERROR", err)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Validate() error does not wrap ErrInvalidInput")
			}
		})
	}
}
