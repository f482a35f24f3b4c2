package common

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/joseph-ayodele/invoice-extract/constants"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	Extraction ExtractionConfig
	Ingest     IngestConfig
	Log        LogConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string // "sqlite" | "postgres"
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
	ConnectAttempts  uint
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr        string
	HTTPAddr        string
	ShutdownTimeout time.Duration
}

// ExtractionConfig holds the extraction engine settings.
type ExtractionConfig struct {
	RulesPath     string
	MinConfidence float64
	Concurrent    bool
	OCRCommand    string // optional engine printing fragment JSON for an image
	OCRArgs       []string
}

// IngestConfig holds directory watching and worker pool settings.
type IngestConfig struct {
	WatchDirs      []string
	InitialScan    bool
	Debounce       time.Duration
	Workers        int
	QueueSize      int
	ProcessTimeout time.Duration
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // text | json
}

// Environment variables bound to each config key.
var envBindings = map[string][]string{
	"database.driver":            {"DB_DRIVER"},
	"database.dsn":               {"DB_URL"},
	"database.max_conns":         {"DB_MAX_CONNS"},
	"database.min_conns":         {"DB_MIN_CONNS"},
	"database.max_conn_lifetime": {"DB_MAX_CONN_LIFETIME"},
	"database.max_conn_idle":     {"DB_MAX_CONN_IDLE_TIME"},
	"database.dial_timeout":      {"DB_DIAL_TIMEOUT"},
	"database.statement_timeout": {"DB_STATEMENT_TIMEOUT"},
	"database.connect_attempts":  {"DB_CONNECT_ATTEMPTS"},
	"server.grpc_addr":           {"GRPC_ADDR"},
	"server.http_addr":           {"HTTP_ADDR"},
	"server.shutdown_timeout":    {"SHUTDOWN_TIMEOUT"},
	"extraction.rules_path":      {"RULES_PATH"},
	"extraction.min_confidence":  {"MIN_CONFIDENCE"},
	"extraction.concurrent":      {"EXTRACT_CONCURRENT"},
	"extraction.ocr_command":     {"OCR_COMMAND"},
	"extraction.ocr_args":        {"OCR_ARGS"},
	"ingest.watch_dirs":          {"WATCH_DIRS"},
	"ingest.initial_scan":        {"WATCH_INITIAL_SCAN"},
	"ingest.debounce":            {"WATCH_DEBOUNCE"},
	"ingest.workers":             {"INGEST_WORKERS"},
	"ingest.queue_size":          {"INGEST_QUEUE_SIZE"},
	"ingest.process_timeout":     {"INGEST_PROCESS_TIMEOUT"},
	"log.level":                  {"LOG_LEVEL"},
	"log.format":                 {"LOG_FORMAT"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file:invoices.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.max_conn_lifetime", 30*time.Minute)
	v.SetDefault("database.max_conn_idle", 5*time.Minute)
	v.SetDefault("database.dial_timeout", 3*time.Second)
	v.SetDefault("database.statement_timeout", time.Duration(0))
	v.SetDefault("database.connect_attempts", 5)
	v.SetDefault("server.grpc_addr", ":8080")
	v.SetDefault("server.http_addr", ":8081")
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("extraction.rules_path", "")
	v.SetDefault("extraction.min_confidence", constants.DefaultMinConfidence)
	v.SetDefault("extraction.concurrent", false)
	v.SetDefault("extraction.ocr_command", "")
	v.SetDefault("ingest.initial_scan", true)
	v.SetDefault("ingest.debounce", 500*time.Millisecond)
	v.SetDefault("ingest.workers", 4)
	v.SetDefault("ingest.queue_size", 256)
	v.SetDefault("ingest.process_timeout", 3*time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadConfig reads defaults, then the optional YAML file at path, then the
// environment, later sources winning.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, NewAppError(CodeConfig, "bind env "+key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, NewAppError(CodeConfig, "read config file", err)
			}
		}
	}

	return &Config{
		Database: DatabaseConfig{
			Driver:           strings.ToLower(v.GetString("database.driver")),
			DSN:              v.GetString("database.dsn"),
			MaxConns:         v.GetInt32("database.max_conns"),
			MinConns:         v.GetInt32("database.min_conns"),
			MaxConnLifetime:  v.GetDuration("database.max_conn_lifetime"),
			MaxConnIdleTime:  v.GetDuration("database.max_conn_idle"),
			DialTimeout:      v.GetDuration("database.dial_timeout"),
			StatementTimeout: v.GetDuration("database.statement_timeout"),
			ConnectAttempts:  v.GetUint("database.connect_attempts"),
		},
		Server: ServerConfig{
			GRPCAddr:        v.GetString("server.grpc_addr"),
			HTTPAddr:        v.GetString("server.http_addr"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Extraction: ExtractionConfig{
			RulesPath:     v.GetString("extraction.rules_path"),
			MinConfidence: v.GetFloat64("extraction.min_confidence"),
			Concurrent:    v.GetBool("extraction.concurrent"),
			OCRCommand:    v.GetString("extraction.ocr_command"),
			OCRArgs:       splitList(v.GetStringSlice("extraction.ocr_args")),
		},
		Ingest: IngestConfig{
			WatchDirs:      splitList(v.GetStringSlice("ingest.watch_dirs")),
			InitialScan:    v.GetBool("ingest.initial_scan"),
			Debounce:       v.GetDuration("ingest.debounce"),
			Workers:        v.GetInt("ingest.workers"),
			QueueSize:      v.GetInt("ingest.queue_size"),
			ProcessTimeout: v.GetDuration("ingest.process_timeout"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}, nil
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return NewAppError(CodeConfig, fmt.Sprintf("DB_DRIVER %q is not sqlite or postgres", c.Database.Driver), ErrInvalidInput)
	}
	if c.Database.DSN == "" {
		return NewAppError(CodeConfig, "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" && c.Server.HTTPAddr == "" {
		return NewAppError(CodeConfig, "GRPC_ADDR or HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Extraction.MinConfidence < 0 || c.Extraction.MinConfidence > 1 {
		return NewAppError(CodeConfig, "MIN_CONFIDENCE must be within [0, 1]", ErrInvalidInput)
	}
	if c.Ingest.Workers <= 0 {
		return NewAppError(CodeConfig, "INGEST_WORKERS must be positive", ErrInvalidInput)
	}
	return nil
}
