// Package config reads server settings from the environment, after loading a
// .env file when one is present.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Data sources understood by the server.
const (
	SourceFiles    = "files"
	SourceSnapshot = "snapshot"
	SourceSQLite   = "sqlite"
)

type Config struct {
	Port          string
	AdminAddr     string // empty disables the admin listener
	DataSource    string
	DataDir       string
	PortsFile     string
	RoutesFile    string
	SnapshotFile  string
	DatabasePath  string
	AllowOrigins  []string
	SearchTimeout time.Duration
	GinMode       string
	LogLevel      string
}

// Default returns the settings used when no variable is set.
func Default() Config {
	return Config{
		Port:          "8080",
		AdminAddr:     "127.0.0.1:8081",
		DataSource:    SourceFiles,
		DataDir:       "data",
		PortsFile:     "global_ports_locations.geojson",
		RoutesFile:    "major_routes.json",
		SnapshotFile:  "network.gob",
		DatabasePath:  "searoute.db",
		AllowOrigins:  []string{"*"},
		SearchTimeout: 5 * time.Second,
		GinMode:       "release",
		LogLevel:      "info",
	}
}

// Load reads .env (if any) and the process environment on top of Default.
func Load() (Config, error) {
	// A missing .env is normal in containers.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	def := Default()
	cfg := Config{
		Port:         envOrDefault("PORT", def.Port),
		AdminAddr:    os.Getenv("ADMIN_ADDR"),
		DataSource:   strings.ToLower(envOrDefault("DATA_SOURCE", def.DataSource)),
		DataDir:      envOrDefault("DATA_DIR", def.DataDir),
		PortsFile:    envOrDefault("PORTS_FILE", def.PortsFile),
		RoutesFile:   envOrDefault("ROUTES_FILE", def.RoutesFile),
		SnapshotFile: envOrDefault("SNAPSHOT_FILE", def.SnapshotFile),
		DatabasePath: envOrDefault("DATABASE_PATH", def.DatabasePath),
		GinMode:      envOrDefault("GIN_MODE", def.GinMode),
		LogLevel:     envOrDefault("LOG_LEVEL", def.LogLevel),
	}
	if _, set := os.LookupEnv("ADMIN_ADDR"); !set {
		cfg.AdminAddr = def.AdminAddr
	}

	switch cfg.DataSource {
	case SourceFiles, SourceSnapshot, SourceSQLite:
	default:
		return Config{}, fmt.Errorf("config: DATA_SOURCE must be files, snapshot or sqlite, got %q", cfg.DataSource)
	}

	timeout, err := time.ParseDuration(envOrDefault("SEARCH_TIMEOUT", def.SearchTimeout.String()))
	if err != nil {
		return Config{}, fmt.Errorf("config: SEARCH_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return Config{}, fmt.Errorf("config: SEARCH_TIMEOUT must be positive, got %s", timeout)
	}
	cfg.SearchTimeout = timeout

	cfg.AllowOrigins = splitList(envOrDefault("CORS_ALLOWED_ORIGINS", "*"))
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = def.AllowOrigins
	}
	return cfg, nil
}

// PortsPath is PortsFile resolved against DataDir unless it is absolute.
func (c Config) PortsPath() string { return c.inDataDir(c.PortsFile) }

func (c Config) RoutesPath() string { return c.inDataDir(c.RoutesFile) }

func (c Config) SnapshotPath() string { return c.inDataDir(c.SnapshotFile) }

// AllowAllOrigins reports whether CORS should accept any origin.
func (c Config) AllowAllOrigins() bool {
	for _, o := range c.AllowOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

func (c Config) inDataDir(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
