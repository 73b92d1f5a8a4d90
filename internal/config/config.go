// Package config loads runtime configuration from the environment with
// an optional YAML overlay, and wires up structured logging. Grounded
// on the original Rust config/tracing-init pair (env-first config,
// separate init_tracing), expanded to the teacher's file layout:
// env vars provide the floor, an optional YAML file supplies anything
// an operator wants checked into a config repo.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// AppConfig is everything the server and probe binaries need at startup.
type AppConfig struct {
	Host       string
	Port       uint16
	DatabaseURL string
	LogJSON    bool
	LogLevel   string

	HintDiscoveryFile string
	MaxImportZipBytes int64
}

// fileOverlay mirrors the subset of AppConfig an operator may want to
// check into a YAML file instead of exporting as environment variables.
type fileOverlay struct {
	Host              string `yaml:"host,omitempty"`
	Port              uint16 `yaml:"port,omitempty"`
	DatabaseURL       string `yaml:"databaseUrl,omitempty"`
	LogJSON           *bool  `yaml:"logJson,omitempty"`
	LogLevel          string `yaml:"logLevel,omitempty"`
	HintDiscoveryFile string `yaml:"hintDiscoveryFile,omitempty"`
	MaxImportZipBytes int64  `yaml:"maxImportZipBytes,omitempty"`
}

const defaultMaxImportZipBytes = 150 * 1024 * 1024

// Load builds an AppConfig with precedence ENV > file > defaults,
// mirroring the teacher's direct require on gopkg.in/yaml.v3.
// PALDESIGNER_CONFIG_FILE names an optional YAML overlay; DATABASE_URL
// is required except when allowEmptyDatabaseURL is true (the probe CLI
// has no store to connect to).
func Load(allowEmptyDatabaseURL bool) (AppConfig, error) {
	cfg := AppConfig{
		Host:              "127.0.0.1",
		Port:              8080,
		LogLevel:          "info",
		HintDiscoveryFile: "data/discovered_hint_paths.txt",
		MaxImportZipBytes: defaultMaxImportZipBytes,
	}

	if path := os.Getenv("PALDESIGNER_CONFIG_FILE"); path != "" {
		overlay, err := loadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: load file: %w", err)
		}
		applyOverlay(&cfg, overlay)
	}

	applyEnv(&cfg)

	if net.ParseIP(cfg.Host) == nil {
		return cfg, fmt.Errorf("config: APP_HOST %q is not a valid IP address", cfg.Host)
	}
	if !allowEmptyDatabaseURL && cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("config: DATABASE_URL is required (example: file:data/paldesigner.db)")
	}

	return cfg, nil
}

func loadFile(path string) (fileOverlay, error) {
	var overlay fileOverlay
	data, err := os.ReadFile(path)
	if err != nil {
		return overlay, fmt.Errorf("read file: %w", err)
	}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return overlay, fmt.Errorf("parse yaml: %w", err)
	}
	return overlay, nil
}

func applyOverlay(cfg *AppConfig, o fileOverlay) {
	if o.Host != "" {
		cfg.Host = o.Host
	}
	if o.Port != 0 {
		cfg.Port = o.Port
	}
	if o.DatabaseURL != "" {
		cfg.DatabaseURL = o.DatabaseURL
	}
	if o.LogJSON != nil {
		cfg.LogJSON = *o.LogJSON
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.HintDiscoveryFile != "" {
		cfg.HintDiscoveryFile = o.HintDiscoveryFile
	}
	if o.MaxImportZipBytes != 0 {
		cfg.MaxImportZipBytes = o.MaxImportZipBytes
	}
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("APP_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.ParseUint(v, 10, 16); err == nil {
			cfg.Port = uint16(p)
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("LOG_JSON"); v != "" {
		cfg.LogJSON = v == "1" || v == "true"
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PALDESIGNER_HINT_DISCOVERY_FILE"); v != "" {
		cfg.HintDiscoveryFile = v
	}
	if v := os.Getenv("MAX_IMPORT_ZIP_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxImportZipBytes = n
		}
	}
}

// NewLogger builds the process-wide zerolog.Logger, console-formatted
// by default or line-delimited JSON when LogJSON is set.
func NewLogger(cfg AppConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogJSON {
		return zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
}

// Addr formats the Host/Port pair for net.Listen.
func (c AppConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port)))
}
