// Package config defines the pipeline configuration model and its
// loader. A run is fully described by one Pipeline value: where the raw
// extracts come from, which directories hold each processing area, and
// where the modeled outputs get published.
//
// Configuration is read from a JSON or YAML file via viper, with
// OLISTDW_* environment variables overriding individual keys (e.g.
// OLISTDW_WAREHOUSE_DSN). Static validation lives in validate.go and is
// run by the CLI before any stage executes.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Pipeline is the top-level configuration for one pipeline run.
type Pipeline struct {
	// Job names the run for logs and metrics labels.
	Job string `mapstructure:"job"`

	Fetch     Fetch     `mapstructure:"fetch"`
	Paths     Paths     `mapstructure:"paths"`
	Warehouse Warehouse `mapstructure:"warehouse"`
	Metrics   Metrics   `mapstructure:"metrics"`
	Log       Log       `mapstructure:"log"`
}

// Fetch configures raw extract acquisition. An empty URL disables the
// fetch stage; the raw directory is then expected to be populated
// already.
type Fetch struct {
	// URL of the dataset archive (zip) to download when the raw area
	// is empty.
	URL string `mapstructure:"url"`

	// TimeoutSeconds bounds a single download attempt.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`

	// MaxRetries is the number of retry attempts after the initial
	// request; 0 means a single attempt.
	MaxRetries int `mapstructure:"max_retries"`
}

// Paths names the three processing areas. Each stage reads from one
// area and writes to the next, creating destination directories as
// needed.
type Paths struct {
	RawDir       string `mapstructure:"raw_dir"`
	ProcessedDir string `mapstructure:"processed_dir"`
	ModeledDir   string `mapstructure:"modeled_dir"`
}

// Warehouse configures the optional publish sink for the modeled
// tables.
type Warehouse struct {
	// Kind selects the backend: "sqlite", "postgres", or "none".
	Kind string `mapstructure:"kind"`

	// DSN is the backend connection string (file path for sqlite,
	// pgx DSN for postgres).
	DSN string `mapstructure:"dsn"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend: "pushgateway" or "none".
	Backend string `mapstructure:"backend"`

	// PushgatewayURL is the base URL of the Pushgateway instance.
	PushgatewayURL string `mapstructure:"pushgateway_url"`
}

// Log configures the zap logger.
type Log struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// Default returns the configuration used when a key is not set in the
// file or environment.
func Default() Pipeline {
	return Pipeline{
		Job: "olistdw",
		Paths: Paths{
			RawDir:       "data/raw/olist",
			ProcessedDir: "data/processed/olist",
			ModeledDir:   "data/modeled/olist",
		},
		Fetch:     Fetch{TimeoutSeconds: 60, MaxRetries: 3},
		Warehouse: Warehouse{Kind: "none"},
		Metrics:   Metrics{Backend: "none", PushgatewayURL: "http://localhost:9091"},
		Log:       Log{Level: "info", Format: "console"},
	}
}

// Load reads the configuration file at path and applies OLISTDW_*
// environment overrides on top of the defaults.
func Load(path string) (Pipeline, error) {
	v := viper.New()
	v.SetConfigFile(path)

	def := Default()
	v.SetDefault("job", def.Job)
	v.SetDefault("paths.raw_dir", def.Paths.RawDir)
	v.SetDefault("paths.processed_dir", def.Paths.ProcessedDir)
	v.SetDefault("paths.modeled_dir", def.Paths.ModeledDir)
	v.SetDefault("fetch.url", def.Fetch.URL)
	v.SetDefault("fetch.timeout_seconds", def.Fetch.TimeoutSeconds)
	v.SetDefault("fetch.max_retries", def.Fetch.MaxRetries)
	v.SetDefault("warehouse.kind", def.Warehouse.Kind)
	// An explicit empty default registers the key with viper so the
	// OLISTDW_WAREHOUSE_DSN environment override is seen by Unmarshal.
	v.SetDefault("warehouse.dsn", def.Warehouse.DSN)
	v.SetDefault("metrics.backend", def.Metrics.Backend)
	v.SetDefault("metrics.pushgateway_url", def.Metrics.PushgatewayURL)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)

	v.SetEnvPrefix("OLISTDW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return Pipeline{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var p Pipeline
	if err := v.Unmarshal(&p); err != nil {
		return Pipeline{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return p, nil
}
