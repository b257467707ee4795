// Package config centralizes run configuration. Values come from, in
// increasing precedence: built-in defaults, an optional YAML file, SALESETL_*
// environment variables, and command-line flags. Flags are defined with the
// merged values as their defaults so that -help shows what a run would use.
//
// Typical usage:
//
//	cfg, err := config.Load() // reads os.Args and os.Environ
//
// For tests, prefer LoadFromArgs to keep them hermetic:
//
//	fs := flag.NewFlagSet("test", flag.ContinueOnError)
//	getenv := func(k string) string { return testEnv[k] }
//	cfg, err := config.LoadFromArgs(fs, getenv, []string{"-reset=false"})
package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by LoadFromArgs.
const EnvPrefix = "SALESETL_"

// Config holds everything one run needs. All fields are plain values so the
// struct can be copied freely after construction.
type Config struct {
	// Job names the run in logs and metrics.
	Job string `yaml:"job"`

	Source  Source  `yaml:"source"`
	Storage Storage `yaml:"storage"`
	Rules   Rules   `yaml:"rules"`
	Log     Log     `yaml:"log"`
	Metrics Metrics `yaml:"metrics"`

	// RejectsPath, when set, receives a CSV of rows dropped by the rules.
	RejectsPath string `yaml:"rejects_path"`

	// DryRun runs every stage up to extraction and skips the store.
	DryRun bool `yaml:"dry_run"`

	// ValidateOnly lints the configuration and exits. Flag only.
	ValidateOnly bool `yaml:"-"`
}

// Source describes the input file.
type Source struct {
	Path string `yaml:"path"`
	// Delimiter forces the field separator: ",", ";" or "tab". Empty means
	// detect it from the file.
	Delimiter string `yaml:"delimiter"`
	// NumberFormat selects the numeric separators: "eu" or "us".
	NumberFormat string `yaml:"number_format"`
}

// Storage describes the destination store.
type Storage struct {
	Kind string `yaml:"kind"`
	DSN  string `yaml:"dsn"`
	// Reset deletes existing rows before loading.
	Reset bool `yaml:"reset"`
	// AutoCreateSchema creates missing tables before loading.
	AutoCreateSchema bool `yaml:"auto_create_schema"`
	BatchSize        int  `yaml:"batch_size"`
}

// Rules configures the ship mode correction.
type Rules struct {
	ShipModes       []string `yaml:"ship_modes"`
	DefaultShipMode string   `yaml:"default_ship_mode"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Metrics selects a metrics backend: "none", "prompush" or "datadog".
type Metrics struct {
	Backend        string `yaml:"backend"`
	PushgatewayURL string `yaml:"pushgateway_url"`
	DatadogAddr    string `yaml:"datadog_addr"`
}

// Default returns the built-in configuration: the sample export loaded into
// a local SQLite file, replacing previous contents.
func Default() Config {
	return Config{
		Job: "salesetl",
		Source: Source{
			Path:         "data/superstore.csv",
			NumberFormat: "eu",
		},
		Storage: Storage{
			Kind:             "sqlite",
			DSN:              "superstore.db",
			Reset:            true,
			AutoCreateSchema: true,
			BatchSize:        1000,
		},
		Rules: Rules{
			ShipModes:       []string{"Standard Class", "First Class", "Second Class", "Same Day"},
			DefaultShipMode: "Standard Class",
		},
		Log:     Log{Level: "info", Format: "console"},
		Metrics: Metrics{Backend: "none"},
	}
}

// LoadFromArgs builds a Config on fs from defaults, the YAML file named by
// -config (or SALESETL_CONFIG), environment values read through getenv and
// finally args. It is the testable entry point: callers supply a private
// FlagSet, a getenv func (often backed by a map) and a synthetic arg slice.
func LoadFromArgs(fs *flag.FlagSet, getenv func(string) string, args []string) (*Config, error) {
	cfg := Default()

	path := configPath(args, getenv(EnvPrefix+"CONFIG"))
	if path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(&cfg, getenv); err != nil {
		return nil, err
	}

	shipModes := strings.Join(cfg.Rules.ShipModes, ",")

	fs.String("config", path, "Path to a YAML config file (env SALESETL_CONFIG)")
	fs.StringVar(&cfg.Job, "job", cfg.Job, "Job name used in logs and metrics")

	fs.StringVar(&cfg.Source.Path, "source", cfg.Source.Path, "Path to the sales CSV export")
	fs.StringVar(&cfg.Source.Delimiter, "delimiter", cfg.Source.Delimiter, "Field delimiter: ',', ';' or 'tab' (empty = detect)")
	fs.StringVar(&cfg.Source.NumberFormat, "number_format", cfg.Source.NumberFormat, "Numeric separators: 'eu' (1.234,56) or 'us' (1,234.56)")

	fs.StringVar(&cfg.Storage.Kind, "storage", cfg.Storage.Kind, "Destination store: sqlite, postgres, mssql or mysql")
	fs.StringVar(&cfg.Storage.DSN, "dsn", cfg.Storage.DSN, "Destination DSN or SQLite file path")
	fs.BoolVar(&cfg.Storage.Reset, "reset", cfg.Storage.Reset, "Delete existing rows before loading")
	fs.BoolVar(&cfg.Storage.AutoCreateSchema, "create_schema", cfg.Storage.AutoCreateSchema, "Create missing tables before loading")
	fs.IntVar(&cfg.Storage.BatchSize, "batch_size", cfg.Storage.BatchSize, "Rows per bulk insert")

	fs.StringVar(&shipModes, "ship_modes", shipModes, "Comma-separated valid ship modes")
	fs.StringVar(&cfg.Rules.DefaultShipMode, "default_ship_mode", cfg.Rules.DefaultShipMode, "Replacement for unknown ship modes")

	fs.StringVar(&cfg.RejectsPath, "rejects", cfg.RejectsPath, "Write rejected rows to this CSV file")
	fs.BoolVar(&cfg.DryRun, "dry_run", cfg.DryRun, "Run up to extraction without touching the store")
	fs.BoolVar(&cfg.ValidateOnly, "validate", false, "Validate the configuration and exit")

	fs.StringVar(&cfg.Log.Level, "log_level", cfg.Log.Level, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.Log.Format, "log_format", cfg.Log.Format, "Log format: console or json")

	fs.StringVar(&cfg.Metrics.Backend, "metrics", cfg.Metrics.Backend, "Metrics backend: none, prompush or datadog")
	fs.StringVar(&cfg.Metrics.PushgatewayURL, "pushgateway_url", cfg.Metrics.PushgatewayURL, "Prometheus Pushgateway URL")
	fs.StringVar(&cfg.Metrics.DatadogAddr, "datadog_addr", cfg.Metrics.DatadogAddr, "DogStatsD address")

	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Rules.ShipModes = splitList(shipModes)
	return &cfg, nil
}

// Load is the production entry point: flag.CommandLine, os.Getenv and
// os.Args[1:].
func Load() (*Config, error) {
	return LoadFromArgs(flag.CommandLine, os.Getenv, os.Args[1:])
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Comma returns the forced delimiter rune, or 0 to detect it.
func (s Source) Comma() (rune, error) {
	switch strings.ToLower(s.Delimiter) {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case ";", "semicolon":
		return ';', nil
	case "\t", `\t`, "tab":
		return '\t', nil
	}
	return 0, fmt.Errorf("unsupported delimiter %q", s.Delimiter)
}

// configPath finds -config/--config in args before flags are defined, falling
// back to env.
func configPath(args []string, env string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			break
		}
		name, val, hasVal := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if !strings.HasPrefix(a, "-") || name != "config" {
			continue
		}
		if hasVal {
			return val
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return env
}

func loadYAML(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides cfg with every SALESETL_* variable that is set.
func applyEnv(cfg *Config, getenv func(string) string) error {
	str := func(k string, dst *string) {
		if v := getenv(EnvPrefix + k); v != "" {
			*dst = v
		}
	}
	var errs []error
	boolean := func(k string, dst *bool) {
		v := strings.ToLower(getenv(EnvPrefix + k))
		switch v {
		case "":
		case "1", "true", "yes", "on":
			*dst = true
		case "0", "false", "no", "off":
			*dst = false
		default:
			errs = append(errs, fmt.Errorf("%s%s: invalid boolean %q", EnvPrefix, k, v))
		}
	}
	integer := func(k string, dst *int) {
		if v := getenv(EnvPrefix + k); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: invalid integer %q", EnvPrefix, k, v))
				return
			}
			*dst = n
		}
	}

	str("JOB", &cfg.Job)
	str("SOURCE", &cfg.Source.Path)
	str("DELIMITER", &cfg.Source.Delimiter)
	str("NUMBER_FORMAT", &cfg.Source.NumberFormat)
	str("STORAGE", &cfg.Storage.Kind)
	str("DSN", &cfg.Storage.DSN)
	boolean("RESET", &cfg.Storage.Reset)
	boolean("CREATE_SCHEMA", &cfg.Storage.AutoCreateSchema)
	integer("BATCH_SIZE", &cfg.Storage.BatchSize)
	if v := getenv(EnvPrefix + "SHIP_MODES"); v != "" {
		cfg.Rules.ShipModes = splitList(v)
	}
	str("DEFAULT_SHIP_MODE", &cfg.Rules.DefaultShipMode)
	str("REJECTS", &cfg.RejectsPath)
	boolean("DRY_RUN", &cfg.DryRun)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("METRICS", &cfg.Metrics.Backend)
	str("PUSHGATEWAY_URL", &cfg.Metrics.PushgatewayURL)
	str("DATADOG_ADDR", &cfg.Metrics.DatadogAddr)

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
