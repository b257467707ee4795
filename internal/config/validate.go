package config

import (
	"fmt"
	"slices"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is a dotted path into
// the config, e.g. "storage.kind".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// StorageKinds are the destination stores the binary knows about.
var StorageKinds = []string{"sqlite", "postgres", "mssql", "mysql"}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate performs static checks over c. It does not mutate c and does not
// touch the file system or the network.
func Validate(c Config) []Issue {
	var issues []Issue
	add := func(sev IssueSeverity, path, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(c.Job) == "" {
		add(SeverityError, "job", "job must not be empty; it labels logs and metrics")
	}

	if strings.TrimSpace(c.Source.Path) == "" {
		add(SeverityError, "source.path", "source path must not be empty")
	}
	if _, err := c.Source.Comma(); err != nil {
		add(SeverityError, "source.delimiter", "%v; use ',', ';' or 'tab'", err)
	}
	if nf := c.Source.NumberFormat; nf != "eu" && nf != "us" {
		add(SeverityError, "source.number_format", "unsupported number format %q; use 'eu' or 'us'", nf)
	}

	if !slices.Contains(StorageKinds, c.Storage.Kind) {
		add(SeverityError, "storage.kind", "unsupported storage kind %q; use one of %s", c.Storage.Kind, strings.Join(StorageKinds, ", "))
	}
	if strings.TrimSpace(c.Storage.DSN) == "" && !c.DryRun {
		add(SeverityError, "storage.dsn", "dsn must not be empty")
	}
	if c.Storage.BatchSize <= 0 {
		add(SeverityError, "storage.batch_size", "batch_size must be > 0, got %d", c.Storage.BatchSize)
	}
	if !c.Storage.Reset && !c.DryRun {
		add(SeverityWarning, "storage.reset", "reset is off; loading into a non-empty store fails on duplicate keys")
	}

	if len(c.Rules.ShipModes) == 0 {
		add(SeverityError, "rules.ship_modes", "at least one ship mode is required")
	}
	seen := make(map[string]bool, len(c.Rules.ShipModes))
	for i, m := range c.Rules.ShipModes {
		if seen[m] {
			add(SeverityWarning, fmt.Sprintf("rules.ship_modes[%d]", i), "duplicate ship mode %q", m)
		}
		seen[m] = true
	}
	if strings.TrimSpace(c.Rules.DefaultShipMode) == "" {
		add(SeverityError, "rules.default_ship_mode", "default ship mode must not be empty")
	} else if len(c.Rules.ShipModes) > 0 && !seen[c.Rules.DefaultShipMode] {
		add(SeverityWarning, "rules.default_ship_mode", "default %q is not one of the valid ship modes", c.Rules.DefaultShipMode)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		add(SeverityError, "log.level", "unsupported log level %q", c.Log.Level)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		add(SeverityError, "log.format", "unsupported log format %q; use 'console' or 'json'", c.Log.Format)
	}

	switch c.Metrics.Backend {
	case "", "none":
	case "prompush":
		if c.Metrics.PushgatewayURL == "" {
			add(SeverityError, "metrics.pushgateway_url", "required when metrics backend is prompush")
		}
	case "datadog":
		if c.Metrics.DatadogAddr == "" {
			add(SeverityError, "metrics.datadog_addr", "required when metrics backend is datadog")
		}
	default:
		add(SeverityError, "metrics.backend", "unsupported metrics backend %q; use none, prompush or datadog", c.Metrics.Backend)
	}

	return issues
}
