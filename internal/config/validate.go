// This file adds a lightweight linter for Pipeline values. It performs
// static checks over a decoded Pipeline and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that is surfaced but does not
	// block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is a dotted path
// into the config (e.g. "warehouse.dsn"); Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a
// single error where that is convenient.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// ValidatePipeline statically validates a Pipeline. It does not mutate
// the value; callers decide whether warnings are fatal.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels logs and metrics for the run",
		})
	}

	issues = append(issues, validatePaths(p.Paths)...)
	issues = append(issues, validateFetch(p.Fetch)...)
	issues = append(issues, validateWarehouse(p.Warehouse)...)
	issues = append(issues, validateMetrics(p.Metrics)...)

	return issues
}

func validatePaths(p Paths) []Issue {
	var issues []Issue
	for _, c := range []struct{ path, val string }{
		{"paths.raw_dir", p.RawDir},
		{"paths.processed_dir", p.ProcessedDir},
		{"paths.modeled_dir", p.ModeledDir},
	} {
		if strings.TrimSpace(c.val) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     c.path,
				Message:  "directory must not be empty",
			})
		}
	}
	return issues
}

func validateFetch(f Fetch) []Issue {
	var issues []Issue
	if f.URL != "" && !strings.HasPrefix(f.URL, "http://") && !strings.HasPrefix(f.URL, "https://") {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "fetch.url",
			Message:  fmt.Sprintf("unsupported URL scheme in %q; expected http or https", f.URL),
		})
	}
	if f.URL == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "fetch.url",
			Message:  "no fetch URL configured; the raw area must already contain the extracts",
		})
	}
	if f.TimeoutSeconds < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "fetch.timeout_seconds",
			Message:  "timeout must not be negative",
		})
	}
	if f.MaxRetries < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "fetch.max_retries",
			Message:  "retry count must not be negative",
		})
	}
	return issues
}

func validateWarehouse(w Warehouse) []Issue {
	var issues []Issue
	known := map[string]struct{}{"": {}, "none": {}, "sqlite": {}, "postgres": {}}
	if _, ok := known[w.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "warehouse.kind",
			Message:  fmt.Sprintf("unknown warehouse kind %q; expected sqlite, postgres, or none", w.Kind),
		})
		return issues
	}
	if (w.Kind == "sqlite" || w.Kind == "postgres") && strings.TrimSpace(w.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "warehouse.dsn",
			Message:  fmt.Sprintf("%s warehouse requires a non-empty DSN", w.Kind),
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch m.Backend {
	case "", "none":
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend requires a base URL",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics will be disabled", m.Backend),
		})
	}
	return issues
}
