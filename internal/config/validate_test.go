package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// errorPaths extracts the dotted paths of the error-severity issues.
func errorPaths(issues []Issue) []string {
	var paths []string
	for _, i := range issues {
		if i.Severity == SeverityError {
			paths = append(paths, i.Path)
		}
	}
	return paths
}

func TestValidatePipelineDefaults(t *testing.T) {
	issues := ValidatePipeline(Default())
	assert.Empty(t, errorPaths(issues))
}

func TestValidatePipeline(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Pipeline)
		wantPaths []string
	}{
		{
			name:      "empty job",
			mutate:    func(p *Pipeline) { p.Job = " " },
			wantPaths: []string{"job"},
		},
		{
			name:      "empty raw dir",
			mutate:    func(p *Pipeline) { p.Paths.RawDir = "" },
			wantPaths: []string{"paths.raw_dir"},
		},
		{
			name:      "bad fetch scheme",
			mutate:    func(p *Pipeline) { p.Fetch.URL = "ftp://example.com/data.zip" },
			wantPaths: []string{"fetch.url"},
		},
		{
			name:      "negative retries",
			mutate:    func(p *Pipeline) { p.Fetch.MaxRetries = -1 },
			wantPaths: []string{"fetch.max_retries"},
		},
		{
			name:      "unknown warehouse kind",
			mutate:    func(p *Pipeline) { p.Warehouse.Kind = "oracle" },
			wantPaths: []string{"warehouse.kind"},
		},
		{
			name:      "sqlite without dsn",
			mutate:    func(p *Pipeline) { p.Warehouse.Kind = "sqlite" },
			wantPaths: []string{"warehouse.dsn"},
		},
		{
			name: "pushgateway without url",
			mutate: func(p *Pipeline) {
				p.Metrics.Backend = "pushgateway"
				p.Metrics.PushgatewayURL = ""
			},
			wantPaths: []string{"metrics.pushgateway_url"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := Default()
			tc.mutate(&p)
			assert.Equal(t, tc.wantPaths, errorPaths(ValidatePipeline(p)))
		})
	}
}

func TestValidatePipelineWarnings(t *testing.T) {
	p := Default()
	p.Metrics.Backend = "statsd"

	issues := ValidatePipeline(p)
	require.Empty(t, errorPaths(issues))

	var warned bool
	for _, i := range issues {
		if i.Severity == SeverityWarning && i.Path == "metrics.backend" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestIssueError(t *testing.T) {
	i := Issue{Severity: SeverityError, Path: "warehouse.dsn", Message: "missing"}
	assert.Equal(t, "error at warehouse.dsn: missing", i.Error())
}
