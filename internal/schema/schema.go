// Package schema centralizes the required-columns contract check every
// cleaner runs before touching a single row, plus the error types the
// pipeline's fail-fast policy is built on.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"olistdw/internal/table"
)

// SchemaError reports required columns absent from a loaded dataset.
// It is raised before any row processing and is always fatal to the
// stage that raised it.
type SchemaError struct {
	Dataset string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing columns in %s dataset: [%s]", e.Dataset, strings.Join(e.Missing, ", "))
}

// IntegrityError reports a violated uniqueness invariant, such as a
// duplicated customer key. Fatal to the stage that raised it.
type IntegrityError struct {
	Dataset string
	Column  string
	Value   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("duplicate %s value %q in %s dataset", e.Column, e.Value, e.Dataset)
}

// Contract names a dataset and the columns it must carry.
type Contract struct {
	Dataset  string
	Required []string
}

// Validate computes the set difference required − present and fails with
// a SchemaError naming the missing columns. It is the single schema
// check per table; no partial validation happens elsewhere.
func (c Contract) Validate(t table.Table) error {
	present := make(map[string]struct{}, len(t.Columns))
	for _, col := range t.Columns {
		present[col] = struct{}{}
	}
	var missing []string
	for _, col := range c.Required {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &SchemaError{Dataset: c.Dataset, Missing: missing}
	}
	return nil
}

// UniqueColumn verifies that no value of the named column repeats across
// the table. Absent cells are skipped; the check guards key columns,
// which the cleaners require to be present anyway.
func UniqueColumn(dataset, column string, t table.Table) error {
	seen := make(map[string]struct{}, len(t.Rows))
	for _, r := range t.Rows {
		s, ok := table.String(r[column])
		if !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			return &IntegrityError{Dataset: dataset, Column: column, Value: s}
		}
		seen[s] = struct{}{}
	}
	return nil
}
