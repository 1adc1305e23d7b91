// Package table defines the in-memory rectangular dataset passed between
// pipeline stages: an ordered list of named columns plus rows of cells.
//
// A cell is an `any` holding one of a small set of concrete types
// (string, int64, float64, bool, time.Time, Date, decimal.Decimal) or nil.
// nil is the explicit "absent" marker; every comparison helper in this
// package treats absent as false and every arithmetic helper propagates
// absent. See value.go for those operators.
//
// Tables are treated as immutable between stages: a stage builds its
// output table from scratch and hands it on read-only. Nothing in this
// package enforces that, but no stage in the pipeline mutates a table it
// did not construct.
package table

import "fmt"

// Record is a single row keyed by column name. A nil value, or a missing
// key, means the cell is absent.
type Record map[string]any

// Table is an ordered set of named columns plus zero or more rows.
// Column order is significant: the CSV writer emits columns exactly in
// this order, and the fact builder relies on that for its fixed
// projection.
type Table struct {
	Columns []string
	Rows    []Record
}

// New returns an empty table with the given column order.
func New(columns ...string) Table {
	return Table{Columns: columns, Rows: []Record{}}
}

// HasColumn reports whether name is one of the table's columns.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// Append adds a row. The row should only use the table's columns;
// extra keys are ignored on write.
func (t *Table) Append(r Record) { t.Rows = append(t.Rows, r) }

// Filter returns a new table containing the rows for which keep returns
// true. Column order is preserved; surviving rows keep their relative
// order and identity.
func (t Table) Filter(keep func(Record) bool) Table {
	out := Table{Columns: t.Columns, Rows: make([]Record, 0, len(t.Rows))}
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Project returns a new table restricted to exactly the given columns,
// in the given order. Cells for the selected columns are shared with the
// source rows; any other column is dropped. It fails if a requested
// column is not present in the source table.
func (t Table) Project(columns ...string) (Table, error) {
	for _, c := range columns {
		if !t.HasColumn(c) {
			return Table{}, fmt.Errorf("project: column %q not in table", c)
		}
	}
	out := Table{Columns: columns, Rows: make([]Record, 0, len(t.Rows))}
	for _, r := range t.Rows {
		nr := make(Record, len(columns))
		for _, c := range columns {
			nr[c] = r[c]
		}
		out.Rows = append(out.Rows, nr)
	}
	return out, nil
}

// WithColumn returns a copy of the table with name appended to the
// column order (unless already present). Rows are shared; callers are
// expected to have set the new cell on each row already.
func (t Table) WithColumn(name string) Table {
	if t.HasColumn(name) {
		return t
	}
	cols := make([]string, 0, len(t.Columns)+1)
	cols = append(cols, t.Columns...)
	cols = append(cols, name)
	return Table{Columns: cols, Rows: t.Rows}
}
