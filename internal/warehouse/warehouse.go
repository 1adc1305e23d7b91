// Package warehouse publishes modeled tables to a SQL database so BI
// tools can query fact_orders and dim_date directly instead of parsing
// CSV. Concrete backends live in subpackages (sqlite, postgres); this
// package holds the backend-agnostic Repository interface, column type
// inference, and the publish routine.
package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"olistdw/internal/table"
)

// Column describes one destination column.
type Column struct {
	Name    string
	SQLType string
}

// Repository is the minimal surface a publish backend must provide.
type Repository interface {
	// ReplaceTable drops the named table if it exists and recreates it
	// with the given columns. Publishing is idempotent per run.
	ReplaceTable(ctx context.Context, name string, cols []Column) error

	// InsertRows bulk-inserts rows; len(row) must equal len(columns)
	// for every row.
	InsertRows(ctx context.Context, name string, columns []string, rows [][]any) error

	Close() error
}

// batchSize bounds how many rows go into one InsertRows call.
const batchSize = 500

// Publish writes the table into the repository under the given name.
func Publish(ctx context.Context, repo Repository, name string, t table.Table) error {
	cols := inferColumns(t)
	if err := repo.ReplaceTable(ctx, name, cols); err != nil {
		return fmt.Errorf("publish %s: %w", name, err)
	}

	rows := make([][]any, 0, batchSize)
	flush := func() error {
		if len(rows) == 0 {
			return nil
		}
		if err := repo.InsertRows(ctx, name, t.Columns, rows); err != nil {
			return fmt.Errorf("publish %s: %w", name, err)
		}
		rows = rows[:0]
		return nil
	}

	for _, r := range t.Rows {
		row := make([]any, len(t.Columns))
		for i, c := range t.Columns {
			row[i] = driverValue(r[c])
		}
		rows = append(rows, row)
		if len(rows) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

// inferColumns derives a SQL type per column from the first present
// cell, defaulting to TEXT for all-absent columns. The generic type
// names are valid in both backends; SQLite treats them as affinities.
func inferColumns(t table.Table) []Column {
	cols := make([]Column, len(t.Columns))
	for i, name := range t.Columns {
		cols[i] = Column{Name: name, SQLType: "TEXT"}
		for _, r := range t.Rows {
			v := r[name]
			if table.Absent(v) {
				continue
			}
			cols[i].SQLType = sqlTypeOf(v)
			break
		}
	}
	return cols
}

func sqlTypeOf(v any) string {
	switch v.(type) {
	case int, int64:
		return "BIGINT"
	case float64:
		return "DOUBLE PRECISION"
	case bool:
		return "BOOLEAN"
	case decimal.Decimal:
		return "NUMERIC"
	case time.Time:
		return "TIMESTAMP"
	case table.Date:
		return "DATE"
	default:
		return "TEXT"
	}
}

// driverValue converts a cell into a value both database/sql and pgx
// can bind. Decimals and dates travel as their canonical strings, which
// NUMERIC and DATE columns accept in both backends.
func driverValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case decimal.Decimal:
		return t.String()
	case table.Date:
		return t.String()
	default:
		return v
	}
}
