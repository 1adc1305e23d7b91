// Package postgres implements a Postgres-backed warehouse.Repository
// using pgx v5. Bulk inserts use the COPY protocol.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"olistdw/internal/warehouse"
)

// Repository is a Postgres-backed warehouse.
type Repository struct {
	pool *pgxpool.Pool
}

// New connects to the database described by the pgx DSN.
func New(ctx context.Context, dsn string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Repository{pool: pool}, nil
}

// ReplaceTable implements warehouse.Repository.
func (r *Repository) ReplaceTable(ctx context.Context, name string, cols []warehouse.Column) error {
	ident := pgx.Identifier{name}.Sanitize()
	if _, err := r.pool.Exec(ctx, "DROP TABLE IF EXISTS "+ident); err != nil {
		return fmt.Errorf("postgres: drop %s: %w", name, err)
	}
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = pgx.Identifier{c.Name}.Sanitize() + " " + c.SQLType
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", ident, strings.Join(defs, ", "))
	if _, err := r.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("postgres: create %s: %w", name, err)
	}
	return nil
}

// InsertRows implements warehouse.Repository via COPY.
func (r *Repository) InsertRows(ctx context.Context, name string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := r.pool.CopyFrom(ctx, pgx.Identifier{name}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("postgres: copy into %s: %w", name, err)
	}
	return nil
}

// Close releases the pool.
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}
