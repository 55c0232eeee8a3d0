package storage

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the Postgres persistence layer. Tenant-partitioned tables
// are reached through RunInTenant, which pins the connection's
// search_path to the tenant schema for the duration of a transaction;
// shared directory tables are always addressed schema-qualified.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a store over the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// querier is the subset of pgx used by all query methods. Either the
// pool or the active tenant transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txCtxKey struct{}

// db returns the tenant transaction from the context when inside a
// scope, the bare pool otherwise.
func (s *Store) db(ctx context.Context) querier {
	if tx, ok := ctx.Value(txCtxKey{}).(pgx.Tx); ok {
		return tx
	}
	return s.pool
}
