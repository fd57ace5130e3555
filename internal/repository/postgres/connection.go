package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"schoolgle/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds schema-qualified table names
type TableNames struct {
	Schema              string
	Packs               string
	PackVersions        string
	PackApprovals       string
	PackExports         string
	TimelineEntries     string
	OrganizationMembers string
}

// NewTableNames creates table names qualified with the given schema (dev, test, public)
func NewTableNames(schema string) *TableNames {
	q := pgx.Identifier{schema}.Sanitize()
	return &TableNames{
		Schema:              schema,
		Packs:               q + ".packs",
		PackVersions:        q + ".pack_versions",
		PackApprovals:       q + ".pack_approvals",
		PackExports:         q + ".pack_exports",
		TimelineEntries:     q + ".timeline_entries",
		OrganizationMembers: q + ".organization_members",
	}
}

// DropOrder lists every table children-first so foreign keys never block a drop.
// The golang-migrate bookkeeping table is included.
func (t *TableNames) DropOrder() []string {
	return []string{
		t.TimelineEntries,
		t.PackExports,
		t.PackApprovals,
		t.PackVersions,
		t.Packs,
		t.OrganizationMembers,
		pgx.Identifier{t.Schema, "schema_migrations"}.Sanitize(),
	}
}

// CreateConnectionPool creates a new pgx connection pool with automatic PgBouncer compatibility.
//
// Port 6543 is Supabase's transaction pooler, which does not support prepared
// statements. For that port the pool switches to QueryExecModeCacheDescribe
// unless default_query_exec_mode was set explicitly in the connection string.
//
// References:
// - Supabase connection docs: https://supabase.com/docs/guides/database/connecting-to-postgres
// - pgx QueryExecMode: https://pkg.go.dev/github.com/jackc/pgx/v5#QueryExecMode
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 2

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// ConnectWithRetry calls CreateConnectionPool with exponential backoff until it
// succeeds, maxElapsed passes or ctx is cancelled. Supabase pausing idle
// projects makes the first few attempts fail on cold start.
func ConnectWithRetry(ctx context.Context, databaseURL string, maxElapsed time.Duration, logger *slog.Logger) (*pgxpool.Pool, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = maxElapsed

	var pool *pgxpool.Pool
	err := backoff.RetryNotify(func() error {
		p, err := CreateConnectionPool(ctx, databaseURL)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}, backoff.WithContext(bo, ctx), func(err error, next time.Duration) {
		logger.Warn("database not ready, retrying", "error", err, "retry_in", next)
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the appropriate query executor for the context.
// If a transaction is present in the context, it returns the transaction.
// Otherwise, it returns the provided pool.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
