// Package testhelpers starts the Postgres container used by integration tests.
package testhelpers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"schoolgle/internal/repository/postgres"
)

// PostgresImage is the server version the migrations are written against
const PostgresImage = "postgres:16-alpine"

// TestSchema holds the governance tables during integration runs
const TestSchema = "test"

// TestDB holds a shared, migrated database and its connection pool.
type TestDB struct {
	Container testcontainers.Container
	Pool      *pgxpool.Pool
	ConnStr   string
	Tables    *postgres.TableNames
}

var (
	sharedTestDB     *TestDB
	sharedTestDBOnce sync.Once
	sharedTestDBErr  error
)

// GetTestDB returns a shared PostgreSQL container with migrations applied.
// The container is created once and reused across all tests in the run.
func GetTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedTestDBOnce.Do(func() {
		sharedTestDB, sharedTestDBErr = setupTestDB()
	})

	if sharedTestDBErr != nil {
		t.Fatalf("Failed to setup test database: %v", sharedTestDBErr)
	}

	return sharedTestDB
}

func setupTestDB() (*TestDB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        PostgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "schoolgle",
			"POSTGRES_USER":     "schoolgle",
			"POSTGRES_PASSWORD": "test_password",
		},
		// Postgres logs readiness twice: once for the init server, once for the real one
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	connStr := fmt.Sprintf("postgres://schoolgle:test_password@%s:%s/schoolgle?sslmode=disable",
		host, port.Port())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := postgres.RunMigrations(ctx, connStr, TestSchema, logger); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	pool, err := postgres.ConnectWithRetry(ctx, connStr, 15*time.Second, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &TestDB{
		Container: container,
		Pool:      pool,
		ConnStr:   connStr,
		Tables:    postgres.NewTableNames(TestSchema),
	}, nil
}

// Truncate empties every governance table between tests
func (db *TestDB) Truncate(t *testing.T) {
	t.Helper()
	tables := db.Tables
	_, err := db.Pool.Exec(context.Background(), "TRUNCATE "+
		tables.TimelineEntries+", "+
		tables.PackExports+", "+
		tables.PackApprovals+", "+
		tables.PackVersions+", "+
		tables.Packs+", "+
		tables.OrganizationMembers)
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}
