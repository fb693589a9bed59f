// Package testhelpers starts throwaway database containers for
// integration tests.
package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresImage is the stock image used for integration tests.
const PostgresImage = "postgres:16-alpine"

// TestDB holds a shared test database container and its connection URL.
type TestDB struct {
	Container testcontainers.Container
	ConnStr   string
}

var (
	sharedTestDB     *TestDB
	sharedTestDBOnce sync.Once
	sharedTestDBErr  error
)

// GetTestDB returns a shared PostgreSQL container for integration tests.
// The container is created once, seeded with a small sample schema, and
// reused across all tests in the run.
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

// seedStatements run one at a time; the pool uses the extended protocol,
// which forbids multi-statement strings.
var seedStatements = []string{
	`CREATE TABLE orders (
		id bigint PRIMARY KEY,
		customer text NOT NULL,
		amount numeric(10,2),
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`COMMENT ON TABLE orders IS 'customer orders'`,
	`INSERT INTO orders (id, customer, amount) VALUES
		(1, 'alice', 12.50),
		(2, 'bob', NULL),
		(3, 'carol', 99.99)`,
}

func setupTestDB() (*TestDB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        PostgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "sample",
			"POSTGRES_USER":     "explorer",
			"POSTGRES_PASSWORD": "test_password",
		},
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

	connStr := fmt.Sprintf("postgres://explorer:test_password@%s:%s/sample?sslmode=disable",
		host, port.Port())

	// Seed through a plain read-write pool; the code under test connects
	// with a read-only session.
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create seed pool: %w", err)
	}
	defer pool.Close()

	for i := 0; i < 10; i++ {
		if err = pool.Ping(ctx); err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		return nil, fmt.Errorf("database never became reachable: %w", err)
	}

	for _, stmt := range seedStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to seed test schema: %w", err)
		}
	}

	return &TestDB{Container: container, ConnStr: connStr}, nil
}
