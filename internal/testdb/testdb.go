// Package testdb starts one postgres container per test binary.
package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpg "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	db      *sql.DB
	dbErr   error
	startup sync.Once
)

// Postgres returns a connection to the shared container. Integration tests
// are skipped under -short or when no container runtime is available.
func Postgres(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	startup.Do(func() {
		db, dbErr = start(context.Background())
	})
	if dbErr != nil {
		t.Skipf("Could not start postgres container: %v", dbErr)
	}
	return db
}

func start(ctx context.Context) (*sql.DB, error) {
	pgContainer, err := tcpg.Run(ctx,
		"postgres:13-alpine",
		tcpg.WithDatabase("testdb"),
		tcpg.WithUsername("postgres"),
		tcpg.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start PostgreSQL container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, fmt.Errorf("failed to get PostgreSQL connection string: %w", err)
	}

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		if err = conn.PingContext(ctx); err == nil {
			return conn, nil
		}
		time.Sleep(time.Second)
	}
	return nil, fmt.Errorf("failed to ping PostgreSQL after %d retries: %w", maxRetries, err)
}

// Truncate empties the given tables.
func Truncate(t *testing.T, conn *sql.DB, tables ...string) {
	t.Helper()
	for _, table := range tables {
		if _, err := conn.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}
}
