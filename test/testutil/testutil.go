// Package testutil provides shared helpers for joinguard integration tests.
package testutil

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Singleton container state
var (
	singletonOnce sync.Once
	singletonDSN  string
	singletonErr  error
)

// ensureSingleton lazily starts the shared PostgreSQL container.
// Safe for concurrent access via sync.Once. JOINGUARD_TEST_DB overrides the
// container entirely.
func ensureSingleton() (string, error) {
	if dsn := os.Getenv("JOINGUARD_TEST_DB"); dsn != "" {
		return dsn, nil
	}
	singletonOnce.Do(func() {
		ctx := context.Background()

		container, err := postgres.Run(ctx,
			"postgres:18-alpine",
			postgres.WithDatabase("postgres"),
			postgres.WithUsername("test"),
			postgres.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			singletonErr = fmt.Errorf("failed to start PostgreSQL container: %w", err)
			return
		}

		dsn, err := container.ConnectionString(ctx)
		if err != nil {
			_ = container.Terminate(ctx)
			singletonErr = fmt.Errorf("failed to get PostgreSQL connection string: %w", err)
			return
		}
		singletonDSN = dsn + "sslmode=disable"
		// Container is not stored - ryuk handles cleanup automatically
	})
	return singletonDSN, singletonErr
}

// DB returns a database handle scoped to a fresh schema. The schema is
// dropped when the test finishes. Tests that need PostgreSQL are skipped when
// neither Docker nor JOINGUARD_TEST_DB is available.
func DB(t *testing.T) *sql.DB {
	t.Helper()

	dsn, err := ensureSingleton()
	if err != nil {
		t.Skipf("PostgreSQL unavailable: %v (set JOINGUARD_TEST_DB to use an existing server)", err)
	}

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	// One connection so SET search_path applies to every statement.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	buf := make([]byte, 4)
	_, err = rand.Read(buf)
	require.NoError(t, err)
	schema := "t_" + hex.EncodeToString(buf)

	ctx := context.Background()
	_, err = db.ExecContext(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "SET search_path TO "+schema)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = db.Exec("DROP SCHEMA " + schema + " CASCADE")
	})

	return db
}

// Seed runs the given statements in order.
func Seed(t *testing.T, db *sql.DB, stmts ...string) {
	t.Helper()
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err, "seed: %s", stmt)
	}
}
