//go:build integration

package integration

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/baechuer/kanjo/services/account-service/internal/config"
	"github.com/baechuer/kanjo/services/account-service/internal/infrastructure/db/postgres"
)

var (
	sharedOnce sync.Once
	sharedDSN  string
	sharedErr  error
)

// postgresDSN starts one container per test binary. IT_POSTGRES_DSN points
// the suite at an existing database instead.
func postgresDSN(t *testing.T) string {
	t.Helper()

	if dsn := os.Getenv("IT_POSTGRES_DSN"); dsn != "" {
		return dsn
	}

	sharedOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		c, err := tcpostgres.Run(ctx, "postgres:17",
			tcpostgres.WithDatabase("accounts"),
			tcpostgres.WithUsername("it"),
			tcpostgres.WithPassword("it"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			sharedErr = err
			return
		}
		sharedDSN, sharedErr = c.ConnectionString(ctx, "sslmode=disable")
	})
	require.NoError(t, sharedErr, "start postgres container")
	return sharedDSN
}

// openDB returns a migrated database with all rows removed.
func openDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := config.NewDB(postgresDSN(t), false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	require.NoError(t, postgres.Migrate(ctx, db))
	_, err = db.ExecContext(ctx, `TRUNCATE skills, roles, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return db
}
