package testutils

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"investgame/src/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	pgOnce  sync.Once
	pgPool  *pgxpool.Pool
	pgError error
)

// SetupTestDB starts one PostgreSQL container per test binary, applies the
// migrations and returns a pool to it. Tests are skipped when Docker is not
// available.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	pgOnce.Do(func() {
		ctx := context.Background()

		req := testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "investgame",
				"POSTGRES_PASSWORD": "investgame",
				"POSTGRES_DB":       "investgame",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(60 * time.Second),
		}

		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if err != nil {
			pgError = fmt.Errorf("start PostgreSQL container: %w", err)
			return
		}

		host, err := container.Host(ctx)
		if err != nil {
			pgError = fmt.Errorf("get PostgreSQL host: %w", err)
			return
		}
		port, err := container.MappedPort(ctx, "5432/tcp")
		if err != nil {
			pgError = fmt.Errorf("get PostgreSQL port: %w", err)
			return
		}

		dsn := fmt.Sprintf("postgresql://investgame:investgame@%s:%s/investgame?sslmode=disable", host, port.Port())
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			pgError = fmt.Errorf("connect to PostgreSQL: %w", err)
			return
		}

		sqlDB := stdlib.OpenDB(*pool.Config().ConnConfig)
		defer sqlDB.Close()
		if err := database.Migrate(sqlDB); err != nil {
			pgError = fmt.Errorf("migrate: %w", err)
			return
		}
		pgPool = pool
	})

	if pgError != nil {
		t.Fatalf("PostgreSQL container failed: %v", pgError)
	}
	TruncateTables(t, pgPool)
	return pgPool
}

// TruncateTables removes users, lots and snapshots, clears every stored price
// and resets the refresh watermark. The seeded stocks are kept.
func TruncateTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	statements := []string{
		"TRUNCATE TABLE holdings, stock_price_snapshots, users RESTART IDENTITY CASCADE",
		"UPDATE stocks SET current_price = NULL, price_updated_at = NULL",
		"UPDATE price_refresh_control SET last_refreshed_at = NULL",
	}
	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			t.Fatalf("Failed to reset test data (%s): %v", stmt, err)
		}
	}
}
