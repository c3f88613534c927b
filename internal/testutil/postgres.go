package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// SeedSQL creates a small schema with functions and procedures for integration tests.
// Routines: public.get_orders, public.save_order (procedure), billing.charge_card,
// billing.legacy_refund. The pgcrypto extension adds routines that must be ignored.
const SeedSQL = `
CREATE EXTENSION IF NOT EXISTS pgcrypto;

CREATE TABLE orders (
	id SERIAL PRIMARY KEY,
	amount NUMERIC(10,2) NOT NULL
);

CREATE FUNCTION get_orders() RETURNS SETOF orders
	LANGUAGE sql AS $$ SELECT * FROM orders $$;

CREATE PROCEDURE save_order(p_amount NUMERIC)
	LANGUAGE sql AS $$ INSERT INTO orders (amount) VALUES (p_amount) $$;

CREATE SCHEMA billing;

CREATE FUNCTION billing.charge_card(p_order INTEGER) RETURNS BOOLEAN
	LANGUAGE plpgsql AS $$ BEGIN RETURN true; END $$;

CREATE FUNCTION billing.legacy_refund(p_order INTEGER) RETURNS VOID
	LANGUAGE plpgsql AS $$ BEGIN END $$;
`

const testDBEnv = "PROCSPECTRE_TEST_DB_URL"

// runPostgresContainer starts a PG container, recovering from panics if Docker is unavailable.
func runPostgresContainer(ctx context.Context) (container *postgres.PostgresContainer, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.BasicWaitStrategies(),
	)
}

func seedDatabase(ctx context.Context, connStr string) error {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return fmt.Errorf("seed connect: %w", err)
	}
	if _, err := conn.Exec(ctx, SeedSQL); err != nil {
		_ = conn.Close(ctx)
		return fmt.Errorf("seed: %w", err)
	}
	return conn.Close(ctx)
}

// Setup starts a PostgreSQL container, seeds it with routines,
// and returns the connection string and a cleanup function.
// If PROCSPECTRE_TEST_DB_URL is set, it seeds that database instead of Docker.
func Setup() (string, func(), error) {
	ctx := context.Background()

	if connStr := os.Getenv(testDBEnv); connStr != "" {
		if err := seedDatabase(ctx, connStr); err != nil {
			return "", nil, fmt.Errorf("seed %s: %w", testDBEnv, err)
		}
		return connStr, func() {}, nil
	}

	container, err := runPostgresContainer(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("docker not available: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return "", nil, fmt.Errorf("connection string: %w", err)
	}

	if err := seedDatabase(ctx, connStr); err != nil {
		_ = container.Terminate(ctx)
		return "", nil, err
	}

	cleanup := func() {
		_ = container.Terminate(ctx)
	}
	return connStr, cleanup, nil
}

// SetupPostgres is a test helper that starts a seeded PostgreSQL container.
// Skips the test if Docker is not available.
func SetupPostgres(t *testing.T) (string, func()) {
	t.Helper()
	connStr, cleanup, err := Setup()
	if err != nil {
		t.Skipf("skipping: %v", err)
	}
	return connStr, cleanup
}
