package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Inspector reads routine metadata from the PostgreSQL catalog.
type Inspector struct {
	pool    *pgxpool.Pool
	schemas []string
}

// NewInspector connects to PostgreSQL, retrying transient failures,
// and verifies the connection.
func NewInspector(ctx context.Context, cfg Config) (*Inspector, error) {
	return connectWithRetry(ctx, cfg)
}

func newInspectorOnce(ctx context.Context, cfg Config) (*Inspector, error) {
	pool, err := pgxpool.New(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Inspector{pool: pool, schemas: ResolveSchemas(cfg.Schemas)}, nil
}

// Close releases the connection pool.
func (i *Inspector) Close() {
	i.pool.Close()
}

// ServerVersion returns the PostgreSQL server version string.
func (i *Inspector) ServerVersion(ctx context.Context) (string, error) {
	var version string
	err := i.pool.QueryRow(ctx, "SHOW server_version").Scan(&version)
	if err != nil {
		return "", fmt.Errorf("server version: %w", err)
	}
	return version, nil
}

// ListRoutines fetches user functions and procedures. Aggregates, window
// functions, and routines owned by extensions are left out.
func (i *Inspector) ListRoutines(ctx context.Context) ([]RoutineInfo, error) {
	query := `
		SELECT
			n.nspname,
			p.proname,
			p.prokind::text,
			l.lanname,
			pg_catalog.pg_get_function_identity_arguments(p.oid)
		FROM pg_catalog.pg_proc p
		JOIN pg_catalog.pg_namespace n ON n.oid = p.pronamespace
		JOIN pg_catalog.pg_language l ON l.oid = p.prolang
		WHERE n.nspname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
			AND n.nspname NOT LIKE 'pg_temp_%'
			AND p.prokind IN ('f', 'p')
			AND NOT EXISTS (
				SELECT 1 FROM pg_catalog.pg_depend d
				WHERE d.classid = 'pg_catalog.pg_proc'::regclass
					AND d.objid = p.oid
					AND d.deptype = 'e'
			)
		ORDER BY n.nspname, p.proname`

	rows, err := i.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	defer rows.Close()

	var routines []RoutineInfo
	for rows.Next() {
		var r RoutineInfo
		var kind string
		if err := rows.Scan(&r.Schema, &r.Name, &kind, &r.Language, &r.Args); err != nil {
			return nil, fmt.Errorf("scan routine: %w", err)
		}
		r.Kind = RoutineKind(kind)
		routines = append(routines, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	return FilterRoutines(routines, i.schemas), nil
}
