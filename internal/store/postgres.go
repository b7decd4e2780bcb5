package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/canopy-cli/internal/db"
	"github.com/sells-group/canopy-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_run": `INSERT INTO runs (id, status, trees, neighborhoods, rents, dropped_rows, started_at, finished_at, error)
	               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
	"get_run": `SELECT id, status, trees, neighborhoods, rents, dropped_rows, started_at, finished_at, error
	            FROM runs WHERE id = $1`,
	"latest_run": `SELECT id, status, trees, neighborhoods, rents, dropped_rows, started_at, finished_at, error
	               FROM runs WHERE status = 'complete' ORDER BY finished_at DESC LIMIT 1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool. Tests use it with pgxmock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: pool.Close}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	status        TEXT NOT NULL,
	trees         INTEGER NOT NULL DEFAULT 0,
	neighborhoods INTEGER NOT NULL DEFAULT 0,
	rents         INTEGER NOT NULL DEFAULT 0,
	dropped_rows  INTEGER NOT NULL DEFAULT 0,
	started_at    TIMESTAMPTZ NOT NULL,
	finished_at   TIMESTAMPTZ NOT NULL,
	error         TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS trees (
	run_id              TEXT NOT NULL REFERENCES runs(id),
	ord                 INTEGER NOT NULL,
	id                  TEXT NOT NULL,
	status              TEXT NOT NULL,
	sidewalk            TEXT NOT NULL,
	problems            TEXT NOT NULL,
	latitude            DOUBLE PRECISION NOT NULL,
	longitude           DOUBLE PRECISION NOT NULL,
	neighborhood        TEXT NOT NULL,
	species             TEXT NOT NULL,
	rent_estimate       DOUBLE PRECISION,
	density_score       DOUBLE PRECISION NOT NULL,
	affordability_score DOUBLE PRECISION NOT NULL,
	health_score        INTEGER NOT NULL,
	accessibility_score DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, ord)
);

CREATE TABLE IF NOT EXISTS rents (
	neighborhood TEXT PRIMARY KEY,
	rent         DOUBLE PRECISION NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_trees_run_neighborhood ON trees(run_id, neighborhood);
CREATE INDEX IF NOT EXISTS idx_trees_run_species ON trees(run_id, species);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, run *model.Run, trees []*model.Tree) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, status, trees, neighborhoods, rents, dropped_rows, started_at, finished_at, error)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		run.ID, string(run.Status), run.Trees, run.Neighborhoods, run.Rents,
		run.DroppedRows, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.Error,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: insert run %s", run.ID)
	}

	rows := make([][]any, len(trees))
	for i, t := range trees {
		rows[i] = treeRow(run.ID, i, t)
	}
	if _, err := db.CopyFrom(ctx, s.pool, "trees", treeColumns, rows); err != nil {
		return eris.Wrapf(err, "postgres: copy trees of run %s", run.ID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, status, trees, neighborhoods, rents, dropped_rows, started_at, finished_at, error
		 FROM runs WHERE id = $1`,
		runID,
	)
	return scanPgRun(row)
}

func (s *PostgresStore) LatestRun(ctx context.Context) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, status, trees, neighborhoods, rents, dropped_rows, started_at, finished_at, error
		 FROM runs WHERE status = 'complete' ORDER BY finished_at DESC LIMIT 1`,
	)
	return scanPgRun(row)
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, status, trees, neighborhoods, rents, dropped_rows, started_at, finished_at, error
	          FROM runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanPgRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) ListTrees(ctx context.Context, runID string, filter TreeFilter) ([]model.Tree, error) {
	query := `SELECT ` + strings.Join(treeColumns[2:], ", ") + ` FROM trees WHERE run_id = $1`
	args := []any{runID}
	argIdx := 2

	if filter.Neighborhood != "" {
		query += fmt.Sprintf(` AND neighborhood = $%d`, argIdx)
		args = append(args, filter.Neighborhood)
		argIdx++
	}
	if filter.Species != "" {
		query += fmt.Sprintf(` AND species = $%d`, argIdx)
		args = append(args, filter.Species)
		argIdx++
	}
	if filter.MinScore > 0 {
		query += fmt.Sprintf(` AND accessibility_score >= $%d`, argIdx)
		args = append(args, filter.MinScore)
		argIdx++
	}
	query += ` ORDER BY ord`

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list trees")
	}
	defer rows.Close()

	var trees []model.Tree
	for rows.Next() {
		t, err := scanPgTree(rows)
		if err != nil {
			return nil, err
		}
		trees = append(trees, *t)
	}
	return trees, eris.Wrap(rows.Err(), "postgres: list trees iterate")
}

func (s *PostgresStore) RandomTree(ctx context.Context, runID string) (*model.Tree, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+strings.Join(treeColumns[2:], ", ")+` FROM trees
		 WHERE run_id = $1 ORDER BY random() LIMIT 1`,
		runID,
	)
	t, err := scanPgTree(row)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return t, err
}

func (s *PostgresStore) SaveRents(ctx context.Context, rents model.RentTable) error {
	rows := make([][]any, 0, len(rents))
	for hood, rent := range rents {
		rows = append(rows, []any{hood, rent})
	}

	_, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "rents",
		Columns:      []string{"neighborhood", "rent"},
		ConflictKeys: []string{"neighborhood"},
	}, rows)
	return eris.Wrap(err, "postgres: save rents")
}

func scanPgRun(row pgx.Row) (*model.Run, error) {
	var r model.Run
	err := row.Scan(&r.ID, &r.Status, &r.Trees, &r.Neighborhoods, &r.Rents,
		&r.DroppedRows, &r.StartedAt, &r.FinishedAt, &r.Error)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrap(ErrNotFound, "run")
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan run")
	}
	return &r, nil
}

func scanPgTree(row pgx.Row) (*model.Tree, error) {
	var t model.Tree
	var rent *float64
	err := row.Scan(&t.ID, &t.Status, &t.Sidewalk, &t.Problems,
		&t.Latitude, &t.Longitude, &t.Neighborhood, &t.Species, &rent,
		&t.DensityScore, &t.AffordabilityScore, &t.HealthScore, &t.AccessibilityScore)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrap(ErrNotFound, "tree")
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan tree")
	}
	t.RentEstimate = rent
	return &t, nil
}
