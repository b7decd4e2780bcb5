package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/canopy-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	status        TEXT NOT NULL,
	trees         INTEGER NOT NULL DEFAULT 0,
	neighborhoods INTEGER NOT NULL DEFAULT 0,
	rents         INTEGER NOT NULL DEFAULT 0,
	dropped_rows  INTEGER NOT NULL DEFAULT 0,
	started_at    DATETIME NOT NULL,
	finished_at   DATETIME NOT NULL,
	error         TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS trees (
	run_id              TEXT NOT NULL REFERENCES runs(id),
	ord                 INTEGER NOT NULL,
	id                  TEXT NOT NULL,
	status              TEXT NOT NULL,
	sidewalk            TEXT NOT NULL,
	problems            TEXT NOT NULL,
	latitude            REAL NOT NULL,
	longitude           REAL NOT NULL,
	neighborhood        TEXT NOT NULL,
	species             TEXT NOT NULL,
	rent_estimate       REAL,
	density_score       REAL NOT NULL,
	affordability_score REAL NOT NULL,
	health_score        INTEGER NOT NULL,
	accessibility_score REAL NOT NULL,
	PRIMARY KEY (run_id, ord)
);

CREATE TABLE IF NOT EXISTS rents (
	neighborhood TEXT PRIMARY KEY,
	rent         REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_trees_run_neighborhood ON trees(run_id, neighborhood);
CREATE INDEX IF NOT EXISTS idx_trees_run_species ON trees(run_id, species);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run *model.Run, trees []*model.Tree) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, status, trees, neighborhoods, rents, dropped_rows, started_at, finished_at, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Status), run.Trees, run.Neighborhoods, run.Rents,
		run.DroppedRows, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.Error,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert run %s", run.ID)
	}

	insertSQL := fmt.Sprintf(
		`INSERT INTO trees (%s) VALUES (%s)`,
		strings.Join(treeColumns, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(treeColumns)), ", "),
	)
	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare tree insert")
	}
	defer stmt.Close()

	for i, t := range trees {
		if _, err := stmt.ExecContext(ctx, treeRow(run.ID, i, t)...); err != nil {
			return eris.Wrapf(err, "sqlite: insert tree %d of run %s", i, run.ID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit run")
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, trees, neighborhoods, rents, dropped_rows, started_at, finished_at, error
		 FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) LatestRun(ctx context.Context) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, trees, neighborhoods, rents, dropped_rows, started_at, finished_at, error
		 FROM runs WHERE status = ? ORDER BY finished_at DESC LIMIT 1`,
		string(model.RunStatusComplete),
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, status, trees, neighborhoods, rents, dropped_rows, started_at, finished_at, error
	          FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) ListTrees(ctx context.Context, runID string, filter TreeFilter) ([]model.Tree, error) {
	query := `SELECT ` + strings.Join(treeColumns[2:], ", ") + ` FROM trees WHERE run_id = ?`
	args := []any{runID}

	if filter.Neighborhood != "" {
		query += ` AND neighborhood = ?`
		args = append(args, filter.Neighborhood)
	}
	if filter.Species != "" {
		query += ` AND species = ?`
		args = append(args, filter.Species)
	}
	if filter.MinScore > 0 {
		query += ` AND accessibility_score >= ?`
		args = append(args, filter.MinScore)
	}
	query += ` ORDER BY ord`

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list trees")
	}
	defer rows.Close()

	var trees []model.Tree
	for rows.Next() {
		t, err := scanTree(rows)
		if err != nil {
			return nil, err
		}
		trees = append(trees, *t)
	}
	return trees, eris.Wrap(rows.Err(), "sqlite: list trees iterate")
}

func (s *SQLiteStore) RandomTree(ctx context.Context, runID string) (*model.Tree, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+strings.Join(treeColumns[2:], ", ")+` FROM trees
		 WHERE run_id = ? ORDER BY RANDOM() LIMIT 1`,
		runID,
	)
	t, err := scanTree(row)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return t, err
}

func (s *SQLiteStore) SaveRents(ctx context.Context, rents model.RentTable) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO rents (neighborhood, rent) VALUES (?, ?)
		 ON CONFLICT (neighborhood) DO UPDATE SET rent = excluded.rent`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare rent upsert")
	}
	defer stmt.Close()

	for hood, rent := range rents {
		if _, err := stmt.ExecContext(ctx, hood, rent); err != nil {
			return eris.Wrapf(err, "sqlite: upsert rent %s", hood)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit rents")
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	err := row.Scan(&r.ID, &r.Status, &r.Trees, &r.Neighborhoods, &r.Rents,
		&r.DroppedRows, &r.StartedAt, &r.FinishedAt, &r.Error)
	if err == sql.ErrNoRows {
		return nil, eris.Wrap(ErrNotFound, "run")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}
	return &r, nil
}

func scanTree(row scannable) (*model.Tree, error) {
	var t model.Tree
	var rent sql.NullFloat64
	err := row.Scan(&t.ID, &t.Status, &t.Sidewalk, &t.Problems,
		&t.Latitude, &t.Longitude, &t.Neighborhood, &t.Species, &rent,
		&t.DensityScore, &t.AffordabilityScore, &t.HealthScore, &t.AccessibilityScore)
	if err == sql.ErrNoRows {
		return nil, eris.Wrap(ErrNotFound, "tree")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan tree")
	}
	if rent.Valid {
		t.RentEstimate = &rent.Float64
	}
	return &t, nil
}
