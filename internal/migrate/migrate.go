package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/Domenick1991/carpool/internal/logging"
)

const (
	createVersionsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at TIMESTAMPTZ NOT NULL DEFAULT now())`
	selectVersions      = `SELECT version FROM schema_migrations`
	insertVersion       = `INSERT INTO schema_migrations (version) VALUES ($1)`
)

// Runner applies *.sql files in lexical order, each in its own transaction,
// skipping versions already recorded in schema_migrations.
type Runner struct {
	db     *sql.DB
	logger *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Runner {
	return &Runner{db: db, logger: logging.OrDefault(logger)}
}

func (r *Runner) Apply(ctx context.Context, files fs.FS) ([]string, error) {
	if _, err := r.db.ExecContext(ctx, createVersionsTable); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}

	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	done := make([]string, 0)
	for _, name := range names {
		if applied[name] {
			continue
		}
		body, err := fs.ReadFile(files, name)
		if err != nil {
			return done, fmt.Errorf("read %s: %w", name, err)
		}
		if err := r.applyOne(ctx, name, string(body)); err != nil {
			return done, err
		}
		r.logger.Info("migration applied", "version", name)
		done = append(done, name)
	}
	return done, nil
}

func (r *Runner) applied(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, selectVersions)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out[v] = true
	}
	return out, rows.Err()
}

func (r *Runner) applyOne(ctx context.Context, name, body string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if strings.TrimSpace(body) != "" {
		if _, err := tx.ExecContext(ctx, body); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}
	if _, err := tx.ExecContext(ctx, insertVersion, name); err != nil {
		return fmt.Errorf("record %s: %w", name, err)
	}
	return tx.Commit()
}
