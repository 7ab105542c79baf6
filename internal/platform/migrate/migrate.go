// Package migrate applies the embedded goose migrations to Postgres.
package migrate

import (
	"context"
	"fmt"
	"io/fs"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/storepulse/storepulse/migrations"
)

var sqlFileRe = regexp.MustCompile(`^(\d+)_[a-z0-9_]+\.sql$`)

// Run executes a goose command (up, down, status, version, redo, reset)
// against the pool using the embedded migrations.
func Run(ctx context.Context, pool *pgxpool.Pool, command string, args ...string) error {
	if pool == nil {
		return fmt.Errorf("platform/migrate: pool is required")
	}
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("platform/migrate: set dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, db, ".", args...); err != nil {
		return fmt.Errorf("platform/migrate: goose %s: %w", command, err)
	}
	return nil
}

// Validate checks migration file names for unique versions and that every
// file declares both goose sections.
func Validate(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("platform/migrate: read dir: %w", err)
	}
	seen := map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("platform/migrate: invalid migration filename %q", name)
		}
		version := strings.TrimLeft(m[1], "0")
		if prev, ok := seen[version]; ok {
			return fmt.Errorf("platform/migrate: duplicate version in %q and %q", prev, name)
		}
		seen[version] = name

		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("platform/migrate: read %q: %w", name, err)
		}
		text := string(body)
		if !strings.Contains(text, "-- +goose Up") {
			return fmt.Errorf("platform/migrate: %q missing \"-- +goose Up\"", name)
		}
		if !strings.Contains(text, "-- +goose Down") {
			return fmt.Errorf("platform/migrate: %q missing \"-- +goose Down\"", name)
		}
	}
	return nil
}
