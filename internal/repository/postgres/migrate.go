package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration is one applied or reverted schema file.
type Migration struct {
	Name string
}

// MigrateUp applies every up migration in name order.
func MigrateUp(ctx context.Context, pool *pgxpool.Pool) ([]Migration, error) {
	return run(ctx, pool, ".up.sql", false)
}

// MigrateDown reverts every migration in reverse name order.
func MigrateDown(ctx context.Context, pool *pgxpool.Pool) ([]Migration, error) {
	return run(ctx, pool, ".down.sql", true)
}

func run(ctx context.Context, pool *pgxpool.Pool, suffix string, reverse bool) ([]Migration, error) {
	names, err := migrationNames(suffix)
	if err != nil {
		return nil, err
	}
	if reverse {
		sort.Sort(sort.Reverse(sort.StringSlice(names)))
	}

	var applied []Migration
	for _, name := range names {
		b, err := migrationFiles.ReadFile("migrations/" + name)
		if err != nil {
			return applied, fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(b)); err != nil {
			return applied, fmt.Errorf("apply migration %s: %w", name, err)
		}
		applied = append(applied, Migration{Name: strings.TrimSuffix(name, suffix)})
	}
	return applied, nil
}

func migrationNames(suffix string) ([]string, error) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), suffix) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
