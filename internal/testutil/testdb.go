// Package testutil gives database tests a private Postgres schema with the
// repo's migrations applied.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"flappy-casino/internal/config"
	"flappy-casino/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OpenTestStore skips the test when TEST_POSTGRES_DSN is unset. Otherwise it
// creates schema test_<nanos>, points the pool's search_path at it, applies
// every migrations/*.up.sql in name order and drops the schema on cleanup
// unless TEST_KEEP_SCHEMA is set.
func OpenTestStore(t *testing.T) *store.Store {
	t.Helper()
	cfg, err := config.LoadTest()
	if err != nil {
		t.Skipf("skip test db: %v", err)
	}
	ctx := context.Background()
	schema := pgx.Identifier{fmt.Sprintf("test_%d", time.Now().UnixNano())}.Sanitize()

	admin, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		t.Fatalf("open admin pool: %v", err)
	}
	if _, err := admin.Exec(ctx, "CREATE SCHEMA "+schema); err != nil {
		admin.Close()
		t.Fatalf("create schema: %v", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresDSN)
	if err != nil {
		admin.Close()
		t.Fatalf("parse dsn: %v", err)
	}
	poolCfg.ConnConfig.RuntimeParams["search_path"] = schema
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		admin.Close()
		t.Fatalf("open store pool: %v", err)
	}
	st := &store.Store{Pool: pool}

	t.Cleanup(func() {
		st.Close()
		defer admin.Close()
		if cfg.KeepSchema {
			t.Logf("kept test schema %s", schema)
			return
		}
		if _, err := admin.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE"); err != nil {
			t.Logf("drop schema %s: %v", schema, err)
		}
	})

	if err := migrate(ctx, st); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return st
}

func migrate(ctx context.Context, st *store.Store) error {
	dir, err := findMigrationsDir()
	if err != nil {
		return err
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		return err
	}
	sort.Strings(files)
	for _, f := range files {
		sql, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		if _, err := st.Pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(f), err)
		}
	}
	return nil
}

// findMigrationsDir walks up from the test's working directory, which is the
// package directory under go test.
func findMigrationsDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		p := filepath.Join(dir, "migrations")
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("migrations directory not found")
		}
		dir = parent
	}
}

// MustCreateAccount inserts a wallet with the given balance. The PIN hash is
// stored verbatim; callers that exercise authentication hash it first.
func MustCreateAccount(t *testing.T, st *store.Store, nick, pinHash string, coins int64) {
	t.Helper()
	if err := st.CreateAccount(context.Background(), nick, pinHash, coins); err != nil {
		t.Fatalf("create account %s: %v", nick, err)
	}
}
