package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strconv"
	"sync"

	"github.com/pressly/goose/v3"
)

const (
	DefaultDir  = "pkg/migrate/migrations"
	embeddedDir = "migrations"
	dialect     = "postgres"
)

//go:embed migrations/*.sql
var embedded embed.FS

// goose keeps its dialect and base FS in package globals.
var gooseMu sync.Mutex

type source struct {
	fsys fs.FS // nil reads from disk
	dir  string
}

func (s source) with(fn func() error) error {
	if s.dir == "" {
		return fmt.Errorf("dir is required")
	}
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetBaseFS(s.fsys)
	defer goose.SetBaseFS(nil)
	return fn()
}

// Run executes a goose command (up, down, status, ...) against dir on disk.
func Run(ctx context.Context, db *sql.DB, dir string, command string, args ...string) error {
	return source{dir: dir}.run(ctx, db, command, args...)
}

// RunEmbedded applies the migrations compiled into the binary.
func RunEmbedded(ctx context.Context, db *sql.DB, command string, args ...string) error {
	return source{fsys: embedded, dir: embeddedDir}.run(ctx, db, command, args...)
}

// MigrateToVersion moves the schema up or down until it sits at targetVersion.
func MigrateToVersion(ctx context.Context, db *sql.DB, dir string, targetVersion string) error {
	return source{dir: dir}.migrateTo(ctx, db, targetVersion)
}

// MigrateEmbeddedToVersion is MigrateToVersion over the embedded migrations.
func MigrateEmbeddedToVersion(ctx context.Context, db *sql.DB, targetVersion string) error {
	return source{fsys: embedded, dir: embeddedDir}.migrateTo(ctx, db, targetVersion)
}

func (s source) run(ctx context.Context, db *sql.DB, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	return s.with(func() error {
		if err := goose.RunContext(ctx, command, db, s.dir, args...); err != nil {
			return fmt.Errorf("goose %s: %w", command, err)
		}
		return nil
	})
}

func (s source) migrateTo(ctx context.Context, db *sql.DB, targetVersion string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	return s.with(func() error {
		current, err := goose.GetDBVersionContext(ctx, db)
		if err != nil {
			return fmt.Errorf("get db version: %w", err)
		}
		switch {
		case current < target:
			err = goose.UpToContext(ctx, db, s.dir, target)
		case current > target:
			err = goose.DownToContext(ctx, db, s.dir, target)
		default:
			return nil
		}
		if err != nil {
			return fmt.Errorf("goose migrate %d -> %d: %w", current, target, err)
		}
		return nil
	})
}
