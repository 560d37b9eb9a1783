package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/ignatzorin/ruralfund-backend/internal/logger"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// NewPostgres открывает пул соединений и ждёт готовности базы.
// В docker-compose база поднимается позже API, поэтому подключение повторяется.
func NewPostgres(ctx context.Context, dsn string) (*sqlx.DB, error) {
	var (
		conn *sqlx.DB
		err  error
	)

	for attempt := 1; attempt <= connectAttempts; attempt++ {
		conn, err = sqlx.ConnectContext(ctx, "postgres", dsn)
		if err == nil {
			break
		}
		logger.Entry(map[string]interface{}{"attempt": attempt}).WithError(err).Warn("postgres: база недоступна, повтор")

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("postgres: подключение отменено: %w", ctx.Err())
		case <-time.After(connectBackoff):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: не удалось подключиться: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(10)
	conn.SetConnMaxLifetime(5 * time.Minute)

	return conn, nil
}

// RunMigrations применяет по порядку *.sql из каталога, пропуская уже применённые.
func RunMigrations(ctx context.Context, conn *sqlx.DB, migrationsDir string) error {
	if _, err := conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return fmt.Errorf("postgres: таблица миграций: %w", err)
	}

	names, err := migrationFiles(migrationsDir)
	if err != nil {
		return err
	}

	for _, name := range names {
		var applied bool
		if err := conn.GetContext(ctx, &applied,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE name = $1)`, name); err != nil {
			return fmt.Errorf("postgres: статус миграции %s: %w", name, err)
		}
		if applied {
			continue
		}

		if err := applyMigration(ctx, conn, filepath.Join(migrationsDir, name), name); err != nil {
			return err
		}
		logger.Entry(map[string]interface{}{"migration": name}).Info("postgres: миграция применена")
	}

	return nil
}

// migrationFiles возвращает отсортированные имена sql-файлов каталога.
func migrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("postgres: не удалось прочитать каталог миграций: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func applyMigration(ctx context.Context, conn *sqlx.DB, path, name string) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("postgres: не удалось прочитать миграцию %s: %w", path, err)
	}

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: транзакция миграции %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(body)); err != nil {
		return fmt.Errorf("postgres: не удалось выполнить миграцию %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
		return fmt.Errorf("postgres: не удалось отметить миграцию %s: %w", name, err)
	}

	return tx.Commit()
}
