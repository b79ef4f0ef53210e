package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// migrationsDir はドライバに対応するマイグレーションディレクトリを返す。
// lib/pqとpgxはどちらもPostgreSQL向けの定義を使用する。
func migrationsDir(driver string) string {
	if driver == DriverSQLite {
		return "migrations/sqlite"
	}
	return "migrations/postgres"
}

// NewMigrator はマイグレーション実行用のmigrateインスタンスを生成する。
// target にはdbに対応するmigrateのデータベースドライバを渡す。
func NewMigrator(driver string, target migratedb.Driver) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, migrationsDir(driver))
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driver, target)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return m, nil
}

// MigrateUp は既存の接続プールに対してすべてのマイグレーションを適用する。
// すでに最新の場合はエラーなしで返る。dbはクローズしない。
func MigrateUp(ctx context.Context, db *sql.DB, driver string) error {
	var target migratedb.Driver

	switch driver {
	case DriverSQLite:
		drv, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
		if err != nil {
			return fmt.Errorf("failed to create sqlite migration driver: %w", err)
		}
		target = drv
	case DriverPostgres, DriverPgx:
		// 専用の接続を借りてマイグレーションし、終了後にプールへ返却する
		conn, err := db.Conn(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire connection for migration: %w", err)
		}
		defer conn.Close()

		drv, err := migratepg.WithConnection(ctx, conn, &migratepg.Config{})
		if err != nil {
			return fmt.Errorf("failed to create postgres migration driver: %w", err)
		}
		target = drv
	default:
		return fmt.Errorf("unsupported database driver: %q", driver)
	}

	m, err := NewMigrator(driver, target)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// RunMigrations は新しい接続を開いてすべてのマイグレーションを適用し、接続を閉じる。
// migrateサブコマンドから使用する。
func RunMigrations(ctx context.Context, driver, databaseURL string) error {
	db, err := Open(driver, databaseURL, PoolConfig{})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	return MigrateUp(ctx, db, driver)
}
