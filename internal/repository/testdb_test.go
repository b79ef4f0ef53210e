package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/hitoshi/simplesocial/internal/database"
)

// newTestDB はマイグレーション済みのインメモリSQLiteデータベースを返す。
// テストごとに独立したデータベースとなる。
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(database.DriverSQLite, ":memory:", database.PoolConfig{})
	if err != nil {
		t.Fatalf("テスト用データベースのオープンに失敗: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.MigrateUp(context.Background(), db, database.DriverSQLite); err != nil {
		t.Fatalf("マイグレーション実行に失敗: %v", err)
	}

	return db
}

// mustExec はセットアップ用のSQLを実行する。
func mustExec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("セットアップSQLの実行に失敗: %v\n%s", err, query)
	}
}
