package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// RelationTable は関係テーブルの名前とカラムを表す。
// (Subject, Object)が複合主キーであること。
type RelationTable struct {
	Name    string
	Subject string
	Object  string
}

var (
	// FollowsTable はフォロー関係のテーブル定義。subjectがフォローする側。
	FollowsTable = RelationTable{Name: "follows", Subject: "follower_id", Object: "followed_id"}
	// LikesTable はいいね関係のテーブル定義。subjectがユーザー、objectが投稿。
	LikesTable = RelationTable{Name: "likes", Subject: "user_id", Object: "post_id"}
)

// SQLRelationStore はSQLデータベースを使用した関係エッジのストア。
// クエリはテーブル定義から生成時に一度だけ組み立てる。
type SQLRelationStore struct {
	db    *sql.DB
	table RelationTable

	insertSQL         string
	deleteSQL         string
	existsSQL         string
	countByObjectSQL  string
	countBySubjectSQL string
}

// NewSQLRelationStore はSQLRelationStoreを生成する。
// tableの各名前は定数からのみ渡すこと（SQLに直接埋め込まれる）。
func NewSQLRelationStore(db *sql.DB, table RelationTable) *SQLRelationStore {
	return &SQLRelationStore{
		db:    db,
		table: table,
		insertSQL: fmt.Sprintf(
			`INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			table.Name, table.Subject, table.Object),
		deleteSQL: fmt.Sprintf(
			`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
			table.Name, table.Subject, table.Object),
		existsSQL: fmt.Sprintf(
			`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
			table.Name, table.Subject, table.Object),
		countByObjectSQL: fmt.Sprintf(
			`SELECT COUNT(*) FROM %s WHERE %s = $1`,
			table.Name, table.Object),
		countBySubjectSQL: fmt.Sprintf(
			`SELECT COUNT(*) FROM %s WHERE %s = $1`,
			table.Name, table.Subject),
	}
}

// NewFollowStore はフォロー関係のストアを生成する。
func NewFollowStore(db *sql.DB) *SQLRelationStore {
	return NewSQLRelationStore(db, FollowsTable)
}

// NewLikeStore はいいね関係のストアを生成する。
func NewLikeStore(db *sql.DB) *SQLRelationStore {
	return NewSQLRelationStore(db, LikesTable)
}

// Add はエッジを冪等に作成する。
// 複合主キーとINSERT ON CONFLICT DO NOTHINGにより、同時実行時も重複は1件のみ受理される。
func (s *SQLRelationStore) Add(ctx context.Context, subjectID, objectID int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, s.insertSQL, subjectID, objectID)
	if err != nil {
		return false, fmt.Errorf("failed to insert %s edge: %w", s.table.Name, err)
	}
	return affectedOne(result, s.table.Name)
}

// Remove はエッジを削除する。行が削除された場合のみtrueを返す。
func (s *SQLRelationStore) Remove(ctx context.Context, subjectID, objectID int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, s.deleteSQL, subjectID, objectID)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s edge: %w", s.table.Name, err)
	}
	return affectedOne(result, s.table.Name)
}

// Exists はエッジが存在するかどうかを返す。
func (s *SQLRelationStore) Exists(ctx context.Context, subjectID, objectID int64) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, s.existsSQL, subjectID, objectID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s edge: %w", s.table.Name, err)
	}
	return exists, nil
}

// CountByObject はobjectIDを参照するエッジ数を返す。キャッシュは行わない。
func (s *SQLRelationStore) CountByObject(ctx context.Context, objectID int64) (int, error) {
	return s.count(ctx, s.countByObjectSQL, objectID)
}

// CountBySubject はsubjectIDから出るエッジ数を返す。
func (s *SQLRelationStore) CountBySubject(ctx context.Context, subjectID int64) (int, error) {
	return s.count(ctx, s.countBySubjectSQL, subjectID)
}

func (s *SQLRelationStore) count(ctx context.Context, query string, id int64) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s edges: %w", s.table.Name, err)
	}
	return count, nil
}

func affectedOne(result sql.Result, table string) (bool, error) {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected on %s: %w", table, err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ RelationStore = (*SQLRelationStore)(nil)
