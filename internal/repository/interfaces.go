// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/simplesocial/internal/model"
)

// ErrUniqueViolation はUNIQUE制約違反で挿入が拒否されたことを表す。
// ドライバ固有のエラーをラップして返す。
var ErrUniqueViolation = errors.New("unique constraint violation")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成し、採番されたIDを設定したユーザーを返す。
	// usernameまたはemailが重複する場合はErrUniqueViolationをラップしたエラーを返す。
	Create(ctx context.Context, user *model.User) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// PostRepository は投稿データの永続化インターフェース。
type PostRepository interface {
	// Create は投稿を作成し、採番されたIDを設定した投稿を返す。
	// CreatedAtは呼び出し側で設定済みであること。
	Create(ctx context.Context, post *model.Post) (*model.Post, error)

	// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Post, error)

	// ListAll は全投稿をcreatedat降順で返す。
	ListAll(ctx context.Context) ([]*model.Post, error)
}

// RelationStore は多対多の関係（フォロー、いいね）を表すエッジの永続化インターフェース。
// エッジは(subject, object)の組で一意に識別される。
type RelationStore interface {
	// Add はエッジを冪等に作成する。
	// この呼び出しでエッジが作成された場合はtrue、既に存在した場合はfalseを返す。
	Add(ctx context.Context, subjectID, objectID int64) (bool, error)

	// Remove はエッジを削除する。
	// 行が実際に削除された場合はtrue、存在しなかった場合はfalseを返す。
	Remove(ctx context.Context, subjectID, objectID int64) (bool, error)

	// Exists はエッジが存在するかどうかを返す。
	Exists(ctx context.Context, subjectID, objectID int64) (bool, error)

	// CountByObject はobjectIDを参照するエッジ数を返す。
	CountByObject(ctx context.Context, objectID int64) (int, error)

	// CountBySubject はsubjectIDから出るエッジ数を返す。
	CountBySubject(ctx context.Context, subjectID int64) (int, error)
}
