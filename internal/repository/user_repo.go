package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/simplesocial/internal/database"
	"github.com/hitoshi/simplesocial/internal/model"
)

// SQLUserRepo はSQLデータベースを使用したユーザーリポジトリ。
// PostgreSQLとSQLiteの共通構文のみを使用する。
type SQLUserRepo struct {
	db *sql.DB
}

// NewSQLUserRepo はSQLUserRepoを生成する。
func NewSQLUserRepo(db *sql.DB) *SQLUserRepo {
	return &SQLUserRepo{db: db}
}

// Create はユーザーを作成し、採番されたIDを設定したユーザーを返す。
func (r *SQLUserRepo) Create(ctx context.Context, user *model.User) (*model.User, error) {
	created := &model.User{
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Email:       user.Email,
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (username, displayname, email)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		user.Username, user.DisplayName, user.Email,
	).Scan(&created.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("failed to insert user: %w: %w", ErrUniqueViolation, err)
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return created, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *SQLUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, displayname, email FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Username, &user.DisplayName, &user.Email)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// compile-time interface check
var _ UserRepository = (*SQLUserRepo)(nil)
