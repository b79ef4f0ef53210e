package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/simplesocial/internal/model"
)

// SQLPostRepo はSQLデータベースを使用した投稿リポジトリ。
type SQLPostRepo struct {
	db *sql.DB
}

// NewSQLPostRepo はSQLPostRepoを生成する。
func NewSQLPostRepo(db *sql.DB) *SQLPostRepo {
	return &SQLPostRepo{db: db}
}

// Create は投稿を作成し、採番されたIDを設定した投稿を返す。
// authoridに対応するユーザーの存在確認は行わない。
func (r *SQLPostRepo) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	created := *post

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO posts (title, body, authorid, createdat)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		post.Title, post.Body, post.AuthorID, post.CreatedAt,
	).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}

	return &created, nil
}

// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
func (r *SQLPostRepo) FindByID(ctx context.Context, id int64) (*model.Post, error) {
	post := &model.Post{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, body, authorid, createdat FROM posts WHERE id = $1`,
		id,
	).Scan(&post.ID, &post.Title, &post.Body, &post.AuthorID, &post.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post by ID: %w", err)
	}

	post.CreatedAt = post.CreatedAt.UTC()
	return post, nil
}

// ListAll は全投稿をcreatedat降順で返す。
// 同一時刻の投稿はIDの降順で並べる。投稿がない場合は空スライスを返す。
func (r *SQLPostRepo) ListAll(ctx context.Context) ([]*model.Post, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, body, authorid, createdat
		 FROM posts
		 ORDER BY createdat DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*model.Post, 0)
	for rows.Next() {
		post := &model.Post{}
		if err := rows.Scan(&post.ID, &post.Title, &post.Body, &post.AuthorID, &post.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		post.CreatedAt = post.CreatedAt.UTC()
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}

	return posts, nil
}

// compile-time interface check
var _ PostRepository = (*SQLPostRepo)(nil)
