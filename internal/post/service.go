// Package post は投稿管理のドメインロジックを提供する。
package post

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/simplesocial/internal/metrics"
	"github.com/hitoshi/simplesocial/internal/model"
	"github.com/hitoshi/simplesocial/internal/repository"
)

// Service は投稿管理のサービス層。
type Service struct {
	postRepo repository.PostRepository
	metrics  metrics.MetricsCollector
	now      func() time.Time
}

// Option はServiceの生成オプション。
type Option func(*Service)

// WithClock は作成時刻の取得に使用する時計を差し替える。テスト用。
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(postRepo repository.PostRepository, mc metrics.MetricsCollector, opts ...Option) *Service {
	if mc == nil {
		mc = metrics.Nop{}
	}
	s := &Service{
		postRepo: postRepo,
		metrics:  mc,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create は投稿を作成する。
// CreatedAtは呼び出し側の値を無視し、現在時刻（UTC）を設定する。
// PostgreSQLのtimestamptzと往復で一致するようマイクロ秒に切り詰める。
// AuthorIDのユーザー存在確認は行わない。
func (s *Service) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	input := &model.Post{
		Title:     post.Title,
		Body:      post.Body,
		AuthorID:  post.AuthorID,
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}

	start := time.Now()
	created, err := s.postRepo.Create(ctx, input)
	s.metrics.RecordStoreLatency("post.create", time.Since(start))

	if err != nil {
		return nil, fmt.Errorf("投稿の作成に失敗しました: %w", err)
	}

	s.metrics.RecordPostCreated()
	slog.Info("post created",
		slog.Int64("post_id", created.ID),
		slog.Int64("author_id", created.AuthorID),
	)

	return created, nil
}

// Get は指定IDの投稿を返す。存在しない場合はPOST_NOT_FOUNDエラーを返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.Post, error) {
	start := time.Now()
	post, err := s.postRepo.FindByID(ctx, id)
	s.metrics.RecordStoreLatency("post.get", time.Since(start))

	if err != nil {
		return nil, fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(id)
	}

	return post, nil
}

// List は全投稿を作成日時の降順（新しい順）で返す。ページネーションは行わない。
func (s *Service) List(ctx context.Context) ([]*model.Post, error) {
	start := time.Now()
	posts, err := s.postRepo.ListAll(ctx)
	s.metrics.RecordStoreLatency("post.list", time.Since(start))

	if err != nil {
		return nil, fmt.Errorf("投稿一覧の取得に失敗しました: %w", err)
	}

	return posts, nil
}
