// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/simplesocial/internal/metrics"
	"github.com/hitoshi/simplesocial/internal/model"
	"github.com/hitoshi/simplesocial/internal/repository"
)

// Service はユーザー管理のサービス層。
// ユーザー登録と取得を提供する。
type Service struct {
	userRepo repository.UserRepository
	metrics  metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
// mcがnilの場合はメトリクスを記録しない。
func NewService(userRepo repository.UserRepository, mc metrics.MetricsCollector) *Service {
	if mc == nil {
		mc = metrics.Nop{}
	}
	return &Service{
		userRepo: userRepo,
		metrics:  mc,
	}
}

// Create はユーザーを登録し、採番されたIDを含むユーザーを返す。
// usernameまたはemailが既に存在する場合はDUPLICATE_USERエラーを返す。
func (s *Service) Create(ctx context.Context, user *model.User) (*model.User, error) {
	start := time.Now()
	created, err := s.userRepo.Create(ctx, user)
	s.metrics.RecordStoreLatency("user.create", time.Since(start))

	if err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, model.NewDuplicateUserError()
		}
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	s.metrics.RecordUserCreated()
	slog.Info("user created",
		slog.Int64("user_id", created.ID),
		slog.String("username", created.Username),
	)

	return created, nil
}

// Get は指定IDのユーザーを返す。
// 存在しない場合はUSER_NOT_FOUNDエラーを返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.User, error) {
	start := time.Now()
	user, err := s.userRepo.FindByID(ctx, id)
	s.metrics.RecordStoreLatency("user.get", time.Since(start))

	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(id)
	}

	return user, nil
}
