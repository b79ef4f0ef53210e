// Package follow はフォロー関係のドメインロジックを提供する。
package follow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/simplesocial/internal/metrics"
	"github.com/hitoshi/simplesocial/internal/repository"
)

const relationName = "follow"

// Service はフォロー関係のサービス層。
// フォロー・アンフォローは冪等なトグル操作で、戻り値のboolは
// この呼び出しで状態が遷移したかどうかを表す。
type Service struct {
	store   repository.RelationStore
	metrics metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
// storeにはfollowsテーブルのRelationStoreを渡す。
func NewService(store repository.RelationStore, mc metrics.MetricsCollector) *Service {
	if mc == nil {
		mc = metrics.Nop{}
	}
	return &Service{
		store:   store,
		metrics: mc,
	}
}

// Follow はfollowerIDからfollowedIDへのフォローを作成する。
// 新規に作成した場合はtrue、既にフォロー済みの場合はfalseを返す（エラーではない）。
// 自分自身のフォローは禁止しない。
func (s *Service) Follow(ctx context.Context, followerID, followedID int64) (bool, error) {
	start := time.Now()
	created, err := s.store.Add(ctx, followerID, followedID)
	s.metrics.RecordStoreLatency("follow.add", time.Since(start))

	if err != nil {
		return false, fmt.Errorf("フォローの作成に失敗しました: %w", err)
	}

	s.metrics.RecordRelationChange(relationName, "add", created)
	if created {
		slog.Info("follow created",
			slog.Int64("follower_id", followerID),
			slog.Int64("followed_id", followedID),
		)
	}

	return created, nil
}

// Unfollow はフォローを解除する。
// 実際に削除した場合はtrue、フォロー関係が存在しなかった場合はfalseを返す。
func (s *Service) Unfollow(ctx context.Context, followerID, followedID int64) (bool, error) {
	start := time.Now()
	removed, err := s.store.Remove(ctx, followerID, followedID)
	s.metrics.RecordStoreLatency("follow.remove", time.Since(start))

	if err != nil {
		return false, fmt.Errorf("フォローの解除に失敗しました: %w", err)
	}

	s.metrics.RecordRelationChange(relationName, "remove", removed)
	if removed {
		slog.Info("follow removed",
			slog.Int64("follower_id", followerID),
			slog.Int64("followed_id", followedID),
		)
	}

	return removed, nil
}

// IsFollowing はfollowerIDがfollowedIDをフォローしているかどうかを返す。
func (s *Service) IsFollowing(ctx context.Context, followerID, followedID int64) (bool, error) {
	exists, err := s.store.Exists(ctx, followerID, followedID)
	if err != nil {
		return false, fmt.Errorf("フォロー状態の確認に失敗しました: %w", err)
	}
	return exists, nil
}

// CountFollowers はuserIDをフォローしているユーザー数を返す。
func (s *Service) CountFollowers(ctx context.Context, userID int64) (int, error) {
	start := time.Now()
	count, err := s.store.CountByObject(ctx, userID)
	s.metrics.RecordStoreLatency("follow.count_followers", time.Since(start))

	if err != nil {
		return 0, fmt.Errorf("フォロワー数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// CountFollowing はuserIDがフォローしているユーザー数を返す。
func (s *Service) CountFollowing(ctx context.Context, userID int64) (int, error) {
	start := time.Now()
	count, err := s.store.CountBySubject(ctx, userID)
	s.metrics.RecordStoreLatency("follow.count_following", time.Since(start))

	if err != nil {
		return 0, fmt.Errorf("フォロー数の取得に失敗しました: %w", err)
	}
	return count, nil
}
