// Package like はいいね関係のドメインロジックを提供する。
package like

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/simplesocial/internal/metrics"
	"github.com/hitoshi/simplesocial/internal/repository"
)

const relationName = "like"

// Service はいいね関係のサービス層。
type Service struct {
	store   repository.RelationStore
	metrics metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
// storeにはlikesテーブルのRelationStoreを渡す。
func NewService(store repository.RelationStore, mc metrics.MetricsCollector) *Service {
	if mc == nil {
		mc = metrics.Nop{}
	}
	return &Service{
		store:   store,
		metrics: mc,
	}
}

// Like はuserIDによるpostIDへのいいねを作成する。
// 新規に作成した場合はtrue、既にいいね済みの場合はfalseを返す。
func (s *Service) Like(ctx context.Context, userID, postID int64) (bool, error) {
	start := time.Now()
	created, err := s.store.Add(ctx, userID, postID)
	s.metrics.RecordStoreLatency("like.add", time.Since(start))

	if err != nil {
		return false, fmt.Errorf("いいねの作成に失敗しました: %w", err)
	}

	s.metrics.RecordRelationChange(relationName, "add", created)
	if created {
		slog.Info("like created",
			slog.Int64("user_id", userID),
			slog.Int64("post_id", postID),
		)
	}

	return created, nil
}

// Unlike はいいねを取り消す。
// 実際に削除した場合はtrue、いいねが存在しなかった場合はfalseを返す。
func (s *Service) Unlike(ctx context.Context, userID, postID int64) (bool, error) {
	start := time.Now()
	removed, err := s.store.Remove(ctx, userID, postID)
	s.metrics.RecordStoreLatency("like.remove", time.Since(start))

	if err != nil {
		return false, fmt.Errorf("いいねの取り消しに失敗しました: %w", err)
	}

	s.metrics.RecordRelationChange(relationName, "remove", removed)
	if removed {
		slog.Info("like removed",
			slog.Int64("user_id", userID),
			slog.Int64("post_id", postID),
		)
	}

	return removed, nil
}

// HasLiked はuserIDがpostIDにいいねしているかどうかを返す。
func (s *Service) HasLiked(ctx context.Context, userID, postID int64) (bool, error) {
	exists, err := s.store.Exists(ctx, userID, postID)
	if err != nil {
		return false, fmt.Errorf("いいね状態の確認に失敗しました: %w", err)
	}
	return exists, nil
}

// Count はpostIDへのいいね数を返す。
// 毎回ストアに問い合わせ、キャッシュは行わない。
func (s *Service) Count(ctx context.Context, postID int64) (int, error) {
	start := time.Now()
	count, err := s.store.CountByObject(ctx, postID)
	s.metrics.RecordStoreLatency("like.count", time.Since(start))

	if err != nil {
		return 0, fmt.Errorf("いいね数の取得に失敗しました: %w", err)
	}
	return count, nil
}
