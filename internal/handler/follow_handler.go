package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/simplesocial/internal/model"
)

// FollowServiceInterface はフォローハンドラーが必要とするサービスインターフェース。
type FollowServiceInterface interface {
	Follow(ctx context.Context, followerID, followedID int64) (bool, error)
	Unfollow(ctx context.Context, followerID, followedID int64) (bool, error)
	IsFollowing(ctx context.Context, followerID, followedID int64) (bool, error)
	CountFollowers(ctx context.Context, userID int64) (int, error)
	CountFollowing(ctx context.Context, userID int64) (int, error)
}

// FollowHandler はフォロー関係のHTTPハンドラー。
type FollowHandler struct {
	service FollowServiceInterface
}

// NewFollowHandler はFollowHandlerを生成する。
func NewFollowHandler(service FollowServiceInterface) *FollowHandler {
	return &FollowHandler{service: service}
}

type followStatusResponse struct {
	Following bool `json:"following"`
}

type followersCountResponse struct {
	FollowersCount int `json:"followersCount"`
}

type followingCountResponse struct {
	FollowingCount int `json:"followingCount"`
}

// Follow はフォローを作成する。既にフォロー済みの場合は400を返す。
// POST /users/{id}/follow/{followedId}
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	followerID, followedID, ok := parseFollowParams(w, r)
	if !ok {
		return
	}

	created, err := h.service.Follow(r.Context(), followerID, followedID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if !created {
		handleServiceError(w, r, model.NewAlreadyFollowingError())
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Unfollow はフォローを解除する。フォローしていない場合は404を返す。
// DELETE /users/{id}/follow/{followedId}
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	followerID, followedID, ok := parseFollowParams(w, r)
	if !ok {
		return
	}

	removed, err := h.service.Unfollow(r.Context(), followerID, followedID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if !removed {
		handleServiceError(w, r, model.NewNotFollowingError())
		return
	}

	w.WriteHeader(http.StatusOK)
}

// GetFollow はフォロー関係の有無を返す。フォローしていない場合は404を返す。
// GET /users/{id}/follow/{followedId}
func (h *FollowHandler) GetFollow(w http.ResponseWriter, r *http.Request) {
	followerID, followedID, ok := parseFollowParams(w, r)
	if !ok {
		return
	}

	following, err := h.service.IsFollowing(r.Context(), followerID, followedID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if !following {
		handleServiceError(w, r, model.NewNotFollowingError())
		return
	}

	writeJSON(w, http.StatusOK, followStatusResponse{Following: true})
}

// CountFollowers はフォロワー数を返す。
// GET /users/{id}/followers/count
func (h *FollowHandler) CountFollowers(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	count, err := h.service.CountFollowers(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, followersCountResponse{FollowersCount: count})
}

// CountFollowing はフォロー中のユーザー数を返す。
// GET /users/{id}/following/count
func (h *FollowHandler) CountFollowing(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	count, err := h.service.CountFollowing(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, followingCountResponse{FollowingCount: count})
}

func parseFollowParams(w http.ResponseWriter, r *http.Request) (followerID, followedID int64, ok bool) {
	if followerID, ok = parseIDParam(w, r, "id"); !ok {
		return 0, 0, false
	}
	if followedID, ok = parseIDParam(w, r, "followedId"); !ok {
		return 0, 0, false
	}
	return followerID, followedID, true
}
