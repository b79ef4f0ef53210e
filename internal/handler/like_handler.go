package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/simplesocial/internal/model"
)

// LikeServiceInterface はいいねハンドラーが必要とするサービスインターフェース。
type LikeServiceInterface interface {
	Like(ctx context.Context, userID, postID int64) (bool, error)
	Unlike(ctx context.Context, userID, postID int64) (bool, error)
	HasLiked(ctx context.Context, userID, postID int64) (bool, error)
	Count(ctx context.Context, postID int64) (int, error)
}

// LikeHandler はいいねのHTTPハンドラー。
type LikeHandler struct {
	service LikeServiceInterface
}

// NewLikeHandler はLikeHandlerを生成する。
func NewLikeHandler(service LikeServiceInterface) *LikeHandler {
	return &LikeHandler{service: service}
}

type likeStatusResponse struct {
	Liked bool `json:"liked"`
}

type likesCountResponse struct {
	LikesCount int `json:"likesCount"`
}

// Like は投稿にいいねする。既にいいね済みの場合は400を返す。
// POST /posts/{id}/like/{userId}
func (h *LikeHandler) Like(w http.ResponseWriter, r *http.Request) {
	postID, userID, ok := parseLikeParams(w, r)
	if !ok {
		return
	}

	created, err := h.service.Like(r.Context(), userID, postID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if !created {
		handleServiceError(w, r, model.NewAlreadyLikedError())
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Unlike はいいねを取り消す。いいねしていない場合は404を返す。
// DELETE /posts/{id}/like/{userId}
func (h *LikeHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	postID, userID, ok := parseLikeParams(w, r)
	if !ok {
		return
	}

	removed, err := h.service.Unlike(r.Context(), userID, postID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if !removed {
		handleServiceError(w, r, model.NewNotLikedError())
		return
	}

	w.WriteHeader(http.StatusOK)
}

// GetLike はいいねの有無を返す。いいねしていない場合は404を返す。
// GET /posts/{id}/like/{userId}
func (h *LikeHandler) GetLike(w http.ResponseWriter, r *http.Request) {
	postID, userID, ok := parseLikeParams(w, r)
	if !ok {
		return
	}

	liked, err := h.service.HasLiked(r.Context(), userID, postID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if !liked {
		handleServiceError(w, r, model.NewNotLikedError())
		return
	}

	writeJSON(w, http.StatusOK, likeStatusResponse{Liked: true})
}

// CountLikes は投稿のいいね数を返す。
// GET /posts/{id}/likes/count
func (h *LikeHandler) CountLikes(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	count, err := h.service.Count(r.Context(), postID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, likesCountResponse{LikesCount: count})
}

func parseLikeParams(w http.ResponseWriter, r *http.Request) (postID, userID int64, ok bool) {
	if postID, ok = parseIDParam(w, r, "id"); !ok {
		return 0, 0, false
	}
	if userID, ok = parseIDParam(w, r, "userId"); !ok {
		return 0, 0, false
	}
	return postID, userID, true
}
