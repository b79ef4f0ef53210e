package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/simplesocial/internal/model"
)

// PostServiceInterface は投稿ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	Create(ctx context.Context, post *model.Post) (*model.Post, error)
	Get(ctx context.Context, id int64) (*model.Post, error)
	List(ctx context.Context) ([]*model.Post, error)
}

// PostHandler は投稿のHTTPハンドラー。
type PostHandler struct {
	service PostServiceInterface
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(service PostServiceInterface) *PostHandler {
	return &PostHandler{service: service}
}

// createPostRequest は投稿作成リクエストのボディ。
// createdAtは受け付けず、サーバー側で設定する。
type createPostRequest struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	AuthorID int64  `json:"authorId"`
}

// postResponse は投稿のAPIレスポンス。
type postResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	AuthorID  int64     `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListPosts は全投稿を新しい順に返す。
// GET /posts
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		resp = append(resp, toPostResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreatePost は投稿を作成する。
// POST /posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	created, err := h.service.Create(r.Context(), &model.Post{
		Title:    req.Title,
		Body:     req.Body,
		AuthorID: req.AuthorID,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", "/posts/"+strconv.FormatInt(created.ID, 10))
	writeJSON(w, http.StatusCreated, toPostResponse(created))
}

// GetPost は投稿を1件取得する。
// GET /posts/{id}
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPostResponse(p))
}

func toPostResponse(p *model.Post) postResponse {
	return postResponse{
		ID:        p.ID,
		Title:     p.Title,
		Body:      p.Body,
		AuthorID:  p.AuthorID,
		CreatedAt: p.CreatedAt.UTC(),
	}
}
