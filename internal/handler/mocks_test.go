package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/simplesocial/internal/model"
)

// --- モック定義 ---

// mockUserService はUserServiceInterfaceのモック実装。
type mockUserService struct {
	createFn func(ctx context.Context, user *model.User) (*model.User, error)
	getFn    func(ctx context.Context, id int64) (*model.User, error)
}

func (m *mockUserService) Create(ctx context.Context, user *model.User) (*model.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return user, nil
}

func (m *mockUserService) Get(ctx context.Context, id int64) (*model.User, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, model.NewUserNotFoundError(id)
}

// mockPostService はPostServiceInterfaceのモック実装。
type mockPostService struct {
	createFn func(ctx context.Context, post *model.Post) (*model.Post, error)
	getFn    func(ctx context.Context, id int64) (*model.Post, error)
	listFn   func(ctx context.Context) ([]*model.Post, error)
}

func (m *mockPostService) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	if m.createFn != nil {
		return m.createFn(ctx, post)
	}
	return post, nil
}

func (m *mockPostService) Get(ctx context.Context, id int64) (*model.Post, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, model.NewPostNotFoundError(id)
}

func (m *mockPostService) List(ctx context.Context) ([]*model.Post, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []*model.Post{}, nil
}

// mockFollowService はFollowServiceInterfaceのモック実装。
type mockFollowService struct {
	followFn         func(ctx context.Context, followerID, followedID int64) (bool, error)
	unfollowFn       func(ctx context.Context, followerID, followedID int64) (bool, error)
	isFollowingFn    func(ctx context.Context, followerID, followedID int64) (bool, error)
	countFollowersFn func(ctx context.Context, userID int64) (int, error)
	countFollowingFn func(ctx context.Context, userID int64) (int, error)
}

func (m *mockFollowService) Follow(ctx context.Context, followerID, followedID int64) (bool, error) {
	if m.followFn != nil {
		return m.followFn(ctx, followerID, followedID)
	}
	return true, nil
}

func (m *mockFollowService) Unfollow(ctx context.Context, followerID, followedID int64) (bool, error) {
	if m.unfollowFn != nil {
		return m.unfollowFn(ctx, followerID, followedID)
	}
	return true, nil
}

func (m *mockFollowService) IsFollowing(ctx context.Context, followerID, followedID int64) (bool, error) {
	if m.isFollowingFn != nil {
		return m.isFollowingFn(ctx, followerID, followedID)
	}
	return true, nil
}

func (m *mockFollowService) CountFollowers(ctx context.Context, userID int64) (int, error) {
	if m.countFollowersFn != nil {
		return m.countFollowersFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockFollowService) CountFollowing(ctx context.Context, userID int64) (int, error) {
	if m.countFollowingFn != nil {
		return m.countFollowingFn(ctx, userID)
	}
	return 0, nil
}

// mockLikeService はLikeServiceInterfaceのモック実装。
type mockLikeService struct {
	likeFn     func(ctx context.Context, userID, postID int64) (bool, error)
	unlikeFn   func(ctx context.Context, userID, postID int64) (bool, error)
	hasLikedFn func(ctx context.Context, userID, postID int64) (bool, error)
	countFn    func(ctx context.Context, postID int64) (int, error)
}

func (m *mockLikeService) Like(ctx context.Context, userID, postID int64) (bool, error) {
	if m.likeFn != nil {
		return m.likeFn(ctx, userID, postID)
	}
	return true, nil
}

func (m *mockLikeService) Unlike(ctx context.Context, userID, postID int64) (bool, error) {
	if m.unlikeFn != nil {
		return m.unlikeFn(ctx, userID, postID)
	}
	return true, nil
}

func (m *mockLikeService) HasLiked(ctx context.Context, userID, postID int64) (bool, error) {
	if m.hasLikedFn != nil {
		return m.hasLikedFn(ctx, userID, postID)
	}
	return true, nil
}

func (m *mockLikeService) Count(ctx context.Context, postID int64) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, postID)
	}
	return 0, nil
}

// --- テストヘルパー ---

// withChiURLParams はテスト用にchiのURLパラメータを注入するヘルパー。
// 引数はkey, valueの順に交互に指定する。
func withChiURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// parseAPIErrorResponse はレスポンスボディからAPIErrorレスポンスをパースするヘルパー。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result
}

// assertAPIError はステータスコードとエラーコードを検証するヘルパー。
func assertAPIError(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantCode string) {
	t.Helper()
	if w.Code != wantStatus {
		t.Errorf("status = %d, want %d", w.Code, wantStatus)
	}
	body := parseAPIErrorResponse(t, w)
	if body["code"] != wantCode {
		t.Errorf("code = %q, want %q", body["code"], wantCode)
	}
}
