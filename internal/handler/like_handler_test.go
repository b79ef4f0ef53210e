package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/simplesocial/internal/model"
)

func likeRequest(method, postID, userID string) *http.Request {
	req := httptest.NewRequest(method, "/posts/"+postID+"/like/"+userID, nil)
	return withChiURLParams(req, "id", postID, "userId", userID)
}

func TestLikeHandler_Like(t *testing.T) {
	calls := 0
	h := NewLikeHandler(&mockLikeService{
		likeFn: func(ctx context.Context, userID, postID int64) (bool, error) {
			if userID != 9 || postID != 4 {
				t.Errorf("args = (user %d, post %d), want (9, 4)", userID, postID)
			}
			calls++
			return calls == 1, nil
		},
	})

	w := httptest.NewRecorder()
	h.Like(w, likeRequest(http.MethodPost, "4", "9"))
	if w.Code != http.StatusOK {
		t.Errorf("first like: status = %d, want %d", w.Code, http.StatusOK)
	}

	w = httptest.NewRecorder()
	h.Like(w, likeRequest(http.MethodPost, "4", "9"))
	assertAPIError(t, w, http.StatusBadRequest, model.ErrCodeAlreadyLiked)
}

func TestLikeHandler_Unlike(t *testing.T) {
	h := NewLikeHandler(&mockLikeService{
		unlikeFn: func(ctx context.Context, userID, postID int64) (bool, error) {
			return false, nil
		},
	})

	w := httptest.NewRecorder()
	h.Unlike(w, likeRequest(http.MethodDelete, "4", "9"))

	assertAPIError(t, w, http.StatusNotFound, model.ErrCodeNotLiked)
}

func TestLikeHandler_GetLike(t *testing.T) {
	liked := map[[2]int64]bool{{9, 4}: true}
	h := NewLikeHandler(&mockLikeService{
		hasLikedFn: func(ctx context.Context, userID, postID int64) (bool, error) {
			return liked[[2]int64{userID, postID}], nil
		},
	})

	w := httptest.NewRecorder()
	h.GetLike(w, likeRequest(http.MethodGet, "4", "9"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp map[string]bool
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if !resp["liked"] {
		t.Errorf("liked = %v, want true", resp["liked"])
	}

	w = httptest.NewRecorder()
	h.GetLike(w, likeRequest(http.MethodGet, "4", "8"))
	assertAPIError(t, w, http.StatusNotFound, model.ErrCodeNotLiked)
}

func TestLikeHandler_CountLikes(t *testing.T) {
	h := NewLikeHandler(&mockLikeService{
		countFn: func(ctx context.Context, postID int64) (int, error) {
			if postID != 4 {
				t.Errorf("postID = %d, want 4", postID)
			}
			return 12, nil
		},
	})

	w := httptest.NewRecorder()
	h.CountLikes(w, withChiURLParams(httptest.NewRequest(http.MethodGet, "/posts/4/likes/count", nil), "id", "4"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp map[string]int
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp["likesCount"] != 12 {
		t.Errorf("likesCount = %d, want 12", resp["likesCount"])
	}
}

func TestLikeHandler_InvalidUserID(t *testing.T) {
	h := NewLikeHandler(&mockLikeService{})

	w := httptest.NewRecorder()
	h.Like(w, likeRequest(http.MethodPost, "4", "me"))

	assertAPIError(t, w, http.StatusBadRequest, model.ErrCodeInvalidID)
}
