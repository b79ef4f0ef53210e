package follow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// --- モック ---

type edge struct{ subject, object int64 }

// fakeStore はRelationStoreのインメモリ実装。
type fakeStore struct {
	mu    sync.Mutex
	edges map[edge]bool
	err   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{edges: make(map[edge]bool)}
}

func (f *fakeStore) Add(ctx context.Context, subjectID, objectID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	e := edge{subjectID, objectID}
	if f.edges[e] {
		return false, nil
	}
	f.edges[e] = true
	return true, nil
}

func (f *fakeStore) Remove(ctx context.Context, subjectID, objectID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	e := edge{subjectID, objectID}
	if !f.edges[e] {
		return false, nil
	}
	delete(f.edges, e)
	return true, nil
}

func (f *fakeStore) Exists(ctx context.Context, subjectID, objectID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.edges[edge{subjectID, objectID}], f.err
}

func (f *fakeStore) CountByObject(ctx context.Context, objectID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for e := range f.edges {
		if e.object == objectID {
			n++
		}
	}
	return n, f.err
}

func (f *fakeStore) CountBySubject(ctx context.Context, subjectID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for e := range f.edges {
		if e.subject == subjectID {
			n++
		}
	}
	return n, f.err
}

type relationCall struct {
	relation, action string
	applied          bool
}

type mockMetrics struct {
	calls []relationCall
}

func (m *mockMetrics) RecordUserCreated() {}
func (m *mockMetrics) RecordPostCreated() {}
func (m *mockMetrics) RecordRelationChange(relation, action string, applied bool) {
	m.calls = append(m.calls, relationCall{relation, action, applied})
}
func (m *mockMetrics) RecordHTTPStatus(int)                     {}
func (m *mockMetrics) RecordStoreLatency(string, time.Duration) {}

// --- テスト ---

// Follow(1,2)→true, Follow(1,2)→false, Unfollow(1,2)→true, Unfollow(1,2)→false を検証する。
func TestService_FollowUnfollowScenario(t *testing.T) {
	mc := &mockMetrics{}
	svc := NewService(newFakeStore(), mc)
	ctx := context.Background()

	steps := []struct {
		name string
		op   func() (bool, error)
		want bool
	}{
		{"follow", func() (bool, error) { return svc.Follow(ctx, 1, 2) }, true},
		{"follow again", func() (bool, error) { return svc.Follow(ctx, 1, 2) }, false},
		{"unfollow", func() (bool, error) { return svc.Unfollow(ctx, 1, 2) }, true},
		{"unfollow again", func() (bool, error) { return svc.Unfollow(ctx, 1, 2) }, false},
	}

	for _, step := range steps {
		got, err := step.op()
		if err != nil {
			t.Fatalf("%s returned error: %v", step.name, err)
		}
		if got != step.want {
			t.Errorf("%s = %v, want %v", step.name, got, step.want)
		}
	}

	want := []relationCall{
		{"follow", "add", true},
		{"follow", "add", false},
		{"follow", "remove", true},
		{"follow", "remove", false},
	}
	if len(mc.calls) != len(want) {
		t.Fatalf("metrics calls = %v, want %v", mc.calls, want)
	}
	for i := range want {
		if mc.calls[i] != want[i] {
			t.Errorf("metrics call[%d] = %+v, want %+v", i, mc.calls[i], want[i])
		}
	}
}

func TestService_Unfollow_WithoutEdge_ReturnsFalse(t *testing.T) {
	svc := NewService(newFakeStore(), nil)

	removed, err := svc.Unfollow(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("Unfollow returned error: %v", err)
	}
	if removed {
		t.Error("expected false when no edge exists")
	}
}

func TestService_IsFollowingAndCounts(t *testing.T) {
	svc := NewService(newFakeStore(), nil)
	ctx := context.Background()

	for _, pair := range [][2]int64{{1, 2}, {3, 2}, {1, 3}} {
		if _, err := svc.Follow(ctx, pair[0], pair[1]); err != nil {
			t.Fatalf("Follow returned error: %v", err)
		}
	}

	following, err := svc.IsFollowing(ctx, 1, 2)
	if err != nil || !following {
		t.Errorf("IsFollowing(1,2) = %v, %v; want true, nil", following, err)
	}
	following, err = svc.IsFollowing(ctx, 2, 1)
	if err != nil || following {
		t.Errorf("IsFollowing(2,1) = %v, %v; want false, nil", following, err)
	}

	followers, err := svc.CountFollowers(ctx, 2)
	if err != nil || followers != 2 {
		t.Errorf("CountFollowers(2) = %d, %v; want 2, nil", followers, err)
	}
	followingCount, err := svc.CountFollowing(ctx, 1)
	if err != nil || followingCount != 2 {
		t.Errorf("CountFollowing(1) = %d, %v; want 2, nil", followingCount, err)
	}
}

// TestService_StoreError はストアのエラーがそのままラップされて伝播することを検証する。
func TestService_StoreError(t *testing.T) {
	storeErr := errors.New("connection refused")
	store := newFakeStore()
	store.err = storeErr
	svc := NewService(store, nil)
	ctx := context.Background()

	if _, err := svc.Follow(ctx, 1, 2); !errors.Is(err, storeErr) {
		t.Errorf("Follow error = %v, want wrapped store error", err)
	}
	if _, err := svc.Unfollow(ctx, 1, 2); !errors.Is(err, storeErr) {
		t.Errorf("Unfollow error = %v, want wrapped store error", err)
	}
	if _, err := svc.IsFollowing(ctx, 1, 2); !errors.Is(err, storeErr) {
		t.Errorf("IsFollowing error = %v, want wrapped store error", err)
	}
	if _, err := svc.CountFollowers(ctx, 2); !errors.Is(err, storeErr) {
		t.Errorf("CountFollowers error = %v, want wrapped store error", err)
	}
	if _, err := svc.CountFollowing(ctx, 1); !errors.Is(err, storeErr) {
		t.Errorf("CountFollowing error = %v, want wrapped store error", err)
	}
}
