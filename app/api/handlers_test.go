package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/feedloom/storycache/app/database"
	"github.com/feedloom/storycache/app/feedset"
	"github.com/feedloom/storycache/app/prefs"
	"github.com/feedloom/storycache/app/tasks"
)

type stubFetcher struct{}

func (stubFetcher) FetchPage(ctx context.Context, fs feedset.FeedSet, page int,
	order database.StoryOrder, filter database.ReadFilter) (bool, error) {
	return false, nil
}

type stubSyncer struct{ called bool }

func (s *stubSyncer) RefreshFeeds(ctx context.Context) error {
	s.called = true
	return nil
}

type stubScheduler struct{}

func (stubScheduler) Start() {}
func (stubScheduler) Stop()  {}

func (stubScheduler) EnqueueTask(task tasks.TaskInterface) error { return nil }

type testEnv struct {
	stories *database.StoryRepo
	actions *database.ActionRepo
	syncer  *stubSyncer
	server  http.Handler
}

func newTestEnv(t *testing.T, apiKey string) *testEnv {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	prefsStore, err := prefs.Open(filepath.Join(t.TempDir(), "prefs.yml"))
	if err != nil {
		t.Fatalf("failed to open prefs: %v", err)
	}

	stories := database.NewStoryRepo(db)
	feeds := database.NewFeedRepo(db)
	actions := database.NewActionRepo(db)
	syncer := &stubSyncer{}

	handler := NewHandler(stories, feeds, actions, prefsStore, stubFetcher{}, syncer, stubScheduler{})
	return &testEnv{
		stories: stories,
		actions: actions,
		syncer:  syncer,
		server:  NewServer(handler, apiKey),
	}
}

func (e *testEnv) do(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	e.server.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t, "")
	w := env.do(t, http.MethodGet, "/health")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestGetStories(t *testing.T) {
	env := newTestEnv(t, "")
	err := env.stories.InsertStories(database.StoriesBatch{Stories: []database.Story{
		{ID: "s1", Hash: "h1", FeedID: "7", Timestamp: 100},
		{ID: "s2", Hash: "h2", FeedID: "8", Timestamp: 200},
	}})
	if err != nil {
		t.Fatalf("InsertStories: %v", err)
	}

	w := env.do(t, http.MethodGet, "/stories?feed=7")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Stories []database.Story `json:"stories"`
		Total   int              `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 1 || resp.Stories[0].Hash != "h1" {
		t.Errorf("expected only feed 7's story, got %+v", resp)
	}
}

func TestMarkStoryReadEnqueuesAction(t *testing.T) {
	env := newTestEnv(t, "")
	err := env.stories.InsertStories(database.StoriesBatch{Stories: []database.Story{
		{ID: "s1", Hash: "h1", FeedID: "7", Timestamp: 100},
	}})
	if err != nil {
		t.Fatalf("InsertStories: %v", err)
	}

	w := env.do(t, http.MethodPost, "/stories/h1/read")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	story, err := env.stories.GetStory("h1")
	if err != nil || story == nil {
		t.Fatalf("GetStory: %v", err)
	}
	if !story.Read {
		t.Error("expected story marked read")
	}

	pending, err := env.actions.GetActions()
	if err != nil {
		t.Fatalf("GetActions: %v", err)
	}
	if len(pending) != 1 || pending[0].Kind != database.ActionMarkStoryRead {
		t.Errorf("expected one mark-read action, got %+v", pending)
	}
}

func TestMarkStoryReadUnknownHash(t *testing.T) {
	env := newTestEnv(t, "")
	w := env.do(t, http.MethodPost, "/stories/nope/read")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestMarkFeedsReadRejectsSavedScope(t *testing.T) {
	env := newTestEnv(t, "")
	w := env.do(t, http.MethodPost, "/feeds/read?saved=true")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for saved scope, got %d", w.Code)
	}
}

func TestRefreshFeeds(t *testing.T) {
	env := newTestEnv(t, "")
	w := env.do(t, http.MethodPost, "/feeds/refresh")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !env.syncer.called {
		t.Error("expected the feed syncer to be called")
	}
}

func TestAuthMiddleware(t *testing.T) {
	env := newTestEnv(t, "secret")

	// health stays open
	if w := env.do(t, http.MethodGet, "/health"); w.Code != http.StatusOK {
		t.Errorf("expected open health endpoint, got %d", w.Code)
	}

	// cache endpoints require the key
	if w := env.do(t, http.MethodGet, "/feeds"); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without key, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/feeds", nil)
	req.Header.Set("X-API-Key", "secret")
	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with key, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSetPrefs(t *testing.T) {
	env := newTestEnv(t, "")
	w := env.do(t, http.MethodPut, "/prefs?feed=7&order=oldest&read_filter=all")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodPut, "/prefs?feed=7&order=sideways")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid order, got %d", w.Code)
	}
}
