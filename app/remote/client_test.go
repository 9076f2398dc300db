package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/feedloom/storycache/app/database"
	"github.com/feedloom/storycache/app/feedset"
)

func newTestRepos(t *testing.T) (*database.StoryRepo, *database.FeedRepo) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return database.NewStoryRepo(db), database.NewFeedRepo(db)
}

func TestFetchPageIngestsStories(t *testing.T) {
	stories, feeds := newTestRepos(t)

	var gotPath, gotPage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotPage = r.URL.Query().Get("page")
		json.NewEncoder(w).Encode(database.StoriesBatch{Stories: []database.Story{
			{ID: "s1", Hash: "h1", FeedID: "7", Timestamp: 100},
		}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-agent", stories, feeds)
	hasMore, err := client.FetchPage(context.Background(), feedset.SingleFeed("7"), 2,
		database.OrderNewest, database.FilterUnread)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if !hasMore {
		t.Error("expected hasMore for a non-empty page")
	}
	if gotPath != "/reader/feed/7" {
		t.Errorf("expected single-feed endpoint, got %s", gotPath)
	}
	if gotPage != "2" {
		t.Errorf("expected page 2, got %s", gotPage)
	}

	listed, err := stories.GetStories(feedset.SingleFeed("7"), database.StateAll,
		database.OrderNewest, database.FilterAll)
	if err != nil {
		t.Fatalf("GetStories: %v", err)
	}
	if len(listed) != 1 || listed[0].Hash != "h1" {
		t.Errorf("expected ingested story, got %v", listed)
	}
}

func TestFetchPageEmptyMeansExhausted(t *testing.T) {
	stories, feeds := newTestRepos(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(database.StoriesBatch{})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-agent", stories, feeds)
	hasMore, err := client.FetchPage(context.Background(), feedset.AllFeeds(), 1,
		database.OrderNewest, database.FilterUnread)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if hasMore {
		t.Error("expected no more pages for an empty batch")
	}
}

func TestFetchPageErrorStatus(t *testing.T) {
	stories, feeds := newTestRepos(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-agent", stories, feeds)
	if _, err := client.FetchPage(context.Background(), feedset.AllFeeds(), 1,
		database.OrderNewest, database.FilterUnread); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestStoriesEndpoints(t *testing.T) {
	cases := []struct {
		name string
		fs   feedset.FeedSet
		path string
	}{
		{"single feed", feedset.SingleFeed("7"), "/reader/feed/7"},
		{"folder", feedset.Folder("Tech", []string{"1", "2"}), "/reader/river_stories"},
		{"all feeds", feedset.AllFeeds(), "/reader/river_stories"},
		{"single social", feedset.SingleSocialFeed("u1", "one"), "/social/stories/u1/one"},
		{"all social", feedset.AllSocialFeeds(), "/social/river_stories"},
		{"saved", feedset.AllSaved(), "/reader/starred_stories"},
	}
	for _, tc := range cases {
		endpoint, _, err := storiesEndpoint(tc.fs)
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		if endpoint != tc.path {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.path, endpoint)
		}
	}
}

func TestSubmitAction(t *testing.T) {
	stories, feeds := newTestRepos(t)

	var gotPath string
	var gotForm map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotPath = r.URL.Path
		gotForm = r.PostForm
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-agent", stories, feeds)

	err := client.SubmitAction(context.Background(), database.Action{
		Kind: database.ActionMarkStoryRead, StoryHash: "h1",
	})
	if err != nil {
		t.Fatalf("SubmitAction: %v", err)
	}
	if gotPath != "/reader/mark_story_hashes_as_read" {
		t.Errorf("wrong endpoint: %s", gotPath)
	}
	if got := gotForm["story_hash"]; len(got) != 1 || got[0] != "h1" {
		t.Errorf("wrong form: %v", gotForm)
	}

	olderThan := int64(500)
	err = client.SubmitAction(context.Background(), database.Action{
		Kind: database.ActionMarkFeedsRead, FeedIDs: []string{"1", "2"}, OlderThan: &olderThan,
	})
	if err != nil {
		t.Fatalf("SubmitAction feeds: %v", err)
	}
	if gotPath != "/reader/mark_feed_as_read" {
		t.Errorf("wrong endpoint: %s", gotPath)
	}
	if got := gotForm["feed_id"]; len(got) != 2 {
		t.Errorf("expected both feed IDs, got %v", gotForm)
	}
	if got := gotForm["cutoff_timestamp"]; len(got) != 1 || got[0] != "500" {
		t.Errorf("expected cutoff timestamp, got %v", gotForm)
	}
}

func TestRefreshFeeds(t *testing.T) {
	stories, feeds := newTestRepos(t)
	_ = stories

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reader/feeds" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"feeds": map[string]any{
				"1": map[string]any{"feed_title": "One", "nt": 3},
				"2": map[string]any{"id": "2", "feed_title": "Two"},
			},
			"social_feeds":  []map[string]any{{"user_id": "u1", "username": "one"}},
			"flat_folders":  map[string][]string{"Tech": {"1", "2"}},
			"starred_count": 4,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-agent", stories, feeds)
	if err := client.RefreshFeeds(context.Background()); err != nil {
		t.Fatalf("RefreshFeeds: %v", err)
	}

	listed, err := feeds.ListFeeds()
	if err != nil {
		t.Fatalf("ListFeeds: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 feeds, got %d", len(listed))
	}
	one, err := feeds.GetFeed("1")
	if err != nil || one == nil {
		t.Fatalf("GetFeed: %v", err)
	}
	if one.Title != "One" || one.NeutralCount != 3 {
		t.Errorf("feed not stored from keyed map: %+v", one)
	}

	ids, _ := feeds.GetFeedsForFolder("Tech")
	if len(ids) != 2 {
		t.Errorf("expected folder stored, got %v", ids)
	}
	n, _ := feeds.GetStarredCount()
	if n != 4 {
		t.Errorf("expected starred count 4, got %d", n)
	}
}
