package reading

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/feedloom/storycache/app/database"
	"github.com/feedloom/storycache/app/feedset"
)

func TestNextUnreadFindsCachedStory(t *testing.T) {
	repo := newTestRepo(t)
	read := testStory("r1", "1", 300)
	read.Read = true
	if err := repo.InsertStories(database.StoriesBatch{Stories: []database.Story{
		read,
		testStory("u1", "1", 200),
		testStory("u2", "1", 100),
	}}); err != nil {
		t.Fatalf("InsertStories: %v", err)
	}
	s := NewSession(repo, nil, &fakeFetcher{repo: repo}, feedset.SingleFeed("1"),
		database.OrderNewest, database.FilterAll, database.StateAll)
	if err := s.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	nav := NewNavigator(s)

	idx, err := nav.NextUnread(context.Background(), 0)
	if err != nil {
		t.Fatalf("NextUnread: %v", err)
	}
	if idx != 1 {
		t.Errorf("expected index 1, got %d", idx)
	}
}

func TestNextUnreadWrapsAround(t *testing.T) {
	repo := newTestRepo(t)
	read := testStory("r1", "1", 100)
	read.Read = true
	if err := repo.InsertStories(database.StoriesBatch{Stories: []database.Story{
		testStory("u1", "1", 300),
		testStory("u2", "1", 200),
		read,
	}}); err != nil {
		t.Fatalf("InsertStories: %v", err)
	}
	s := NewSession(repo, nil, &fakeFetcher{repo: repo}, feedset.SingleFeed("1"),
		database.OrderNewest, database.FilterAll, database.StateAll)
	if err := s.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	nav := NewNavigator(s)

	idx, err := nav.NextUnread(context.Background(), 2)
	if err != nil {
		t.Fatalf("NextUnread: %v", err)
	}
	if idx != 0 {
		t.Errorf("expected wrap to index 0, got %d", idx)
	}
}

func TestNextUnreadLoadsFurtherPages(t *testing.T) {
	repo := newTestRepo(t)
	fetcher := &fakeFetcher{
		repo: repo,
		pages: map[int][]database.Story{
			1: {testStory("u1", "1", 100)},
		},
		lastPage: 1,
	}
	s := NewSession(repo, nil, fetcher, feedset.SingleFeed("1"),
		database.OrderNewest, database.FilterAll, database.StateAll)
	nav := NewNavigator(s)

	idx, err := nav.NextUnread(context.Background(), 0)
	if err != nil {
		t.Fatalf("NextUnread: %v", err)
	}
	if idx != 0 {
		t.Errorf("expected index 0 after loading, got %d", idx)
	}
	if fetcher.callCount() == 0 {
		t.Error("expected the search to trigger a page fetch")
	}
}

func TestNextUnreadExhaustedReturnsPromptly(t *testing.T) {
	repo := newTestRepo(t)
	read := testStory("r1", "1", 100)
	read.Read = true
	if err := repo.InsertStories(database.StoriesBatch{Stories: []database.Story{read}}); err != nil {
		t.Fatalf("InsertStories: %v", err)
	}
	// the one page the service has holds nothing unread
	s := NewSession(repo, nil, &fakeFetcher{repo: repo, lastPage: 1}, feedset.SingleFeed("1"),
		database.OrderNewest, database.FilterAll, database.StateAll)
	if err := s.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	nav := NewNavigator(s)

	start := time.Now()
	_, err := nav.NextUnread(context.Background(), 0)
	if !errors.Is(err, ErrNoNextUnread) {
		t.Fatalf("expected ErrNoNextUnread, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("exhausted search must not wait for the load timeout")
	}
}

func TestStopWakesBlockedSearch(t *testing.T) {
	repo := newTestRepo(t)
	block := make(chan struct{})
	defer close(block)
	fetcher := &fakeFetcher{repo: repo, lastPage: 3, block: block}
	s := NewSession(repo, nil, fetcher, feedset.SingleFeed("1"),
		database.OrderNewest, database.FilterAll, database.StateAll)
	nav := NewNavigator(s)

	done := make(chan error, 1)
	go func() {
		_, err := nav.NextUnread(context.Background(), 0)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	s.Stop()

	select {
	case err := <-done:
		if !errors.Is(err, ErrNoNextUnread) {
			t.Errorf("expected ErrNoNextUnread after stop, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not wake the blocked search")
	}
}

func TestNextUnreadContextCancel(t *testing.T) {
	repo := newTestRepo(t)
	block := make(chan struct{})
	defer close(block)
	fetcher := &fakeFetcher{repo: repo, lastPage: 3, block: block}
	s := NewSession(repo, nil, fetcher, feedset.SingleFeed("1"),
		database.OrderNewest, database.FilterAll, database.StateAll)
	nav := NewNavigator(s)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := nav.NextUnread(ctx, 0)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancel did not wake the blocked search")
	}
}
