// Package reading manages the state of an active reading session: the
// paginated story list for one selector, demand-driven page fetching, and
// unread navigation across pages that may not be cached yet.
package reading

import (
	"context"
	"log/slog"
	"sync"

	"github.com/feedloom/storycache/app/database"
	"github.com/feedloom/storycache/app/feedset"
)

// ReadingStoryPreload is how many stories ahead of the reader's position
// must be available before the next page fetch is triggered.
const ReadingStoryPreload = 5

// Fetcher retrieves one page of stories for a selector from the sync
// service and ingests it into the local store. It reports whether the
// service may have further pages.
type Fetcher interface {
	FetchPage(ctx context.Context, fs feedset.FeedSet, page int, order database.StoryOrder, filter database.ReadFilter) (hasMore bool, err error)
}

// Session is the state of one reading session over a single selector. All
// state lives on the session value; two views reading different selectors
// hold two independent sessions. Methods are safe for concurrent use.
type Session struct {
	stories database.StoryRepository
	actions database.ActionRepository
	fetcher Fetcher
	fs      feedset.FeedSet

	mu            sync.Mutex
	order         database.StoryOrder
	filter        database.ReadFilter
	state         database.StateFilter
	list          []database.Story
	currentPage   int
	noMorePages   bool
	fetchInFlight bool
	stopped       bool
	changed       chan struct{}
	pageHistory   []string // story hashes in the order they were opened
}

// NewSession creates a session for the selector with the given listing
// preferences. Read-state changes are queued on actions for delivery to
// the sync service. Call Refresh to populate the initial list.
func NewSession(stories database.StoryRepository, actions database.ActionRepository,
	fetcher Fetcher, fs feedset.FeedSet,
	order database.StoryOrder, filter database.ReadFilter, state database.StateFilter) *Session {
	return &Session{
		stories: stories,
		actions: actions,
		fetcher: fetcher,
		fs:      fs,
		order:   order,
		filter:  filter,
		state:   state,
		changed: make(chan struct{}),
	}
}

// FeedSet returns the selector this session reads.
func (s *Session) FeedSet() feedset.FeedSet {
	return s.fs
}

// Stories returns a snapshot of the current story list.
func (s *Session) Stories() []database.Story {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]database.Story, len(s.list))
	copy(out, s.list)
	return out
}

// Changed returns a channel closed the next time the session's list or
// loading state changes. Grab a fresh channel after each wakeup.
func (s *Session) Changed() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed
}

// Exhausted reports whether no further stories can appear: the service has
// no more pages and no fetch is running. A stopped session is exhausted,
// since Stop halts paging.
func (s *Session) Exhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.noMorePages && !s.fetchInFlight
}

// Stopped reports whether Stop was called.
func (s *Session) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Refresh re-reads the story list from the local store and wakes waiters.
func (s *Session) Refresh() error {
	s.mu.Lock()
	fs, state, order, filter := s.fs, s.state, s.order, s.filter
	s.mu.Unlock()

	list, err := s.stories.GetStories(fs, state, order, filter)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.list = list
	s.notifyLocked()
	s.mu.Unlock()
	return nil
}

// CheckStoryCount is called as the reader's position advances. When the
// position approaches the end of the cached list it triggers a fetch of
// the next page, at most one at a time.
func (s *Session) CheckStoryCount(ctx context.Context, position int) {
	s.mu.Lock()
	trigger := position+ReadingStoryPreload >= len(s.list) &&
		!s.noMorePages && !s.fetchInFlight && !s.stopped
	if trigger {
		s.fetchInFlight = true
		s.currentPage++
	}
	page := s.currentPage
	s.mu.Unlock()

	if trigger {
		go s.fetchPage(ctx, page)
	}
}

func (s *Session) fetchPage(ctx context.Context, page int) {
	s.mu.Lock()
	fs, order, filter := s.fs, s.order, s.filter
	s.mu.Unlock()

	hasMore, err := s.fetcher.FetchPage(ctx, fs, page, order, filter)

	s.mu.Lock()
	s.fetchInFlight = false
	if err != nil {
		slog.Error("failed to fetch story page", "feed_set", fs.Key(), "page", page, "error", err)
		// a failed page was not consumed; retry it on the next trigger
		s.currentPage--
		s.notifyLocked()
		s.mu.Unlock()
		return
	}
	if !hasMore {
		s.noMorePages = true
	}
	s.mu.Unlock()

	if err := s.Refresh(); err != nil {
		slog.Error("failed to refresh story list", "feed_set", fs.Key(), "error", err)
	}
}

// SetOrder changes the sort order. Cached story pages were fetched in the
// old order, so they are dropped and paging restarts from the first page.
func (s *Session) SetOrder(order database.StoryOrder) error {
	s.mu.Lock()
	if s.order == order {
		s.mu.Unlock()
		return nil
	}
	s.order = order
	s.resetLocked()
	s.mu.Unlock()
	if err := s.stories.ClearStories(); err != nil {
		return err
	}
	return s.Refresh()
}

// SetReadFilter changes the read filter, dropping cached pages like SetOrder.
func (s *Session) SetReadFilter(filter database.ReadFilter) error {
	s.mu.Lock()
	if s.filter == filter {
		s.mu.Unlock()
		return nil
	}
	s.filter = filter
	s.resetLocked()
	s.mu.Unlock()
	if err := s.stories.ClearStories(); err != nil {
		return err
	}
	return s.Refresh()
}

// SetStateFilter changes the intelligence cutoff. The cutoff is purely a
// local query condition, so cached pages stay valid and only the list is
// re-read.
func (s *Session) SetStateFilter(state database.StateFilter) error {
	s.mu.Lock()
	if s.state == state {
		s.mu.Unlock()
		return nil
	}
	s.state = state
	s.mu.Unlock()
	return s.Refresh()
}

func (s *Session) resetLocked() {
	s.list = nil
	s.currentPage = 0
	s.noMorePages = false
	s.stopped = false
	s.pageHistory = nil
	s.notifyLocked()
}

// MarkStoryRead marks the story read locally, queues the change for
// delivery, records the story in the back-navigation history, and
// refreshes the list.
func (s *Session) MarkStoryRead(story *database.Story) error {
	if err := s.stories.SetStoryReadState(story, true); err != nil {
		return err
	}
	if err := s.enqueue(database.ActionMarkStoryRead, story.Hash); err != nil {
		return err
	}
	s.mu.Lock()
	s.pageHistory = append(s.pageHistory, story.Hash)
	s.mu.Unlock()
	return s.Refresh()
}

// MarkStoryUnread reverts the story to unread, queues the change for
// delivery, and refreshes the list.
func (s *Session) MarkStoryUnread(story *database.Story) error {
	if err := s.stories.SetStoryReadState(story, false); err != nil {
		return err
	}
	if err := s.enqueue(database.ActionMarkStoryUnread, story.Hash); err != nil {
		return err
	}
	return s.Refresh()
}

func (s *Session) enqueue(kind database.ActionKind, hash string) error {
	if s.actions == nil {
		return nil
	}
	return s.actions.EnqueueAction(&database.Action{Kind: kind, StoryHash: hash})
}

// LastReadPosition returns the hash of the most recently opened story, for
// back navigation. With trim it also pops that entry so repeated calls
// walk backwards through the history. Returns "" when the history is empty.
func (s *Session) LastReadPosition(trim bool) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pageHistory) == 0 {
		return ""
	}
	hash := s.pageHistory[len(s.pageHistory)-1]
	if trim {
		s.pageHistory = s.pageHistory[:len(s.pageHistory)-1]
	}
	return hash
}

// Stop halts further page fetches and wakes any waiter so blocked searches
// return promptly.
func (s *Session) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.noMorePages = true
	s.notifyLocked()
	s.mu.Unlock()
}

// notifyLocked closes the current change channel and installs a fresh one.
// Callers must hold mu.
func (s *Session) notifyLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}
