package reading

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/feedloom/storycache/app/database"
)

// UnreadSearchLoadWait bounds how long an unread search waits for a page
// fetch to surface new stories before giving up.
const UnreadSearchLoadWait = 30 * time.Second

var (
	// ErrNoNextUnread means the session is fully loaded and holds no
	// further unread story.
	ErrNoNextUnread = errors.New("no next unread story")
	// ErrSearchTimeout means story loading did not progress within
	// UnreadSearchLoadWait.
	ErrSearchTimeout = errors.New("timed out waiting for stories to load")
)

// Navigator finds the next unread story in a session, loading further
// pages on demand. At most one search runs per navigator at a time;
// concurrent callers queue up behind the first.
type Navigator struct {
	session  *Session
	searchMu sync.Mutex
}

// NewNavigator creates a navigator over the session.
func NewNavigator(session *Session) *Navigator {
	return &Navigator{session: session}
}

// NextUnread returns the first unread story at or after fromIndex, wrapping
// to the start of the list if none follows. When the cached list holds no
// candidate but more pages may exist, it triggers loading and blocks until
// new stories arrive, the session is exhausted or stopped, the context is
// cancelled, or UnreadSearchLoadWait passes without progress.
func (n *Navigator) NextUnread(ctx context.Context, fromIndex int) (int, error) {
	n.searchMu.Lock()
	defer n.searchMu.Unlock()

	timeout := time.NewTimer(UnreadSearchLoadWait)
	defer timeout.Stop()
	loaded := -1

	for {
		changed := n.session.Changed()

		list := n.session.Stories()
		if idx := scanUnread(list, fromIndex); idx >= 0 {
			return idx, nil
		}

		if n.session.Stopped() {
			return -1, ErrNoNextUnread
		}
		if n.session.Exhausted() {
			return -1, ErrNoNextUnread
		}

		// the timeout only resets while loading makes progress; wakeups
		// from failed fetches do not extend the wait
		if len(list) > loaded {
			loaded = len(list)
			if !timeout.Stop() {
				select {
				case <-timeout.C:
				default:
				}
			}
			timeout.Reset(UnreadSearchLoadWait)
		}

		// ask for stories past the end of what is cached
		n.session.CheckStoryCount(ctx, len(list))

		select {
		case <-changed:
		case <-ctx.Done():
			return -1, ctx.Err()
		case <-timeout.C:
			return -1, ErrSearchTimeout
		}
	}
}

// LastReadPosition returns the hash of the story opened most recently in
// this session, for back navigation. See Session.LastReadPosition.
func (n *Navigator) LastReadPosition(trim bool) string {
	return n.session.LastReadPosition(trim)
}

// scanUnread looks for an unread story from fromIndex forward, then wraps
// around to the front. Stories read earlier this session do not count.
func scanUnread(list []database.Story, fromIndex int) int {
	if fromIndex < 0 {
		fromIndex = 0
	}
	for i := fromIndex; i < len(list); i++ {
		if !list[i].Read {
			return i
		}
	}
	if fromIndex > len(list) {
		fromIndex = len(list)
	}
	for i := 0; i < fromIndex && i < len(list); i++ {
		if !list[i].Read {
			return i
		}
	}
	return -1
}
