package api

import (
	"context"
	"sync"

	"github.com/feedloom/storycache/app/database"
	"github.com/feedloom/storycache/app/prefs"
	"github.com/feedloom/storycache/app/reading"
	"github.com/feedloom/storycache/app/tasks"
)

// FeedSyncer refreshes the locally stored feed and folder listing from the
// sync service.
type FeedSyncer interface {
	RefreshFeeds(ctx context.Context) error
}

type Handler struct {
	storyRepo  database.StoryRepository
	feedRepo   database.FeedRepository
	actionRepo database.ActionRepository
	prefs      *prefs.Store
	fetcher    reading.Fetcher
	syncer     FeedSyncer
	scheduler  tasks.TaskSchedulerInterface

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	session   *reading.Session
	navigator *reading.Navigator
}
