package database

import (
	"github.com/feedloom/storycache/app/feedset"
)

// StoryRepository owns the cached story rows, the per-story read flags, and
// the unread-count reconciliation against the denormalized feed counters.
type StoryRepository interface {
	InsertStories(batch StoriesBatch) error
	GetStories(fs feedset.FeedSet, state StateFilter, order StoryOrder, filter ReadFilter) ([]Story, error)
	GetStory(hash string) (*Story, error)
	GetStoryHashesForFeed(feedID string) ([]string, error)
	GetUnreadStoryHashes() ([]string, error)

	SetStoryReadState(story *Story, read bool) error
	SetStoryStarred(hash string, starred bool) error
	MarkFeedsRead(fs feedset.FeedSet, olderThan, newerThan *int64) error
	MarkFeedsReadCounts(fs feedset.FeedSet) error
	MarkFeedsReadStories(fs feedset.FeedSet, olderThan, newerThan *int64) error

	GetFeedUnreadCount(feedID string, state StateFilter) (int, error)
	GetSocialFeedUnreadCount(userID string, state StateFilter) (int, error)

	CleanupStories(keepOldStories bool) error
	ClearStories() error
	ClearReadingSession() error
}

// FeedRepository owns the feed, social-feed, and folder tables.
type FeedRepository interface {
	UpsertFeeds(feeds []Feed) error
	UpsertSocialFeeds(socialFeeds []SocialFeed) error
	ReplaceFolders(folders map[string][]string) error
	GetFeed(feedID string) (*Feed, error)
	GetSocialFeed(userID string) (*SocialFeed, error)
	ListFeeds() ([]Feed, error)
	ListSocialFeeds() ([]SocialFeed, error)
	GetFeedsForFolder(folderName string) ([]string, error)
	GetFeedCount() (int, error)
	CleanupFeedsFolders() error
	UpdateStarredCount(count int) error
	GetStarredCount() (int, error)
}

// ActionRepository is the durable queue of pending local mutations.
// Appends are safe from any goroutine; entries persist until explicitly
// cleared by ID after the remote service acknowledges them.
type ActionRepository interface {
	EnqueueAction(a *Action) error
	GetActions() ([]Action, error)
	ClearAction(actionID string) error
	GetActionCount() (int, error)
}
