package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/feedloom/storycache/app/database"
)

// CleanupStoriesTask is the retention pass: trims read stories per feed,
// prunes folder mappings of deleted feeds, and optionally resets the
// read-this-session flags (done once at startup, so the previous run's
// session reads become plainly read).
type CleanupStoriesTask struct {
	Task
	storyRepo      database.StoryRepository
	feedRepo       database.FeedRepository
	keepOldStories bool
	resetSession   bool
}

func NewCleanupStoriesTask(storyRepo database.StoryRepository, feedRepo database.FeedRepository,
	keepOldStories, resetSession bool) *CleanupStoriesTask {
	return &CleanupStoriesTask{
		Task:           NewTask(TaskTypeCleanupStories, ""),
		storyRepo:      storyRepo,
		feedRepo:       feedRepo,
		keepOldStories: keepOldStories,
		resetSession:   resetSession,
	}
}

func (t *CleanupStoriesTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if t.resetSession {
		if err := t.storyRepo.ClearReadingSession(); err != nil {
			return fmt.Errorf("failed to reset reading session: %w", err)
		}
	}

	if err := t.storyRepo.CleanupStories(t.keepOldStories); err != nil {
		return fmt.Errorf("failed to clean up stories: %w", err)
	}

	if err := t.feedRepo.CleanupFeedsFolders(); err != nil {
		return fmt.Errorf("failed to clean up folders: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"keep_old_stories", t.keepOldStories)

	return nil
}
