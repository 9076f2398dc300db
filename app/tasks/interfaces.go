package tasks

import (
	"context"

	"github.com/feedloom/storycache/app/database"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application to manage background task processing.
// Example usage:
//
//	scheduler := NewScheduler(storyRepo, feedRepo, actionRepo, submitter, prefs)
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// Submitter delivers one queued action to the sync service. A nil return
// means the service acknowledged the action and it may be cleared.
type Submitter interface {
	SubmitAction(ctx context.Context, a database.Action) error
}
