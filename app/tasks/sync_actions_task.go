package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/feedloom/storycache/app/database"
	"github.com/feedloom/storycache/app/metrics"
)

// SyncActionsTask drains the pending action queue through the submitter in
// insertion order. Acknowledged actions are cleared; the first failure
// aborts the pass so ordering is preserved, leaving the remainder queued
// for the next run.
type SyncActionsTask struct {
	Task
	actionRepo database.ActionRepository
	submitter  Submitter
	limiter    *rate.Limiter
}

func NewSyncActionsTask(actionRepo database.ActionRepository, submitter Submitter, limiter *rate.Limiter) *SyncActionsTask {
	return &SyncActionsTask{
		Task:       NewTask(TaskTypeSyncActions, ""),
		actionRepo: actionRepo,
		submitter:  submitter,
		limiter:    limiter,
	}
}

func (t *SyncActionsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	actions, err := t.actionRepo.GetActions()
	if err != nil {
		return fmt.Errorf("failed to get pending actions: %w", err)
	}
	if len(actions) == 0 {
		slog.Debug("No pending actions to deliver")
		return nil
	}

	delivered := 0
	for _, action := range actions {
		if err := t.limiter.Wait(ctx); err != nil {
			return err
		}

		if err := t.submitter.SubmitAction(ctx, action); err != nil {
			metrics.ActionsFailed.Inc()
			slog.Error("Failed to deliver action", "id", action.ID, "kind", string(action.Kind), "error", err)
			return fmt.Errorf("failed to deliver action %s: %w", action.ID, err)
		}

		if err := t.actionRepo.ClearAction(action.ID); err != nil {
			return fmt.Errorf("failed to clear delivered action %s: %w", action.ID, err)
		}
		metrics.ActionsDelivered.Inc()
		delivered++
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"delivered", delivered)

	return nil
}
