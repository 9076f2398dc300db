package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/feedloom/storycache/app/cfg"
	"github.com/feedloom/storycache/app/database"
	"github.com/feedloom/storycache/app/prefs"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	storyRepo   database.StoryRepository
	feedRepo    database.FeedRepository
	actionRepo  database.ActionRepository
	submitter   Submitter
	prefs       *prefs.Store
	limiter     *rate.Limiter
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(storyRepo database.StoryRepository, feedRepo database.FeedRepository,
	actionRepo database.ActionRepository, submitter Submitter, prefsStore *prefs.Store) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		storyRepo:  storyRepo,
		feedRepo:   feedRepo,
		actionRepo: actionRepo,
		submitter:  submitter,
		prefs:      prefsStore,
		// action deliveries trickle out instead of bursting at the service
		limiter:     rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
		interval:    time.Duration(cfg.SyncInterval) * time.Second,
		workerCount: cfg.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	cleanupTask := NewCleanupStoriesTask(s.storyRepo, s.feedRepo, s.prefs.KeepOldStories(), true)
	if err := s.EnqueueTask(cleanupTask); err != nil {
		slog.Warn("Failed to enqueue CleanupStoriesTask", "error", err)
	}

	syncTask := NewSyncActionsTask(s.actionRepo, s.submitter, s.limiter)
	if err := s.EnqueueTask(syncTask); err != nil {
		slog.Warn("Failed to enqueue SyncActionsTask", "error", err)
	}
}

func (s *Scheduler) enqueueTasks() {
	pending, err := s.actionRepo.GetActionCount()
	if err != nil {
		slog.Warn("Failed to count pending actions, skipping sync", "error", err)
		return
	}
	if pending == 0 {
		slog.Debug("No pending actions")
		return
	}

	slog.Debug("Scheduling action delivery", "pending", pending)

	syncTask := NewSyncActionsTask(s.actionRepo, s.submitter, s.limiter)
	if err := s.EnqueueTask(syncTask); err != nil {
		slog.Warn("Failed to enqueue SyncActionsTask", "error", err)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
