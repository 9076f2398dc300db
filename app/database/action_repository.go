package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ ActionRepository = (*ActionRepo)(nil)

// ActionRepo is the SQLite-backed durable queue of pending local mutations.
type ActionRepo struct {
	db *DB
}

// NewActionRepo creates a new action repository.
func NewActionRepo(db *DB) *ActionRepo {
	return &ActionRepo{db: db}
}

// EnqueueAction appends one action to the queue. A missing ID or creation
// time is filled in; the assigned ID is written back to the argument.
func (r *ActionRepo) EnqueueAction(a *Action) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	var olderThan, newerThan any
	if a.OlderThan != nil {
		olderThan = *a.OlderThan
	}
	if a.NewerThan != nil {
		newerThan = *a.NewerThan
	}

	_, err := r.db.rw.Exec(`
		INSERT INTO actions (action_id, kind, story_hash, feed_ids, older_than, newer_than, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.ID, string(a.Kind), a.StoryHash, joinIDs(a.FeedIDs), olderThan, newerThan, a.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to enqueue action: %w", err)
	}
	return nil
}

// GetActions returns all pending actions in insertion order. The rowid
// carries the order; created_at has only one-second resolution and cannot
// sequence actions enqueued within the same second.
func (r *ActionRepo) GetActions() ([]Action, error) {
	rows, err := r.db.ro.Query(`
		SELECT action_id, kind, story_hash, feed_ids, older_than, newer_than, created_at
		FROM actions ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer rows.Close()

	var actions []Action
	for rows.Next() {
		var a Action
		var kind, feedIDs string
		var olderThan, newerThan *int64
		var createdAt int64
		if err := rows.Scan(&a.ID, &kind, &a.StoryHash, &feedIDs, &olderThan, &newerThan, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan action row: %w", err)
		}
		a.Kind = ActionKind(kind)
		a.FeedIDs = splitIDs(feedIDs)
		a.OlderThan = olderThan
		a.NewerThan = newerThan
		a.CreatedAt = time.Unix(createdAt, 0)
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// ClearAction removes one acknowledged action from the queue.
func (r *ActionRepo) ClearAction(actionID string) error {
	if _, err := r.db.rw.Exec("DELETE FROM actions WHERE action_id = ?", actionID); err != nil {
		return fmt.Errorf("failed to clear action: %w", err)
	}
	return nil
}

// GetActionCount returns the number of pending actions.
func (r *ActionRepo) GetActionCount() (int, error) {
	var n int
	if err := r.db.ro.QueryRow("SELECT COUNT(*) FROM actions").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count actions: %w", err)
	}
	return n, nil
}
