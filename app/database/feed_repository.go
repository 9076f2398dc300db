package database

import (
	"database/sql"
	"fmt"
)

var _ FeedRepository = (*FeedRepo)(nil)

// FeedRepo is the SQLite-backed feed repository, covering the feed,
// social-feed, and folder tables plus the saved-story count.
type FeedRepo struct {
	db *DB
}

// NewFeedRepo creates a new feed repository.
func NewFeedRepo(db *DB) *FeedRepo {
	return &FeedRepo{db: db}
}

// UpsertFeeds replaces the stored metadata and counters of the given feeds.
func (r *FeedRepo) UpsertFeeds(feeds []Feed) error {
	if len(feeds) == 0 {
		return nil
	}
	return r.inTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO feeds (feed_id, title, link, address, favicon_url, active,
				ng_unread_count, nt_unread_count, ps_unread_count)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, f := range feeds {
			_, err := stmt.Exec(f.ID, f.Title, f.Link, f.Address, f.FaviconURL, boolToInt(f.Active),
				f.NegativeCount, f.NeutralCount, f.PositiveCount)
			if err != nil {
				return fmt.Errorf("failed to upsert feed %s: %w", f.ID, err)
			}
		}
		return nil
	})
}

// UpsertSocialFeeds replaces the stored metadata and counters of the given
// social feeds.
func (r *FeedRepo) UpsertSocialFeeds(socialFeeds []SocialFeed) error {
	if len(socialFeeds) == 0 {
		return nil
	}
	return r.inTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO social_feeds (social_feed_id, username, title, photo_url,
				ng_unread_count, nt_unread_count, ps_unread_count)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, sf := range socialFeeds {
			_, err := stmt.Exec(sf.UserID, sf.Username, sf.Title, sf.PhotoURL,
				sf.NegativeCount, sf.NeutralCount, sf.PositiveCount)
			if err != nil {
				return fmt.Errorf("failed to upsert social feed %s: %w", sf.UserID, err)
			}
		}
		return nil
	})
}

// ReplaceFolders swaps in the full folder structure from a sync response,
// mapping folder name to member feed IDs.
func (r *FeedRepo) ReplaceFolders(folders map[string][]string) error {
	return r.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM folders"); err != nil {
			return err
		}
		if _, err := tx.Exec("DELETE FROM feed_folder_map"); err != nil {
			return err
		}
		for name, feedIDs := range folders {
			if _, err := tx.Exec("INSERT INTO folders (folder_name) VALUES (?)", name); err != nil {
				return err
			}
			for _, feedID := range feedIDs {
				_, err := tx.Exec(`
					INSERT OR REPLACE INTO feed_folder_map (folder_name, feed_id) VALUES (?, ?)
				`, name, feedID)
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// GetFeed returns the feed with the given ID, or nil if not stored.
func (r *FeedRepo) GetFeed(feedID string) (*Feed, error) {
	var f Feed
	var active int
	err := r.db.ro.QueryRow(`
		SELECT feed_id, title, link, address, favicon_url, active,
			ng_unread_count, nt_unread_count, ps_unread_count
		FROM feeds WHERE feed_id = ?
	`, feedID).Scan(&f.ID, &f.Title, &f.Link, &f.Address, &f.FaviconURL, &active,
		&f.NegativeCount, &f.NeutralCount, &f.PositiveCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}
	f.Active = active != 0
	return &f, nil
}

// GetSocialFeed returns the social feed for the given user ID, or nil if
// not stored.
func (r *FeedRepo) GetSocialFeed(userID string) (*SocialFeed, error) {
	var sf SocialFeed
	err := r.db.ro.QueryRow(`
		SELECT social_feed_id, username, title, photo_url,
			ng_unread_count, nt_unread_count, ps_unread_count
		FROM social_feeds WHERE social_feed_id = ?
	`, userID).Scan(&sf.UserID, &sf.Username, &sf.Title, &sf.PhotoURL,
		&sf.NegativeCount, &sf.NeutralCount, &sf.PositiveCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get social feed: %w", err)
	}
	return &sf, nil
}

// ListFeeds returns every stored feed ordered by title.
func (r *FeedRepo) ListFeeds() ([]Feed, error) {
	rows, err := r.db.ro.Query(`
		SELECT feed_id, title, link, address, favicon_url, active,
			ng_unread_count, nt_unread_count, ps_unread_count
		FROM feeds ORDER BY title COLLATE NOCASE
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		var f Feed
		var active int
		err := rows.Scan(&f.ID, &f.Title, &f.Link, &f.Address, &f.FaviconURL, &active,
			&f.NegativeCount, &f.NeutralCount, &f.PositiveCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		f.Active = active != 0
		feeds = append(feeds, f)
	}
	return feeds, rows.Err()
}

// ListSocialFeeds returns every stored social feed ordered by username.
func (r *FeedRepo) ListSocialFeeds() ([]SocialFeed, error) {
	rows, err := r.db.ro.Query(`
		SELECT social_feed_id, username, title, photo_url,
			ng_unread_count, nt_unread_count, ps_unread_count
		FROM social_feeds ORDER BY username COLLATE NOCASE
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list social feeds: %w", err)
	}
	defer rows.Close()

	var feeds []SocialFeed
	for rows.Next() {
		var sf SocialFeed
		err := rows.Scan(&sf.UserID, &sf.Username, &sf.Title, &sf.PhotoURL,
			&sf.NegativeCount, &sf.NeutralCount, &sf.PositiveCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan social feed row: %w", err)
		}
		feeds = append(feeds, sf)
	}
	return feeds, rows.Err()
}

// GetFeedsForFolder returns the member feed IDs of a folder.
func (r *FeedRepo) GetFeedsForFolder(folderName string) ([]string, error) {
	rows, err := r.db.ro.Query(`
		SELECT feed_id FROM feed_folder_map WHERE folder_name = ? ORDER BY feed_id
	`, folderName)
	if err != nil {
		return nil, fmt.Errorf("failed to get folder feeds: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetFeedCount returns the number of stored feeds.
func (r *FeedRepo) GetFeedCount() (int, error) {
	var n int
	if err := r.db.ro.QueryRow("SELECT COUNT(*) FROM feeds").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count feeds: %w", err)
	}
	return n, nil
}

// CleanupFeedsFolders deletes folder mappings that reference feeds no
// longer stored, and folders left empty by that.
func (r *FeedRepo) CleanupFeedsFolders() error {
	return r.inTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			DELETE FROM feed_folder_map
			WHERE feed_id NOT IN (SELECT feed_id FROM feeds)
		`)
		if err != nil {
			return err
		}
		_, err = tx.Exec(`
			DELETE FROM folders
			WHERE folder_name NOT IN (SELECT folder_name FROM feed_folder_map)
		`)
		return err
	})
}

// UpdateStarredCount stores the authoritative saved-story total reported
// by the sync service.
func (r *FeedRepo) UpdateStarredCount(count int) error {
	return r.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM starred_counts"); err != nil {
			return err
		}
		_, err := tx.Exec("INSERT INTO starred_counts (count) VALUES (?)", count)
		return err
	})
}

// GetStarredCount returns the last stored saved-story total, zero if never
// reported.
func (r *FeedRepo) GetStarredCount() (int, error) {
	var n int
	err := r.db.ro.QueryRow("SELECT count FROM starred_counts").Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get starred count: %w", err)
	}
	return n, nil
}

func (r *FeedRepo) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := r.db.rw.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
