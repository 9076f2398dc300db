package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/feedloom/storycache/app/feedset"
)

var _ StoryRepository = (*StoryRepo)(nil)

// StoryRepo is the SQLite-backed story repository. It is the single
// location of SQL executed against the story, counter, and mapping tables.
type StoryRepo struct {
	db *DB
}

// NewStoryRepo creates a new story repository.
func NewStoryRepo(db *DB) *StoryRepo {
	return &StoryRepo{db: db}
}

const storyColumns = `story_hash, story_id, feed_id, title, author, content, permalink,
	timestamp, read, read_this_session, starred, starred_timestamp,
	intel_author, intel_tags, intel_title, intel_feed,
	social_user_id, shared_user_ids, friend_user_ids`

// joinStoryColumns qualifies every story column with the table name for
// queries that join social_story_map, which shares the story_hash column.
const joinStoryColumns = `stories.story_hash, stories.story_id, stories.feed_id, stories.title,
	stories.author, stories.content, stories.permalink,
	stories.timestamp, stories.read, stories.read_this_session, stories.starred, stories.starred_timestamp,
	stories.intel_author, stories.intel_tags, stories.intel_title, stories.intel_feed,
	stories.social_user_id, stories.shared_user_ids, stories.friend_user_ids`

// intelTotal is the SQL expression for a story's aggregate intelligence
// score, mirroring Story.IntelligenceTotal.
const intelTotal = "(intel_author + intel_tags + intel_title + intel_feed)"

// InsertStories ingests one batch from the sync service. Every entity is
// upserted idempotently (REPLACE, keyed by stable ID/hash); each table is
// written in its own transaction so a failure on one cannot corrupt
// another, but the ingest is not atomic across tables.
func (r *StoryRepo) InsertStories(batch StoriesBatch) error {
	// classifiers may arrive without an explicit feed ID; they then inherit
	// the feed ID implied by the batch's stories
	impliedFeedID := ""
	for _, story := range batch.Stories {
		impliedFeedID = story.FeedID
	}

	if len(batch.Users) > 0 {
		err := r.inTx(func(tx *sql.Tx) error {
			stmt, err := tx.Prepare(`
				INSERT OR REPLACE INTO users (user_id, username, location, photo_url)
				VALUES (?, ?, ?, ?)
			`)
			if err != nil {
				return err
			}
			defer stmt.Close()
			for _, u := range batch.Users {
				if _, err := stmt.Exec(u.UserID, u.Username, u.Location, u.PhotoURL); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to insert users: %w", err)
		}
	}

	// supplemental feed data, usually included in social requests
	if len(batch.Feeds) > 0 {
		err := r.inTx(func(tx *sql.Tx) error {
			stmt, err := tx.Prepare(`
				INSERT OR REPLACE INTO feeds (feed_id, title, link, address, favicon_url, active,
					ng_unread_count, nt_unread_count, ps_unread_count)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			`)
			if err != nil {
				return err
			}
			defer stmt.Close()
			for _, f := range batch.Feeds {
				if _, err := stmt.Exec(f.ID, f.Title, f.Link, f.Address, f.FaviconURL, boolToInt(f.Active),
					f.NegativeCount, f.NeutralCount, f.PositiveCount); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to insert feeds: %w", err)
		}
	}

	if len(batch.SocialFeeds) > 0 {
		err := r.inTx(func(tx *sql.Tx) error {
			stmt, err := tx.Prepare(`
				INSERT OR REPLACE INTO social_feeds (social_feed_id, username, title, photo_url,
					ng_unread_count, nt_unread_count, ps_unread_count)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`)
			if err != nil {
				return err
			}
			defer stmt.Close()
			for _, sf := range batch.SocialFeeds {
				if _, err := stmt.Exec(sf.UserID, sf.Username, sf.Title, sf.PhotoURL,
					sf.NegativeCount, sf.NeutralCount, sf.PositiveCount); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to insert social feeds: %w", err)
		}
	}

	if len(batch.Stories) > 0 {
		err := r.inTx(func(tx *sql.Tx) error {
			stmt, err := tx.Prepare(`
				INSERT OR REPLACE INTO stories (` + storyColumns + `)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`)
			if err != nil {
				return err
			}
			defer stmt.Close()
			mapStmt, err := tx.Prepare(`
				INSERT OR REPLACE INTO social_story_map (social_user_id, story_hash)
				VALUES (?, ?)
			`)
			if err != nil {
				return err
			}
			defer mapStmt.Close()

			for _, s := range batch.Stories {
				_, err := stmt.Exec(s.Hash, s.ID, s.FeedID, s.Title, s.Author, s.Content, s.Permalink,
					s.Timestamp, boolToInt(s.Read), 0, boolToInt(s.Starred), s.StarredTime,
					s.IntelAuthor, s.IntelTags, s.IntelTitle, s.IntelFeed,
					s.SocialUserID, joinIDs(s.SharedUserIDs), joinIDs(s.FriendUserIDs))
				if err != nil {
					return err
				}
				// a story shared by users is also reachable under their social feeds
				for _, sharedUserID := range s.SharedUserIDs {
					if _, err := mapStmt.Exec(sharedUserID, s.Hash); err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to insert stories: %w", err)
		}
	}

	if len(batch.Classifiers) > 0 {
		err := r.inTx(func(tx *sql.Tx) error {
			for feedID, cl := range batch.Classifiers {
				if feedID == "-1" || feedID == "" {
					feedID = impliedFeedID
				}
				if _, err := tx.Exec("DELETE FROM classifiers WHERE feed_id = ?", feedID); err != nil {
					return err
				}
				for kind, terms := range map[string]map[string]int{
					"author": cl.Authors,
					"title":  cl.Titles,
					"tag":    cl.Tags,
					"feed":   cl.Feeds,
				} {
					for term, score := range terms {
						_, err := tx.Exec(`
							INSERT OR REPLACE INTO classifiers (feed_id, kind, term, score)
							VALUES (?, ?, ?, ?)
						`, feedID, kind, term, score)
						if err != nil {
							return err
						}
					}
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to insert classifiers: %w", err)
		}
	}

	if err := r.insertComments(batch.Stories); err != nil {
		return fmt.Errorf("failed to insert comments: %w", err)
	}

	return nil
}

func (r *StoryRepo) insertComments(stories []Story) error {
	var comments []Comment
	for _, s := range stories {
		for _, c := range append(append([]Comment{}, s.PublicComments...), s.FriendsComments...) {
			c.StoryID = s.ID
			// comment IDs are synthesized from their coordinates so re-ingest replaces
			c.ID = s.ID + s.FeedID + c.UserID
			comments = append(comments, c)
		}
	}
	if len(comments) == 0 {
		return nil
	}

	return r.inTx(func(tx *sql.Tx) error {
		cStmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO comments (comment_id, story_id, user_id, comment_text, shared_date, by_friend)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer cStmt.Close()
		rStmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO replies (reply_id, comment_id, user_id, reply_text, replied_date)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer rStmt.Close()

		for _, c := range comments {
			if _, err := cStmt.Exec(c.ID, c.StoryID, c.UserID, c.Text, c.SharedDate, boolToInt(c.ByFriend)); err != nil {
				return err
			}
			for _, reply := range c.Replies {
				replyID := reply.ID
				if replyID == "" {
					replyID = fmt.Sprintf("%s:%s:%d", c.ID, reply.UserID, reply.RepliedDate)
				}
				if _, err := rStmt.Exec(replyID, c.ID, reply.UserID, reply.Text, reply.RepliedDate); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// GetStories returns the stored stories matching the selector, ordered and
// filtered per the active preferences. The query shape dispatches on the
// FeedSet mode; a mode with no defined shape is a programming error.
func (r *StoryRepo) GetStories(fs feedset.FeedSet, state StateFilter, order StoryOrder, filter ReadFilter) ([]Story, error) {
	base := "SELECT " + storyColumns + " FROM stories"
	tail := " AND " + stateCondition(state) + " AND " + readCondition(filter) + orderClause(order)

	switch {
	case fs.Mode() == feedset.ModeSingleFeed:
		feedID, _ := fs.SingleFeed()
		return r.queryStories(base+" WHERE feed_id = ?"+tail, feedID)

	case fs.MultipleFeeds() != nil:
		ids := fs.MultipleFeeds()
		if len(ids) == 0 {
			// an empty folder selects nothing
			return nil, nil
		}
		q := base + " WHERE feed_id IN (" + placeholders(len(ids)) + ")" + tail
		return r.queryStories(q, stringArgs(ids)...)

	case fs.Mode() == feedset.ModeSingleSocial:
		userID, _, _ := fs.SingleSocialFeed()
		q := "SELECT " + joinStoryColumns + ` FROM stories
			JOIN social_story_map ON social_story_map.story_hash = stories.story_hash
			WHERE social_story_map.social_user_id = ?` + tail
		return r.queryStories(q, userID)

	case fs.MultipleSocialFeeds() != nil:
		ids := make([]string, 0, len(fs.MultipleSocialFeeds()))
		for id := range fs.MultipleSocialFeeds() {
			ids = append(ids, id)
		}
		q := "SELECT " + joinStoryColumns + ` FROM stories
			JOIN social_story_map ON social_story_map.story_hash = stories.story_hash
			WHERE social_story_map.social_user_id IN (` + placeholders(len(ids)) + ")" +
			" AND " + stateCondition(state) + " AND " + readCondition(filter) +
			" GROUP BY stories.story_hash" + orderClause(order)
		return r.queryStories(q, stringArgs(ids)...)

	case fs.IsAllNormal():
		return r.queryStories(base + " WHERE 1" + tail)

	case fs.IsAllSocial():
		q := "SELECT " + joinStoryColumns + ` FROM stories
			JOIN social_story_map ON social_story_map.story_hash = stories.story_hash
			WHERE 1` + " AND " + stateCondition(state) + " AND " + readCondition(filter) +
			" GROUP BY stories.story_hash" + orderClause(order)
		return r.queryStories(q)

	case fs.IsAllSaved():
		// saved stories ignore the read filter and sort by the time they were saved
		return r.queryStories(base + " WHERE starred = 1 ORDER BY starred_timestamp DESC")

	default:
		return nil, fmt.Errorf("asked to get stories for feed set of unknown type: %s", fs)
	}
}

// GetStory returns the story with the given hash, or nil if not cached.
func (r *StoryRepo) GetStory(hash string) (*Story, error) {
	stories, err := r.queryStories("SELECT "+storyColumns+" FROM stories WHERE story_hash = ?", hash)
	if err != nil {
		return nil, err
	}
	if len(stories) == 0 {
		return nil, nil
	}
	return &stories[0], nil
}

// GetStoryHashesForFeed returns every cached story hash for one feed.
func (r *StoryRepo) GetStoryHashesForFeed(feedID string) ([]string, error) {
	return r.queryHashes("SELECT story_hash FROM stories WHERE feed_id = ?", feedID)
}

// GetUnreadStoryHashes returns the hashes of every cached unread story.
func (r *StoryRepo) GetUnreadStoryHashes() ([]string, error) {
	return r.queryHashes("SELECT story_hash FROM stories WHERE read = 0")
}

// SetStoryReadState flips the story's read and read-this-session flags and
// adjusts the owning feed's unread counter, and that of every attributed
// social feed, by one in the story's intelligence bucket. Counters are not
// clamped at zero; the max-of-two-sources read path absorbs divergence.
func (r *StoryRepo) SetStoryReadState(story *Story, read bool) error {
	delta := 1
	if read {
		delta = -1
	}
	column, err := bucketColumn(story.IntelligenceTotal())
	if err != nil {
		return err
	}

	return r.inTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			UPDATE stories SET read = ?, read_this_session = ? WHERE story_hash = ?
		`, boolToInt(read), boolToInt(read), story.Hash)
		if err != nil {
			return fmt.Errorf("failed to update story flags: %w", err)
		}

		_, err = tx.Exec(fmt.Sprintf(`
			UPDATE feeds SET %s = %s + ? WHERE feed_id = ?
		`, column, column), delta, story.FeedID)
		if err != nil {
			return fmt.Errorf("failed to adjust feed counter: %w", err)
		}

		for _, userID := range story.socialAttributionIDs() {
			_, err = tx.Exec(fmt.Sprintf(`
				UPDATE social_feeds SET %s = %s + ? WHERE social_feed_id = ?
			`, column, column), delta, userID)
			if err != nil {
				return fmt.Errorf("failed to adjust social feed counter: %w", err)
			}
		}
		return nil
	})
}

// socialAttributionIDs is the deduplicated union of the sharing user and
// the friend users attributed to the story.
func (s *Story) socialAttributionIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	if s.SocialUserID != "" {
		seen[s.SocialUserID] = true
		ids = append(ids, s.SocialUserID)
	}
	for _, id := range s.FriendUserIDs {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// SetStoryStarred updates the story's saved flag.
func (r *StoryRepo) SetStoryStarred(hash string, starred bool) error {
	_, err := r.db.rw.Exec(`
		UPDATE stories SET starred = ?, starred_timestamp = CASE WHEN ? THEN strftime('%s','now') ELSE 0 END
		WHERE story_hash = ?
	`, boolToInt(starred), boolToInt(starred), hash)
	if err != nil {
		return fmt.Errorf("failed to update starred flag: %w", err)
	}
	return nil
}

// MarkFeedsRead marks the selected scope read in two phases: zero the
// denormalized counters, then flip the story flags. The phases are exposed
// separately so a caller can re-run only the story-flag phase to correct a
// race without re-zeroing counters.
func (r *StoryRepo) MarkFeedsRead(fs feedset.FeedSet, olderThan, newerThan *int64) error {
	if err := r.MarkFeedsReadCounts(fs); err != nil {
		return err
	}
	return r.MarkFeedsReadStories(fs, olderThan, newerThan)
}

// MarkFeedsReadCounts zeroes the unread counters for the selected scope.
func (r *StoryRepo) MarkFeedsReadCounts(fs feedset.FeedSet) error {
	switch {
	case fs.IsAllNormal():
		return r.inTx(func(tx *sql.Tx) error {
			if _, err := tx.Exec(zeroFeedCounts("feeds")); err != nil {
				return err
			}
			_, err := tx.Exec(zeroFeedCounts("social_feeds"))
			return err
		})
	case fs.MultipleFeeds() != nil:
		ids := fs.MultipleFeeds()
		if len(ids) == 0 {
			return nil
		}
		q := zeroFeedCounts("feeds") + " WHERE feed_id IN (" + placeholders(len(ids)) + ")"
		_, err := r.db.rw.Exec(q, stringArgs(ids)...)
		return err
	case fs.Mode() == feedset.ModeSingleFeed:
		feedID, _ := fs.SingleFeed()
		_, err := r.db.rw.Exec(zeroFeedCounts("feeds")+" WHERE feed_id = ?", feedID)
		return err
	case fs.Mode() == feedset.ModeSingleSocial:
		userID, _, _ := fs.SingleSocialFeed()
		_, err := r.db.rw.Exec(zeroFeedCounts("social_feeds")+" WHERE social_feed_id = ?", userID)
		return err
	default:
		return fmt.Errorf("asked to mark stories read for feed set of unsupported type: %s", fs)
	}
}

// MarkFeedsReadStories flips the read flag on every story in the selected
// scope, optionally bounded by a timestamp range.
func (r *StoryRepo) MarkFeedsReadStories(fs feedset.FeedSet, olderThan, newerThan *int64) error {
	var conds []string
	var args []any

	switch {
	case fs.IsAllNormal():
		// no scope condition marks every story
	case fs.MultipleFeeds() != nil:
		ids := fs.MultipleFeeds()
		if len(ids) == 0 {
			return nil
		}
		conds = append(conds, "feed_id IN ("+placeholders(len(ids))+")")
		args = append(args, stringArgs(ids)...)
	case fs.Mode() == feedset.ModeSingleFeed:
		feedID, _ := fs.SingleFeed()
		conds = append(conds, "feed_id = ?")
		args = append(args, feedID)
	case fs.Mode() == feedset.ModeSingleSocial:
		userID, _, _ := fs.SingleSocialFeed()
		conds = append(conds, "social_user_id = ?")
		args = append(args, userID)
	default:
		return fmt.Errorf("asked to mark stories read for feed set of unsupported type: %s", fs)
	}

	if olderThan != nil {
		conds = append(conds, "timestamp <= ?")
		args = append(args, *olderThan)
	}
	if newerThan != nil {
		conds = append(conds, "timestamp >= ?")
		args = append(args, *newerThan)
	}

	q := "UPDATE stories SET read = 1"
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	if _, err := r.db.rw.Exec(q, args...); err != nil {
		return fmt.Errorf("failed to mark stories read: %w", err)
	}
	return nil
}

// GetFeedUnreadCount computes the effective unread count for one feed:
// the maximum of the counter-derived and story-derived values, so a
// partially synced counter can never under-report below what the story
// table proves exists.
func (r *StoryRepo) GetFeedUnreadCount(feedID string, state StateFilter) (int, error) {
	var ng, nt, ps int
	err := r.db.ro.QueryRow(`
		SELECT ng_unread_count, nt_unread_count, ps_unread_count FROM feeds WHERE feed_id = ?
	`, feedID).Scan(&ng, &nt, &ps)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to read feed counters: %w", err)
	}
	fromCounters := countersForState(ng, nt, ps, state)

	var fromStories int
	err = r.db.ro.QueryRow(`
		SELECT COUNT(*) FROM stories WHERE feed_id = ? AND read = 0 AND `+stateCondition(state),
		feedID).Scan(&fromStories)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread stories: %w", err)
	}

	return max(fromCounters, fromStories), nil
}

// GetSocialFeedUnreadCount is GetFeedUnreadCount for a social feed.
func (r *StoryRepo) GetSocialFeedUnreadCount(userID string, state StateFilter) (int, error) {
	var ng, nt, ps int
	err := r.db.ro.QueryRow(`
		SELECT ng_unread_count, nt_unread_count, ps_unread_count FROM social_feeds WHERE social_feed_id = ?
	`, userID).Scan(&ng, &nt, &ps)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to read social feed counters: %w", err)
	}
	fromCounters := countersForState(ng, nt, ps, state)

	var fromStories int
	err = r.db.ro.QueryRow(`
		SELECT COUNT(*) FROM stories
		JOIN social_story_map ON social_story_map.story_hash = stories.story_hash
		WHERE social_story_map.social_user_id = ? AND read = 0 AND `+stateCondition(state),
		userID).Scan(&fromStories)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread social stories: %w", err)
	}

	return max(fromCounters, fromStories), nil
}

// CleanupStories is the retention pass: per feed, delete read stories
// beyond the newest MaxReadStoriesStored, or all read stories when not
// keeping history.
func (r *StoryRepo) CleanupStories(keepOldStories bool) error {
	feedIDs, err := r.queryHashes("SELECT feed_id FROM feeds")
	if err != nil {
		return fmt.Errorf("failed to list feeds: %w", err)
	}

	keep := 0
	if keepOldStories {
		keep = MaxReadStoriesStored
	}
	for _, feedID := range feedIDs {
		_, err := r.db.rw.Exec(`
			DELETE FROM stories WHERE story_hash IN (
				SELECT story_hash FROM stories
				WHERE read = 1 AND feed_id = ?
				ORDER BY timestamp DESC
				LIMIT -1 OFFSET ?
			)
		`, feedID, keep)
		if err != nil {
			return fmt.Errorf("failed to clean up stories for feed %s: %w", feedID, err)
		}
	}
	return nil
}

// ClearStories wipes all cached story rows and the social mapping. Used
// when a sort/filter change invalidates the cached pagination.
func (r *StoryRepo) ClearStories() error {
	return r.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM stories"); err != nil {
			return err
		}
		_, err := tx.Exec("DELETE FROM social_story_map")
		return err
	})
}

// ClearReadingSession clears the read-this-session flag on every story so
// they are counted as plainly read again.
func (r *StoryRepo) ClearReadingSession() error {
	if _, err := r.db.rw.Exec("UPDATE stories SET read_this_session = 0"); err != nil {
		return fmt.Errorf("failed to clear reading session: %w", err)
	}
	return nil
}

func (r *StoryRepo) inTx(fn func(tx *sql.Tx) error) error {
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

func (r *StoryRepo) queryStories(query string, args ...any) ([]Story, error) {
	rows, err := r.db.ro.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stories: %w", err)
	}
	defer rows.Close()

	var stories []Story
	for rows.Next() {
		var s Story
		var read, readSession, starred int
		var shared, friends string
		err := rows.Scan(
			&s.Hash, &s.ID, &s.FeedID, &s.Title, &s.Author, &s.Content, &s.Permalink,
			&s.Timestamp, &read, &readSession, &starred, &s.StarredTime,
			&s.IntelAuthor, &s.IntelTags, &s.IntelTitle, &s.IntelFeed,
			&s.SocialUserID, &shared, &friends,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan story row: %w", err)
		}
		s.Read = read != 0
		s.ReadThisSession = readSession != 0
		s.Starred = starred != 0
		s.SharedUserIDs = splitIDs(shared)
		s.FriendUserIDs = splitIDs(friends)
		stories = append(stories, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating story rows: %w", err)
	}
	return stories, nil
}

func (r *StoryRepo) queryHashes(query string, args ...any) ([]string, error) {
	rows, err := r.db.ro.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// bucketColumn maps an intelligence total to the unread-counter column it
// adjusts: negative, neutral, or positive.
func bucketColumn(intelTotal int) (string, error) {
	switch {
	case intelTotal < 0:
		return "ng_unread_count", nil
	case intelTotal == 0:
		return "nt_unread_count", nil
	default:
		return "ps_unread_count", nil
	}
}

func countersForState(ng, nt, ps int, state StateFilter) int {
	switch state {
	case StateFocus:
		return ps
	case StateSome:
		return nt + ps
	default:
		return ng + nt + ps
	}
}

func stateCondition(state StateFilter) string {
	switch state {
	case StateFocus:
		return intelTotal + " > 0"
	case StateSome:
		return intelTotal + " >= 0"
	default:
		return "1"
	}
}

func readCondition(filter ReadFilter) string {
	if filter == FilterUnread {
		// stories read during this session stay visible so the list does
		// not shift underneath the reader
		return "(read = 0 OR read_this_session = 1)"
	}
	return "1"
}

func orderClause(order StoryOrder) string {
	if order == OrderOldest {
		return " ORDER BY timestamp ASC"
	}
	return " ORDER BY timestamp DESC"
}

func zeroFeedCounts(table string) string {
	return "UPDATE " + table + " SET ng_unread_count = 0, nt_unread_count = 0, ps_unread_count = 0"
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func stringArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func joinIDs(ids []string) string {
	return strings.Join(ids, ",")
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
