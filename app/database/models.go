package database

import (
	"time"
)

// Story is one cached story row. Stories are keyed by Hash, a stable dedup
// key assigned by the sync service. Rows are mutated only through the
// read-state operations and deleted only by the retention pass.
type Story struct {
	ID              string   `json:"id"`
	Hash            string   `json:"story_hash"`
	FeedID          string   `json:"story_feed_id"`
	Title           string   `json:"story_title"`
	Author          string   `json:"story_authors"`
	Content         string   `json:"story_content"`
	Permalink       string   `json:"story_permalink"`
	Timestamp       int64    `json:"story_timestamp"` // unix seconds
	Read            bool     `json:"read_status"`
	ReadThisSession bool     `json:"-"`
	Starred         bool     `json:"starred"`
	StarredTime     int64    `json:"starred_timestamp"`
	IntelAuthor     int      `json:"intel_author"`
	IntelTags       int      `json:"intel_tags"`
	IntelTitle      int      `json:"intel_title"`
	IntelFeed       int      `json:"intel_feed"`
	SocialUserID    string   `json:"social_user_id,omitempty"`
	SharedUserIDs   []string `json:"shared_by_friends,omitempty"`
	FriendUserIDs   []string `json:"friend_user_ids,omitempty"`

	PublicComments  []Comment `json:"public_comments,omitempty"`
	FriendsComments []Comment `json:"friends_comments,omitempty"`
}

// IntelligenceTotal is the story's aggregate relevance score. It selects
// which unread-count bucket the story belongs to: negative, neutral (zero),
// or positive.
func (s *Story) IntelligenceTotal() int {
	return s.IntelAuthor + s.IntelTags + s.IntelTitle + s.IntelFeed
}

// Feed is a normal (non-social) feed with its denormalized unread
// counters. The counters are the fast path for unread totals; the story
// table is the source of truth when they diverge.
type Feed struct {
	ID            string `json:"id"`
	Title         string `json:"feed_title"`
	Link          string `json:"feed_link"`
	Address       string `json:"feed_address"`
	FaviconURL    string `json:"favicon_url"`
	Active        bool   `json:"active"`
	NegativeCount int    `json:"ng"`
	NeutralCount  int    `json:"nt"`
	PositiveCount int    `json:"ps"`
}

// SocialFeed is a followed user's shared-story feed, with the same counter
// scheme as Feed.
type SocialFeed struct {
	UserID        string `json:"user_id"`
	Username      string `json:"username"`
	Title         string `json:"feed_title"`
	PhotoURL      string `json:"photo_url"`
	NegativeCount int    `json:"ng"`
	NeutralCount  int    `json:"nt"`
	PositiveCount int    `json:"ps"`
}

// UserProfile is a user referenced by social attribution or comments.
type UserProfile struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Location string `json:"location"`
	PhotoURL string `json:"photo_url"`
}

// Classifier holds per-feed trained likes/dislikes, term -> score.
type Classifier struct {
	FeedID  string         `json:"feed_id"`
	Authors map[string]int `json:"authors,omitempty"`
	Titles  map[string]int `json:"titles,omitempty"`
	Tags    map[string]int `json:"tags,omitempty"`
	Feeds   map[string]int `json:"feeds,omitempty"`
}

// Comment is a public or friend comment attached to a story.
type Comment struct {
	ID         string  `json:"id"`
	StoryID    string  `json:"story_id"`
	UserID     string  `json:"user_id"`
	Text       string  `json:"comments"`
	SharedDate int64   `json:"shared_date"`
	ByFriend   bool    `json:"by_friend"`
	Replies    []Reply `json:"replies,omitempty"`
}

// Reply is a threaded reply to a comment.
type Reply struct {
	ID          string `json:"reply_id"`
	CommentID   string `json:"comment_id"`
	UserID      string `json:"user_id"`
	Text        string `json:"comments"`
	RepliedDate int64  `json:"date"`
}

// ActionKind enumerates the local mutations that can be queued for
// delivery to the sync service.
type ActionKind string

const (
	ActionMarkStoryRead   ActionKind = "mark_story_read"
	ActionMarkStoryUnread ActionKind = "mark_story_unread"
	ActionSaveStory       ActionKind = "save_story"
	ActionUnsaveStory     ActionKind = "unsave_story"
	ActionMarkFeedsRead   ActionKind = "mark_feeds_read"
)

// Action is an unapplied local mutation awaiting delivery. Actions are
// replayed in insertion order; duplicates are tolerated because the remote
// service is idempotent.
type Action struct {
	ID        string
	Kind      ActionKind
	StoryHash string
	FeedIDs   []string
	OlderThan *int64
	NewerThan *int64
	CreatedAt time.Time
}
