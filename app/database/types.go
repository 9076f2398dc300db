package database

// StoryOrder controls the sort direction of story listings.
type StoryOrder string

const (
	OrderNewest StoryOrder = "newest"
	OrderOldest StoryOrder = "oldest"
)

// ReadFilter controls which stories a listing includes. Stories read during
// the current reading session stay visible under FilterUnread so the list
// does not shift underneath the reader.
type ReadFilter string

const (
	FilterAll    ReadFilter = "all"
	FilterUnread ReadFilter = "unread"
)

// StateFilter is the intelligence cutoff applied to listings and unread
// counts: StateAll includes negative stories, StateSome requires a
// non-negative total, StateFocus a positive one.
type StateFilter string

const (
	StateAll   StateFilter = "all"
	StateSome  StateFilter = "some"
	StateFocus StateFilter = "focus"
)

// MaxReadStoriesStored is the per-feed ceiling of read stories kept by the
// retention pass.
const MaxReadStoriesStored = 500

// StoriesBatch is one page of stories from the sync service, along with
// any embedded supplemental entities (usually present in social requests).
type StoriesBatch struct {
	Stories     []Story               `json:"stories"`
	Users       []UserProfile         `json:"users,omitempty"`
	Feeds       []Feed                `json:"feeds,omitempty"`
	SocialFeeds []SocialFeed          `json:"social_feeds,omitempty"`
	Classifiers map[string]Classifier `json:"classifiers,omitempty"`
}
