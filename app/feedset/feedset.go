// Package feedset defines the selector value type that identifies which
// feeds or stories a view targets. Social feeds are special and requesting
// a river of feeds is not the same as requesting one or more individual
// feeds; FeedSet encapsulates that complexity behind a single immutable
// value.
package feedset

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// AllSocialID is the sentinel feed ID the remote mark-read API accepts to
// target every social feed at once.
const AllSocialID = "river:blurblogs"

// ErrUnsupported is returned by FeedIDs for selector modes the remote
// mark-read API cannot target.
var ErrUnsupported = errors.New("feed set does not support mark-read operations")

// Mode discriminates the exactly-one active representation of a FeedSet.
// The zero Mode is invalid, so a zero-value FeedSet selects nothing.
type Mode int

const (
	ModeInvalid Mode = iota
	ModeSingleFeed
	ModeMultiFeed
	ModeSingleSocial
	ModeMultiSocial
	ModeAllNormal
	ModeAllSocial
	ModeAllSaved
)

func (m Mode) String() string {
	switch m {
	case ModeInvalid:
		return "invalid"
	case ModeSingleFeed:
		return "single_feed"
	case ModeMultiFeed:
		return "multi_feed"
	case ModeSingleSocial:
		return "single_social"
	case ModeMultiSocial:
		return "multi_social"
	case ModeAllNormal:
		return "all_normal"
	case ModeAllSocial:
		return "all_social"
	case ModeAllSaved:
		return "all_saved"
	}
	return "unknown"
}

// FeedSet is an immutable selector for a subset of one, several, or all
// feeds or social feeds. Values are safe to share across goroutines. The
// zero value is an invalid selector: no accessor answers for it.
type FeedSet struct {
	mode        Mode
	feeds       []string          // sorted, ModeSingleFeed / ModeMultiFeed
	socialFeeds map[string]string // user ID -> username, social modes
	folderName  string            // only set for folder-tagged ModeMultiFeed
}

// New constructs a FeedSet from the raw representation. At most one of
// feedIDs, socialFeeds, or allSaved may be set; an empty (but non-nil)
// feedIDs slice means all normal feeds and an empty non-nil socialFeeds map
// means all social feeds. Requesting zero or more than one mode is a
// programming error and fails.
func New(feedIDs []string, socialFeeds map[string]string, allSaved bool) (FeedSet, error) {
	modes := 0
	if feedIDs != nil {
		modes++
	}
	if socialFeeds != nil {
		modes++
	}
	if allSaved {
		modes++
	}
	if modes > 1 {
		return FeedSet{}, fmt.Errorf("at most one type of feed may be specified")
	}

	switch {
	case feedIDs != nil:
		if len(feedIDs) == 0 {
			return FeedSet{mode: ModeAllNormal}, nil
		}
		ids := dedupSorted(feedIDs)
		if len(ids) == 1 {
			return FeedSet{mode: ModeSingleFeed, feeds: ids}, nil
		}
		return FeedSet{mode: ModeMultiFeed, feeds: ids}, nil
	case socialFeeds != nil:
		if len(socialFeeds) == 0 {
			return FeedSet{mode: ModeAllSocial}, nil
		}
		m := make(map[string]string, len(socialFeeds))
		for id, name := range socialFeeds {
			m[id] = name
		}
		if len(m) == 1 {
			return FeedSet{mode: ModeSingleSocial, socialFeeds: m}, nil
		}
		return FeedSet{mode: ModeMultiSocial, socialFeeds: m}, nil
	case allSaved:
		return FeedSet{mode: ModeAllSaved}, nil
	}
	return FeedSet{}, fmt.Errorf("no type of feed specified")
}

// SingleFeed selects exactly one normal feed.
func SingleFeed(feedID string) FeedSet {
	return FeedSet{mode: ModeSingleFeed, feeds: []string{feedID}}
}

// MultipleFeeds selects a set of normal feeds without a folder tag.
// Passing fewer than two IDs degrades to the matching narrower mode; a
// nil slice yields the invalid zero selector.
func MultipleFeeds(feedIDs []string) FeedSet {
	fs, _ := New(feedIDs, nil, false)
	return fs
}

// Folder selects the feeds of a named folder. The folder tag forces the
// multi-feed mode even for a single-feed folder, since folder filtering
// must still apply.
func Folder(folderName string, feedIDs []string) FeedSet {
	return FeedSet{mode: ModeMultiFeed, feeds: dedupSorted(feedIDs), folderName: folderName}
}

// SingleSocialFeed selects one social feed by user ID and username.
func SingleSocialFeed(userID, username string) FeedSet {
	return FeedSet{mode: ModeSingleSocial, socialFeeds: map[string]string{userID: username}}
}

// MultipleSocialFeeds selects several social feeds, mapping user IDs to
// usernames. Passing fewer than two degrades to the narrower mode; a nil
// map yields the invalid zero selector.
func MultipleSocialFeeds(socialFeeds map[string]string) FeedSet {
	fs, _ := New(nil, socialFeeds, false)
	return fs
}

// AllFeeds selects every normal (non-social) feed.
func AllFeeds() FeedSet {
	return FeedSet{mode: ModeAllNormal}
}

// AllSocialFeeds selects every social feed.
func AllSocialFeeds() FeedSet {
	return FeedSet{mode: ModeAllSocial}
}

// AllSaved selects the saved-stories pseudo feed.
func AllSaved() FeedSet {
	return FeedSet{mode: ModeAllSaved}
}

// Mode reports which representation is active.
func (fs FeedSet) Mode() Mode {
	return fs.mode
}

// SingleFeed returns the feed ID iff the set holds exactly one untagged
// normal feed.
func (fs FeedSet) SingleFeed() (string, bool) {
	if fs.mode == ModeSingleFeed {
		return fs.feeds[0], true
	}
	return "", false
}

// MultipleFeeds returns the feed IDs iff the set holds several feeds or is
// folder-tagged, nil otherwise. Callers must not mutate the result.
func (fs FeedSet) MultipleFeeds() []string {
	if fs.mode == ModeMultiFeed {
		return fs.feeds
	}
	return nil
}

// SingleSocialFeed returns the user ID and username iff the set holds
// exactly one social feed.
func (fs FeedSet) SingleSocialFeed() (userID, username string, ok bool) {
	if fs.mode == ModeSingleSocial {
		for id, name := range fs.socialFeeds {
			return id, name, true
		}
	}
	return "", "", false
}

// MultipleSocialFeeds returns the user ID to username mapping iff the set
// holds several social feeds, nil otherwise. Callers must not mutate the
// result.
func (fs FeedSet) MultipleSocialFeeds() map[string]string {
	if fs.mode == ModeMultiSocial {
		return fs.socialFeeds
	}
	return nil
}

func (fs FeedSet) IsAllNormal() bool { return fs.mode == ModeAllNormal }
func (fs FeedSet) IsAllSocial() bool { return fs.mode == ModeAllSocial }
func (fs FeedSet) IsAllSaved() bool  { return fs.mode == ModeAllSaved }

// FolderName returns the folder tag, or "" when the set is not a folder.
func (fs FeedSet) FolderName() string {
	return fs.folderName
}

// FeedIDs returns the feed IDs suitable for passing to bulk mark-read
// APIs. An empty slice represents "all stories". Multi-social sets are
// rejected with ErrUnsupported: the remote mark-read API cannot target
// more than one social feed at once.
func (fs FeedSet) FeedIDs() ([]string, error) {
	switch fs.mode {
	case ModeAllNormal:
		return []string{}, nil
	case ModeAllSocial:
		return []string{AllSocialID}, nil
	case ModeSingleFeed, ModeMultiFeed:
		out := make([]string, len(fs.feeds))
		copy(out, fs.feeds)
		return out, nil
	case ModeSingleSocial:
		for id := range fs.socialFeeds {
			return []string{id}, nil
		}
	}
	return nil, ErrUnsupported
}

// Equal reports whether two selectors target the same scope. Feed sets
// compare by feed IDs and folder name; social sets by their user IDs
// alone, since usernames are display data and do not change what is
// selected.
func (fs FeedSet) Equal(other FeedSet) bool {
	return fs.Key() == other.Key()
}

// Key returns a stable string identity for the selector, usable as a map
// or preference-store key. Two selectors have equal keys iff they are
// equal.
func (fs FeedSet) Key() string {
	switch fs.mode {
	case ModeInvalid:
		return "invalid"
	case ModeAllNormal:
		return "all"
	case ModeAllSocial:
		return "social:all"
	case ModeAllSaved:
		return "saved"
	case ModeSingleFeed, ModeMultiFeed:
		var b strings.Builder
		b.WriteString("feeds:")
		b.WriteString(strings.Join(fs.feeds, ","))
		if fs.folderName != "" {
			b.WriteString("|folder:")
			b.WriteString(fs.folderName)
		}
		return b.String()
	default:
		ids := make([]string, 0, len(fs.socialFeeds))
		for id := range fs.socialFeeds {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		return "social:" + strings.Join(ids, ",")
	}
}

func (fs FeedSet) String() string {
	return fmt.Sprintf("FeedSet(%s: %s)", fs.mode, fs.Key())
}

func dedupSorted(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
