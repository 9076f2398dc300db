package feedset

import (
	"errors"
	"testing"
)

func TestNew_RejectsMultipleModes(t *testing.T) {
	cases := []struct {
		name   string
		feeds  []string
		social map[string]string
		saved  bool
	}{
		{"feeds and social", []string{"1"}, map[string]string{"u1": "alice"}, false},
		{"feeds and saved", []string{"1"}, nil, true},
		{"social and saved", nil, map[string]string{"u1": "alice"}, true},
		{"all three", []string{"1"}, map[string]string{"u1": "alice"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.feeds, tc.social, tc.saved); err == nil {
				t.Errorf("Expected error for %s, got none", tc.name)
			}
		})
	}
}

func TestNew_RejectsNoMode(t *testing.T) {
	if _, err := New(nil, nil, false); err == nil {
		t.Errorf("Expected error when no mode is specified")
	}
}

func TestModes_ExactlyOneActive(t *testing.T) {
	sets := map[string]FeedSet{
		"single feed":   SingleFeed("1"),
		"multi feed":    MultipleFeeds([]string{"1", "2"}),
		"folder":        Folder("Tech", []string{"1"}),
		"single social": SingleSocialFeed("u1", "alice"),
		"multi social":  MultipleSocialFeeds(map[string]string{"u1": "alice", "u2": "bob"}),
		"all normal":    AllFeeds(),
		"all social":    AllSocialFeeds(),
		"all saved":     AllSaved(),
	}

	for name, fs := range sets {
		active := 0
		if _, ok := fs.SingleFeed(); ok {
			active++
		}
		if fs.MultipleFeeds() != nil {
			active++
		}
		if _, _, ok := fs.SingleSocialFeed(); ok {
			active++
		}
		if fs.MultipleSocialFeeds() != nil {
			active++
		}
		if fs.IsAllNormal() {
			active++
		}
		if fs.IsAllSocial() {
			active++
		}
		if fs.IsAllSaved() {
			active++
		}
		if active != 1 {
			t.Errorf("%s: expected exactly one active accessor, got %d", name, active)
		}
	}
}

func TestZeroValue_IsInvalid(t *testing.T) {
	var fs FeedSet
	if fs.Mode() != ModeInvalid {
		t.Errorf("Expected zero value mode invalid, got %s", fs.Mode())
	}
	if _, ok := fs.SingleFeed(); ok {
		t.Errorf("Zero value must not answer as a single feed")
	}
	if fs.MultipleFeeds() != nil || fs.MultipleSocialFeeds() != nil {
		t.Errorf("Zero value must not answer as a feed collection")
	}
	if _, _, ok := fs.SingleSocialFeed(); ok {
		t.Errorf("Zero value must not answer as a social feed")
	}
	if fs.IsAllNormal() || fs.IsAllSocial() || fs.IsAllSaved() {
		t.Errorf("Zero value must not answer as an all-* scope")
	}
	if _, err := fs.FeedIDs(); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Expected ErrUnsupported from the zero value, got %v", err)
	}

	// discarded constructor errors degrade to the same invalid value
	if got := MultipleFeeds(nil).Mode(); got != ModeInvalid {
		t.Errorf("Expected invalid mode from nil feed list, got %s", got)
	}
	if got := MultipleSocialFeeds(nil).Mode(); got != ModeInvalid {
		t.Errorf("Expected invalid mode from nil social map, got %s", got)
	}
}

func TestFolder_ForcesMultiModeForSingleFeed(t *testing.T) {
	fs := Folder("X", []string{"1"})

	if got := fs.MultipleFeeds(); len(got) != 1 || got[0] != "1" {
		t.Errorf("Expected MultipleFeeds to return [1], got %v", got)
	}
	if _, ok := fs.SingleFeed(); ok {
		t.Errorf("Folder-tagged set must not answer as a single feed")
	}
	if fs.FolderName() != "X" {
		t.Errorf("Expected folder name X, got %q", fs.FolderName())
	}
}

func TestSingleFeed_Accessor(t *testing.T) {
	fs := SingleFeed("1")
	id, ok := fs.SingleFeed()
	if !ok || id != "1" {
		t.Errorf("Expected single feed 1, got %q (ok=%v)", id, ok)
	}
	if fs.MultipleFeeds() != nil {
		t.Errorf("Single feed must not answer as multiple feeds")
	}
}

func TestFeedIDs(t *testing.T) {
	ids, err := AllFeeds().FeedIDs()
	if err != nil || len(ids) != 0 {
		t.Errorf("All-normal should yield an empty ID set, got %v, %v", ids, err)
	}

	ids, err = AllSocialFeeds().FeedIDs()
	if err != nil || len(ids) != 1 || ids[0] != AllSocialID {
		t.Errorf("All-social should yield the sentinel ID, got %v, %v", ids, err)
	}

	ids, err = MultipleFeeds([]string{"2", "1"}).FeedIDs()
	if err != nil || len(ids) != 2 {
		t.Errorf("Expected 2 feed IDs, got %v, %v", ids, err)
	}

	ids, err = SingleSocialFeed("u1", "alice").FeedIDs()
	if err != nil || len(ids) != 1 || ids[0] != "u1" {
		t.Errorf("Single social should yield its user ID, got %v, %v", ids, err)
	}

	_, err = MultipleSocialFeeds(map[string]string{"u1": "a", "u2": "b"}).FeedIDs()
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("Expected ErrUnsupported for multi-social set, got %v", err)
	}

	_, err = AllSaved().FeedIDs()
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("Expected ErrUnsupported for all-saved set, got %v", err)
	}
}

func TestEqualAndKey(t *testing.T) {
	if !MultipleFeeds([]string{"1", "2"}).Equal(MultipleFeeds([]string{"2", "1"})) {
		t.Errorf("Feed ID order must not affect equality")
	}
	if Folder("A", []string{"1", "2"}).Equal(Folder("B", []string{"1", "2"})) {
		t.Errorf("Folder-tagged sets with different folder names must differ")
	}
	if Folder("A", []string{"1"}).Equal(SingleFeed("1")) {
		t.Errorf("A one-feed folder must not equal the bare single feed")
	}
	if AllFeeds().Equal(AllSocialFeeds()) || AllSocialFeeds().Equal(AllSaved()) {
		t.Errorf("Distinct all-* modes must not be equal")
	}
	if !SingleSocialFeed("u1", "alice").Equal(SingleSocialFeed("u1", "alice")) {
		t.Errorf("Identical social sets must be equal")
	}
	if !SingleSocialFeed("u1", "alice").Equal(SingleSocialFeed("u1", "renamed")) {
		t.Errorf("A username change must not alter the selector's identity")
	}

	seen := map[string]bool{}
	for _, fs := range []FeedSet{
		AllFeeds(), AllSocialFeeds(), AllSaved(),
		SingleFeed("1"), MultipleFeeds([]string{"1", "2"}),
		Folder("X", []string{"1", "2"}), SingleSocialFeed("u1", "a"),
	} {
		k := fs.Key()
		if seen[k] {
			t.Errorf("Duplicate key %q", k)
		}
		seen[k] = true
	}
}

func TestNew_EmptySetsMeanAll(t *testing.T) {
	fs, err := New([]string{}, nil, false)
	if err != nil || !fs.IsAllNormal() {
		t.Errorf("Empty feed slice should mean all normal feeds, got %v, %v", fs, err)
	}

	fs, err = New(nil, map[string]string{}, false)
	if err != nil || !fs.IsAllSocial() {
		t.Errorf("Empty social map should mean all social feeds, got %v, %v", fs, err)
	}
}
