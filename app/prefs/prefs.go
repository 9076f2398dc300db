// Package prefs persists per-selector listing preferences and the global
// reading options in a YAML file alongside the story cache.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/feedloom/storycache/app/database"
	"github.com/feedloom/storycache/app/feedset"
)

// ViewMode selects how a story is presented when opened.
type ViewMode string

const (
	ViewText  ViewMode = "text"
	ViewStory ViewMode = "story"
	ViewFeed  ViewMode = "feed"
)

// FeedPrefs are the listing preferences remembered for one selector.
type FeedPrefs struct {
	Order      database.StoryOrder `yaml:"order,omitempty"`
	ReadFilter database.ReadFilter `yaml:"read_filter,omitempty"`
	View       ViewMode            `yaml:"view,omitempty"`
}

type fileFormat struct {
	StateFilter    database.StateFilter `yaml:"state_filter,omitempty"`
	KeepOldStories *bool                `yaml:"keep_old_stories,omitempty"`
	Feeds          map[string]FeedPrefs `yaml:"feeds,omitempty"`
}

// Store reads and writes the preferences file. Values are cached in memory
// and written back on every change. Methods are safe for concurrent use.
type Store struct {
	path string

	mu   sync.Mutex
	data fileFormat
}

// Open loads the preferences at path, starting from defaults when the file
// does not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	if err := yaml.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("failed to parse preferences: %w", err)
	}
	return s, nil
}

// OrderFor returns the story order for the selector. Saved stories are
// always listed by save time, so their stored order is ignored; everything
// else defaults to newest first.
func (s *Store) OrderFor(fs feedset.FeedSet) database.StoryOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.data.Feeds[fs.Key()]; ok && p.Order != "" {
		return p.Order
	}
	return database.OrderNewest
}

// SetOrder stores the story order for the selector.
func (s *Store) SetOrder(fs feedset.FeedSet, order database.StoryOrder) error {
	return s.update(fs, func(p *FeedPrefs) { p.Order = order })
}

// ReadFilterFor returns the read filter for the selector. The default is
// unread-only, except for the saved-stories scope where saved-but-read
// stories are the point.
func (s *Store) ReadFilterFor(fs feedset.FeedSet) database.ReadFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.data.Feeds[fs.Key()]; ok && p.ReadFilter != "" {
		return p.ReadFilter
	}
	if fs.IsAllSaved() {
		return database.FilterAll
	}
	return database.FilterUnread
}

// SetReadFilter stores the read filter for the selector.
func (s *Store) SetReadFilter(fs feedset.FeedSet, filter database.ReadFilter) error {
	return s.update(fs, func(p *FeedPrefs) { p.ReadFilter = filter })
}

// ViewFor returns the story view mode for the selector, defaulting to the
// feed-provided content.
func (s *Store) ViewFor(fs feedset.FeedSet) ViewMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.data.Feeds[fs.Key()]; ok && p.View != "" {
		return p.View
	}
	return ViewFeed
}

// SetView stores the story view mode for the selector.
func (s *Store) SetView(fs feedset.FeedSet, view ViewMode) error {
	return s.update(fs, func(p *FeedPrefs) { p.View = view })
}

// StateFilter returns the global intelligence cutoff, defaulting to all
// stories.
func (s *Store) StateFilter() database.StateFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.StateFilter != "" {
		return s.data.StateFilter
	}
	return database.StateAll
}

// SetStateFilter stores the global intelligence cutoff.
func (s *Store) SetStateFilter(state database.StateFilter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.StateFilter = state
	return s.saveLocked()
}

// KeepOldStories reports whether the retention pass keeps a tail of read
// stories per feed. Defaults to true.
func (s *Store) KeepOldStories() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.KeepOldStories != nil {
		return *s.data.KeepOldStories
	}
	return true
}

// SetKeepOldStories stores the retention choice.
func (s *Store) SetKeepOldStories(keep bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.KeepOldStories = &keep
	return s.saveLocked()
}

func (s *Store) update(fs feedset.FeedSet, fn func(*FeedPrefs)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.Feeds == nil {
		s.data.Feeds = make(map[string]FeedPrefs)
	}
	p := s.data.Feeds[fs.Key()]
	fn(&p)
	s.data.Feeds[fs.Key()] = p
	return s.saveLocked()
}

// saveLocked writes the file atomically via a rename. Callers must hold mu.
func (s *Store) saveLocked() error {
	raw, err := yaml.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace preferences: %w", err)
	}
	return nil
}
