package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feedloom/storycache/app/database"
	"github.com/feedloom/storycache/app/feedset"
	"github.com/feedloom/storycache/app/prefs"
	"github.com/feedloom/storycache/app/reading"
	"github.com/feedloom/storycache/app/tasks"
)

func NewHandler(storyRepo database.StoryRepository, feedRepo database.FeedRepository,
	actionRepo database.ActionRepository, prefsStore *prefs.Store,
	fetcher reading.Fetcher, syncer FeedSyncer, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		storyRepo:  storyRepo,
		feedRepo:   feedRepo,
		actionRepo: actionRepo,
		prefs:      prefsStore,
		fetcher:    fetcher,
		syncer:     syncer,
		scheduler:  scheduler,
		sessions:   make(map[string]*sessionEntry),
	}
}

// sessionFor returns the reading session for the selector, creating it with
// the stored preferences on first use.
func (h *Handler) sessionFor(fs feedset.FeedSet) *sessionEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	if entry, ok := h.sessions[fs.Key()]; ok {
		return entry
	}
	session := reading.NewSession(h.storyRepo, h.actionRepo, h.fetcher, fs,
		h.prefs.OrderFor(fs), h.prefs.ReadFilterFor(fs), h.prefs.StateFilter())
	entry := &sessionEntry{
		session:   session,
		navigator: reading.NewNavigator(session),
	}
	h.sessions[fs.Key()] = entry
	return entry
}

// parseFeedSet builds the story selector from query parameters: repeated
// "feed" IDs, a "folder" name (resolved against the stored folder mapping),
// repeated "social" entries as "userID:username", "saved=true", or
// "scope=social" / "scope=all".
func (h *Handler) parseFeedSet(c *gin.Context) (feedset.FeedSet, bool) {
	if c.Query("saved") == "true" {
		return feedset.AllSaved(), true
	}
	if socials := c.QueryArray("social"); len(socials) > 0 {
		m := make(map[string]string, len(socials))
		for _, entry := range socials {
			id, name, _ := strings.Cut(entry, ":")
			if id == "" {
				return feedset.FeedSet{}, false
			}
			m[id] = name
		}
		fs, err := feedset.New(nil, m, false)
		if err != nil {
			return feedset.FeedSet{}, false
		}
		return fs, true
	}
	if c.Query("scope") == "social" {
		return feedset.AllSocialFeeds(), true
	}
	feeds := c.QueryArray("feed")
	if folder := c.Query("folder"); folder != "" {
		if len(feeds) == 0 {
			ids, err := h.feedRepo.GetFeedsForFolder(folder)
			if err != nil {
				slog.Error("Failed to resolve folder", "folder", folder, "error", err)
				return feedset.FeedSet{}, false
			}
			feeds = ids
		}
		return feedset.Folder(folder, feeds), true
	}
	if len(feeds) == 0 {
		return feedset.AllFeeds(), true
	}
	fs, err := feedset.New(feeds, nil, false)
	if err != nil {
		return feedset.FeedSet{}, false
	}
	return fs, true
}

func (h *Handler) HealthCheck(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		health["feeds"] = feedCount
	}
	if pending, err := h.actionRepo.GetActionCount(); err == nil {
		health["pending_actions"] = pending
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{}

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		stats["feeds"] = feedCount
	}
	if pending, err := h.actionRepo.GetActionCount(); err == nil {
		stats["pending_actions"] = pending
	}
	if starred, err := h.feedRepo.GetStarredCount(); err == nil {
		stats["starred_stories"] = starred
	}
	if hashes, err := h.storyRepo.GetUnreadStoryHashes(); err == nil {
		stats["cached_unread_stories"] = len(hashes)
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) ListFeeds(c *gin.Context) {
	state := h.prefs.StateFilter()

	feeds, err := h.feedRepo.ListFeeds()
	if err != nil {
		slog.Error("Database error", "operation", "list_feeds", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	socialFeeds, err := h.feedRepo.ListSocialFeeds()
	if err != nil {
		slog.Error("Database error", "operation", "list_social_feeds", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	feedInfos := make([]map[string]interface{}, 0, len(feeds))
	for _, f := range feeds {
		unread, err := h.storyRepo.GetFeedUnreadCount(f.ID, state)
		if err != nil {
			slog.Error("Failed to compute unread count", "feed", f.ID, "error", err)
			continue
		}
		feedInfos = append(feedInfos, map[string]interface{}{
			"id":     f.ID,
			"title":  f.Title,
			"link":   f.Link,
			"active": f.Active,
			"unread": unread,
		})
	}

	socialInfos := make([]map[string]interface{}, 0, len(socialFeeds))
	for _, sf := range socialFeeds {
		unread, err := h.storyRepo.GetSocialFeedUnreadCount(sf.UserID, state)
		if err != nil {
			slog.Error("Failed to compute social unread count", "user", sf.UserID, "error", err)
			continue
		}
		socialInfos = append(socialInfos, map[string]interface{}{
			"user_id":  sf.UserID,
			"username": sf.Username,
			"title":    sf.Title,
			"unread":   unread,
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"feeds":        feedInfos,
		"social_feeds": socialInfos,
		"total":        len(feedInfos) + len(socialInfos),
	})
}

func (h *Handler) GetFeedUnread(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing feed id parameter"})
		return
	}

	unread, err := h.storyRepo.GetFeedUnreadCount(id, h.prefs.StateFilter())
	if err != nil {
		slog.Error("Failed to compute unread count", "feed", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "unread": unread})
}

func (h *Handler) GetStories(c *gin.Context) {
	fs, ok := h.parseFeedSet(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid feed selector"})
		return
	}

	entry := h.sessionFor(fs)
	if err := entry.session.Refresh(); err != nil {
		slog.Error("Failed to load stories", "feed_set", fs.Key(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	// the reader's position drives demand paging; the fetch outlives the
	// request that triggered it
	if pos := c.Query("position"); pos != "" {
		if position, err := strconv.Atoi(pos); err == nil {
			entry.session.CheckStoryCount(context.Background(), position)
		}
	}

	stories := entry.session.Stories()
	c.JSON(http.StatusOK, map[string]interface{}{
		"stories":   stories,
		"total":     len(stories),
		"exhausted": entry.session.Exhausted(),
	})
}

func (h *Handler) NextUnread(c *gin.Context) {
	fs, ok := h.parseFeedSet(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid feed selector"})
		return
	}
	from := 0
	if f := c.Query("from"); f != "" {
		var err error
		if from, err = strconv.Atoi(f); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from parameter"})
			return
		}
	}

	entry := h.sessionFor(fs)
	if err := entry.session.Refresh(); err != nil {
		slog.Error("Failed to load stories", "feed_set", fs.Key(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	idx, err := entry.navigator.NextUnread(c.Request.Context(), from)
	switch {
	case err == nil:
		stories := entry.session.Stories()
		if idx >= len(stories) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Story list changed during search"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"position": idx, "story": stories[idx]})
	case err == reading.ErrNoNextUnread:
		c.JSON(http.StatusNotFound, gin.H{"error": "No next unread story"})
	case err == reading.ErrSearchTimeout:
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Timed out waiting for stories to load"})
	default:
		slog.Error("Unread search failed", "feed_set", fs.Key(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
	}
}

func (h *Handler) setReadState(c *gin.Context, read bool) {
	hash := c.Param("hash")
	story, err := h.storyRepo.GetStory(hash)
	if err != nil {
		slog.Error("Database error", "operation", "get_story", "hash", hash, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if story == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Story not cached"})
		return
	}

	if err := h.storyRepo.SetStoryReadState(story, read); err != nil {
		slog.Error("Failed to update read state", "hash", hash, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	kind := database.ActionMarkStoryRead
	if !read {
		kind = database.ActionMarkStoryUnread
	}
	if err := h.actionRepo.EnqueueAction(&database.Action{Kind: kind, StoryHash: hash}); err != nil {
		slog.Error("Failed to enqueue action", "hash", hash, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "hash": hash, "read": read})
}

func (h *Handler) MarkStoryRead(c *gin.Context) {
	h.setReadState(c, true)
}

func (h *Handler) MarkStoryUnread(c *gin.Context) {
	h.setReadState(c, false)
}

func (h *Handler) setStarred(c *gin.Context, starred bool) {
	hash := c.Param("hash")
	story, err := h.storyRepo.GetStory(hash)
	if err != nil {
		slog.Error("Database error", "operation", "get_story", "hash", hash, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if story == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Story not cached"})
		return
	}

	if err := h.storyRepo.SetStoryStarred(hash, starred); err != nil {
		slog.Error("Failed to update starred flag", "hash", hash, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	kind := database.ActionSaveStory
	if !starred {
		kind = database.ActionUnsaveStory
	}
	if err := h.actionRepo.EnqueueAction(&database.Action{Kind: kind, StoryHash: hash}); err != nil {
		slog.Error("Failed to enqueue action", "hash", hash, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "hash": hash, "starred": starred})
}

func (h *Handler) SaveStory(c *gin.Context) {
	h.setStarred(c, true)
}

func (h *Handler) UnsaveStory(c *gin.Context) {
	h.setStarred(c, false)
}

// MarkFeedsRead marks an entire selector read: local counters and story
// flags in two phases, plus a queued action for the sync service. Optional
// older_than / newer_than unix-second bounds restrict the story phase.
func (h *Handler) MarkFeedsRead(c *gin.Context) {
	fs, ok := h.parseFeedSet(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid feed selector"})
		return
	}

	var olderThan, newerThan *int64
	if v := c.Query("older_than"); v != "" {
		ts, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid older_than parameter"})
			return
		}
		olderThan = &ts
	}
	if v := c.Query("newer_than"); v != "" {
		ts, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid newer_than parameter"})
			return
		}
		newerThan = &ts
	}

	feedIDs, err := fs.FeedIDs()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Selector cannot be marked read"})
		return
	}

	if err := h.storyRepo.MarkFeedsRead(fs, olderThan, newerThan); err != nil {
		slog.Error("Failed to mark feeds read", "feed_set", fs.Key(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	action := &database.Action{
		Kind:      database.ActionMarkFeedsRead,
		FeedIDs:   feedIDs,
		OlderThan: olderThan,
		NewerThan: newerThan,
	}
	if err := h.actionRepo.EnqueueAction(action); err != nil {
		slog.Error("Failed to enqueue action", "feed_set", fs.Key(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RefreshFeeds re-syncs the feed and folder listing from the service.
func (h *Handler) RefreshFeeds(c *gin.Context) {
	if err := h.syncer.RefreshFeeds(c.Request.Context()); err != nil {
		slog.Error("Failed to refresh feeds", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Feed refresh failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SetPrefs updates listing preferences for a selector: order, read_filter,
// and the global state cutoff. Open sessions pick the change up.
func (h *Handler) SetPrefs(c *gin.Context) {
	fs, ok := h.parseFeedSet(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid feed selector"})
		return
	}
	entry := h.sessionFor(fs)

	if v := c.Query("order"); v != "" {
		order := database.StoryOrder(v)
		if order != database.OrderNewest && order != database.OrderOldest {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order parameter"})
			return
		}
		if err := h.prefs.SetOrder(fs, order); err != nil {
			slog.Error("Failed to save preference", "feed_set", fs.Key(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Preference store error"})
			return
		}
		if err := entry.session.SetOrder(order); err != nil {
			slog.Error("Failed to apply order change", "feed_set", fs.Key(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
	}

	if v := c.Query("read_filter"); v != "" {
		filter := database.ReadFilter(v)
		if filter != database.FilterAll && filter != database.FilterUnread {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid read_filter parameter"})
			return
		}
		if err := h.prefs.SetReadFilter(fs, filter); err != nil {
			slog.Error("Failed to save preference", "feed_set", fs.Key(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Preference store error"})
			return
		}
		if err := entry.session.SetReadFilter(filter); err != nil {
			slog.Error("Failed to apply filter change", "feed_set", fs.Key(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
	}

	if v := c.Query("state"); v != "" {
		state := database.StateFilter(v)
		if state != database.StateAll && state != database.StateSome && state != database.StateFocus {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid state parameter"})
			return
		}
		if err := h.prefs.SetStateFilter(state); err != nil {
			slog.Error("Failed to save preference", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Preference store error"})
			return
		}
		if err := entry.session.SetStateFilter(state); err != nil {
			slog.Error("Failed to apply state change", "feed_set", fs.Key(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
