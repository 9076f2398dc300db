// Package remote is the HTTP client for the story sync service. It fetches
// story pages into the local store and delivers queued actions.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/feedloom/storycache/app/database"
	"github.com/feedloom/storycache/app/feedset"
	"github.com/feedloom/storycache/app/metrics"
)

// Client talks JSON over HTTP to the sync service. It implements the page
// fetcher used by reading sessions and the action submitter used by the
// background delivery task.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	stories    database.StoryRepository
	feeds      database.FeedRepository
}

func NewClient(baseURL, userAgent string, stories database.StoryRepository, feeds database.FeedRepository) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		stories:    stories,
		feeds:      feeds,
	}
}

// FetchPage retrieves one page of stories for the selector and ingests it.
// An empty page means the service is exhausted for this selector.
func (c *Client) FetchPage(ctx context.Context, fs feedset.FeedSet, page int,
	order database.StoryOrder, filter database.ReadFilter) (bool, error) {
	endpoint, params, err := storiesEndpoint(fs)
	if err != nil {
		return false, err
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("order", string(order))
	params.Set("read_filter", string(filter))

	batch, err := c.getStories(ctx, endpoint, params)
	if err != nil {
		metrics.FetchFailures.Inc()
		return false, err
	}
	metrics.PagesFetched.Inc()

	if len(batch.Stories) == 0 {
		return false, nil
	}
	if err := c.stories.InsertStories(*batch); err != nil {
		return false, fmt.Errorf("failed to store fetched stories: %w", err)
	}
	metrics.StoriesIngested.Add(float64(len(batch.Stories)))
	return true, nil
}

// storiesEndpoint maps a selector to the service path and scope parameters
// that list its stories.
func storiesEndpoint(fs feedset.FeedSet) (string, url.Values, error) {
	params := url.Values{}
	switch {
	case fs.Mode() == feedset.ModeSingleFeed:
		feedID, _ := fs.SingleFeed()
		return "/reader/feed/" + url.PathEscape(feedID), params, nil
	case fs.MultipleFeeds() != nil:
		for _, id := range fs.MultipleFeeds() {
			params.Add("feeds", id)
		}
		return "/reader/river_stories", params, nil
	case fs.Mode() == feedset.ModeSingleSocial:
		userID, username, _ := fs.SingleSocialFeed()
		return "/social/stories/" + url.PathEscape(userID) + "/" + url.PathEscape(username), params, nil
	case fs.MultipleSocialFeeds() != nil:
		for id := range fs.MultipleSocialFeeds() {
			params.Add("social_user_ids", id)
		}
		return "/social/river_stories", params, nil
	case fs.IsAllNormal():
		return "/reader/river_stories", params, nil
	case fs.IsAllSocial():
		return "/social/river_stories", params, nil
	case fs.IsAllSaved():
		return "/reader/starred_stories", params, nil
	default:
		return "", nil, fmt.Errorf("no remote endpoint for feed set: %s", fs)
	}
}

func (c *Client) getStories(ctx context.Context, endpoint string, params url.Values) (*database.StoriesBatch, error) {
	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stories: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}

	var batch database.StoriesBatch
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, fmt.Errorf("failed to decode stories response: %w", err)
	}
	return &batch, nil
}

type feedsResponse struct {
	Feeds        map[string]database.Feed `json:"feeds"`
	SocialFeeds  []database.SocialFeed    `json:"social_feeds"`
	Folders      map[string][]string      `json:"flat_folders"`
	StarredCount int                      `json:"starred_count"`
}

// RefreshFeeds replaces the local feed, social-feed, and folder listing
// with the service's current view of the subscription set.
func (c *Client) RefreshFeeds(ctx context.Context) error {
	params := url.Values{}
	params.Set("flat", "true")

	reqURL := c.baseURL + "/reader/feeds?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch feed list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status %d from /reader/feeds", resp.StatusCode)
	}

	var payload feedsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("failed to decode feed list: %w", err)
	}

	feeds := make([]database.Feed, 0, len(payload.Feeds))
	for id, f := range payload.Feeds {
		if f.ID == "" {
			f.ID = id
		}
		feeds = append(feeds, f)
	}
	if err := c.feeds.UpsertFeeds(feeds); err != nil {
		return fmt.Errorf("failed to store feeds: %w", err)
	}
	if err := c.feeds.UpsertSocialFeeds(payload.SocialFeeds); err != nil {
		return fmt.Errorf("failed to store social feeds: %w", err)
	}
	if err := c.feeds.ReplaceFolders(payload.Folders); err != nil {
		return fmt.Errorf("failed to store folders: %w", err)
	}
	if err := c.feeds.UpdateStarredCount(payload.StarredCount); err != nil {
		return fmt.Errorf("failed to store starred count: %w", err)
	}
	return nil
}

// SubmitAction delivers one queued action. The service applies actions
// idempotently, so re-delivery after a lost acknowledgement is harmless.
func (c *Client) SubmitAction(ctx context.Context, a database.Action) error {
	endpoint, form, err := actionEndpoint(a)
	if err != nil {
		return err
	}
	return c.postForm(ctx, endpoint, form)
}

func actionEndpoint(a database.Action) (string, url.Values, error) {
	form := url.Values{}
	switch a.Kind {
	case database.ActionMarkStoryRead:
		form.Set("story_hash", a.StoryHash)
		return "/reader/mark_story_hashes_as_read", form, nil
	case database.ActionMarkStoryUnread:
		form.Set("story_hash", a.StoryHash)
		return "/reader/mark_story_hash_as_unread", form, nil
	case database.ActionSaveStory:
		form.Set("story_hash", a.StoryHash)
		return "/reader/mark_story_hash_as_starred", form, nil
	case database.ActionUnsaveStory:
		form.Set("story_hash", a.StoryHash)
		return "/reader/mark_story_hash_as_unstarred", form, nil
	case database.ActionMarkFeedsRead:
		for _, id := range a.FeedIDs {
			form.Add("feed_id", id)
		}
		if a.OlderThan != nil {
			form.Set("cutoff_timestamp", strconv.FormatInt(*a.OlderThan, 10))
			form.Set("direction", "older")
		} else if a.NewerThan != nil {
			form.Set("cutoff_timestamp", strconv.FormatInt(*a.NewerThan, 10))
			form.Set("direction", "newer")
		}
		return "/reader/mark_feed_as_read", form, nil
	default:
		return "", nil, fmt.Errorf("unknown action kind: %s", a.Kind)
	}
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to submit action: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}
	return nil
}
