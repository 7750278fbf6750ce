package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_media/internal/engine"
)

// CookieSession searches X through the adaptive search endpoint using a
// browser session cookie. The cookie is passed per call so a renewed
// session takes effect without rebuilding the transport.

const (
	xSearchURL = "https://api.x.com/1.1/search/adaptive.json"

	// Public web-app bearer, same for every logged-in browser session.
	xWebBearer = "AAAAAAAAAAAAAAAAAAAAANRILgAAAAAAnNwIzUejRCOuH5E6I8xnZz4puTs%3D1Zv7ttfk8LF81IUq16cHjhLTvJu4FA33AGWWjCpTnA"

	xPageSize = 20
)

type CookieSession struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
}

// NewCookieSession builds a session transport on the given client.
// Pagination is paced at one request per second.
func NewCookieSession(client *http.Client) *CookieSession {
	return &CookieSession{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(1), 1),
		baseURL: xSearchURL,
	}
}

// csrfFromCookie extracts the ct0 value; X requires it mirrored in the
// x-csrf-token header.
func csrfFromCookie(cookie string) string {
	for _, part := range strings.Split(cookie, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && k == "ct0" {
			return v
		}
	}
	return ""
}

// --- adaptive.json response types ---

type xAdaptiveResp struct {
	GlobalObjects struct {
		Tweets map[string]xRawTweet `json:"tweets"`
		Users  map[string]xRawUser  `json:"users"`
	} `json:"globalObjects"`
	Timeline struct {
		Instructions []json.RawMessage `json:"instructions"`
	} `json:"timeline"`
}

type xRawTweet struct {
	IDStr     string `json:"id_str"`
	FullText  string `json:"full_text"`
	Lang      string `json:"lang"`
	UserIDStr string `json:"user_id_str"`
	Entities  struct {
		Hashtags []struct {
			Text string `json:"text"`
		} `json:"hashtags"`
	} `json:"entities"`
}

type xRawUser struct {
	IDStr      string `json:"id_str"`
	ScreenName string `json:"screen_name"`
}

// SearchPosts runs a live search, following the bottom cursor until count
// posts are collected or the timeline runs dry.
func (s *CookieSession) SearchPosts(ctx context.Context, cookie, query string, count int) ([]engine.Tweet, error) {
	if count <= 0 {
		count = xPageSize
	}
	csrf := csrfFromCookie(cookie)
	if csrf == "" {
		return nil, fmt.Errorf("session cookie has no ct0 value")
	}

	var tweets []engine.Tweet
	seen := make(map[string]bool)
	cursor := ""
	for len(tweets) < count {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		page, next, err := s.fetchPage(ctx, cookie, csrf, query, cursor)
		if err != nil {
			return nil, err
		}
		added := 0
		for _, t := range page {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			tweets = append(tweets, t)
			added++
		}
		if added == 0 || next == "" || next == cursor {
			break
		}
		cursor = next
	}
	if len(tweets) > count {
		tweets = tweets[:count]
	}
	return tweets, nil
}

func (s *CookieSession) fetchPage(ctx context.Context, cookie, csrf, query, cursor string) ([]engine.Tweet, string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", fmt.Sprintf("%d", xPageSize))
	params.Set("tweet_search_mode", "live")
	params.Set("query_source", "typed_query")
	params.Set("include_entities", "true")
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentChrome)
		req.Header.Set("Authorization", "Bearer "+xWebBearer)
		req.Header.Set("Cookie", cookie)
		req.Header.Set("x-csrf-token", csrf)
		req.Header.Set("x-twitter-auth-type", "OAuth2Session")
		req.Header.Set("x-twitter-active-user", "yes")
		return s.client.Do(req)
	})
	if err != nil {
		return nil, "", fmt.Errorf("x adaptive search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", fmt.Errorf("x adaptive search %d: %s", resp.StatusCode, string(body))
	}

	var ar xAdaptiveResp
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, "", fmt.Errorf("decode x adaptive search: %w", err)
	}
	return flattenAdaptive(ar), bottomCursor(ar.Timeline.Instructions), nil
}

// flattenAdaptive joins tweets with their authors and orders them newest
// first. Tweet IDs are snowflakes, so numeric order is time order.
func flattenAdaptive(ar xAdaptiveResp) []engine.Tweet {
	tweets := make([]engine.Tweet, 0, len(ar.GlobalObjects.Tweets))
	for _, raw := range ar.GlobalObjects.Tweets {
		t := engine.Tweet{
			ID:   raw.IDStr,
			Text: raw.FullText,
			Lang: raw.Lang,
			User: engine.TweetUser{ID: raw.UserIDStr},
		}
		for _, h := range raw.Entities.Hashtags {
			t.Hashtags = append(t.Hashtags, h.Text)
		}
		if u, ok := ar.GlobalObjects.Users[raw.UserIDStr]; ok {
			t.User.ScreenName = u.ScreenName
		}
		tweets = append(tweets, t)
	}
	sort.Slice(tweets, func(i, j int) bool {
		a, b := tweets[i].ID, tweets[j].ID
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a > b
	})
	return tweets
}

// bottomCursor walks timeline instructions for the bottom cursor value.
func bottomCursor(instructions []json.RawMessage) string {
	var found string
	var walk func(v json.RawMessage)
	walk = func(v json.RawMessage) {
		if found != "" {
			return
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(v, &obj); err == nil {
			if raw, ok := obj["cursor"]; ok {
				var c struct {
					Value      string `json:"value"`
					CursorType string `json:"cursorType"`
				}
				if err := json.Unmarshal(raw, &c); err == nil && c.CursorType == "Bottom" {
					found = c.Value
					return
				}
			}
			for _, child := range obj {
				walk(child)
			}
			return
		}
		var arr []json.RawMessage
		if err := json.Unmarshal(v, &arr); err == nil {
			for _, child := range arr {
				walk(child)
			}
		}
	}
	for _, ins := range instructions {
		walk(ins)
	}
	return found
}
