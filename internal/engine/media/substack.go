package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/anatolykoptev/go_media/internal/engine"
)

// Substack search — each publication's public archive API, newest first.
// Paid-only posts are skipped. Per-publication failures are logged and the
// remaining publications still return.

// SubstackPost is one post from a publication archive.
type SubstackPost struct {
	ID          int64  `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle,omitempty"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
	Publication string `json:"publication_name"`
	Content     string `json:"content,omitempty"`
	Preview     string `json:"preview,omitempty"`
}

// SubstackParams are the parameters of a Substack search.
type SubstackParams struct {
	Publications string // comma-separated publication subdomains
	Query        string // optional filter over title/subtitle/body
	MaxPerPub    int
	GetContent   bool
}

type substackRawPost struct {
	ID                 int64  `json:"id"`
	Slug               string `json:"slug"`
	Title              string `json:"title"`
	Subtitle           string `json:"subtitle"`
	CanonicalURL       string `json:"canonical_url"`
	PostDate           string `json:"post_date"`
	Audience           string `json:"audience"`
	Description        string `json:"description"`
	PreviewDescription string `json:"preview_description"`
	BodyHTML           string `json:"body_html"`
}

// SearchSubstack fetches recent posts from the given publications.
func SearchSubstack(ctx context.Context, p SubstackParams) ([]SubstackPost, error) {
	engine.IncrSubstack()
	if p.MaxPerPub <= 0 {
		p.MaxPerPub = 10
	}

	var results []SubstackPost
	for _, pub := range strings.Split(p.Publications, ",") {
		pub = strings.TrimSpace(pub)
		if pub == "" {
			continue
		}
		posts, err := fetchPublicationPosts(ctx, pub, p)
		if err != nil {
			slog.Warn("substack publication failed", slog.String("publication", pub), slog.Any("error", err))
			continue
		}
		results = append(results, posts...)
	}
	return results, nil
}

func fetchPublicationPosts(ctx context.Context, pub string, p SubstackParams) ([]SubstackPost, error) {
	archiveURL := fmt.Sprintf("https://%s.substack.com/api/v1/posts?%s", pub, url.Values{
		"sort":   {"new"},
		"limit":  {fmt.Sprintf("%d", p.MaxPerPub)},
		"offset": {"0"},
	}.Encode())

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, "GET", archiveURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentChrome)
		req.Header.Set("Accept", "application/json")
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("substack archive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("substack archive %d: %s", resp.StatusCode, string(body))
	}

	var raw []substackRawPost
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode substack archive: %w", err)
	}

	var posts []SubstackPost
	for _, rp := range raw {
		post, ok := convertSubstackPost(rp, pub, p)
		if !ok {
			continue
		}
		posts = append(posts, post)
		if len(posts) >= p.MaxPerPub {
			break
		}
	}
	return posts, nil
}

// convertSubstackPost filters and converts one raw archive entry.
// Paid-only posts and posts without a date are dropped; the query filter
// matches title, subtitle and preview text.
func convertSubstackPost(rp substackRawPost, pub string, p SubstackParams) (SubstackPost, bool) {
	if rp.Audience == "only_paid" {
		return SubstackPost{}, false
	}
	if rp.PostDate == "" {
		slog.Warn("substack post has no date", slog.String("slug", rp.Slug))
		return SubstackPost{}, false
	}
	if _, err := time.Parse(time.RFC3339, rp.PostDate); err != nil {
		slog.Warn("substack post date unparseable", slog.String("slug", rp.Slug), slog.String("date", rp.PostDate))
		return SubstackPost{}, false
	}

	preview := rp.Description
	if preview == "" {
		preview = rp.PreviewDescription
	}

	if p.Query != "" {
		hay := strings.ToLower(rp.Title + " " + rp.Subtitle + " " + preview)
		if !strings.Contains(hay, strings.ToLower(p.Query)) {
			return SubstackPost{}, false
		}
	}

	post := SubstackPost{
		ID:          rp.ID,
		Slug:        rp.Slug,
		Title:       rp.Title,
		Subtitle:    rp.Subtitle,
		URL:         rp.CanonicalURL,
		PublishedAt: rp.PostDate,
		Publication: pub,
		Preview:     preview,
	}
	if p.GetContent && rp.BodyHTML != "" {
		md, err := htmltomarkdown.ConvertString(rp.BodyHTML)
		if err != nil {
			md = htmlToText(rp.BodyHTML)
		}
		md = strings.TrimSpace(md)
		if limit := engine.Cfg.MaxContentChars; limit > 0 {
			md = engine.TruncateRunes(md, limit, "...")
		}
		post.Content = md
	}
	return post, true
}
