package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go_media/internal/creds"
	"github.com/anatolykoptev/go_media/internal/engine"
)

// X post search over catalog outlets. The query is a standard X search
// string with since/until/from: operators; requested users are filtered
// through the catalog so only curated outlets are ever searched.

// XParams are the parameters of an X search.
type XParams struct {
	Query      string // free-text terms, optional when Users is set
	Users      string // comma-separated usernames, optional when Query is set
	PeriodDays int    // days before now (or EndDate) to search
	EndDate    string // YYYY-MM-DD, empty = now
	MaxUsers   int    // catalog matches to search when no users given
	MaxPerUser int    // post cap per user
}

func (p *XParams) normalize() error {
	p.Users = strings.TrimSpace(p.Users)
	p.Query = strings.TrimSpace(p.Query)
	if p.Users == "" && p.Query == "" {
		return errors.New("either users or query must be provided")
	}
	if p.PeriodDays == 0 {
		p.PeriodDays = 3
	}
	if p.MaxUsers == 0 {
		p.MaxUsers = 20
	}
	if p.MaxPerUser == 0 {
		p.MaxPerUser = 20
	}
	return nil
}

// buildXQuery assembles the search string:
// "since:Y-M-D until:Y-M-D (from:u1 OR from:u2) terms".
func buildXQuery(users []string, query string, since, until time.Time) string {
	var sb strings.Builder
	sb.WriteString("since:" + since.Format(engine.DateFormat) + " ")
	if !until.IsZero() {
		sb.WriteString("until:" + until.Format(engine.DateFormat))
	}
	if len(users) > 0 {
		froms := make([]string, len(users))
		for i, u := range users {
			froms[i] = "from:" + u
		}
		sb.WriteString(" (" + strings.Join(froms, " OR ") + ")")
	}
	if query != "" {
		sb.WriteString(" " + query)
	}
	return strings.TrimSpace(sb.String())
}

// resolveXUsers maps the request to catalog usernames: explicit users are
// filtered through the catalog, otherwise the top catalog matches for the
// query are used.
func resolveXUsers(p XParams) ([]string, error) {
	if p.Users != "" {
		return FilterUsers(strings.Split(strings.ToLower(p.Users), ","))
	}
	return TopUsers(p.Query, p.MaxUsers)
}

// SearchX searches X posts from catalog outlets. Platform failures return
// an empty result with a warning; credential resolution failures propagate
// so the caller can distinguish an expired session from a quiet timeline.
func SearchX(ctx context.Context, p XParams) ([]engine.Tweet, error) {
	engine.IncrXSearch()
	if err := p.normalize(); err != nil {
		return nil, err
	}
	since, until, err := engine.SearchWindow(p.PeriodDays, p.EndDate, time.Now())
	if err != nil {
		return nil, err
	}

	users, err := resolveXUsers(p)
	if err != nil {
		return nil, err
	}

	search := buildXQuery(users, p.Query, since, until)
	count := p.MaxPerUser
	if len(users) > 0 {
		count = len(users) * p.MaxPerUser
	}

	slog.Debug("x search",
		slog.String("query", search),
		slog.Int("users", len(users)),
		slog.Int("count", count))

	tweets, err := fetchTweets(ctx, search, count)
	if err != nil {
		if isCredentialErr(err) {
			return nil, err
		}
		slog.Warn("x search failed", slog.Any("error", err))
		return []engine.Tweet{}, nil
	}
	return maxPerUser(tweets, p.MaxPerUser), nil
}

// fetchTweets picks the transport: the authenticated cookie session when
// both it and the credential manager are configured, otherwise the shared
// account-pool client.
func fetchTweets(ctx context.Context, search string, count int) ([]engine.Tweet, error) {
	cfg := engine.Cfg
	if cfg.XSession != nil && cfg.Credentials != nil {
		cookie, err := cfg.Credentials.Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("x session cookie: %w", err)
		}
		return cfg.XSession.SearchPosts(ctx, cookie, search, count)
	}
	if cfg.XClient != nil {
		raw, err := cfg.XClient.SearchTimeline(ctx, search, count)
		if err != nil {
			return nil, fmt.Errorf("x pool search: %w", err)
		}
		tweets := make([]engine.Tweet, 0, len(raw))
		for _, t := range raw {
			tweets = append(tweets, engine.Tweet{
				ID:   t.ID,
				Text: t.Text,
				User: engine.TweetUser{ID: t.AuthorID},
			})
		}
		return tweets, nil
	}
	return nil, errors.New("no x transport configured")
}

func isCredentialErr(err error) bool {
	return errors.Is(err, creds.ErrNoCredential) || errors.Is(err, creds.ErrRefreshFailed)
}

// maxPerUser caps posts per author, preserving order within each author.
func maxPerUser(tweets []engine.Tweet, limit int) []engine.Tweet {
	if limit <= 0 {
		return tweets
	}
	perUser := make(map[string]int)
	var order []string
	grouped := make(map[string][]engine.Tweet)
	for _, t := range tweets {
		id := t.User.ID
		if perUser[id] == 0 {
			order = append(order, id)
		}
		if perUser[id] >= limit {
			continue
		}
		perUser[id]++
		grouped[id] = append(grouped[id], t)
	}
	out := make([]engine.Tweet, 0, len(tweets))
	for _, id := range order {
		out = append(out, grouped[id]...)
	}
	return out
}
