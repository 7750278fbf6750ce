package media

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/anatolykoptev/go_media/internal/engine"
)

// Combined news search: X posts and YouTube videos in one call. The char
// budget is spent on posts first, the remainder goes to video transcripts.

// NewsParams are the parameters of a combined search.
type NewsParams struct {
	Query         string
	Channels      string // comma-separated YouTube handles
	Users         string // comma-separated X usernames
	PeriodDays    int
	EndDate       string
	MaxChannels   int
	MaxUsers      int
	MaxPerChannel int
	MaxPerUser    int
	CharCap       int
}

// NewsResult holds both halves of a combined search.
type NewsResult struct {
	Tweets []engine.Tweet `json:"tweets"`
	Videos []engine.Video `json:"videos"`
}

// Items flattens the result into one list, posts first.
func (r NewsResult) Items() []any {
	items := make([]any, 0, len(r.Tweets)+len(r.Videos))
	for _, t := range r.Tweets {
		items = append(items, t)
	}
	for _, v := range r.Videos {
		items = append(items, v)
	}
	return items
}

// SearchNews runs the X and YouTube searches and applies the shared char
// budget. X platform failures already degrade to an empty post list inside
// SearchX, so a down platform never hides the other one.
func SearchNews(ctx context.Context, p NewsParams) (NewsResult, error) {
	if p.Query == "" && p.Channels == "" && p.Users == "" {
		return NewsResult{}, errors.New("either query, channels or users must be provided")
	}

	engine.IncrNews()

	var result NewsResult
	err := engine.TrackOperation(ctx, "news:"+p.Query, func(ctx context.Context) error {
		return searchNews(ctx, p, &result)
	})
	return result, err
}

func searchNews(ctx context.Context, p NewsParams, result *NewsResult) error {
	if p.Query != "" || p.Users != "" {
		tweets, err := SearchX(ctx, XParams{
			Query:      p.Query,
			Users:      p.Users,
			PeriodDays: p.PeriodDays,
			EndDate:    p.EndDate,
			MaxUsers:   p.MaxUsers,
			MaxPerUser: p.MaxPerUser,
		})
		if err != nil {
			return err
		}
		result.Tweets = tweets
	}

	videoCap := p.CharCap
	if videoCap > 0 && len(result.Tweets) > 0 {
		if spent, err := json.Marshal(result.Tweets); err == nil {
			videoCap -= len(spent)
		}
		if videoCap <= 0 {
			return nil
		}
	}

	if p.Query != "" || p.Channels != "" {
		videos, err := SearchYouTube(ctx, YouTubeParams{
			Query:          p.Query,
			Channels:       p.Channels,
			PeriodDays:     p.PeriodDays,
			EndDate:        p.EndDate,
			MaxChannels:    p.MaxChannels,
			MaxPerChannel:  p.MaxPerChannel,
			GetTranscripts: true,
			CharCap:        videoCap,
		})
		if err != nil {
			return err
		}
		result.Videos = videos
	}
	return nil
}
