package mediaserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go_media/internal/engine"
	"github.com/anatolykoptev/go_media/internal/engine/media"
	"github.com/anatolykoptev/go_media/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type NewsSearchInput struct {
	Query         string `json:"query,omitempty" jsonschema:"Search terms, also used to pick catalog channels/users when none are given"`
	Channels      string `json:"channels,omitempty" jsonschema:"Comma-separated YouTube handles to search in"`
	Users         string `json:"users,omitempty" jsonschema:"Comma-separated X usernames to search in"`
	PeriodDays    int    `json:"period_days,omitempty" jsonschema:"Days before now (or end_date) to search (default 3)"`
	EndDate       string `json:"end_date,omitempty" jsonschema:"End of the window in YYYY-MM-DD format"`
	MaxChannels   int    `json:"max_channels,omitempty" jsonschema:"Max catalog channels to match (default 5)"`
	MaxUsers      int    `json:"max_users,omitempty" jsonschema:"Max catalog users to match (default 20)"`
	MaxPerChannel int    `json:"max_videos_per_channel,omitempty" jsonschema:"Max videos per channel (default 2)"`
	MaxPerUser    int    `json:"max_tweets_per_user,omitempty" jsonschema:"Max posts per user (default 20)"`
	CharCap       int    `json:"char_cap,omitempty" jsonschema:"Shared response size budget, posts first"`
}

type NewsSearchOutput struct {
	TweetCount int            `json:"tweet_count"`
	VideoCount int            `json:"video_count"`
	Tweets     []engine.Tweet `json:"tweets"`
	Videos     []engine.Video `json:"videos"`
}

func registerNewsSearch(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "news_search",
		Description: "Combined search over curated independent outlets: X posts and YouTube videos (with transcripts) in one call. A char_cap budget is spent on posts first, the remainder on video transcripts.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input NewsSearchInput) (*mcp.CallToolResult, NewsSearchOutput, error) {
		if input.Query == "" && input.Channels == "" && input.Users == "" {
			return nil, NewsSearchOutput{}, fmt.Errorf("either query, channels or users is required")
		}

		cacheKey := engine.CacheKey("news_search", input.Query, input.Channels, input.Users,
			fmt.Sprintf("%d:%s:%d:%d:%d:%d:%d", input.PeriodDays, input.EndDate, input.MaxChannels,
				input.MaxUsers, input.MaxPerChannel, input.MaxPerUser, input.CharCap))
		out, err := toolutil.CachedJSON(ctx, cacheKey, func(ctx context.Context) (NewsSearchOutput, error) {
			result, err := media.SearchNews(ctx, media.NewsParams{
				Query:         input.Query,
				Channels:      input.Channels,
				Users:         input.Users,
				PeriodDays:    input.PeriodDays,
				EndDate:       input.EndDate,
				MaxChannels:   input.MaxChannels,
				MaxUsers:      input.MaxUsers,
				MaxPerChannel: input.MaxPerChannel,
				MaxPerUser:    input.MaxPerUser,
				CharCap:       input.CharCap,
			})
			if err != nil {
				return NewsSearchOutput{}, err
			}
			return NewsSearchOutput{
				TweetCount: len(result.Tweets),
				VideoCount: len(result.Videos),
				Tweets:     result.Tweets,
				Videos:     result.Videos,
			}, nil
		})
		if err != nil {
			slog.Warn("news_search error", slog.Any("error", err))
			return nil, NewsSearchOutput{}, fmt.Errorf("news search failed: %w", err)
		}
		return nil, out, nil
	})
}
