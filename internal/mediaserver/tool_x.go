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

type XNewsInput struct {
	Query      string `json:"query,omitempty" jsonschema:"Search terms, also used to pick catalog users when none are given"`
	Users      string `json:"users,omitempty" jsonschema:"Comma-separated X usernames to search in (e.g. AJEnglish,democracynow)"`
	PeriodDays int    `json:"period_days,omitempty" jsonschema:"Days before now (or end_date) to search (default 3)"`
	EndDate    string `json:"end_date,omitempty" jsonschema:"End of the window in YYYY-MM-DD format"`
	MaxUsers   int    `json:"max_users,omitempty" jsonschema:"Max catalog users to match when no users given (default 20)"`
	MaxPerUser int    `json:"max_tweets_per_user,omitempty" jsonschema:"Max posts per user (default 20)"`
}

type XNewsOutput struct {
	Count  int            `json:"count"`
	Tweets []engine.Tweet `json:"tweets"`
}

func registerXNews(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "x_news",
		Description: "Find recent posts from curated independent news outlets on X. Users can be given explicitly or matched from the catalog by query. Only catalog outlets are ever searched.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input XNewsInput) (*mcp.CallToolResult, XNewsOutput, error) {
		if input.Query == "" && input.Users == "" {
			return nil, XNewsOutput{}, fmt.Errorf("either query or users is required")
		}

		cacheKey := engine.CacheKey("x_news", input.Query, input.Users,
			fmt.Sprintf("%d:%s:%d:%d", input.PeriodDays, input.EndDate, input.MaxUsers, input.MaxPerUser))
		out, err := toolutil.CachedJSON(ctx, cacheKey, func(ctx context.Context) (XNewsOutput, error) {
			tweets, err := media.SearchX(ctx, media.XParams{
				Query:      input.Query,
				Users:      input.Users,
				PeriodDays: input.PeriodDays,
				EndDate:    input.EndDate,
				MaxUsers:   input.MaxUsers,
				MaxPerUser: input.MaxPerUser,
			})
			if err != nil {
				return XNewsOutput{}, err
			}
			return XNewsOutput{Count: len(tweets), Tweets: tweets}, nil
		})
		if err != nil {
			slog.Warn("x_news error", slog.Any("error", err))
			return nil, XNewsOutput{}, fmt.Errorf("x search failed: %w", err)
		}
		return nil, out, nil
	})
}
