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

type SubstackNewsInput struct {
	Publications string `json:"publications" jsonschema:"Comma-separated Substack publication subdomains (e.g. taibbi,greenwald)"`
	Query        string `json:"query,omitempty" jsonschema:"Filter posts by title, subtitle or preview text"`
	MaxPerPub    int    `json:"max_posts_per_publication,omitempty" jsonschema:"Max posts per publication (default 10)"`
	NoContent    bool   `json:"no_content,omitempty" jsonschema:"Skip full post content (content is on by default)"`
}

type SubstackNewsOutput struct {
	Count int                  `json:"count"`
	Posts []media.SubstackPost `json:"posts"`
}

func registerSubstackNews(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "substack_news",
		Description: "Fetch recent posts from Substack publications. Paid-only posts are skipped; post bodies are converted to markdown.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input SubstackNewsInput) (*mcp.CallToolResult, SubstackNewsOutput, error) {
		if input.Publications == "" {
			return nil, SubstackNewsOutput{}, fmt.Errorf("publications is required")
		}

		cacheKey := engine.CacheKey("substack_news", input.Publications, input.Query,
			fmt.Sprintf("%d:%t", input.MaxPerPub, input.NoContent))
		out, err := toolutil.CachedJSON(ctx, cacheKey, func(ctx context.Context) (SubstackNewsOutput, error) {
			posts, err := media.SearchSubstack(ctx, media.SubstackParams{
				Publications: input.Publications,
				Query:        input.Query,
				MaxPerPub:    input.MaxPerPub,
				GetContent:   !input.NoContent,
			})
			if err != nil {
				return SubstackNewsOutput{}, err
			}
			return SubstackNewsOutput{Count: len(posts), Posts: posts}, nil
		})
		if err != nil {
			slog.Warn("substack_news error", slog.Any("error", err))
			return nil, SubstackNewsOutput{}, fmt.Errorf("substack search failed: %w", err)
		}
		return nil, out, nil
	})
}
