package mediaserver

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go_media/internal/engine"
	"github.com/anatolykoptev/go_media/internal/engine/media"
	"github.com/anatolykoptev/go_media/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type MediaSearchInput struct {
	Query  string `json:"query" jsonschema:"Topic or name to match against the curated independent media catalog"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Max outlets to return (default 5)"`
	Offset int    `json:"offset,omitempty" jsonschema:"Pagination offset"`
}

type MediaSearchOutput struct {
	Query   string         `json:"query"`
	Count   int            `json:"count"`
	Outlets []media.Outlet `json:"outlets"`
}

func registerMediaSearch(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "media_search",
		Description: "Search the curated independent media catalog. Returns outlets with their About text, topics, YouTube/X handles, and merged bias and credibility ratings.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input MediaSearchInput) (*mcp.CallToolResult, MediaSearchOutput, error) {
		if input.Query == "" {
			return nil, MediaSearchOutput{}, fmt.Errorf("query is required")
		}
		limit := input.Limit
		if limit <= 0 {
			limit = 5
		}

		cacheKey := engine.CacheKey("media_search", input.Query, fmt.Sprintf("%d:%d", limit, input.Offset))
		out, err := toolutil.CachedJSON(ctx, cacheKey, func(ctx context.Context) (MediaSearchOutput, error) {
			outlets, err := media.SearchMedia(input.Query, limit, input.Offset)
			if err != nil {
				return MediaSearchOutput{}, err
			}
			return MediaSearchOutput{Query: input.Query, Count: len(outlets), Outlets: outlets}, nil
		})
		if err != nil {
			return nil, MediaSearchOutput{}, fmt.Errorf("media search failed: %w", err)
		}
		return nil, out, nil
	})
}

type AllSidesSearchInput struct {
	Name   string `json:"name" jsonschema:"Partial outlet name to look up in the AllSides ratings"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Max entries to return (default 5)"`
	Offset int    `json:"offset,omitempty" jsonschema:"Pagination offset"`
}

type AllSidesSearchOutput struct {
	Name    string                `json:"name"`
	Count   int                   `json:"count"`
	Entries []media.AllSidesEntry `json:"entries"`
}

func registerAllSidesSearch(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "allsides_search",
		Description: "Look up media bias ratings from the AllSides dataset by partial outlet name.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input AllSidesSearchInput) (*mcp.CallToolResult, AllSidesSearchOutput, error) {
		if input.Name == "" {
			return nil, AllSidesSearchOutput{}, fmt.Errorf("name is required")
		}
		limit := input.Limit
		if limit <= 0 {
			limit = 5
		}

		cacheKey := engine.CacheKey("allsides_search", input.Name, fmt.Sprintf("%d:%d", limit, input.Offset))
		out, err := toolutil.CachedJSON(ctx, cacheKey, func(ctx context.Context) (AllSidesSearchOutput, error) {
			entries, err := media.SearchAllSides(input.Name, limit, input.Offset)
			if err != nil {
				return AllSidesSearchOutput{}, err
			}
			return AllSidesSearchOutput{Name: input.Name, Count: len(entries), Entries: entries}, nil
		})
		if err != nil {
			return nil, AllSidesSearchOutput{}, fmt.Errorf("allsides search failed: %w", err)
		}
		return nil, out, nil
	})
}

type MBFCSearchInput struct {
	Name   string `json:"name" jsonschema:"Partial outlet name to look up in the MediaBiasFactCheck ratings"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Max entries to return (default 5)"`
	Offset int    `json:"offset,omitempty" jsonschema:"Pagination offset"`
}

type MBFCSearchOutput struct {
	Name    string            `json:"name"`
	Count   int               `json:"count"`
	Entries []media.MBFCEntry `json:"entries"`
}

func registerMBFCSearch(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "mediabiasfactcheck_search",
		Description: "Look up bias, factual-reporting and credibility ratings from the MediaBiasFactCheck dataset by partial outlet name. Entries below medium credibility are filtered out.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input MBFCSearchInput) (*mcp.CallToolResult, MBFCSearchOutput, error) {
		if input.Name == "" {
			return nil, MBFCSearchOutput{}, fmt.Errorf("name is required")
		}
		limit := input.Limit
		if limit <= 0 {
			limit = 5
		}

		cacheKey := engine.CacheKey("mediabiasfactcheck_search", input.Name, fmt.Sprintf("%d:%d", limit, input.Offset))
		out, err := toolutil.CachedJSON(ctx, cacheKey, func(ctx context.Context) (MBFCSearchOutput, error) {
			entries, err := media.SearchMBFC(input.Name, limit, input.Offset)
			if err != nil {
				return MBFCSearchOutput{}, err
			}
			return MBFCSearchOutput{Name: input.Name, Count: len(entries), Entries: entries}, nil
		})
		if err != nil {
			return nil, MBFCSearchOutput{}, fmt.Errorf("mediabiasfactcheck search failed: %w", err)
		}
		return nil, out, nil
	})
}
