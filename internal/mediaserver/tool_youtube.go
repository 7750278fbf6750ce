package mediaserver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_media/internal/engine"
	"github.com/anatolykoptev/go_media/internal/engine/media"
	"github.com/anatolykoptev/go_media/internal/engine/sources"
	"github.com/anatolykoptev/go_media/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type YouTubeNewsInput struct {
	Query           string `json:"query,omitempty" jsonschema:"Search terms, also used to pick catalog channels when none are given"`
	Channels        string `json:"channels,omitempty" jsonschema:"Comma-separated YouTube handles to search in (e.g. @aljazeeraenglish,@DemocracyNow)"`
	PeriodDays      int    `json:"period_days,omitempty" jsonschema:"Days before now (or end_date) to search (default 3)"`
	EndDate         string `json:"end_date,omitempty" jsonschema:"End of the window in YYYY-MM-DD format"`
	MaxChannels     int    `json:"max_channels,omitempty" jsonschema:"Max catalog channels to match when no channels given (default 5)"`
	MaxPerChannel   int    `json:"max_videos_per_channel,omitempty" jsonschema:"Max videos per channel (default 2)"`
	GetDescriptions bool   `json:"get_descriptions,omitempty" jsonschema:"Fetch full video descriptions"`
	NoTranscripts   bool   `json:"no_transcripts,omitempty" jsonschema:"Disable transcript fetching (transcripts are on by default)"`
	CharCap         int    `json:"char_cap,omitempty" jsonschema:"Max serialized response size in characters"`
}

type YouTubeNewsOutput struct {
	Count  int            `json:"count"`
	Videos []engine.Video `json:"videos"`
}

func registerYouTubeNews(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_news",
		Description: "Find recent videos from curated independent news channels on YouTube. Channels can be given explicitly or matched from the catalog by query. Optionally includes full descriptions and transcripts.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input YouTubeNewsInput) (*mcp.CallToolResult, YouTubeNewsOutput, error) {
		if input.Query == "" && input.Channels == "" {
			return nil, YouTubeNewsOutput{}, fmt.Errorf("either query or channels is required")
		}

		cacheKey := engine.CacheKey("youtube_news", input.Query, input.Channels,
			fmt.Sprintf("%d:%s:%d:%d:%t:%t:%d", input.PeriodDays, input.EndDate, input.MaxChannels,
				input.MaxPerChannel, input.GetDescriptions, input.NoTranscripts, input.CharCap))
		out, err := toolutil.CachedJSON(ctx, cacheKey, func(ctx context.Context) (YouTubeNewsOutput, error) {
			videos, err := media.SearchYouTube(ctx, media.YouTubeParams{
				Query:           input.Query,
				Channels:        input.Channels,
				PeriodDays:      input.PeriodDays,
				EndDate:         input.EndDate,
				MaxChannels:     input.MaxChannels,
				MaxPerChannel:   input.MaxPerChannel,
				GetDescriptions: input.GetDescriptions,
				GetTranscripts:  !input.NoTranscripts,
				CharCap:         input.CharCap,
			})
			if err != nil {
				return YouTubeNewsOutput{}, err
			}
			return YouTubeNewsOutput{Count: len(videos), Videos: videos}, nil
		})
		if err != nil {
			slog.Warn("youtube_news error", slog.Any("error", err))
			return nil, YouTubeNewsOutput{}, fmt.Errorf("youtube search failed: %w", err)
		}
		return nil, out, nil
	})
}

type YouTubeTranscriptsInput struct {
	IDs string `json:"ids" jsonschema:"Comma-separated YouTube video IDs"`
}

type YouTubeTranscriptsOutput struct {
	Count       int                      `json:"count"`
	Transcripts []engine.VideoTranscript `json:"transcripts"`
}

func registerYouTubeTranscripts(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_transcripts",
		Description: "Extract transcripts for a list of YouTube video IDs. Videos without captions return empty text.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input YouTubeTranscriptsInput) (*mcp.CallToolResult, YouTubeTranscriptsOutput, error) {
		ids := toolutil.SplitCSV(input.IDs)
		if len(ids) == 0 {
			return nil, YouTubeTranscriptsOutput{}, fmt.Errorf("ids is required")
		}

		cacheKey := engine.CacheKey("youtube_transcripts", strings.Join(ids, ","))
		out, err := toolutil.CachedJSON(ctx, cacheKey, func(ctx context.Context) (YouTubeTranscriptsOutput, error) {
			transcripts := sources.Transcripts(ctx, ids)
			return YouTubeTranscriptsOutput{Count: len(transcripts), Transcripts: transcripts}, nil
		})
		if err != nil {
			return nil, YouTubeTranscriptsOutput{}, err
		}
		return nil, out, nil
	})
}
