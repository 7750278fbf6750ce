package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/anatolykoptev/go_media/internal/engine"
)

// Channel-scoped YouTube search: each channel's /search page is scraped for
// ytInitialData and walked for videoRenderer entries. The date window is
// pushed into the search itself via after:/before: terms.

const ytInitialDataMarker = "ytInitialData"

// YouTubeParams are the parameters of a channel video search. Channels must
// already be catalog-resolved handles ("@name").
type YouTubeParams struct {
	Channels        []string
	Query           string
	PeriodDays      int
	EndDate         string
	MaxPerChannel   int
	GetDescriptions bool
	GetTranscripts  bool
	CharCap         int // 0 = unlimited
}

// buildChannelSearch builds the query string with the date window folded in
// as search terms: "terms before:Y-M-D after:Y-M-D".
func buildChannelSearch(query string, since, until time.Time) string {
	parts := make([]string, 0, 3)
	if query != "" {
		parts = append(parts, query)
	}
	if !until.IsZero() {
		parts = append(parts, "before:"+until.Format(engine.DateFormat))
	}
	parts = append(parts, "after:"+since.Format(engine.DateFormat))
	return strings.Join(parts, " ")
}

// SearchYouTube searches the given channels concurrently and merges results.
// Channels that fail are logged and skipped. Without a query, each channel's
// videos are ordered newest first.
func SearchYouTube(ctx context.Context, p YouTubeParams) ([]engine.Video, error) {
	engine.IncrYouTubeSearch()
	if len(p.Channels) == 0 {
		return []engine.Video{}, nil
	}
	if p.MaxPerChannel <= 0 {
		p.MaxPerChannel = 3
	}

	since, until, err := engine.SearchWindow(p.PeriodDays, p.EndDate, time.Now())
	if err != nil {
		return nil, err
	}
	search := buildChannelSearch(p.Query, since, until)

	type channelResult struct {
		idx    int
		videos []engine.Video
	}
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []channelResult
	)
	for i, channel := range p.Channels {
		if strings.EqualFold(channel, "n/a") {
			continue
		}
		wg.Add(1)
		go func(idx int, channel string) {
			defer wg.Done()
			videos, err := fetchChannelVideos(ctx, channel, search, p)
			if err != nil {
				slog.Warn("youtube channel search failed",
					slog.String("channel", channel), slog.Any("error", err))
				return
			}
			mu.Lock()
			results = append(results, channelResult{idx, videos})
			mu.Unlock()
		}(i, channel)
	}
	wg.Wait()

	sort.Slice(results, func(a, b int) bool { return results[a].idx < results[b].idx })

	var merged []engine.Video
	for _, cr := range results {
		videos := cr.videos
		if p.Query == "" {
			sort.SliceStable(videos, func(a, b int) bool {
				return relativeAge(videos[a].PublishTime) < relativeAge(videos[b].PublishTime)
			})
		}
		merged = append(merged, videos...)
	}
	if p.CharCap > 0 {
		merged = trimToCharCap(merged, p.CharCap)
	}
	return merged, nil
}

// fetchChannelVideos scrapes one channel's search page and optionally
// enriches each hit with its long description and transcript.
func fetchChannelVideos(ctx context.Context, channel, search string, p YouTubeParams) ([]engine.Video, error) {
	pageURL := fmt.Sprintf("https://www.youtube.com/%s/search?hl=en&query=%s",
		channel, url.QueryEscape(search))

	body, err := fetchYouTubePage(ctx, pageURL, 4*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("channel page: %w", err)
	}

	idx := strings.Index(string(body), ytInitialDataMarker)
	if idx < 0 {
		return nil, fmt.Errorf("ytInitialData not found for channel %s", channel)
	}
	start := idx + len(ytInitialDataMarker)
	for start < len(body) && body[start] != '{' {
		start++
	}
	jsonData := extractJSON(body[start:])
	if jsonData == nil {
		return nil, fmt.Errorf("failed to extract ytInitialData for channel %s", channel)
	}

	videos := extractVideosFromInitialData(jsonData, p.MaxPerChannel)
	for i := range videos {
		if p.GetDescriptions {
			desc, err := fetchLongDescription(ctx, videos[i].ID)
			if err != nil {
				slog.Warn("youtube long description failed",
					slog.String("id", videos[i].ID), slog.Any("error", err))
			} else {
				videos[i].LongDesc = desc
			}
		}
		if p.GetTranscripts {
			text, err := FetchTranscript(ctx, videos[i].ID)
			if err != nil {
				slog.Warn("youtube transcript failed",
					slog.String("id", videos[i].ID), slog.Any("error", err))
				continue
			}
			videos[i].Transcript = text
		}
	}
	return videos, nil
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	var prev byte
	for i, c := range b {
		if inStr {
			if c == '"' && prev != '\\' {
				inStr = false
			}
		} else {
			switch c {
			case '"':
				inStr = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return b[:i+1]
				}
			}
		}
		prev = c
	}
	return nil
}

// --- videoRenderer types ---

type ytRuns struct {
	Runs []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (r ytRuns) first() string {
	if len(r.Runs) > 0 {
		return r.Runs[0].Text
	}
	return ""
}

type ytSimpleText struct {
	SimpleText string `json:"simpleText"`
}

type ytVideoRenderer struct {
	VideoID            string        `json:"videoId"`
	Title              ytRuns        `json:"title"`
	DescriptionSnippet *ytRuns       `json:"descriptionSnippet"`
	LongBylineText     ytRuns        `json:"longBylineText"`
	LengthText         ytSimpleText  `json:"lengthText"`
	ViewCountText      ytSimpleText  `json:"viewCountText"`
	PublishedTimeText  ytSimpleText  `json:"publishedTimeText"`
	NavigationEndpoint struct {
		CommandMetadata struct {
			WebCommandMetadata struct {
				URL string `json:"url"`
			} `json:"webCommandMetadata"`
		} `json:"commandMetadata"`
	} `json:"navigationEndpoint"`
}

// extractVideosFromInitialData recursively walks ytInitialData JSON for videoRenderer entries.
func extractVideosFromInitialData(data []byte, limit int) []engine.Video {
	var results []engine.Video
	var walk func(v json.RawMessage)
	walk = func(v json.RawMessage) {
		if len(results) >= limit {
			return
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(v, &obj); err == nil {
			if raw, ok := obj["videoRenderer"]; ok {
				var vr ytVideoRenderer
				if err := json.Unmarshal(raw, &vr); err == nil && vr.VideoID != "" {
					video := engine.Video{
						ID:          vr.VideoID,
						Title:       vr.Title.first(),
						Channel:     vr.LongBylineText.first(),
						Duration:    vr.LengthText.SimpleText,
						Views:       vr.ViewCountText.SimpleText,
						PublishTime: vr.PublishedTimeText.SimpleText,
						URLSuffix:   vr.NavigationEndpoint.CommandMetadata.WebCommandMetadata.URL,
					}
					if vr.DescriptionSnippet != nil {
						video.ShortDesc = vr.DescriptionSnippet.first()
					}
					results = append(results, video)
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
	walk(data)
	return results
}

// fetchLongDescription scrapes the watch page for the full video description.
func fetchLongDescription(ctx context.Context, videoID string) (string, error) {
	body, err := fetchYouTubePage(ctx, "https://www.youtube.com/watch?v="+videoID, 6*1024*1024)
	if err != nil {
		return "", fmt.Errorf("watch page: %w", err)
	}

	idx := strings.Index(string(body), ytInitialDataMarker)
	if idx < 0 {
		return "", fmt.Errorf("ytInitialData not found in watch page")
	}
	start := idx + len(ytInitialDataMarker)
	for start < len(body) && body[start] != '{' {
		start++
	}
	jsonData := extractJSON(body[start:])
	if jsonData == nil {
		return "", fmt.Errorf("failed to extract ytInitialData from watch page")
	}
	return extractAttributedDescription(jsonData), nil
}

// extractAttributedDescription walks watch-page ytInitialData for the
// attributedDescription content.
func extractAttributedDescription(data []byte) string {
	var found string
	var walk func(v json.RawMessage)
	walk = func(v json.RawMessage) {
		if found != "" {
			return
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(v, &obj); err == nil {
			if raw, ok := obj["attributedDescription"]; ok {
				var desc struct {
					Content string `json:"content"`
				}
				if err := json.Unmarshal(raw, &desc); err == nil && desc.Content != "" {
					found = desc.Content
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
	walk(data)
	return found
}

// unknownAge sorts unparseable publish text after everything else.
const unknownAge = time.Duration(1<<63 - 1)

// relativeAge converts YouTube's relative publish text ("3 days ago",
// "Streamed 2 weeks ago") into an approximate age.
func relativeAge(publishTime string) time.Duration {
	s := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(publishTime, "Streamed ")))
	fields := strings.Fields(s)
	if len(fields) < 3 || fields[len(fields)-1] != "ago" {
		return unknownAge
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return unknownAge
	}
	unit := strings.TrimSuffix(fields[1], "s")
	var d time.Duration
	switch unit {
	case "second":
		d = time.Second
	case "minute":
		d = time.Minute
	case "hour":
		d = time.Hour
	case "day":
		d = 24 * time.Hour
	case "week":
		d = 7 * 24 * time.Hour
	case "month":
		d = 30 * 24 * time.Hour
	case "year":
		d = 365 * 24 * time.Hour
	default:
		return unknownAge
	}
	return time.Duration(n) * d
}

// trimToCharCap drops the video with the longest transcript until the
// serialized result fits the cap.
func trimToCharCap(videos []engine.Video, limit int) []engine.Video {
	for len(videos) > 0 {
		data, err := json.Marshal(videos)
		if err != nil || len(data) <= limit {
			return videos
		}
		longest := -1
		for i, v := range videos {
			if longest < 0 || len(v.Transcript) > len(videos[longest].Transcript) {
				longest = i
			}
		}
		if len(videos[longest].Transcript) == 0 {
			// Nothing left to trim by transcript size.
			return videos
		}
		videos = append(videos[:longest:longest], videos[longest+1:]...)
	}
	return videos
}
