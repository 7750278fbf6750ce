package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	MediaSearchRequests       atomic.Int64
	AllSidesRequests          atomic.Int64
	MBFCRequests              atomic.Int64
	YouTubeSearchRequests     atomic.Int64
	YouTubeTranscriptRequests atomic.Int64
	XSearchRequests           atomic.Int64
	SubstackRequests          atomic.Int64
	NewsRequests              atomic.Int64
	FetchRequests             atomic.Int64
	FetchErrors               atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache and credential stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	m := map[string]int64{
		"media_search_requests":       metrics.MediaSearchRequests.Load(),
		"allsides_requests":           metrics.AllSidesRequests.Load(),
		"mbfc_requests":               metrics.MBFCRequests.Load(),
		"youtube_search_requests":     metrics.YouTubeSearchRequests.Load(),
		"youtube_transcript_requests": metrics.YouTubeTranscriptRequests.Load(),
		"x_search_requests":           metrics.XSearchRequests.Load(),
		"substack_requests":           metrics.SubstackRequests.Load(),
		"news_requests":               metrics.NewsRequests.Load(),
		"fetch_requests":              metrics.FetchRequests.Load(),
		"fetch_errors":                metrics.FetchErrors.Load(),
		"cache_hits":                  hits,
		"cache_misses":                misses,
	}
	if Cfg.Credentials != nil {
		renewals, failures := Cfg.Credentials.Stats()
		m["cookie_renewals"] = renewals
		m["cookie_renewal_failures"] = failures
	}
	return m
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"media_search_requests",
		"allsides_requests", "mbfc_requests",
		"youtube_search_requests", "youtube_transcript_requests",
		"x_search_requests", "substack_requests", "news_requests",
		"fetch_requests", "fetch_errors",
		"cookie_renewals", "cookie_renewal_failures",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		if v, ok := m[k]; ok {
			fmt.Fprintf(&sb, "%s %d\n", k, v)
		}
	}
	return sb.String()
}

// Incrementors for media/ and sources/ sub-packages.
func IncrMediaSearch()       { metrics.MediaSearchRequests.Add(1) }
func IncrAllSides()          { metrics.AllSidesRequests.Add(1) }
func IncrMBFC()              { metrics.MBFCRequests.Add(1) }
func IncrYouTubeSearch()     { metrics.YouTubeSearchRequests.Add(1) }
func IncrYouTubeTranscript() { metrics.YouTubeTranscriptRequests.Add(1) }
func IncrXSearch()           { metrics.XSearchRequests.Add(1) }
func IncrSubstack()          { metrics.SubstackRequests.Add(1) }
func IncrNews()              { metrics.NewsRequests.Add(1) }
func IncrFetch()             { metrics.FetchRequests.Add(1) }
func IncrFetchError()        { metrics.FetchErrors.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
