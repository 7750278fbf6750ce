package media

import (
	"context"
	"errors"
	"strings"

	"github.com/anatolykoptev/go_media/internal/engine"
	"github.com/anatolykoptev/go_media/internal/engine/sources"
)

// YouTubeParams are the parameters of a catalog-scoped YouTube search.
type YouTubeParams struct {
	Query           string // optional when Channels is set
	Channels        string // comma-separated handles, optional when Query is set
	PeriodDays      int
	EndDate         string
	MaxChannels     int // catalog matches to search when no channels given
	MaxPerChannel   int
	GetDescriptions bool
	GetTranscripts  bool
	CharCap         int
}

func (p *YouTubeParams) normalize() error {
	p.Channels = strings.TrimSpace(p.Channels)
	p.Query = strings.TrimSpace(p.Query)
	if p.Channels == "" && p.Query == "" {
		return errors.New("either channels or query must be provided")
	}
	if p.PeriodDays == 0 {
		p.PeriodDays = 3
	}
	if p.MaxChannels == 0 {
		p.MaxChannels = 5
	}
	if p.MaxPerChannel == 0 {
		p.MaxPerChannel = 2
	}
	return nil
}

// resolveChannels maps the request to catalog YouTube handles: explicit
// channels are filtered through the catalog, otherwise the top catalog
// matches for the query are used.
func resolveChannels(p YouTubeParams) ([]string, error) {
	if p.Channels != "" {
		return FilterChannels(strings.Split(strings.ToLower(p.Channels), ","))
	}
	return TopChannels(p.Query, p.MaxChannels)
}

// SearchYouTube resolves channels against the catalog and searches them.
func SearchYouTube(ctx context.Context, p YouTubeParams) ([]engine.Video, error) {
	if err := p.normalize(); err != nil {
		return nil, err
	}
	channels, err := resolveChannels(p)
	if err != nil {
		return nil, err
	}
	if len(channels) == 0 {
		return []engine.Video{}, nil
	}
	return sources.SearchYouTube(ctx, sources.YouTubeParams{
		Channels:        channels,
		Query:           p.Query,
		PeriodDays:      p.PeriodDays,
		EndDate:         p.EndDate,
		MaxPerChannel:   p.MaxPerChannel,
		GetDescriptions: p.GetDescriptions,
		GetTranscripts:  p.GetTranscripts,
		CharCap:         p.CharCap,
	})
}
