// Package api is the REST surface of the media search service.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/anatolykoptev/go_media/internal/creds"
	"github.com/anatolykoptev/go_media/internal/engine"
	"github.com/anatolykoptev/go_media/internal/engine/media"
	"github.com/anatolykoptev/go_media/internal/engine/sources"
	"github.com/anatolykoptev/go_media/internal/toolutil"
)

// Handler serves the REST API.
type Handler struct {
	apiKey      string
	credentials *creds.Manager // nil = cookie webhook disabled
}

// NewHandler creates a Handler. credentials may be nil when no cookie
// lifecycle is configured.
func NewHandler(apiKey string, credentials *creds.Manager) *Handler {
	return &Handler{apiKey: apiKey, credentials: credentials}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware. Health, metrics and the privacy
// notice are unauthenticated; everything else needs the API key.
func NewServeMux(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /media", h.auth(h.SearchMedia))
	mux.HandleFunc("GET /allsides", h.auth(h.SearchAllSides))
	mux.HandleFunc("GET /mediabiasfactcheck", h.auth(h.SearchMBFC))
	mux.HandleFunc("GET /youtube", h.auth(h.SearchYouTube))
	mux.HandleFunc("GET /youtube-transcripts", h.auth(h.YouTubeTranscripts))
	mux.HandleFunc("GET /x", h.auth(h.SearchX))
	mux.HandleFunc("GET /substack", h.auth(h.SearchSubstack))
	mux.HandleFunc("GET /news", h.auth(h.SearchNews))
	mux.HandleFunc("POST /webhook/cookies", h.auth(h.CookieWebhook))
	mux.HandleFunc("GET /privacy", h.Privacy)
	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("GET /metrics", h.Metrics)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(mux)
	wrapped = loggingMiddleware(wrapped)

	return wrapped
}

// intParam parses an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func intParam(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolParam(r *http.Request, name string, def bool) bool {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// SearchMedia ranks catalog outlets against a query.
func (h *Handler) SearchMedia(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, `"query" must be provided!`)
		return
	}
	limit := intParam(r, "limit", 5)
	offset := intParam(r, "offset", 0)

	cacheKey := engine.CacheKey("media_search", query, fmt.Sprintf("%d:%d", limit, offset))
	outlets, err := toolutil.CachedJSON(r.Context(), cacheKey, func(ctx context.Context) ([]media.Outlet, error) {
		return media.SearchMedia(query, limit, offset)
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, outlets)
}

// SearchAllSides looks up AllSides bias ratings by partial name.
func (h *Handler) SearchAllSides(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, `"name" must be provided!`)
		return
	}
	entries, err := media.SearchAllSides(name, intParam(r, "limit", 5), intParam(r, "offset", 0))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// SearchMBFC looks up MediaBiasFactCheck ratings by partial name.
func (h *Handler) SearchMBFC(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, `"name" must be provided!`)
		return
	}
	entries, err := media.SearchMBFC(name, intParam(r, "limit", 5), intParam(r, "offset", 0))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// SearchYouTube finds videos from curated channels.
func (h *Handler) SearchYouTube(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query, channels := q.Get("query"), q.Get("channels")
	if query == "" && channels == "" {
		writeError(w, http.StatusBadRequest, `Either one of "query" or "channels" must be provided!`)
		return
	}
	maxChannels := intParam(r, "max_channels", 5)
	if channels == "" && maxChannels <= 0 {
		writeError(w, http.StatusBadRequest, `"max_channels" must be provided when no "channels" are set!`)
		return
	}

	p := media.YouTubeParams{
		Query:           query,
		Channels:        channels,
		PeriodDays:      intParam(r, "period_days", 3),
		EndDate:         q.Get("end_date"),
		MaxChannels:     maxChannels,
		MaxPerChannel:   intParam(r, "max_videos_per_channel", 2),
		GetDescriptions: boolParam(r, "get_descriptions", false),
		GetTranscripts:  boolParam(r, "get_transcripts", true),
		CharCap:         intParam(r, "char_cap", 0),
	}

	cacheKey := engine.CacheKey("youtube", query, channels,
		fmt.Sprintf("%d:%s:%d:%d:%t:%t:%d", p.PeriodDays, p.EndDate, p.MaxChannels,
			p.MaxPerChannel, p.GetDescriptions, p.GetTranscripts, p.CharCap))
	videos, err := toolutil.CachedJSON(r.Context(), cacheKey, func(ctx context.Context) ([]engine.Video, error) {
		return media.SearchYouTube(ctx, p)
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, videos)
}

// YouTubeTranscripts extracts transcripts for a list of video IDs.
func (h *Handler) YouTubeTranscripts(w http.ResponseWriter, r *http.Request) {
	ids := toolutil.SplitCSV(r.URL.Query().Get("ids"))
	if len(ids) == 0 {
		writeError(w, http.StatusBadRequest, `"ids" must be provided!`)
		return
	}

	cacheKey := engine.CacheKey("youtube_transcripts", r.URL.Query().Get("ids"))
	transcripts, err := toolutil.CachedJSON(r.Context(), cacheKey, func(ctx context.Context) ([]engine.VideoTranscript, error) {
		return sources.Transcripts(ctx, ids), nil
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, transcripts)
}

// SearchX finds posts from curated X users.
func (h *Handler) SearchX(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query, users := q.Get("query"), q.Get("users")
	if query == "" && users == "" {
		writeError(w, http.StatusBadRequest, `Either one of "query" or "users" must be provided!`)
		return
	}
	maxUsers := intParam(r, "max_users", 20)
	if users == "" && maxUsers <= 0 {
		writeError(w, http.StatusBadRequest, `"max_users" must be provided when no "users" are set!`)
		return
	}

	p := media.XParams{
		Query:      query,
		Users:      users,
		PeriodDays: intParam(r, "period_days", 3),
		EndDate:    q.Get("end_date"),
		MaxUsers:   maxUsers,
		MaxPerUser: intParam(r, "max_tweets_per_user", 20),
	}

	cacheKey := engine.CacheKey("x", query, users,
		fmt.Sprintf("%d:%s:%d:%d", p.PeriodDays, p.EndDate, p.MaxUsers, p.MaxPerUser))
	tweets, err := toolutil.CachedJSON(r.Context(), cacheKey, func(ctx context.Context) ([]engine.Tweet, error) {
		return media.SearchX(ctx, p)
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tweets)
}

// SearchSubstack fetches recent posts from Substack publications.
func (h *Handler) SearchSubstack(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	publications := q.Get("publications")
	if publications == "" {
		writeError(w, http.StatusBadRequest, `"publications" must be provided!`)
		return
	}

	p := media.SubstackParams{
		Publications: publications,
		Query:        q.Get("query"),
		MaxPerPub:    intParam(r, "max_posts_per_publication", 10),
		GetContent:   boolParam(r, "get_content", true),
	}

	cacheKey := engine.CacheKey("substack", publications, p.Query,
		fmt.Sprintf("%d:%t", p.MaxPerPub, p.GetContent))
	posts, err := toolutil.CachedJSON(r.Context(), cacheKey, func(ctx context.Context) ([]media.SubstackPost, error) {
		return media.SearchSubstack(ctx, p)
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// SearchNews runs the combined X + YouTube search.
func (h *Handler) SearchNews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query, channels, users := q.Get("query"), q.Get("channels"), q.Get("users")
	if query == "" && channels == "" && users == "" {
		writeError(w, http.StatusBadRequest, `Either one of "query", "channels" or "users" must be provided!`)
		return
	}

	p := media.NewsParams{
		Query:         query,
		Channels:      channels,
		Users:         users,
		PeriodDays:    intParam(r, "period_days", 3),
		EndDate:       q.Get("end_date"),
		MaxChannels:   intParam(r, "max_channels", 5),
		MaxUsers:      intParam(r, "max_users", 20),
		MaxPerChannel: intParam(r, "max_videos_per_channel", 2),
		MaxPerUser:    intParam(r, "max_tweets_per_user", 20),
		CharCap:       intParam(r, "char_cap", 0),
	}

	cacheKey := engine.CacheKey("news", query, channels, users,
		fmt.Sprintf("%d:%s:%d:%d:%d:%d:%d", p.PeriodDays, p.EndDate, p.MaxChannels,
			p.MaxUsers, p.MaxPerChannel, p.MaxPerUser, p.CharCap))
	result, err := toolutil.CachedJSON(r.Context(), cacheKey, func(ctx context.Context) (media.NewsResult, error) {
		return media.SearchNews(ctx, p)
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result.Items())
}

// Privacy returns the static privacy notice.
func (h *Handler) Privacy(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("You are ok"))
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Metrics returns operational counters as plain text.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(engine.FormatMetrics()))
}
