package engine

import (
	"context"
	"net/http"
	"time"

	twitter "github.com/anatolykoptev/go-twitter"
	"github.com/anatolykoptev/go_media/internal/creds"
)

// XSession performs an authenticated post search with an explicit session
// cookie. The production implementation lives in the media package; the
// cookie comes from the credential manager on every call.
type XSession interface {
	SearchPosts(ctx context.Context, cookie, query string, count int) ([]Tweet, error)
}

// Config holds all engine configuration, injected from main.
type Config struct {
	DataDir         string // outlet CSV + bias JSON datasets
	CombinedFile    string // memoized merged catalog, regenerated if missing
	APIKey          string // key required by the REST surface
	FetchTimeout    time.Duration
	MaxContentChars int

	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	HTTPClient    *http.Client
	BrowserClient *BrowserClient // nil = scraping fetchers run on HTTPClient only

	Credentials *creds.Manager  // nil = authenticated X search disabled
	XSession    XSession        // cookie-bearing transport for X search
	XClient     *twitter.Client // nil = pool/guest X transport disabled
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (media, sources).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c
	Cfg = &cfg
}
