// go_media — independent media search MCP server.
//
// Exposes search tools over a curated catalog of independent outlets:
// catalog ranking, bias ratings, YouTube videos with transcripts, X posts
// and Substack publications, plus a combined news search. Runs as HTTP MCP
// server with a parallel REST surface.
//
// X search authenticates with a session cookie kept fresh by the credential
// manager in internal/creds; the cookie itself is renewed through an
// external headless-browser service or pushed in via the cookie webhook.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	twitter "github.com/anatolykoptev/go-twitter"
	"github.com/anatolykoptev/go_media/internal/api"
	"github.com/anatolykoptev/go_media/internal/creds"
	"github.com/anatolykoptev/go_media/internal/engine"
	"github.com/anatolykoptev/go_media/internal/engine/media"
	"github.com/anatolykoptev/go_media/internal/mediaserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version  = "dev"
	mcpPort  = env.Str("MCP_PORT", "8895")
	restPort = env.Str("PORT", "8080")
)

func main() {
	credentials := initEngine()

	slog.Info("starting go_media",
		slog.String("mcp_port", mcpPort),
		slog.String("rest_port", restPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_media",
		Version: version,
	}, nil)

	mediaserver.RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", 8))

	go runREST(credentials)

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_media",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

// runREST serves the REST surface alongside the MCP transport.
func runREST(credentials *creds.Manager) {
	h := api.NewHandler(engine.Cfg.APIKey, credentials)
	srv := &http.Server{
		Addr:         ":" + restPort,
		Handler:      api.NewServeMux(h),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 600 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("rest server failed", slog.Any("error", err))
	}
}

func initEngine() *creds.Manager {
	c := engine.Config{
		DataDir:              env.Str("DATA_DIR", "data"),
		CombinedFile:         env.Str("COMBINED_FILE", ""),
		APIKey:               env.Str("API_KEY", ""),
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", 10*time.Second),
		MaxContentChars:      env.Int("MAX_CONTENT_CHARS", 6000),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(15))

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Error("stealth client init failed", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("stealth browser client initialized")
	}

	// Cookie-authenticated X transport, kept fresh by the credential manager.
	credentials := initCredentials()
	if credentials != nil {
		c.Credentials = credentials
		c.XSession = media.NewCookieSession(c.HTTPClient)
	}

	// Pool/guest X client as fallback transport when no cookie is available.
	accounts := twitter.ParseAccounts(env.Str("TWITTER_ACCOUNTS", ""))
	openCount := 2
	if len(accounts) > 0 {
		openCount = 0
	}
	tw, err := twitter.NewClient(twitter.ClientConfig{
		Accounts:         accounts,
		OpenAccountCount: openCount,
	})
	if err != nil {
		slog.Warn("twitter client init failed", slog.Any("error", err))
	} else {
		c.XClient = tw
		slog.Info("twitter client ready", slog.Int("pool_size", tw.Pool().Size()))
	}

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 15*time.Minute)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)

	return credentials
}

// initCredentials wires the cookie snapshot store, the external renewal
// service and the manager on top of both. Returns nil when no store is
// configured, which disables authenticated X search.
func initCredentials() *creds.Manager {
	target := env.Str("COOKIE_STORE", "")
	if target == "" {
		return nil
	}

	store, err := openCookieStore(target)
	if err != nil {
		slog.Error("cookie store init failed", slog.Any("error", err))
		return nil
	}

	var renewer creds.Renewer
	if svcURL := env.Str("COOKIE_SERVICE_URL", ""); svcURL != "" {
		renewer = creds.NewServiceRenewer(creds.ServiceConfig{
			URL:           svcURL,
			APIKey:        env.Str("COOKIE_SERVICE_API_KEY", ""),
			LoginURL:      env.Str("COOKIE_LOGIN_URL", ""),
			Username:      env.Str("SVC_USERNAME", ""),
			Email:         env.Str("SVC_EMAIL", ""),
			Password:      env.Str("SVC_PASSWORD", ""),
			EmailPassword: env.Str("SVC_EMAIL_PASSWORD", ""),
			Timeout:       env.Duration("COOKIE_SERVICE_TIMEOUT", 3*time.Minute),
		})
		slog.Info("cookie renewal service configured")
	}

	var opts []creds.Option
	if fallback := env.Str("COOKIE_FALLBACK", ""); fallback != "" {
		opts = append(opts, creds.WithFallback(fallback))
	}
	mgr := creds.NewManager(store, renewer, opts...)

	// A seed cookie becomes the first snapshot so search works before the
	// first renewal cycle.
	if seed := env.Str("SVC_COOKIES", ""); seed != "" {
		if err := mgr.Bootstrap(context.Background(), seed); err != nil {
			slog.Warn("cookie seed rejected", slog.Any("error", err))
		} else {
			slog.Info("cookie store seeded")
		}
	}

	slog.Info("credential manager initialized", slog.Bool("renewer", renewer != nil))
	return mgr
}

// openCookieStore picks a snapshot store implementation from the target:
// a postgres URL, an sqlite file path, or a plain directory.
func openCookieStore(target string) (creds.Store, error) {
	switch {
	case strings.HasPrefix(target, "postgres://"), strings.HasPrefix(target, "postgresql://"):
		return creds.ConnectPGStore(context.Background(), target)
	case strings.HasSuffix(target, ".db"), strings.HasSuffix(target, ".sqlite"):
		return creds.OpenSQLiteStore(target)
	default:
		return creds.NewDirStore(target)
	}
}
