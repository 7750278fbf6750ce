package creds

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Renewer obtains a brand-new cookie payload from an external authority.
// One call is one attempt; retry policy belongs to the Manager's caller.
type Renewer interface {
	Renew(ctx context.Context) (string, error)
}

// RenewerFunc adapts a function to the Renewer interface.
type RenewerFunc func(ctx context.Context) (string, error)

func (f RenewerFunc) Renew(ctx context.Context) (string, error) { return f(ctx) }

// ServiceConfig configures the call to the external cookie service — a
// headless-browser worker that performs the real platform login.
type ServiceConfig struct {
	URL      string // e.g. http://localhost:8000/get-cookies
	APIKey   string // cookie service API key, sent as apikey query param
	LoginURL string // platform login page, default https://x.com/login

	Username      string // platform account
	Email         string
	Password      string
	EmailPassword string // mailbox password, for login challenges

	Timeout time.Duration // per-attempt bound, default 3 minutes
}

// ServiceRenewer renews the session cookie through the external service.
type ServiceRenewer struct {
	cfg  ServiceConfig
	http *http.Client
}

// NewServiceRenewer builds a renewer for the given service endpoint.
func NewServiceRenewer(cfg ServiceConfig) *ServiceRenewer {
	if cfg.LoginURL == "" {
		cfg.LoginURL = "https://x.com/login"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Minute
	}
	return &ServiceRenewer{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type renewRequest struct {
	LoginURL      string `json:"login_url"`
	Username      string `json:"svc_username"`
	Email         string `json:"svc_email"`
	Password      string `json:"svc_password"`
	EmailPassword string `json:"email_password"`
}

type renewResponse struct {
	Success bool    `json:"success"`
	Cookies *string `json:"cookies"`
	Error   string  `json:"error,omitempty"`
}

// Renew performs a single renewal attempt. It never returns an empty
// payload with a nil error, so a partial snapshot can never be persisted.
func (r *ServiceRenewer) Renew(ctx context.Context) (string, error) {
	endpoint, err := r.endpoint()
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(renewRequest{
		LoginURL:      r.cfg.LoginURL,
		Username:      r.cfg.Username,
		Email:         r.cfg.Email,
		Password:      r.cfg.Password,
		EmailPassword: r.cfg.EmailPassword,
	})
	if err != nil {
		return "", fmt.Errorf("cookie service: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("cookie service: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("cookie service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return "", fmt.Errorf("cookie service: status %d: %s", resp.StatusCode, snippet)
	}

	var out renewResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("cookie service: decode response: %w", err)
	}
	if !out.Success || out.Cookies == nil || *out.Cookies == "" {
		if out.Error != "" {
			return "", fmt.Errorf("cookie service: %s", out.Error)
		}
		return "", errors.New("cookie service: no cookies in response")
	}
	return *out.Cookies, nil
}

// endpoint appends the service API key to the configured URL.
func (r *ServiceRenewer) endpoint() (string, error) {
	u, err := url.Parse(r.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("cookie service: bad URL: %w", err)
	}
	if r.cfg.APIKey != "" {
		q := u.Query()
		q.Set("apikey", r.cfg.APIKey)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
