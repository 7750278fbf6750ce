package creds

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestServiceRenewerSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if got := r.URL.Query().Get("apikey"); got != "svc-key" {
			t.Errorf("apikey = %q", got)
		}
		var req renewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Username != "newsbot" || req.LoginURL != "https://x.com/login" {
			t.Errorf("unexpected request: %+v", req)
		}
		cookies := "auth_token=abc; ct0=def"
		json.NewEncoder(w).Encode(renewResponse{Success: true, Cookies: &cookies})
	}))
	defer srv.Close()

	r := NewServiceRenewer(ServiceConfig{
		URL:      srv.URL + "/get-cookies",
		APIKey:   "svc-key",
		Username: "newsbot",
		Email:    "newsbot@example.com",
		Password: "hunter2",
	})

	payload, err := r.Renew(context.Background())
	if err != nil {
		t.Fatalf("Renew: %v", err)
	}
	if payload != "auth_token=abc; ct0=def" {
		t.Errorf("payload = %q", payload)
	}
}

func TestServiceRenewerRejectsFailureResponse(t *testing.T) {
	tests := []struct {
		name string
		body renewResponse
	}{
		{"explicit failure", renewResponse{Success: false, Error: "login blocked"}},
		{"success without cookies", renewResponse{Success: true, Cookies: nil}},
		{"success with empty cookies", renewResponse{Success: true, Cookies: new(string)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				json.NewEncoder(w).Encode(tt.body)
			}))
			defer srv.Close()

			r := NewServiceRenewer(ServiceConfig{URL: srv.URL})
			if _, err := r.Renew(context.Background()); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestServiceRenewerNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "worker busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := NewServiceRenewer(ServiceConfig{URL: srv.URL})
	if _, err := r.Renew(context.Background()); err == nil {
		t.Error("expected error on 503")
	}
}

func TestServiceRenewerHonorsContext(t *testing.T) {
	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-blocked
	}))
	defer srv.Close()
	defer close(blocked)

	r := NewServiceRenewer(ServiceConfig{URL: srv.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := r.Renew(ctx); err == nil {
		t.Error("expected timeout error")
	}
}
