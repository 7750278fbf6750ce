package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// cookieWebhookRequest is the callback body posted by the cookie refresh
// service after a renewal run.
type cookieWebhookRequest struct {
	Success bool    `json:"success"`
	Cookies *string `json:"cookies"`
}

// CookieWebhook ingests a fresh session cookie pushed by the external
// refresh service. The payload itself is never logged.
func (h *Handler) CookieWebhook(w http.ResponseWriter, r *http.Request) {
	if h.credentials == nil {
		writeError(w, http.StatusServiceUnavailable, "cookie storage is not configured")
		return
	}

	var req cookieWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !req.Success {
		writeError(w, http.StatusBadRequest, "refresh reported failure, nothing stored")
		return
	}
	if req.Cookies == nil || *req.Cookies == "" {
		writeError(w, http.StatusBadRequest, `"cookies" must be set when success is true`)
		return
	}

	if err := h.credentials.Bootstrap(r.Context(), *req.Cookies); err != nil {
		slog.Error("cookie webhook store failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to store cookies")
		return
	}

	slog.Info("cookie webhook accepted", slog.Int("payload_bytes", len(*req.Cookies)))
	writeJSON(w, http.StatusOK, map[string]string{"status": "stored"})
}
