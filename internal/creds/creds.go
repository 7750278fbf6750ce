// Package creds manages the lifecycle of the X session cookie.
//
// A credential lives in a Store as an immutable snapshot keyed by its
// creation time. The Manager is the single entry point: it returns the
// newest snapshot while it is fresh and renews through an external
// cookie service once it goes stale. Renewal is serialized so concurrent
// callers never trigger redundant logins against the platform.
package creds

import (
	"errors"
	"time"
)

// KeyFormat is the sortable timestamp layout used for snapshot keys.
// Lexicographic order on keys equals chronological order.
const KeyFormat = "2006-01-02_15-04-05"

// DefaultMaxAge is how long a snapshot is trusted before renewal.
// X session cookies are issued for ~30 days; one day of slack.
const DefaultMaxAge = 29 * 24 * time.Hour

var (
	// ErrNoCredential means the store is empty and no fallback is configured.
	ErrNoCredential = errors.New("no credential available")

	// ErrRefreshFailed means the external renewal service call did not
	// produce a usable cookie payload.
	ErrRefreshFailed = errors.New("credential refresh failed")
)

// Snapshot is one persisted credential. Payload is an opaque cookie blob;
// it is never logged and never written anywhere but the Store.
type Snapshot struct {
	Key      string
	IssuedAt time.Time
	Payload  string
}

// Age returns how old the snapshot is at the given instant.
func (s Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.IssuedAt)
}

// parseKey derives the issue time from a snapshot key.
// Returns false for keys that do not match KeyFormat; such entries are
// skipped during resolution rather than failing it.
func parseKey(key string) (time.Time, bool) {
	t, err := time.Parse(KeyFormat, key)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// formatKey renders an issue time as a snapshot key, in UTC.
func formatKey(t time.Time) string {
	return t.UTC().Format(KeyFormat)
}
