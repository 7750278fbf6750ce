package creds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Manager is the only type external code should talk to for credentials.
// Get returns a payload no older than MaxAge, renewing when needed. The
// check-then-renew sequence runs under one mutex, so within a process at
// most one renewal is in flight and concurrent callers of an expired
// store trigger exactly one renewal between them.
type Manager struct {
	mu       sync.Mutex
	store    Store
	renewer  Renewer
	maxAge   time.Duration
	fallback string // static operator-supplied cookie, exempt from age checks
	retries  int    // extra renewal attempts per Get, default 0

	now func() time.Time

	renewals      atomic.Int64
	renewFailures atomic.Int64
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxAge overrides the staleness threshold.
func WithMaxAge(d time.Duration) Option {
	return func(m *Manager) { m.maxAge = d }
}

// WithFallback sets a static credential returned when renewal fails.
func WithFallback(payload string) Option {
	return func(m *Manager) { m.fallback = payload }
}

// WithRetries allows n extra renewal attempts per Get. The Renewer itself
// always performs a single attempt; this is the caller-side policy knob.
func WithRetries(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retries = n
		}
	}
}

// withClock substitutes the time source in tests.
func withClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager builds a Manager over the given store and renewer.
// renewer may be nil when only env-seeded credentials are expected; Get
// then fails closed once the newest snapshot expires.
func NewManager(store Store, renewer Renewer, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		renewer: renewer,
		maxAge:  DefaultMaxAge,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns a currently valid cookie payload.
func (m *Manager) Get(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, found, err := m.newest(ctx)
	if err != nil {
		return "", err
	}
	if found && snap.Age(m.now()) <= m.maxAge {
		return snap.Payload, nil
	}

	fresh, renewErr := m.renew(ctx)
	if renewErr == nil {
		return fresh.Payload, nil
	}

	if m.fallback != "" {
		slog.Warn("creds: renewal failed, using static fallback", slog.Any("error", renewErr))
		return m.fallback, nil
	}
	if !found {
		return "", errors.Join(ErrNoCredential, renewErr)
	}
	// A stale snapshot exists but must never be served as valid.
	return "", renewErr
}

// Bootstrap persists an operator-supplied payload as a fresh snapshot.
// Used by the cookie webhook and the env-seed at process start.
func (m *Manager) Bootstrap(ctx context.Context, payload string) error {
	if payload == "" {
		return errors.New("creds: refusing to bootstrap empty payload")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := formatKey(m.now())
	if err := m.store.Put(ctx, key, payload); err != nil {
		return fmt.Errorf("creds: bootstrap snapshot: %w", err)
	}
	slog.Info("creds: snapshot bootstrapped", slog.String("key", key))
	return nil
}

// Stats reports renewal attempt and failure counts for the metrics endpoint.
func (m *Manager) Stats() (renewals, failures int64) {
	return m.renewals.Load(), m.renewFailures.Load()
}

// newest resolves the most recent parseable snapshot. Malformed keys are
// skipped with a warning so one bad entry cannot take down resolution.
func (m *Manager) newest(ctx context.Context) (Snapshot, bool, error) {
	keys, err := m.store.Keys(ctx)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("creds: list snapshots: %w", err)
	}

	var best Snapshot
	var found bool
	for _, key := range keys {
		issued, ok := parseKey(key)
		if !ok {
			slog.Warn("creds: skipping malformed snapshot key", slog.String("key", key))
			continue
		}
		if !found || issued.After(best.IssuedAt) {
			best = Snapshot{Key: key, IssuedAt: issued}
			found = true
		}
	}
	if !found {
		return Snapshot{}, false, nil
	}

	payload, err := m.store.Get(ctx, best.Key)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("creds: read snapshot %s: %w", best.Key, err)
	}
	best.Payload = payload
	return best, true, nil
}

// renew obtains a fresh payload and persists it. Nothing is written on
// failure: the caller either falls back or propagates the error.
func (m *Manager) renew(ctx context.Context) (Snapshot, error) {
	if m.renewer == nil {
		return Snapshot{}, fmt.Errorf("%w: no renewer configured", ErrRefreshFailed)
	}

	var payload string
	var err error
	for attempt := 0; attempt <= m.retries; attempt++ {
		if ctx.Err() != nil {
			err = ctx.Err()
			break
		}
		m.renewals.Add(1)
		payload, err = m.renewer.Renew(ctx)
		if err == nil && payload != "" {
			break
		}
		m.renewFailures.Add(1)
		if err == nil {
			err = errors.New("renewer returned empty payload")
		}
		slog.Warn("creds: renewal attempt failed",
			slog.Int("attempt", attempt+1), slog.Any("error", err))
	}
	if err != nil || payload == "" {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	issued := m.now()
	key := formatKey(issued)
	if err := m.store.Put(ctx, key, payload); err != nil {
		return Snapshot{}, fmt.Errorf("%w: persist snapshot: %v", ErrRefreshFailed, err)
	}
	slog.Info("creds: snapshot renewed", slog.String("key", key))
	return Snapshot{Key: key, IssuedAt: issued, Payload: payload}, nil
}
