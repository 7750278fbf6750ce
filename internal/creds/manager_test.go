package creds

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRenewer counts invocations and returns a configured payload or error.
type fakeRenewer struct {
	calls   atomic.Int64
	payload string
	err     error
}

func (f *fakeRenewer) Renew(context.Context) (string, error) {
	f.calls.Add(1)
	return f.payload, f.err
}

func seed(t *testing.T, store Store, key, payload string) {
	t.Helper()
	require.NoError(t, store.Put(context.Background(), key, payload))
}

func fixedClock(s string) func() time.Time {
	now, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return now }
}

func TestGetReturnsFreshSnapshotWithoutRenewal(t *testing.T) {
	store := NewMemStore()
	seed(t, store, "2025-01-01_00-00-00", "old-cookie")
	seed(t, store, "2025-02-05_00-00-00", "recent-cookie")

	renewer := &fakeRenewer{payload: "should-not-be-used"}
	m := NewManager(store, renewer, withClock(fixedClock("2025-02-10")))

	payload, err := m.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "recent-cookie", payload)
	assert.EqualValues(t, 0, renewer.calls.Load(), "fresh snapshot must not trigger renewal")
}

func TestGetRenewsExpiredSnapshot(t *testing.T) {
	store := NewMemStore()
	seed(t, store, "2025-01-01_00-00-00", "stale-cookie")

	renewer := &fakeRenewer{payload: "fresh-cookie"}
	m := NewManager(store, renewer, withClock(fixedClock("2025-02-10")))

	payload, err := m.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-cookie", payload)
	assert.EqualValues(t, 1, renewer.calls.Load())

	keys, err := store.Keys(context.Background())
	require.NoError(t, err)
	assert.Contains(t, keys, "2025-02-10_00-00-00", "new snapshot keyed by now")
}

func TestGetEmptyStoreNoFallback(t *testing.T) {
	store := NewMemStore()
	renewer := &fakeRenewer{err: errors.New("service unreachable")}
	m := NewManager(store, renewer)

	payload, err := m.Get(context.Background())
	assert.Empty(t, payload)
	assert.ErrorIs(t, err, ErrNoCredential)
	assert.ErrorIs(t, err, ErrRefreshFailed)
}

func TestGetEmptyStoreNoRenewer(t *testing.T) {
	m := NewManager(NewMemStore(), nil)

	_, err := m.Get(context.Background())
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestGetFallsBackOnRenewalFailure(t *testing.T) {
	store := NewMemStore()
	seed(t, store, "2025-01-01_00-00-00", "stale-cookie")

	renewer := &fakeRenewer{err: errors.New("login challenge")}
	m := NewManager(store, renewer,
		withClock(fixedClock("2025-02-10")),
		WithFallback("env-cookie"),
	)

	payload, err := m.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "env-cookie", payload)

	keys, err := store.Keys(context.Background())
	require.NoError(t, err)
	assert.Len(t, keys, 1, "failed renewal must not write a snapshot")
}

func TestGetNeverReturnsStalePayload(t *testing.T) {
	store := NewMemStore()
	seed(t, store, "2025-01-01_00-00-00", "stale-cookie")

	renewer := &fakeRenewer{err: errors.New("timeout")}
	m := NewManager(store, renewer, withClock(fixedClock("2025-02-10")))

	payload, err := m.Get(context.Background())
	assert.Empty(t, payload)
	assert.ErrorIs(t, err, ErrRefreshFailed)
	assert.NotErrorIs(t, err, ErrNoCredential, "a snapshot existed, it was just stale")
}

func TestMalformedKeysAreSkipped(t *testing.T) {
	store := NewMemStore()
	seed(t, store, "garbage.txt", "junk")
	seed(t, store, "2025-13-99_00-00-00", "junk")
	seed(t, store, "2025-02-05_00-00-00", "good-cookie")

	m := NewManager(store, &fakeRenewer{payload: "unused"}, withClock(fixedClock("2025-02-10")))

	payload, err := m.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "good-cookie", payload)
}

func TestOnlyMalformedKeysBehavesLikeEmptyStore(t *testing.T) {
	store := NewMemStore()
	seed(t, store, "cookies.txt", "junk")

	renewer := &fakeRenewer{payload: "fresh-cookie"}
	m := NewManager(store, renewer, withClock(fixedClock("2025-02-10")))

	payload, err := m.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-cookie", payload)
	assert.EqualValues(t, 1, renewer.calls.Load())
}

func TestAgeBoundaryIsInclusive(t *testing.T) {
	store := NewMemStore()
	seed(t, store, "2025-01-12_00-00-00", "boundary-cookie")

	// Exactly 29 days old: still valid (expiry requires age > MaxAge).
	renewer := &fakeRenewer{payload: "unused"}
	m := NewManager(store, renewer, withClock(fixedClock("2025-02-10")))

	payload, err := m.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "boundary-cookie", payload)
	assert.EqualValues(t, 0, renewer.calls.Load())
}

func TestConcurrentGetsTriggerSingleRenewal(t *testing.T) {
	store := NewMemStore()
	seed(t, store, "2025-01-01_00-00-00", "stale-cookie")

	renewer := &fakeRenewer{payload: "fresh-cookie"}
	m := NewManager(store, renewer, withClock(fixedClock("2025-02-10")))

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)
	payloads := make(chan string, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			payload, err := m.Get(context.Background())
			if err != nil {
				t.Error(err)
				return
			}
			payloads <- payload
		}()
	}
	wg.Wait()
	close(payloads)

	for payload := range payloads {
		assert.Equal(t, "fresh-cookie", payload)
	}
	assert.EqualValues(t, 1, renewer.calls.Load(), "expected exactly one renewal")

	keys, err := store.Keys(context.Background())
	require.NoError(t, err)
	assert.Len(t, keys, 2, "one stale + one fresh snapshot")
}

func TestWithRetries(t *testing.T) {
	flaky := &countdownRenewer{failures: 2, payload: "eventually-fresh"}
	m := NewManager(NewMemStore(), flaky,
		withClock(fixedClock("2025-02-10")),
		WithRetries(2),
	)

	payload, err := m.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "eventually-fresh", payload)
	assert.Equal(t, 3, flaky.calls)
}

func TestBootstrapRejectsEmptyPayload(t *testing.T) {
	m := NewManager(NewMemStore(), nil)
	assert.Error(t, m.Bootstrap(context.Background(), ""))
}

func TestBootstrapThenGet(t *testing.T) {
	store := NewMemStore()
	m := NewManager(store, nil, withClock(fixedClock("2025-02-10")))

	require.NoError(t, m.Bootstrap(context.Background(), "operator-cookie"))

	payload, err := m.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "operator-cookie", payload)
}

// countdownRenewer fails a fixed number of times before succeeding.
type countdownRenewer struct {
	failures int
	calls    int
	payload  string
}

func (c *countdownRenewer) Renew(context.Context) (string, error) {
	c.calls++
	if c.calls <= c.failures {
		return "", errors.New("transient failure")
	}
	return c.payload, nil
}
