package creds

import (
	"context"
	"testing"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		key  string
		ok   bool
		want string
	}{
		{"2025-02-05_00-00-00", true, "2025-02-05T00:00:00Z"},
		{"2025-01-01_23-59-59", true, "2025-01-01T23:59:59Z"},
		{"cookies.txt", false, ""},
		{"2025-13-99_00-00-00", false, ""},
		{"2025-02-05", false, ""},
		{"", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := parseKey(tt.key)
			if ok != tt.ok {
				t.Fatalf("parseKey(%q) ok = %v, want %v", tt.key, ok, tt.ok)
			}
			if ok && got.Format("2006-01-02T15:04:05Z") != tt.want {
				t.Errorf("parseKey(%q) = %v, want %s", tt.key, got, tt.want)
			}
		})
	}
}

func TestKeyRoundTrip(t *testing.T) {
	for _, key := range []string{"2025-02-05_18-30-01", "1999-12-31_23-59-59"} {
		issued, ok := parseKey(key)
		if !ok {
			t.Fatalf("parseKey(%q) failed", key)
		}
		if got := formatKey(issued); got != key {
			t.Errorf("formatKey(parseKey(%q)) = %q", key, got)
		}
	}
}

// storeContract exercises the Store behaviors the Manager relies on.
func storeContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	keys, err := store.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys on empty store: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("expected empty store, got %v", keys)
	}

	if err := store.Put(ctx, "2025-02-05_00-00-00", "cookie-a"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, "2025-02-06_00-00-00", "cookie-b"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	keys, err = store.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %v", keys)
	}

	payload, err := store.Get(ctx, "2025-02-06_00-00-00")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if payload != "cookie-b" {
		t.Errorf("Get = %q, want cookie-b", payload)
	}

	if _, err := store.Get(ctx, "2025-01-01_00-00-00"); err == nil {
		t.Error("Get of missing key should fail")
	}
}

func TestMemStore(t *testing.T) {
	storeContract(t, NewMemStore())
}

func TestDirStore(t *testing.T) {
	store, err := NewDirStore(t.TempDir() + "/cookies")
	if err != nil {
		t.Fatalf("NewDirStore: %v", err)
	}
	storeContract(t, store)
}

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLiteStore(t.TempDir() + "/creds.db")
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	defer store.Close()
	storeContract(t, store)
}

func TestDirStoreSharedAcrossHandles(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	a, err := NewDirStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Put(ctx, "2025-02-05_00-00-00", "cookie"); err != nil {
		t.Fatal(err)
	}

	// A second handle over the same directory sees the snapshot, like a
	// process restart would.
	b, err := NewDirStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	payload, err := b.Get(ctx, "2025-02-05_00-00-00")
	if err != nil {
		t.Fatal(err)
	}
	if payload != "cookie" {
		t.Errorf("payload = %q", payload)
	}
}
