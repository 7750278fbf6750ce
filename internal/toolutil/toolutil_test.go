package toolutil

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/anatolykoptev/go_media/internal/engine"
)

func TestSplitCSV(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b ", []string{"a", "b"}},
		{"a,,b,", []string{"a", "b"}},
		{" , ", nil},
	}
	for _, tt := range tests {
		if got := SplitCSV(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitCSV(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCachedJSON(t *testing.T) {
	engine.InitCache("", time.Minute, 100, time.Minute)
	ctx := context.Background()

	calls := 0
	compute := func(context.Context) ([]string, error) {
		calls++
		return []string{"fresh"}, nil
	}

	key := engine.CacheKey("toolutil-test", t.Name())
	first, err := CachedJSON(ctx, key, compute)
	if err != nil {
		t.Fatal(err)
	}
	second, err := CachedJSON(ctx, key, compute)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("compute ran %d times, want 1", calls)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached value %v differs from fresh %v", second, first)
	}
}

func TestCachedJSONErrorsNotCached(t *testing.T) {
	engine.InitCache("", time.Minute, 100, time.Minute)
	ctx := context.Background()

	calls := 0
	compute := func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("transient")
		}
		return 42, nil
	}

	key := engine.CacheKey("toolutil-test-err", t.Name())
	if _, err := CachedJSON(ctx, key, compute); err == nil {
		t.Fatal("expected first call to fail")
	}
	got, err := CachedJSON(ctx, key, compute)
	if err != nil {
		t.Fatal(err)
	}
	if got != 42 {
		t.Errorf("got %d, want 42", got)
	}
	if calls != 2 {
		t.Errorf("compute ran %d times, want 2", calls)
	}
}
