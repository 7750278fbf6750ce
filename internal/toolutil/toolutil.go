// Package toolutil provides shared helper functions for go_media MCP tools
// and HTTP handlers.
package toolutil

import (
	"context"
	"strings"

	"github.com/anatolykoptev/go_media/internal/engine"
)

// SplitCSV splits a comma-separated parameter into trimmed non-empty parts.
func SplitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// CachedJSON returns the cached value for key or computes, stores and
// returns a fresh one. Errors are never cached.
func CachedJSON[T any](ctx context.Context, key string, compute func(context.Context) (T, error)) (T, error) {
	if cached, ok := engine.CacheLoadJSON[T](ctx, key); ok {
		return cached, nil
	}
	fresh, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	engine.CacheStoreJSON(ctx, key, fresh)
	return fresh, nil
}
