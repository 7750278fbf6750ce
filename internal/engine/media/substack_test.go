package media

import (
	"strings"
	"testing"
)

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"paragraphs", "<p>one</p><p>two</p>", "one\ntwo"},
		{"script dropped", "<p>keep</p><script>var x=1;</script>", "keep"},
		{"style dropped", "<style>p{}</style><div>text</div>", "text"},
		{"entities", "<p>a &amp; b</p>", "a & b"},
		{"empty", "", ""},
		{"nested", "<div><ul><li>first</li><li>second</li></ul></div>", "first\nsecond"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlToText(tt.in); got != tt.want {
				t.Errorf("htmlToText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestConvertSubstackPost(t *testing.T) {
	base := substackRawPost{
		ID:           42,
		Slug:         "the-post",
		Title:        "The Post",
		Subtitle:     "A subtitle",
		CanonicalURL: "https://pub.substack.com/p/the-post",
		PostDate:     "2025-02-10T12:00:00Z",
		Audience:     "everyone",
		Description:  "A preview",
		BodyHTML:     "<p>Hello <b>world</b></p>",
	}

	t.Run("converts content", func(t *testing.T) {
		post, ok := convertSubstackPost(base, "pub", SubstackParams{GetContent: true})
		if !ok {
			t.Fatal("expected post")
		}
		if post.Publication != "pub" || post.Title != "The Post" {
			t.Errorf("post = %+v", post)
		}
		if !strings.Contains(post.Content, "Hello") {
			t.Errorf("content = %q", post.Content)
		}
		if post.Preview != "A preview" {
			t.Errorf("preview = %q", post.Preview)
		}
	})

	t.Run("paid posts skipped", func(t *testing.T) {
		paid := base
		paid.Audience = "only_paid"
		if _, ok := convertSubstackPost(paid, "pub", SubstackParams{}); ok {
			t.Error("paid-only post not skipped")
		}
	})

	t.Run("missing date skipped", func(t *testing.T) {
		undated := base
		undated.PostDate = ""
		if _, ok := convertSubstackPost(undated, "pub", SubstackParams{}); ok {
			t.Error("undated post not skipped")
		}
	})

	t.Run("query filter", func(t *testing.T) {
		if _, ok := convertSubstackPost(base, "pub", SubstackParams{Query: "subtitle"}); !ok {
			t.Error("matching query filtered out")
		}
		if _, ok := convertSubstackPost(base, "pub", SubstackParams{Query: "cryptocurrency"}); ok {
			t.Error("non-matching query passed")
		}
	})

	t.Run("no content without flag", func(t *testing.T) {
		post, ok := convertSubstackPost(base, "pub", SubstackParams{GetContent: false})
		if !ok {
			t.Fatal("expected post")
		}
		if post.Content != "" {
			t.Errorf("content should be empty, got %q", post.Content)
		}
	})

	t.Run("preview falls back", func(t *testing.T) {
		noDesc := base
		noDesc.Description = ""
		noDesc.PreviewDescription = "fallback"
		post, _ := convertSubstackPost(noDesc, "pub", SubstackParams{})
		if post.Preview != "fallback" {
			t.Errorf("preview = %q", post.Preview)
		}
	})
}
