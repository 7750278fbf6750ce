package sources

import (
	"strings"
	"testing"
	"time"

	"github.com/anatolykoptev/go_media/internal/engine"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", `{"a":1};rest`, `{"a":1}`},
		{"nested", `{"a":{"b":2}}tail`, `{"a":{"b":2}}`},
		{"braces in string", `{"a":"}{"}x`, `{"a":"}{"}`},
		{"escaped quote", `{"a":"\"}"}`, `{"a":"\"}"}`},
		{"not an object", `[1,2]`, ""},
		{"unterminated", `{"a":1`, ""},
		{"empty", ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractJSON([]byte(tt.in))
			if string(got) != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

const sampleInitialData = `{
  "contents": {
    "sectionListRenderer": {
      "contents": [
        {"itemSectionRenderer": {"contents": [
          {"videoRenderer": {
            "videoId": "abc12345678",
            "title": {"runs": [{"text": "First Video"}]},
            "descriptionSnippet": {"runs": [{"text": "a short description"}]},
            "longBylineText": {"runs": [{"text": "Democracy Now!"}]},
            "lengthText": {"simpleText": "12:34"},
            "viewCountText": {"simpleText": "10,000 views"},
            "publishedTimeText": {"simpleText": "3 days ago"},
            "navigationEndpoint": {"commandMetadata": {"webCommandMetadata": {"url": "/watch?v=abc12345678"}}}
          }},
          {"somethingElse": {}},
          {"videoRenderer": {
            "videoId": "def12345678",
            "title": {"runs": [{"text": "Second Video"}]},
            "publishedTimeText": {"simpleText": "1 week ago"}
          }}
        ]}}
      ]
    }
  }
}`

func TestExtractVideosFromInitialData(t *testing.T) {
	videos := extractVideosFromInitialData([]byte(sampleInitialData), 10)
	if len(videos) != 2 {
		t.Fatalf("expected 2 videos, got %d", len(videos))
	}
	v := videos[0]
	if v.ID != "abc12345678" {
		t.Errorf("ID = %q", v.ID)
	}
	if v.Title != "First Video" {
		t.Errorf("Title = %q", v.Title)
	}
	if v.ShortDesc != "a short description" {
		t.Errorf("ShortDesc = %q", v.ShortDesc)
	}
	if v.Channel != "Democracy Now!" {
		t.Errorf("Channel = %q", v.Channel)
	}
	if v.Duration != "12:34" {
		t.Errorf("Duration = %q", v.Duration)
	}
	if v.Views != "10,000 views" {
		t.Errorf("Views = %q", v.Views)
	}
	if v.PublishTime != "3 days ago" {
		t.Errorf("PublishTime = %q", v.PublishTime)
	}
	if v.URLSuffix != "/watch?v=abc12345678" {
		t.Errorf("URLSuffix = %q", v.URLSuffix)
	}
	// Second renderer has no description snippet: field stays empty.
	if videos[1].ShortDesc != "" {
		t.Errorf("ShortDesc = %q, want empty", videos[1].ShortDesc)
	}
}

func TestExtractVideosLimit(t *testing.T) {
	videos := extractVideosFromInitialData([]byte(sampleInitialData), 1)
	if len(videos) != 1 {
		t.Fatalf("expected 1 video, got %d", len(videos))
	}
}

func TestBuildChannelSearch(t *testing.T) {
	since := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 2, 4, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		query string
		until time.Time
		want  string
	}{
		{"query with window", "gaza", until, "gaza before:2025-02-04 after:2025-02-01"},
		{"query open ended", "gaza", time.Time{}, "gaza after:2025-02-01"},
		{"no query", "", time.Time{}, "after:2025-02-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildChannelSearch(tt.query, since, tt.until); got != tt.want {
				t.Errorf("buildChannelSearch = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRelativeAge(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"3 days ago", 3 * 24 * time.Hour},
		{"1 hour ago", time.Hour},
		{"2 weeks ago", 14 * 24 * time.Hour},
		{"Streamed 5 minutes ago", 5 * time.Minute},
		{"1 year ago", 365 * 24 * time.Hour},
		{"garbage", unknownAge},
		{"", unknownAge},
	}
	for _, tt := range tests {
		if got := relativeAge(tt.in); got != tt.want {
			t.Errorf("relativeAge(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTrimToCharCap(t *testing.T) {
	videos := []engine.Video{
		{ID: "a", Transcript: strings.Repeat("x", 1000)},
		{ID: "b", Transcript: strings.Repeat("y", 100)},
		{ID: "c", Transcript: strings.Repeat("z", 500)},
	}
	trimmed := trimToCharCap(videos, 900)
	for _, v := range trimmed {
		if v.ID == "a" {
			t.Error("longest transcript not trimmed first")
		}
	}
	if len(trimmed) == 0 {
		t.Error("everything trimmed away")
	}

	// Without transcripts nothing can be trimmed: input returned as-is.
	plain := []engine.Video{{ID: "a", Title: strings.Repeat("t", 200)}}
	if got := trimToCharCap(plain, 10); len(got) != 1 {
		t.Errorf("transcript-free videos dropped: %d", len(got))
	}
}

func TestExtractAttributedDescription(t *testing.T) {
	data := `{"contents":{"results":[{"videoSecondaryInfoRenderer":{
	  "attributedDescription":{"content":"the full description"}}}]}}`
	if got := extractAttributedDescription([]byte(data)); got != "the full description" {
		t.Errorf("got %q", got)
	}
	if got := extractAttributedDescription([]byte(`{"a":1}`)); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}
