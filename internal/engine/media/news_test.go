package media

import (
	"context"
	"testing"

	"github.com/anatolykoptev/go_media/internal/engine"
)

func TestSearchNewsValidation(t *testing.T) {
	_, err := SearchNews(context.Background(), NewsParams{})
	if err == nil {
		t.Error("expected error when no query, channels or users given")
	}
}

func TestSearchNewsUsersOnlySkipsVideos(t *testing.T) {
	setupCatalog(t)

	session := &fakeXSession{tweets: []engine.Tweet{
		{ID: "1", Text: "breaking", User: engine.TweetUser{ID: "u1"}},
	}}
	engine.Cfg.XSession = session
	engine.Cfg.Credentials = freshManager(t, "auth_token=abc; ct0=def")

	result, err := SearchNews(context.Background(), NewsParams{Users: "democracynow"})
	if err != nil {
		t.Fatalf("SearchNews: %v", err)
	}
	if len(result.Tweets) != 1 {
		t.Fatalf("expected 1 tweet, got %d", len(result.Tweets))
	}
	if len(result.Videos) != 0 {
		t.Errorf("no channels and no query, videos should be empty, got %d", len(result.Videos))
	}
}

func TestSearchNewsCharCapSpentOnTweets(t *testing.T) {
	setupCatalog(t)

	session := &fakeXSession{tweets: []engine.Tweet{
		{ID: "1", Text: "a long breaking post that eats the whole budget", User: engine.TweetUser{ID: "u1"}},
	}}
	engine.Cfg.XSession = session
	engine.Cfg.Credentials = freshManager(t, "auth_token=abc; ct0=def")

	// Budget smaller than the marshaled posts: the video half must be
	// skipped entirely, even though channels were given.
	result, err := SearchNews(context.Background(), NewsParams{
		Users:    "democracynow",
		Channels: "DemocracyNow",
		CharCap:  10,
	})
	if err != nil {
		t.Fatalf("SearchNews: %v", err)
	}
	if len(result.Tweets) != 1 {
		t.Fatalf("expected 1 tweet, got %d", len(result.Tweets))
	}
	if len(result.Videos) != 0 {
		t.Errorf("expected video half skipped on exhausted budget, got %d videos", len(result.Videos))
	}
}

func TestNewsResultItemsOrder(t *testing.T) {
	r := NewsResult{
		Tweets: []engine.Tweet{{ID: "t1"}, {ID: "t2"}},
		Videos: []engine.Video{{ID: "v1"}},
	}
	items := r.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if _, ok := items[0].(engine.Tweet); !ok {
		t.Error("posts must come first")
	}
	if _, ok := items[2].(engine.Video); !ok {
		t.Error("videos must come last")
	}
}
