package engine

// --- Platform result types shared across packages ---

// TweetUser is the author of a post on X.
type TweetUser struct {
	ID         string `json:"id"`
	ScreenName string `json:"screen_name"`
}

// Tweet is a single post returned from an X search.
type Tweet struct {
	ID       string    `json:"id"`
	Text     string    `json:"text"`
	Lang     string    `json:"lang"`
	Hashtags []string  `json:"hashtags"`
	User     TweetUser `json:"user"`
}

// Video is a single result from a YouTube channel search.
type Video struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	ShortDesc   string `json:"short_desc"`
	Channel     string `json:"channel"`
	Duration    string `json:"duration"`
	Views       string `json:"views"`
	PublishTime string `json:"publish_time"`
	URLSuffix   string `json:"url_suffix"`
	LongDesc    string `json:"long_desc,omitempty"`
	Transcript  string `json:"transcript,omitempty"`
}

// VideoTranscript is a transcript extracted for one video ID.
type VideoTranscript struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}
