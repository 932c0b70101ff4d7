package osometweet

import (
	"encoding/json"
	"time"
)

// Tweet is a v2 tweet object. Only id and text are always present; the rest
// depend on the requested tweet.fields.
type Tweet struct {
	ID                 string            `json:"id"`
	Text               string            `json:"text"`
	AuthorID           string            `json:"author_id,omitempty"`
	ConversationID     string            `json:"conversation_id,omitempty"`
	CreatedAt          *time.Time        `json:"created_at,omitempty"`
	InReplyToUserID    string            `json:"in_reply_to_user_id,omitempty"`
	Lang               string            `json:"lang,omitempty"`
	PossiblySensitive  bool              `json:"possibly_sensitive,omitempty"`
	ReplySettings      string            `json:"reply_settings,omitempty"`
	Source             string            `json:"source,omitempty"`
	PublicMetrics      *TweetMetrics     `json:"public_metrics,omitempty"`
	ReferencedTweets   []ReferencedTweet `json:"referenced_tweets,omitempty"`
	Attachments        *Attachments      `json:"attachments,omitempty"`
	Geo                *TweetGeo         `json:"geo,omitempty"`
	Entities           json.RawMessage   `json:"entities,omitempty"`
	ContextAnnotations []json.RawMessage `json:"context_annotations,omitempty"`
	Withheld           json.RawMessage   `json:"withheld,omitempty"`
}

// TweetMetrics are a tweet's public engagement counts.
type TweetMetrics struct {
	RetweetCount int `json:"retweet_count"`
	ReplyCount   int `json:"reply_count"`
	LikeCount    int `json:"like_count"`
	QuoteCount   int `json:"quote_count"`
}

// ReferencedTweet links a tweet to the one it quotes, retweets or replies to.
type ReferencedTweet struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Attachments holds the keys resolved through the media and poll expansions.
type Attachments struct {
	MediaKeys []string `json:"media_keys,omitempty"`
	PollIDs   []string `json:"poll_ids,omitempty"`
}

// TweetGeo is a tweet's tagged place or exact coordinates.
type TweetGeo struct {
	PlaceID     string          `json:"place_id,omitempty"`
	Coordinates json.RawMessage `json:"coordinates,omitempty"`
}

// User is a v2 user object.
type User struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Username        string          `json:"username"`
	CreatedAt       *time.Time      `json:"created_at,omitempty"`
	Description     string          `json:"description,omitempty"`
	Location        string          `json:"location,omitempty"`
	PinnedTweetID   string          `json:"pinned_tweet_id,omitempty"`
	ProfileImageURL string          `json:"profile_image_url,omitempty"`
	Protected       bool            `json:"protected,omitempty"`
	URL             string          `json:"url,omitempty"`
	Verified        bool            `json:"verified,omitempty"`
	PublicMetrics   *UserMetrics    `json:"public_metrics,omitempty"`
	Entities        json.RawMessage `json:"entities,omitempty"`
	Withheld        json.RawMessage `json:"withheld,omitempty"`
}

// UserMetrics are a user's public follower and activity counts.
type UserMetrics struct {
	FollowersCount int `json:"followers_count"`
	FollowingCount int `json:"following_count"`
	TweetCount     int `json:"tweet_count"`
	ListedCount    int `json:"listed_count"`
}

// Media is an attached photo, GIF or video, returned under includes.media.
type Media struct {
	MediaKey        string          `json:"media_key"`
	Type            string          `json:"type"`
	DurationMS      int             `json:"duration_ms,omitempty"`
	Height          int             `json:"height,omitempty"`
	Width           int             `json:"width,omitempty"`
	PreviewImageURL string          `json:"preview_image_url,omitempty"`
	PublicMetrics   json.RawMessage `json:"public_metrics,omitempty"`
}

// Poll is an attached poll, returned under includes.polls.
type Poll struct {
	ID              string       `json:"id"`
	Options         []PollOption `json:"options"`
	DurationMinutes int          `json:"duration_minutes,omitempty"`
	EndDatetime     *time.Time   `json:"end_datetime,omitempty"`
	VotingStatus    string       `json:"voting_status,omitempty"`
}

// PollOption is one choice of a Poll.
type PollOption struct {
	Position int    `json:"position"`
	Label    string `json:"label"`
	Votes    int    `json:"votes"`
}

// Place is a tagged location, returned under includes.places.
type Place struct {
	ID              string          `json:"id"`
	FullName        string          `json:"full_name"`
	Name            string          `json:"name,omitempty"`
	Country         string          `json:"country,omitempty"`
	CountryCode     string          `json:"country_code,omitempty"`
	PlaceType       string          `json:"place_type,omitempty"`
	ContainedWithin []string        `json:"contained_within,omitempty"`
	Geo             json.RawMessage `json:"geo,omitempty"`
}

// StreamRule is a filtered-stream rule. ID is assigned by the server.
type StreamRule struct {
	ID    string `json:"id,omitempty" yaml:"id,omitempty"`
	Value string `json:"value" yaml:"value"`
	Tag   string `json:"tag,omitempty" yaml:"tag,omitempty"`
}

// Includes holds the objects pulled in by expansions.
type Includes struct {
	Tweets []Tweet `json:"tweets,omitempty"`
	Users  []User  `json:"users,omitempty"`
	Media  []Media `json:"media,omitempty"`
	Polls  []Poll  `json:"polls,omitempty"`
	Places []Place `json:"places,omitempty"`
}

// APIError is one entry of a response's errors array. Partial failures
// (e.g. one of many ids not found) arrive here alongside data.
type APIError struct {
	Code         int    `json:"code,omitempty"`
	Title        string `json:"title,omitempty"`
	Detail       string `json:"detail,omitempty"`
	Type         string `json:"type,omitempty"`
	Message      string `json:"message,omitempty"`
	Value        string `json:"value,omitempty"`
	ResourceType string `json:"resource_type,omitempty"`
	Parameter    string `json:"parameter,omitempty"`
}

// Meta carries pagination cursors and counts.
type Meta struct {
	ResultCount   int             `json:"result_count,omitempty"`
	NextToken     string          `json:"next_token,omitempty"`
	PreviousToken string          `json:"previous_token,omitempty"`
	NewestID      string          `json:"newest_id,omitempty"`
	OldestID      string          `json:"oldest_id,omitempty"`
	Sent          string          `json:"sent,omitempty"`
	Summary       json.RawMessage `json:"summary,omitempty"`
}

// Envelope is a decoded v2 response body. Raw keeps the exact bytes.
// Missing keys leave the corresponding field empty.
type Envelope struct {
	Data     json.RawMessage `json:"data,omitempty"`
	Includes Includes        `json:"includes"`
	Errors   []APIError      `json:"errors,omitempty"`
	Meta     Meta            `json:"meta"`

	Raw []byte `json:"-"`
}
