package osometweet

import (
	"fmt"
	"net/http"
	"strings"
)

// DefaultBaseURL is the v2 API root.
const DefaultBaseURL = "https://api.twitter.com/2"

// Endpoint describes one v2 route.
type Endpoint struct {
	Method string
	// Path is relative to the base URL; %s is replaced by a path argument.
	Path   string
	Family Family
	Stream bool
	// PageToken is the query parameter that carries meta.next_token forward.
	PageToken string
}

// URL joins base and the endpoint path, filling in path arguments.
func (e Endpoint) URL(base string, args ...any) string {
	path := e.Path
	if len(args) > 0 {
		path = fmt.Sprintf(path, args...)
	}
	return strings.TrimRight(base, "/") + path
}

// EndpointURL returns the URL for a named operation, or an error if unknown.
func EndpointURL(base, operation string, args ...any) (string, error) {
	ep, ok := Endpoints[operation]
	if !ok {
		return "", fmt.Errorf("unknown operation: %s", operation)
	}
	return ep.URL(base, args...), nil
}

// Endpoints maps operation names to their routes.
var Endpoints = map[string]Endpoint{
	"TweetLookup":         {Method: http.MethodGet, Path: "/tweets", Family: FamilyTweet},
	"UserLookupIDs":       {Method: http.MethodGet, Path: "/users", Family: FamilyUser},
	"UserLookupUsernames": {Method: http.MethodGet, Path: "/users/by", Family: FamilyUser},
	"Followers":           {Method: http.MethodGet, Path: "/users/%s/followers", Family: FamilyUser, PageToken: "pagination_token"},
	"Following":           {Method: http.MethodGet, Path: "/users/%s/following", Family: FamilyUser, PageToken: "pagination_token"},
	"UserTweets":          {Method: http.MethodGet, Path: "/users/%s/tweets", Family: FamilyTweet, PageToken: "pagination_token"},
	"UserMentions":        {Method: http.MethodGet, Path: "/users/%s/mentions", Family: FamilyTweet, PageToken: "pagination_token"},
	"SearchRecent":        {Method: http.MethodGet, Path: "/tweets/search/recent", Family: FamilyTweet, PageToken: "next_token"},
	"SearchAll":           {Method: http.MethodGet, Path: "/tweets/search/all", Family: FamilyTweet, PageToken: "next_token"},
	"SampledStream":       {Method: http.MethodGet, Path: "/tweets/sample/stream", Family: FamilyTweet, Stream: true},
	"FilteredStream":      {Method: http.MethodGet, Path: "/tweets/search/stream", Family: FamilyTweet, Stream: true},
	"GetStreamRules":      {Method: http.MethodGet, Path: "/tweets/search/stream/rules", Family: FamilyNone},
	"SetStreamRules":      {Method: http.MethodPost, Path: "/tweets/search/stream/rules", Family: FamilyNone},
}
