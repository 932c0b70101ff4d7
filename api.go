package osometweet

import (
	"context"
	"strings"

	"github.com/osome-iu/osometweet/fields"
)

// TweetLookup fetches up to 100 tweets by id.
func (c *Client) TweetLookup(ctx context.Context, ids []string, opts RequestOptions) (*Envelope, error) {
	joined, err := joinIDs("tweet_ids", ids)
	if err != nil {
		return nil, err
	}
	query, err := BuildPayload(fields.Params{"ids": joined}, FamilyTweet, opts)
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, "TweetLookup", query, nil)
}

// UserLookupIDs fetches up to 100 users by id.
func (c *Client) UserLookupIDs(ctx context.Context, ids []string, opts RequestOptions) (*Envelope, error) {
	return c.userLookup(ctx, "ids", ids, opts)
}

// UserLookupUsernames fetches up to 100 users by handle. A leading "@" is
// stripped from each name.
func (c *Client) UserLookupUsernames(ctx context.Context, usernames []string, opts RequestOptions) (*Envelope, error) {
	return c.userLookup(ctx, "usernames", usernames, opts)
}

// userLookup backs both user lookups; queryType is "ids" or "usernames".
func (c *Client) userLookup(ctx context.Context, queryType string, values []string, opts RequestOptions) (*Envelope, error) {
	var (
		joined    string
		operation string
		err       error
	)
	switch queryType {
	case "ids":
		joined, err = joinIDs("user_ids", values)
		operation = "UserLookupIDs"
	case "usernames":
		joined, err = joinUsernames(values)
		operation = "UserLookupUsernames"
	default:
		return nil, invalid("query_type", "%q is not ids or usernames", queryType)
	}
	if err != nil {
		return nil, err
	}
	query, err := BuildPayload(fields.Params{queryType: joined}, FamilyUser, opts)
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, operation, query, nil)
}

// GetFollowers lists accounts following userID. Use opts.Params for
// max_results and pagination_token, or FollowersPages to walk every page.
func (c *Client) GetFollowers(ctx context.Context, userID string, opts RequestOptions) (*Envelope, error) {
	return c.followsLookup(ctx, "Followers", userID, opts)
}

// GetFollowing lists accounts userID follows.
func (c *Client) GetFollowing(ctx context.Context, userID string, opts RequestOptions) (*Envelope, error) {
	return c.followsLookup(ctx, "Following", userID, opts)
}

func (c *Client) followsLookup(ctx context.Context, operation, userID string, opts RequestOptions) (*Envelope, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}
	query, err := BuildPayload(nil, FamilyUser, opts)
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, operation, query, nil, userID)
}

// GetTweetTimeline lists tweets authored by userID, newest first.
func (c *Client) GetTweetTimeline(ctx context.Context, userID string, opts RequestOptions) (*Envelope, error) {
	return c.timelineLookup(ctx, "UserTweets", userID, opts)
}

// GetMentionsTimeline lists tweets mentioning userID, newest first.
func (c *Client) GetMentionsTimeline(ctx context.Context, userID string, opts RequestOptions) (*Envelope, error) {
	return c.timelineLookup(ctx, "UserMentions", userID, opts)
}

func (c *Client) timelineLookup(ctx context.Context, operation, userID string, opts RequestOptions) (*Envelope, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}
	query, err := BuildPayload(nil, FamilyTweet, opts)
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, operation, query, nil, userID)
}

// Search runs a query against the last seven days, or the full archive when
// fullArchive is set. Queries are limited to 512 and 1024 characters
// respectively.
func (c *Client) Search(ctx context.Context, query string, fullArchive bool, opts RequestOptions) (*Envelope, error) {
	operation, limit := searchOperation(fullArchive)
	if err := checkQuery(query, limit); err != nil {
		return nil, err
	}
	payload, err := BuildPayload(fields.Params{"query": query}, FamilyTweet, opts)
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, operation, payload, nil)
}

func searchOperation(fullArchive bool) (string, int) {
	if fullArchive {
		return "SearchAll", MaxAllQuery
	}
	return "SearchRecent", MaxRecentQuery
}

// SampledStream connects to the ~1% sample of all public tweets.
func (c *Client) SampledStream(ctx context.Context, opts RequestOptions) (*Stream, error) {
	return c.stream(ctx, "SampledStream", opts)
}

// FilteredStream connects to tweets matching the app's stream rules.
func (c *Client) FilteredStream(ctx context.Context, opts RequestOptions) (*Stream, error) {
	return c.stream(ctx, "FilteredStream", opts)
}

// GetStreamRules lists the active filtered-stream rules, optionally only
// those with the given ids.
func (c *Client) GetStreamRules(ctx context.Context, ids ...string) (*Envelope, error) {
	var query fields.Params
	if len(ids) > 0 {
		joined, err := joinIDs("rule_ids", ids)
		if err != nil {
			return nil, err
		}
		query = fields.Params{"ids": joined}
	}
	return c.fetch(ctx, "GetStreamRules", query, nil)
}

type addRulesBody struct {
	Add []StreamRule `json:"add"`
}

type deleteRulesBody struct {
	Delete struct {
		IDs []string `json:"ids"`
	} `json:"delete"`
}

// AddStreamRules creates filtered-stream rules. With dryRun the server only
// validates them.
func (c *Client) AddStreamRules(ctx context.Context, rules []StreamRule, dryRun bool) (*Envelope, error) {
	if len(rules) == 0 {
		return nil, invalid("rules", "must not be empty")
	}
	body := addRulesBody{Add: make([]StreamRule, len(rules))}
	for i, r := range rules {
		if strings.TrimSpace(r.Value) == "" {
			return nil, invalid("rules", "rule %d has an empty value", i)
		}
		body.Add[i] = StreamRule{Value: r.Value, Tag: r.Tag}
	}
	return c.fetch(ctx, "SetStreamRules", dryRunQuery(dryRun), body)
}

// DeleteStreamRules removes filtered-stream rules by id.
func (c *Client) DeleteStreamRules(ctx context.Context, ids []string, dryRun bool) (*Envelope, error) {
	if _, err := joinIDs("rule_ids", ids); err != nil {
		return nil, err
	}
	var body deleteRulesBody
	body.Delete.IDs = ids
	return c.fetch(ctx, "SetStreamRules", dryRunQuery(dryRun), body)
}

func dryRunQuery(dryRun bool) fields.Params {
	if !dryRun {
		return nil
	}
	return fields.Params{"dry_run": "true"}
}
