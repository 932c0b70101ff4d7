package osometweet

import (
	"context"
	"errors"
	"maps"
)

// ErrNoMorePages is returned by PageIterator.Next after the last page.
var ErrNoMorePages = errors.New("no more pages")

// PageIterator walks a paginated endpoint by feeding meta.next_token back as
// the endpoint's page-token parameter.
type PageIterator struct {
	fetch      func(context.Context, RequestOptions) (*Envelope, error)
	opts       RequestOptions
	tokenParam string
	next       string
	hasMore    bool
	pages      int
	err        error
}

func newPageIterator(operation string, opts RequestOptions, fetch func(context.Context, RequestOptions) (*Envelope, error)) *PageIterator {
	return &PageIterator{
		fetch:      fetch,
		opts:       opts,
		tokenParam: Endpoints[operation].PageToken,
		hasMore:    true,
	}
}

// FollowersPages iterates GetFollowers.
func (c *Client) FollowersPages(userID string, opts RequestOptions) *PageIterator {
	return newPageIterator("Followers", opts, func(ctx context.Context, o RequestOptions) (*Envelope, error) {
		return c.GetFollowers(ctx, userID, o)
	})
}

// FollowingPages iterates GetFollowing.
func (c *Client) FollowingPages(userID string, opts RequestOptions) *PageIterator {
	return newPageIterator("Following", opts, func(ctx context.Context, o RequestOptions) (*Envelope, error) {
		return c.GetFollowing(ctx, userID, o)
	})
}

// TweetTimelinePages iterates GetTweetTimeline.
func (c *Client) TweetTimelinePages(userID string, opts RequestOptions) *PageIterator {
	return newPageIterator("UserTweets", opts, func(ctx context.Context, o RequestOptions) (*Envelope, error) {
		return c.GetTweetTimeline(ctx, userID, o)
	})
}

// MentionsTimelinePages iterates GetMentionsTimeline.
func (c *Client) MentionsTimelinePages(userID string, opts RequestOptions) *PageIterator {
	return newPageIterator("UserMentions", opts, func(ctx context.Context, o RequestOptions) (*Envelope, error) {
		return c.GetMentionsTimeline(ctx, userID, o)
	})
}

// SearchPages iterates Search.
func (c *Client) SearchPages(query string, fullArchive bool, opts RequestOptions) *PageIterator {
	operation, _ := searchOperation(fullArchive)
	return newPageIterator(operation, opts, func(ctx context.Context, o RequestOptions) (*Envelope, error) {
		return c.Search(ctx, query, fullArchive, o)
	})
}

// HasNext reports whether another page may be fetched.
func (it *PageIterator) HasNext() bool {
	return it.err == nil && it.hasMore
}

// Next fetches the next page.
func (it *PageIterator) Next(ctx context.Context) (*Envelope, error) {
	if it.err != nil {
		return nil, it.err
	}
	if !it.hasMore {
		return nil, ErrNoMorePages
	}

	opts := it.opts
	opts.Params = maps.Clone(it.opts.Params)
	if it.next != "" {
		if opts.Params == nil {
			opts.Params = map[string]string{}
		}
		opts.Params[it.tokenParam] = it.next
	}

	env, err := it.fetch(ctx, opts)
	if err != nil {
		it.err = err
		return nil, err
	}
	it.pages++
	it.next = env.Meta.NextToken
	if it.next == "" {
		it.hasMore = false
	}
	return env, nil
}

// Pages returns how many pages have been fetched.
func (it *PageIterator) Pages() int { return it.pages }

// Err returns the error that stopped iteration, if any.
func (it *PageIterator) Err() error { return it.err }

// Collect fetches remaining pages, at most maxPages when maxPages > 0.
func (it *PageIterator) Collect(ctx context.Context, maxPages int) ([]*Envelope, error) {
	var out []*Envelope
	for it.HasNext() && (maxPages <= 0 || len(out) < maxPages) {
		env, err := it.Next(ctx)
		if err != nil {
			return out, err
		}
		out = append(out, env)
	}
	return out, nil
}
