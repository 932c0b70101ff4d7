// Package osometweet is a client for the Twitter API v2 research endpoints:
// tweet and user lookups, follows, timelines, search and the sampled and
// filtered streams.
//
// Requests go through an Authenticator (AppAuth for a bearer token, UserAuth
// for OAuth 1.0a). Unless built as unmanaged, the authenticator waits out
// rate-limit windows and retries transient server errors on its own.
package osometweet

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/osome-iu/osometweet/fields"
)

// Client is the v2 endpoint façade. It is not safe for concurrent use: a
// paused call blocks, and callers wanting parallelism should build one
// Client per goroutine.
type Client struct {
	auth    Authenticator
	baseURL string
	logger  *slog.Logger
}

// NewClient wraps auth. cfg's zero values are defaulted.
func NewClient(auth Authenticator, cfg ClientConfig) (*Client, error) {
	if auth == nil {
		return nil, &ConfigError{Field: "auth", Message: "an Authenticator is required"}
	}
	cfg.defaults()
	c := &Client{auth: auth, logger: cfg.Logger}
	if err := c.SetBaseURL(cfg.BaseURL); err != nil {
		return nil, err
	}
	return c, nil
}

// SetBaseURL points the client at another API root, e.g. a test server.
func (c *Client) SetBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return invalid("base_url", "%v", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("base_url", "%q is not an absolute http(s) URL", raw)
	}
	c.baseURL = strings.TrimRight(u.String(), "/")
	return nil
}

// BaseURL returns the API root in use.
func (c *Client) BaseURL() string { return c.baseURL }

// Auth returns the authenticator.
func (c *Client) Auth() Authenticator { return c.auth }

// fetch issues a non-streaming request and decodes the envelope.
func (c *Client) fetch(ctx context.Context, operation string, query fields.Params, body any, args ...any) (*Envelope, error) {
	ep, ok := Endpoints[operation]
	if !ok {
		return nil, &ConfigError{Field: "operation", Message: "unknown operation " + operation}
	}
	req := &Request{
		Endpoint: operation,
		Method:   ep.Method,
		URL:      ep.URL(c.baseURL, args...),
		Query:    query,
		JSON:     body,
	}
	resp, err := c.auth.MakeRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		// Only reachable without the governor, which rejects these itself.
		c.logger.Warn("non-2xx response",
			slog.String("endpoint", operation),
			slog.Int("status", resp.StatusCode),
			slog.String("body", truncateBytes(resp.Body, 500)))
		return nil, &HTTPError{Endpoint: operation, StatusCode: resp.StatusCode, Body: resp.Body}
	}
	env, err := parseEnvelope(operation, resp.Body)
	if err != nil {
		return nil, err
	}
	if len(env.Errors) > 0 {
		c.logger.Debug("partial errors",
			slog.String("endpoint", operation),
			slog.Int("count", len(env.Errors)))
	}
	return env, nil
}

// stream opens a streaming endpoint. The authenticator must be unmanaged.
func (c *Client) stream(ctx context.Context, operation string, opts RequestOptions) (*Stream, error) {
	if c.auth.ManagesRateLimits() {
		return nil, &ConfigError{
			Field:   "Unmanaged",
			Message: operation + " requires an authenticator built with rate-limit management disabled",
		}
	}
	ep := Endpoints[operation]
	query, err := BuildPayload(nil, ep.Family, opts)
	if err != nil {
		return nil, err
	}
	req := &Request{
		Endpoint: operation,
		Method:   ep.Method,
		URL:      ep.URL(c.baseURL),
		Query:    query,
		Stream:   true,
	}
	resp, err := c.auth.MakeRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 || resp.Stream == nil {
		resp.Close()
		return nil, &HTTPError{Endpoint: operation, StatusCode: resp.StatusCode, Body: resp.Body}
	}
	c.logger.Info("stream connected", slog.String("endpoint", operation))
	return newStream(operation, resp.Stream, c.logger), nil
}
