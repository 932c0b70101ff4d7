package osometweet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/osome-iu/osometweet/fields"
	"golang.org/x/time/rate"
)

// Request is one logical API call.
type Request struct {
	// Endpoint is the operation name used in logs and metrics.
	Endpoint string
	Method   string
	URL      string
	Query    fields.Params
	// JSON, when non-nil, is marshalled as the request body.
	JSON any
	// Stream leaves the response body open in Response.Stream.
	Stream bool
}

// Response is a raw HTTP response. For streams Body is empty and Stream
// holds the open body; the caller must close it.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Stream     io.ReadCloser
}

// Close releases a stream body, if any.
func (r *Response) Close() error {
	if r == nil || r.Stream == nil {
		return nil
	}
	return r.Stream.Close()
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

// session is the transport shared by the authentication strategies.
type session struct {
	cfg      SessionConfig
	client   *http.Client
	governor *Governor
	limiter  *rate.Limiter
	logger   *slog.Logger
}

func newSession(cfg SessionConfig) *session {
	cfg.defaults()
	s := &session{
		cfg:    cfg,
		client: cfg.HTTPClient,
		logger: cfg.Logger,
	}
	if !cfg.Unmanaged {
		s.governor = NewGovernor(cfg.Governor, cfg.Logger)
		s.governor.waitHook = cfg.WaitHook
	}
	if cfg.RequestsPerMinute > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerMinute/60), cfg.Burst)
	}
	return s
}

// ManagesRateLimits reports whether the governor wraps every call.
func (s *session) ManagesRateLimits() bool {
	return s.governor != nil
}

// makeRequest runs one through the governor, or exactly once when unmanaged.
func (s *session) makeRequest(ctx context.Context, req *Request, one func(context.Context, *Request) (*Response, error)) (*Response, error) {
	if req.Stream && s.governor != nil {
		return nil, &ConfigError{Field: "Unmanaged", Message: "streaming endpoints require rate-limit management to be disabled"}
	}
	if s.governor == nil {
		return one(ctx, req)
	}
	return s.governor.Run(ctx, req.Endpoint, func(ctx context.Context) (*Response, error) {
		return one(ctx, req)
	})
}

// send performs a single HTTP exchange through client. authorize adds the
// strategy's credentials to the outgoing request.
func (s *session) send(ctx context.Context, client *http.Client, req *Request, authorize func(*http.Request)) (*Response, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var body []byte
	if req.JSON != nil {
		b, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("%s: encode body: %w", req.Endpoint, err)
		}
		body = b
	}
	target, err := withQuery(req.URL, req.Query)
	if err != nil {
		return nil, err
	}

	var lastErr error
	retries := max(s.cfg.TransportRetries, 0)
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, s.cfg.TransportBackoff.Duration(attempt-1)); err != nil {
				return nil, err
			}
		}

		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, rd)
		if err != nil {
			return nil, fmt.Errorf("%s: build request: %w", req.Endpoint, err)
		}
		setBaseHeaders(httpReq.Header, s.cfg.UserAgent, body != nil)
		if authorize != nil {
			authorize(httpReq)
		}

		s.logger.Debug("request",
			slog.String("endpoint", req.Endpoint),
			slog.String("method", req.Method),
			slog.String("url", target),
			slog.Int("attempt", attempt+1))

		start := time.Now()
		resp, err := client.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			s.logger.Warn("transport error",
				slog.String("endpoint", req.Endpoint),
				slog.Int("attempt", attempt+1),
				slog.Any("error", err))
			continue
		}

		out, err := s.readResponse(req, resp)
		if err != nil {
			return nil, err
		}
		s.recordAPICall(req.Endpoint, out)
		s.logger.Debug("response",
			slog.String("endpoint", req.Endpoint),
			slog.Int("status", out.StatusCode),
			slog.Duration("elapsed", time.Since(start)))
		return out, nil
	}
	return nil, fmt.Errorf("%s: transport failed after %d attempts: %w", req.Endpoint, retries+1, lastErr)
}

// readResponse buffers the body, except for successful streams which stay open.
func (s *session) readResponse(req *Request, resp *http.Response) (*Response, error) {
	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header}
	if req.Stream && resp.StatusCode == http.StatusOK {
		out.Stream = resp.Body
		return out, nil
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", req.Endpoint, err)
	}
	out.Body = b
	return out, nil
}

// recordAPICall calls the metrics hook if configured.
func (s *session) recordAPICall(endpoint string, resp *Response) {
	if s.cfg.MetricsHook == nil {
		return
	}
	rateLimited := resp.StatusCode == http.StatusTooManyRequests || classifyError(resp.Body) == errRateLimit
	s.cfg.MetricsHook(endpoint, resp.OK() && !rateLimited, rateLimited)
}

// withQuery appends params to raw, keeping any query already present.
func withQuery(raw string, params fields.Params) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", &ValidationError{Field: "url", Message: err.Error()}
	}
	if len(params) == 0 {
		return u.String(), nil
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
