package osometweet

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Decision is the governor's verdict on a response.
type Decision int

const (
	// Done means the response is final, successful or not.
	Done Decision = iota
	// Retry means the governor has paused and the request must be sent again.
	Retry
)

func (d Decision) String() string {
	if d == Retry {
		return "retry"
	}
	return "done"
}

// Wait reasons reported to logs and WaitHook.
const (
	reasonLowWater    = "low_water"
	reasonRateLimited = "rate_limited"
	reasonTooMany     = "too_many_requests"
	reasonServerError = "server_error"
)

// Governor decides, per response, whether a logical call is finished or
// must pause and be replayed. It blocks the calling goroutine while pausing.
type Governor struct {
	cfg      GovernorConfig
	logger   *slog.Logger
	waitHook func(endpoint, reason string, d time.Duration)

	now   func() time.Time
	pause func(ctx context.Context, until time.Time) error
}

// NewGovernor returns a governor with cfg's zero values defaulted.
func NewGovernor(cfg GovernorConfig, logger *slog.Logger) *Governor {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Governor{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		pause:  PauseUntil,
	}
}

// call is the per-logical-call bookkeeping.
type call struct {
	id       string
	endpoint string
	attempts int
	waited   time.Duration
	last     error
}

// Run issues do until the governor reports Done, a fatal status is seen, or
// the configured attempt or wait budget runs out.
func (g *Governor) Run(ctx context.Context, endpoint string, do func(context.Context) (*Response, error)) (*Response, error) {
	c := &call{id: uuid.NewString(), endpoint: endpoint}
	for {
		c.attempts++
		resp, err := do(ctx)
		if err != nil {
			return nil, err
		}
		dec, err := g.inspect(ctx, c, resp)
		if err != nil {
			resp.Close()
			return nil, err
		}
		if dec == Done {
			return resp, nil
		}
		resp.Close()
		g.logger.Info("retrying request",
			slog.String("call_id", c.id),
			slog.String("endpoint", endpoint),
			slog.Int("attempt", c.attempts+1))
	}
}

// Inspect evaluates a single response outside of Run. Pauses happen inline.
func (g *Governor) Inspect(ctx context.Context, endpoint string, resp *Response) (Decision, error) {
	return g.inspect(ctx, &call{id: uuid.NewString(), endpoint: endpoint, attempts: 1}, resp)
}

func (g *Governor) inspect(ctx context.Context, c *call, resp *Response) (Decision, error) {
	reset, hasReset := parseRateLimitReset(resp.Header.Get(headerRateLimitReset))

	// Window nearly spent: wait it out and replay, unless the status is
	// fatal or the attempt budget is already used up.
	if rem, err := strconv.Atoi(resp.Header.Get(headerRateLimitRemaining)); err == nil && rem < g.cfg.LowWaterMark {
		if hasReset {
			if err := g.wait(ctx, c, reset.Add(g.cfg.ResetBuffer), reasonLowWater); err != nil {
				return Done, err
			}
			if !fatalStatus(resp.StatusCode) && !g.attemptsSpent(c) {
				if !resp.OK() {
					c.last = &HTTPError{Endpoint: c.endpoint, StatusCode: resp.StatusCode, Body: resp.Body}
				}
				return Retry, nil
			}
		} else {
			g.logger.Warn("low rate-limit remaining without reset header",
				slog.String("call_id", c.id),
				slog.String("endpoint", c.endpoint),
				slog.Int("remaining", rem))
		}
	}

	switch classifyError(resp.Body) {
	case errRateLimit:
		c.last = &HTTPError{Endpoint: c.endpoint, StatusCode: resp.StatusCode, Body: resp.Body}
		return g.retryAt(ctx, c, g.rateLimitTarget(reset, hasReset), reasonRateLimited)
	case errOther:
		g.logger.Info("response carries errors",
			slog.String("call_id", c.id),
			slog.String("endpoint", c.endpoint),
			slog.String("errors", truncateBytes(resp.Body, 300)))
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		c.last = &HTTPError{Endpoint: c.endpoint, StatusCode: resp.StatusCode, Body: resp.Body}
		return g.retryAt(ctx, c, g.rateLimitTarget(reset, hasReset), reasonTooMany)
	case resp.StatusCode == http.StatusInternalServerError || resp.StatusCode == http.StatusServiceUnavailable:
		c.last = &HTTPError{Endpoint: c.endpoint, StatusCode: resp.StatusCode, Body: resp.Body}
		return g.retryAt(ctx, c, g.now().Add(g.cfg.ServerErrorWait), reasonServerError)
	case fatalStatus(resp.StatusCode):
		g.logger.Warn("fatal response",
			slog.String("call_id", c.id),
			slog.String("endpoint", c.endpoint),
			slog.Int("status", resp.StatusCode),
			slog.Any("rate_limit", rateLimitSnapshot(resp.Header)),
			slog.String("body", truncateBytes(resp.Body, 500)))
		return Done, &HTTPError{Endpoint: c.endpoint, StatusCode: resp.StatusCode, Body: resp.Body}
	}
	return Done, nil
}

// rateLimitTarget is reset plus the buffer, or FallbackWait from now when the
// reset header is missing.
func (g *Governor) rateLimitTarget(reset time.Time, ok bool) time.Time {
	if !ok {
		return g.now().Add(g.cfg.FallbackWait)
	}
	return reset.Add(g.cfg.ResetBuffer)
}

// retryAt checks the attempt budget, pauses until t and asks for a replay.
func (g *Governor) retryAt(ctx context.Context, c *call, t time.Time, reason string) (Decision, error) {
	if g.attemptsSpent(c) {
		return Done, g.exhausted(c)
	}
	if err := g.wait(ctx, c, t, reason); err != nil {
		return Done, err
	}
	return Retry, nil
}

// wait pauses until t, charging the pause to the call's wait budget.
func (g *Governor) wait(ctx context.Context, c *call, t time.Time, reason string) error {
	d := t.Sub(g.now())
	if d < 0 {
		d = 0
	}
	if g.cfg.MaxWait > 0 && c.waited+d > g.cfg.MaxWait {
		return g.exhausted(c)
	}
	c.waited += d
	g.logger.Info("pausing for rate limit",
		slog.String("call_id", c.id),
		slog.String("endpoint", c.endpoint),
		slog.String("reason", reason),
		slog.Duration("wait", d),
		slog.Time("until", t))
	if g.waitHook != nil {
		g.waitHook(c.endpoint, reason, d)
	}
	return g.pause(ctx, t)
}

func (g *Governor) attemptsSpent(c *call) bool {
	return g.cfg.MaxAttempts > 0 && c.attempts >= g.cfg.MaxAttempts
}

// fatalStatus reports a non-2xx status the governor never retries.
func fatalStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable:
		return false
	}
	return code < 200 || code > 299
}

func (g *Governor) exhausted(c *call) error {
	g.logger.Warn("retry budget exhausted",
		slog.String("call_id", c.id),
		slog.String("endpoint", c.endpoint),
		slog.Int("attempts", c.attempts),
		slog.Duration("waited", c.waited))
	return &RetryExhaustedError{Endpoint: c.endpoint, Attempts: c.attempts, Waited: c.waited, Last: c.last}
}
