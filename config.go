package osometweet

import (
	"log/slog"
	"net/http"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
)

// GovernorConfig tunes the rate-limit governor.
type GovernorConfig struct {
	// LowWaterMark pauses until the window resets once x-rate-limit-remaining
	// drops below it. Negative disables the check. Default: 3.
	LowWaterMark int

	// ResetBuffer is added to x-rate-limit-reset before resuming. Default: 15s.
	ResetBuffer time.Duration

	// FallbackWait is used for rate-limit responses without a reset header.
	// Default: 5m.
	FallbackWait time.Duration

	// ServerErrorWait is the pause after a 500 or 503. Default: 30s.
	ServerErrorWait time.Duration

	// MaxAttempts bounds the number of requests per logical call. 0 = unbounded.
	MaxAttempts int

	// MaxWait bounds the total time spent paused per logical call. 0 = unbounded.
	MaxWait time.Duration
}

func (cfg *GovernorConfig) defaults() {
	if cfg.LowWaterMark == 0 {
		cfg.LowWaterMark = 3
	}
	if cfg.ResetBuffer == 0 {
		cfg.ResetBuffer = 15 * time.Second
	}
	if cfg.FallbackWait == 0 {
		cfg.FallbackWait = 5 * time.Minute
	}
	if cfg.ServerErrorWait == 0 {
		cfg.ServerErrorWait = 30 * time.Second
	}
}

// SessionConfig holds the settings shared by both authentication strategies.
type SessionConfig struct {
	// HTTPClient is the base client. It should not set Timeout when streams
	// are used; cancel through the context instead.
	HTTPClient *http.Client

	// UserAgent is sent on every request.
	UserAgent string

	// Logger receives request and governor logs. Default: slog.Default().
	Logger *slog.Logger

	// Unmanaged disables the rate-limit governor: every call issues exactly
	// one request. Streaming endpoints require it.
	Unmanaged bool

	// Governor tunes rate-limit handling when the governor is enabled.
	Governor GovernorConfig

	// RequestsPerMinute paces requests client-side. 0 = no pacing.
	RequestsPerMinute float64

	// Burst is the pacing bucket size. Default: 1.
	Burst int

	// TransportRetries is the number of retries on network errors, before any
	// HTTP response is received. Negative disables. Default: 2.
	TransportRetries int

	// TransportBackoff spaces transport retries.
	TransportBackoff stealth.BackoffConfig

	// MetricsHook is called after every HTTP response for external metrics.
	// endpoint is the operation name, success and rateLimited indicate the outcome.
	MetricsHook func(endpoint string, success, rateLimited bool)

	// WaitHook is called whenever the governor pauses.
	WaitHook func(endpoint, reason string, d time.Duration)
}

func (cfg *SessionConfig) defaults() {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.TransportRetries == 0 {
		cfg.TransportRetries = 2
	}
	if cfg.TransportBackoff.InitialWait == 0 {
		cfg.TransportBackoff = stealth.BackoffConfig{
			InitialWait: 1 * time.Second,
			MaxWait:     30 * time.Second,
			Multiplier:  2.0,
			JitterPct:   0.3,
		}
	}
	cfg.Governor.defaults()
}

// ClientConfig configures the endpoint façade.
type ClientConfig struct {
	// BaseURL is the API root. Default: https://api.twitter.com/2
	BaseURL string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

func (cfg *ClientConfig) defaults() {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
}
