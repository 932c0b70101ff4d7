package osometweet

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

// Sentinels for errors.Is.
var (
	ErrValidation     = errors.New("validation error")
	ErrConfig         = errors.New("configuration error")
	ErrRetryExhausted = errors.New("retry budget exhausted")
)

// ValidationError reports an input that failed a local check before any
// network call was made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConfigError reports an operation incompatible with how the client or
// authenticator was constructed.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error { return ErrConfig }

// HTTPError is a fatal, non-retryable response.
type HTTPError struct {
	Endpoint   string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s HTTP %d: %s", e.Endpoint, e.StatusCode, truncateBytes(e.Body, 200))
}

// RetryExhaustedError is returned when a bounded governor gives up.
type RetryExhaustedError struct {
	Endpoint string
	Attempts int
	Waited   time.Duration
	Last     error
}

func (e *RetryExhaustedError) Error() string {
	msg := fmt.Sprintf("%s: gave up after %d attempts (waited %s)", e.Endpoint, e.Attempts, e.Waited.Round(time.Second))
	if e.Last != nil {
		msg += ": " + e.Last.Error()
	}
	return msg
}

func (e *RetryExhaustedError) Unwrap() []error {
	if e.Last == nil {
		return []error{ErrRetryExhausted}
	}
	return []error{ErrRetryExhausted, e.Last}
}

// errorClass categorizes the body-level errors array of a response.
type errorClass int

const (
	errNone      errorClass = iota
	errRateLimit            // 88: rate limit exceeded
	errOther                // errors present, none the governor acts on
)

// rateLimitCode is the body error code for an exhausted rate-limit window.
const rateLimitCode = 88

// classifyError inspects a response body for the errors array.
func classifyError(body []byte) errorClass {
	if !gjson.ValidBytes(body) {
		return errNone
	}
	codes := gjson.GetBytes(body, "errors.#.code")
	if !codes.IsArray() {
		return errNone
	}
	class := errNone
	if len(gjson.GetBytes(body, "errors").Array()) > 0 {
		class = errOther
	}
	for _, c := range codes.Array() {
		if c.Int() == rateLimitCode {
			return errRateLimit
		}
	}
	return class
}

// parseRateLimitReset parses the x-rate-limit-reset unix timestamp header.
// ok is false when the header is missing or invalid.
func parseRateLimitReset(v string) (time.Time, bool) {
	ts, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(ts, 0), true
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
