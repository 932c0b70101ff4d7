package osometweet

import (
	"errors"
	"testing"
	"time"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected errorClass
	}{
		{"no errors", `{"data":{"id":"1"}}`, errNone},
		{"empty errors", `{"errors":[]}`, errNone},
		{"rate limit 88", `{"errors":[{"code":88}]}`, errRateLimit},
		{"88 among others", `{"errors":[{"code":34},{"code":88}]}`, errRateLimit},
		{"unknown code", `{"errors":[{"code":999}]}`, errOther},
		{"v2 partial error", `{"data":[],"errors":[{"title":"Not Found Error","detail":"Could not find tweet"}]}`, errOther},
		{"invalid json", `{invalid`, errNone},
		{"empty body", ``, errNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classifyError([]byte(tt.body))
			if result != tt.expected {
				t.Fatalf("classifyError(%s) = %d, want %d", tt.body, result, tt.expected)
			}
		})
	}
}

func TestParseRateLimitReset(t *testing.T) {
	ts, ok := parseRateLimitReset("1700000000")
	if !ok || !ts.Equal(time.Unix(1700000000, 0)) {
		t.Fatalf("got %v %v", ts, ok)
	}

	if _, ok := parseRateLimitReset(""); ok {
		t.Fatal("expected missing header to be reported")
	}
	if _, ok := parseRateLimitReset("not-a-number"); ok {
		t.Fatal("expected invalid header to be reported")
	}
}

func TestErrorUnwrap(t *testing.T) {
	if !errors.Is(invalid("user_id", "bad"), ErrValidation) {
		t.Fatal("ValidationError should match ErrValidation")
	}
	if !errors.Is(&ConfigError{Field: "x"}, ErrConfig) {
		t.Fatal("ConfigError should match ErrConfig")
	}
	last := &HTTPError{Endpoint: "SearchAll", StatusCode: 503}
	err := error(&RetryExhaustedError{Endpoint: "SearchAll", Attempts: 3, Last: last})
	if !errors.Is(err, ErrRetryExhausted) {
		t.Fatal("expected ErrRetryExhausted")
	}
	var he *HTTPError
	if !errors.As(err, &he) || he.StatusCode != 503 {
		t.Fatal("expected wrapped HTTPError")
	}
}
