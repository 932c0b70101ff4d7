package osometweet

import "net/http"

// defaultUserAgent identifies the library when no UserAgent is configured.
const defaultUserAgent = "osometweet-go/1.0"

// Rate-limit response headers.
const (
	headerRateLimitLimit     = "x-rate-limit-limit"
	headerRateLimitRemaining = "x-rate-limit-remaining"
	headerRateLimitReset     = "x-rate-limit-reset"
)

// setBaseHeaders applies the headers every request carries.
func setBaseHeaders(h http.Header, userAgent string, hasBody bool) {
	h.Set("User-Agent", userAgent)
	h.Set("Accept", "application/json")
	if hasBody {
		h.Set("Content-Type", "application/json")
	}
}

// bearerHeader returns the Authorization value for an app-only token.
func bearerHeader(token string) string {
	return "Bearer " + token
}

// rateLimitSnapshot extracts the rate-limit headers for logging.
func rateLimitSnapshot(h http.Header) map[string]string {
	out := make(map[string]string, 3)
	for _, k := range []string{headerRateLimitLimit, headerRateLimitRemaining, headerRateLimitReset} {
		if v := h.Get(k); v != "" {
			out[k] = v
		}
	}
	return out
}
