package osometweet

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialValidation(t *testing.T) {
	_, err := NewBearerCredential("")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewBearerCredential("abc def")
	assert.ErrorIs(t, err, ErrValidation)

	c, err := NewBearerCredential("AAAA%3Dtoken")
	require.NoError(t, err)
	assert.NotContains(t, c.String(), "token")

	_, err = NewUserCredential("key", "secret", "", "tokensecret")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "access_token", ve.Field)

	_, err = NewUserCredential("key", "secret\n", "token", "tokensecret")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "api_key_secret", ve.Field)

	uc, err := NewUserCredential("key1234", "secret", "token1234", "tokensecret")
	require.NoError(t, err)
	assert.NotContains(t, uc.String(), "secret")
}

func TestNewAuthRejectsBadCredential(t *testing.T) {
	_, err := NewAppAuth(BearerCredential{}, SessionConfig{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewUserAuth(UserCredential{APIKey: "k"}, SessionConfig{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAppAuth_SendsBearer(t *testing.T) {
	var gotAuth, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	auth, err := NewAppAuth(BearerCredential{Token: "app-token"}, SessionConfig{Logger: discardLogger(), UserAgent: "test-agent"})
	require.NoError(t, err)
	assert.True(t, auth.ManagesRateLimits())

	resp, err := auth.MakeRequest(context.Background(), &Request{Endpoint: "TweetLookup", Method: http.MethodGet, URL: srv.URL + "/tweets"})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "Bearer app-token", gotAuth)
	assert.Equal(t, "test-agent", gotUA)
}

func TestUserAuth_SignsOAuth1(t *testing.T) {
	var gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query().Get("ids")
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	cred, err := NewUserCredential("consumer-key", "consumer-secret", "access-token", "access-secret")
	require.NoError(t, err)
	auth, err := NewUserAuth(cred, SessionConfig{Logger: discardLogger(), Unmanaged: true})
	require.NoError(t, err)
	assert.False(t, auth.ManagesRateLimits())

	_, err = auth.MakeRequest(context.Background(), &Request{
		Endpoint: "TweetLookup",
		Method:   http.MethodGet,
		URL:      srv.URL + "/tweets",
		Query:    map[string]string{"ids": "1,2"},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(gotAuth, "OAuth "), gotAuth)
	assert.Contains(t, gotAuth, `oauth_consumer_key="consumer-key"`)
	assert.Contains(t, gotAuth, `oauth_token="access-token"`)
	assert.Contains(t, gotAuth, `oauth_signature_method="HMAC-SHA1"`)
	assert.Contains(t, gotAuth, `oauth_signature=`)
	assert.Equal(t, "1,2", gotQuery)
}

func TestMakeRequest_UnmanagedIsSingleCall(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	auth, err := NewAppAuth(BearerCredential{Token: "t"}, SessionConfig{Logger: discardLogger(), Unmanaged: true})
	require.NoError(t, err)

	resp, err := auth.MakeRequest(context.Background(), &Request{Endpoint: "SearchRecent", Method: http.MethodGet, URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.EqualValues(t, 1, hits.Load())
}

func TestMakeRequest_ManagedRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data":[{"id":"1","text":"ok"}]}`))
	}))
	defer srv.Close()

	var outcomes []bool
	hook := func(_ string, success, _ bool) { outcomes = append(outcomes, success) }
	auth, err := NewAppAuth(BearerCredential{Token: "t"}, SessionConfig{
		Logger:      discardLogger(),
		MetricsHook: hook,
	})
	require.NoError(t, err)
	auth.governor.pause = func(context.Context, time.Time) error { return nil }

	resp, err := auth.MakeRequest(context.Background(), &Request{Endpoint: "TweetLookup", Method: http.MethodGet, URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.EqualValues(t, 3, hits.Load())
	assert.Equal(t, []bool{false, false, true}, outcomes)
}

func TestMakeRequest_StreamNeedsUnmanaged(t *testing.T) {
	auth, err := NewAppAuth(BearerCredential{Token: "t"}, SessionConfig{Logger: discardLogger()})
	require.NoError(t, err)

	_, err = auth.MakeRequest(context.Background(), &Request{Endpoint: "SampledStream", Method: http.MethodGet, URL: "http://127.0.0.1:1/", Stream: true})
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.True(t, errors.Is(err, ErrConfig))
}

func TestMakeRequest_TransportRetries(t *testing.T) {
	auth, err := NewAppAuth(BearerCredential{Token: "t"}, SessionConfig{
		Logger:           discardLogger(),
		Unmanaged:        true,
		TransportRetries: 1,
	})
	require.NoError(t, err)
	auth.cfg.TransportBackoff.InitialWait = time.Millisecond
	auth.cfg.TransportBackoff.MaxWait = time.Millisecond

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err = auth.MakeOneRequest(context.Background(), &Request{Endpoint: "TweetLookup", Method: http.MethodGet, URL: url})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transport failed after 2 attempts")
}

func TestMakeRequest_PostsJSON(t *testing.T) {
	var gotCT, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCT = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	auth, err := NewAppAuth(BearerCredential{Token: "t"}, SessionConfig{Logger: discardLogger()})
	require.NoError(t, err)
	resp, err := auth.MakeRequest(context.Background(), &Request{
		Endpoint: "SetStreamRules",
		Method:   http.MethodPost,
		URL:      srv.URL,
		JSON:     map[string]any{"add": []StreamRule{{Value: "cats"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json", gotCT)
	assert.JSONEq(t, `{"add":[{"value":"cats"}]}`, gotBody)
}
