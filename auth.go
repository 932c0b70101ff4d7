package osometweet

import (
	"context"
	"net/http"

	"github.com/dghubble/oauth1"
)

// Authenticator signs and sends requests for one credential. Governance is
// fixed when the authenticator is built.
type Authenticator interface {
	// MakeRequest runs the request under the rate-limit governor when it is
	// enabled, and exactly once otherwise.
	MakeRequest(ctx context.Context, req *Request) (*Response, error)

	// MakeOneRequest performs exactly one HTTP call.
	MakeOneRequest(ctx context.Context, req *Request) (*Response, error)

	// ManagesRateLimits reports whether the governor is enabled.
	ManagesRateLimits() bool
}

var (
	_ Authenticator = (*AppAuth)(nil)
	_ Authenticator = (*UserAuth)(nil)
)

// AppAuth authenticates as the developer app with a bearer token.
type AppAuth struct {
	*session
	cred BearerCredential
}

// NewAppAuth validates cred and returns an app-context authenticator.
func NewAppAuth(cred BearerCredential, cfg SessionConfig) (*AppAuth, error) {
	if err := cred.Validate(); err != nil {
		return nil, err
	}
	return &AppAuth{session: newSession(cfg), cred: cred}, nil
}

// MakeOneRequest sends req once with the bearer token.
func (a *AppAuth) MakeOneRequest(ctx context.Context, req *Request) (*Response, error) {
	return a.send(ctx, a.client, req, func(r *http.Request) {
		r.Header.Set("Authorization", bearerHeader(a.cred.Token))
	})
}

// MakeRequest sends req, under the governor unless the session is unmanaged.
func (a *AppAuth) MakeRequest(ctx context.Context, req *Request) (*Response, error) {
	return a.makeRequest(ctx, req, a.MakeOneRequest)
}

// UserAuth authenticates on behalf of a user with OAuth 1.0a HMAC-SHA1
// signatures. Signing is local; no token exchange happens.
type UserAuth struct {
	*session
	cred   UserCredential
	signed *http.Client
}

// NewUserAuth validates cred and returns a user-context authenticator.
func NewUserAuth(cred UserCredential, cfg SessionConfig) (*UserAuth, error) {
	if err := cred.Validate(); err != nil {
		return nil, err
	}
	s := newSession(cfg)

	config := oauth1.NewConfig(cred.APIKey, cred.APIKeySecret)
	token := oauth1.NewToken(cred.AccessToken, cred.AccessTokenSecret)
	base := context.WithValue(context.Background(), oauth1.HTTPClient, s.client)
	signed := config.Client(base, token)
	signed.Timeout = s.client.Timeout

	return &UserAuth{session: s, cred: cred, signed: signed}, nil
}

// MakeOneRequest sends req once, signed with OAuth 1.0a.
func (u *UserAuth) MakeOneRequest(ctx context.Context, req *Request) (*Response, error) {
	return u.send(ctx, u.signed, req, nil)
}

// MakeRequest sends req, under the governor unless the session is unmanaged.
func (u *UserAuth) MakeRequest(ctx context.Context, req *Request) (*Response, error) {
	return u.makeRequest(ctx, req, u.MakeOneRequest)
}
