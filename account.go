package osometweet

import (
	"strings"
	"unicode"
)

// BearerCredential is the app-only bearer token issued for a developer app.
type BearerCredential struct {
	Token string
}

// NewBearerCredential validates token and returns the credential.
func NewBearerCredential(token string) (BearerCredential, error) {
	c := BearerCredential{Token: token}
	return c, c.Validate()
}

// Validate checks the token is usable as a header value.
func (c BearerCredential) Validate() error {
	return checkCredential("bearer_token", c.Token)
}

// UserCredential holds the four OAuth 1.0a secrets for a user-context session.
type UserCredential struct {
	APIKey            string
	APIKeySecret      string
	AccessToken       string
	AccessTokenSecret string
}

// NewUserCredential validates all four components and returns the credential.
func NewUserCredential(apiKey, apiKeySecret, accessToken, accessTokenSecret string) (UserCredential, error) {
	c := UserCredential{
		APIKey:            apiKey,
		APIKeySecret:      apiKeySecret,
		AccessToken:       accessToken,
		AccessTokenSecret: accessTokenSecret,
	}
	return c, c.Validate()
}

// Validate checks every component, reporting the first bad one.
func (c UserCredential) Validate() error {
	for _, f := range []struct{ name, val string }{
		{"api_key", c.APIKey},
		{"api_key_secret", c.APIKeySecret},
		{"access_token", c.AccessToken},
		{"access_token_secret", c.AccessTokenSecret},
	} {
		if err := checkCredential(f.name, f.val); err != nil {
			return err
		}
	}
	return nil
}

// String hides the secrets so credentials can be logged safely.
func (c UserCredential) String() string {
	return "UserCredential{api_key=" + maskSecret(c.APIKey) + ", access_token=" + maskSecret(c.AccessToken) + "}"
}

func (c BearerCredential) String() string {
	return "BearerCredential{" + maskSecret(c.Token) + "}"
}

func checkCredential(field, v string) error {
	if v == "" {
		return invalid(field, "must be a non-empty string")
	}
	if strings.IndexFunc(v, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }) >= 0 {
		return invalid(field, "contains whitespace or control characters")
	}
	return nil
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}
