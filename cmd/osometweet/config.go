package main

import (
	"errors"
	"fmt"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"

	"github.com/osome-iu/osometweet"
)

// config is read from the environment, optionally seeded from a .env file.
type config struct {
	BearerToken       string `env:"TWITTER_BEARER_TOKEN"`
	APIKey            string `env:"TWITTER_API_KEY"`
	APIKeySecret      string `env:"TWITTER_API_KEY_SECRET"`
	AccessToken       string `env:"TWITTER_ACCESS_TOKEN"`
	AccessTokenSecret string `env:"TWITTER_ACCESS_TOKEN_SECRET"`

	BaseURL           string  `env:"OSOMETWEET_BASE_URL"`
	RequestsPerMinute float64 `env:"OSOMETWEET_REQUESTS_PER_MINUTE"`
}

// loadConfig reads envFile (when set) without overriding variables already
// present, then decodes the environment.
func loadConfig(envFile string) (config, error) {
	var cfg config
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return cfg, fmt.Errorf("load env (%s): %w", envFile, err)
		}
	}
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return cfg, fmt.Errorf("decode env: %w", err)
	}
	return cfg, nil
}

func (cfg config) authenticator(kind string, session osometweet.SessionConfig) (osometweet.Authenticator, error) {
	switch kind {
	case "app", "":
		cred, err := osometweet.NewBearerCredential(cfg.BearerToken)
		if err != nil {
			return nil, fmt.Errorf("TWITTER_BEARER_TOKEN: %w", err)
		}
		auth, err := osometweet.NewAppAuth(cred, session)
		if err != nil {
			return nil, err
		}
		return auth, nil
	case "user":
		cred, err := osometweet.NewUserCredential(cfg.APIKey, cfg.APIKeySecret, cfg.AccessToken, cfg.AccessTokenSecret)
		if err != nil {
			return nil, err
		}
		auth, err := osometweet.NewUserAuth(cred, session)
		if err != nil {
			return nil, err
		}
		return auth, nil
	}
	return nil, fmt.Errorf("unknown -auth %q (want app or user)", kind)
}
