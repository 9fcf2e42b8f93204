package config

import (
	"errors"
	"os"
	"strings"
)

// Config contains runtime configuration required by the service.
type Config struct {
	Port              string
	DBURL             string
	ClientID          string
	ClientSecret      string
	VerificationToken string
	OAuthToken        string
}

// Load reads required values from environment variables. The Slack app
// credentials and the database URL have no useful defaults and are
// mandatory; the client ID and secret are only needed for the install and
// OAuth pages.
func Load() (Config, error) {
	cfg := Config{
		Port:              getString("PORT", "8080"),
		DBURL:             strings.TrimSpace(os.Getenv("DB_URL")),
		ClientID:          strings.TrimSpace(os.Getenv("SLACK_CLIENT_ID")),
		ClientSecret:      strings.TrimSpace(os.Getenv("SLACK_CLIENT_SECRET")),
		VerificationToken: strings.TrimSpace(os.Getenv("SLACK_VERIFICATION_TOKEN")),
		OAuthToken:        strings.TrimSpace(os.Getenv("SLACK_OAUTH_TOKEN")),
	}

	if cfg.DBURL == "" {
		return Config{}, errors.New("DB_URL required")
	}
	if cfg.VerificationToken == "" {
		return Config{}, errors.New("SLACK_VERIFICATION_TOKEN required")
	}
	if cfg.OAuthToken == "" {
		return Config{}, errors.New("SLACK_OAUTH_TOKEN required")
	}

	return cfg, nil
}

func getString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
