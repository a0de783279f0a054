package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// DefaultLoginURL is the production login endpoint. Sandboxes use
// https://test.salesforce.com instead.
const DefaultLoginURL = "https://login.salesforce.com"

// DefaultAPIVersion is the REST API version used when none is configured.
// The value includes the "v" prefix as it appears in request paths.
const DefaultAPIVersion = "v59.0"

// Config holds the connection parameters shared by every login strategy and
// REST call: where to log in, which connected app to log in as, and where the
// OAuth callback lands. Credential fields are optional; which of them are set
// decides the login strategy (see force.Login).
type Config struct {
	LoginURL     string
	ClientID     string
	ClientSecret string
	CallbackURL  string
	ProxyURL     string
	APIVersion   string

	// Username/password grant credentials. SecurityToken is appended to the
	// password when the org requires it.
	Username      string
	Password      string
	SecurityToken string

	// RefreshToken from a previously granted authorization.
	RefreshToken string

	// Pre-issued session, e.g. injected by a hosting environment that already
	// authenticated the user. When AccessToken is set, InstanceURL must be too.
	AccessToken string
	InstanceURL string
}

func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		LoginURL:      os.Getenv("FORCE_LOGIN_URL"),
		ClientID:      os.Getenv("FORCE_CLIENT_ID"),
		ClientSecret:  os.Getenv("FORCE_CLIENT_SECRET"),
		CallbackURL:   os.Getenv("FORCE_CALLBACK_URL"),
		ProxyURL:      os.Getenv("FORCE_PROXY_URL"),
		APIVersion:    os.Getenv("FORCE_API_VERSION"),
		Username:      os.Getenv("FORCE_USERNAME"),
		Password:      os.Getenv("FORCE_PASSWORD"),
		SecurityToken: os.Getenv("FORCE_SECURITY_TOKEN"),
		RefreshToken:  os.Getenv("FORCE_REFRESH_TOKEN"),
		AccessToken:   os.Getenv("FORCE_ACCESS_TOKEN"),
		InstanceURL:   os.Getenv("FORCE_INSTANCE_URL"),
	}

	if cfg.LoginURL == "" {
		cfg.LoginURL = DefaultLoginURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.LoginURL == "" {
		return fmt.Errorf("FORCE_LOGIN_URL is required")
	}
	if c.ClientID == "" {
		return fmt.Errorf("FORCE_CLIENT_ID is required")
	}
	if c.APIVersion == "" {
		return fmt.Errorf("FORCE_API_VERSION is required")
	}
	if c.AccessToken != "" && c.InstanceURL == "" {
		return fmt.Errorf("FORCE_INSTANCE_URL is required when FORCE_ACCESS_TOKEN is set")
	}
	// CallbackURL, ProxyURL and the credential fields are optional; which
	// credentials are present selects the login strategy.
	return nil
}
