package config

import (
	"fmt"
	"strings"

	"github.com/glorpus-work/reqfile/pkg/auth"
	"github.com/glorpus-work/reqfile/pkg/header"
)

// AuthConfig holds the credentials used for one host. At most one of the
// variants should be set; the first non-nil one in the order basic, header,
// bearer is used.
type AuthConfig struct {
	BasicAuth  *BasicAuth  `yaml:"basic,omitempty"`
	HeaderAuth *HeaderAuth `yaml:"header,omitempty"`
	BearerAuth *BearerAuth `yaml:"bearer,omitempty"`
}

// BasicAuth holds configuration for HTTP Basic Authentication.
type BasicAuth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// HeaderAuth holds configuration for custom header-based authentication.
type HeaderAuth struct {
	Headers map[string]string `yaml:"headers"`
}

// BearerAuth holds configuration for Bearer token authentication.
type BearerAuth struct {
	Token string `yaml:"token"`
}

// ToAuthenticator converts the BasicAuth configuration to an Authenticator.
func (b *BasicAuth) ToAuthenticator() auth.Authenticator {
	return auth.BasicAuth{Username: b.Username, Password: b.Password}
}

// ToAuthenticator converts the HeaderAuth configuration to an Authenticator.
func (h *HeaderAuth) ToAuthenticator() auth.Authenticator {
	return auth.HeaderAuth{Headers: h.Headers}
}

// ToAuthenticator converts the BearerAuth configuration to an Authenticator.
func (b *BearerAuth) ToAuthenticator() auth.Authenticator {
	return auth.BearerAuth{Token: b.Token}
}

// ToAuthenticator returns the configured variant, or nil if none is set.
func (a *AuthConfig) ToAuthenticator() auth.Authenticator {
	if a == nil {
		return nil
	}
	switch {
	case a.BasicAuth != nil:
		return a.BasicAuth.ToAuthenticator()
	case a.HeaderAuth != nil:
		return a.HeaderAuth.ToAuthenticator()
	case a.BearerAuth != nil:
		return a.BearerAuth.ToAuthenticator()
	default:
		return nil
	}
}

// ToAuthMap converts the per-host authentication settings to a map of
// lower-cased host names to Authenticators.
// Returns nil if no authentication configurations are found.
func (c *Config) ToAuthMap() map[string]auth.Authenticator {
	results := make(map[string]auth.Authenticator, len(c.Settings.Auth))
	for host, a := range c.Settings.Auth {
		if authenticator := a.ToAuthenticator(); authenticator != nil {
			results[strings.ToLower(host)] = authenticator
		}
	}

	if len(results) == 0 {
		return nil
	}
	return results
}

// AuthFor returns the Authenticator configured for host (without port), or nil.
func (c *Config) AuthFor(host string) auth.Authenticator {
	return c.ToAuthMap()[strings.ToLower(host)]
}

func validateAuth(entries map[string]*AuthConfig) error {
	for host, a := range entries {
		authenticator := a.ToAuthenticator()
		if authenticator == nil {
			return fmt.Errorf("auth for %s: no credentials configured", host)
		}
		if _, err := header.FromPairs(authenticator.Pairs()); err != nil {
			return fmt.Errorf("auth for %s: %w", host, err)
		}
	}
	return nil
}
