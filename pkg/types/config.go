package types

import (
	"errors"
	"net/url"
	"time"
)

// DefaultTimeout bounds a single request when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Config holds the connection parameters for the remote contact API.
type Config struct {
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Token   string        `json:"token,omitempty" yaml:"token,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Config validation errors.
var (
	ErrBaseURLEmpty   = errors.New("base URL must not be empty")
	ErrBaseURLInvalid = errors.New("base URL must be an absolute http or https URL")
	ErrTimeoutInvalid = errors.New("timeout must not be negative")
)

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return ErrBaseURLEmpty
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrBaseURLInvalid
	}
	if c.Timeout < 0 {
		return ErrTimeoutInvalid
	}
	return nil
}

// EffectiveTimeout returns Timeout, or DefaultTimeout when unset.
func (c Config) EffectiveTimeout() time.Duration {
	if c.Timeout == 0 {
		return DefaultTimeout
	}
	return c.Timeout
}
