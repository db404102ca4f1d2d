package unleashed

import (
	"errors"
	"time"
)

const (
	// DefaultBaseURL is the public Unleashed API endpoint.
	DefaultBaseURL = "https://api.unleashedsoftware.com/"
	// DefaultClientType is sent in the client-type header.
	DefaultClientType = "wc-unleashed-sync"
)

var (
	ErrMissingAPIID  = errors.New("unleashed: api id is required")
	ErrMissingAPIKey = errors.New("unleashed: api key is required")
)

// Credentials is an Unleashed API id/key pair.
type Credentials struct {
	ID     string
	Secret string
}

// Config selects the account the client talks to. Sandbox picks the sandbox
// credential pair, otherwise the production pair is used.
type Config struct {
	BaseURL    string
	Sandbox    bool
	Production Credentials
	Test       Credentials
	ClientType string
	Timeout    time.Duration
}

// Active returns the credential pair selected by the sandbox flag.
func (c Config) Active() Credentials {
	if c.Sandbox {
		return c.Test
	}
	return c.Production
}

// Validate checks the active credentials and fills defaults.
func (c *Config) Validate() error {
	creds := c.Active()
	if creds.ID == "" {
		return ErrMissingAPIID
	}
	if creds.Secret == "" {
		return ErrMissingAPIKey
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.ClientType == "" {
		c.ClientType = DefaultClientType
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}
