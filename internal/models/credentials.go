package models

import "strings"

// Credentials is the login identity and secret for the target site.
// String and GoString redact both values so they never reach a log line.
type Credentials struct {
	Identity string `json:"-"`
	Secret   string `json:"-"`
}

// Complete reports whether both parts are present.
func (c Credentials) Complete() bool {
	return strings.TrimSpace(c.Identity) != "" && c.Secret != ""
}

// Or fills missing parts of c from fallback.
func (c Credentials) Or(fallback Credentials) Credentials {
	if strings.TrimSpace(c.Identity) == "" {
		c.Identity = fallback.Identity
	}
	if c.Secret == "" {
		c.Secret = fallback.Secret
	}
	return c
}

func (c Credentials) String() string {
	return "Credentials{redacted}"
}

func (c Credentials) GoString() string {
	return c.String()
}
