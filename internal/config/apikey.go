package config

import (
	"github.com/raphi011/linear/internal/errs"
)

// KeySource names where the API key came from.
type KeySource string

const (
	SourceEnvironment KeySource = "environment"
	SourceKeyring     KeySource = "keyring"
	SourceFile        KeySource = "config"
	SourceNone        KeySource = "none"
)

// KeyStore is the part of the credential store the loader needs.
type KeyStore interface {
	APIKey() (string, error)
}

// ResolveAPIKey returns the API key from, in order: the LINEAR_API_KEY
// environment variable, the keyring, then api_key in the config file.
// getenv is usually os.Getenv; keys may be nil.
func (c Config) ResolveAPIKey(getenv func(string) string, keys KeyStore) (string, KeySource, error) {
	if v := getenv(EnvAPIKey); v != "" {
		return v, SourceEnvironment, nil
	}
	if keys != nil {
		// Keyring errors (no D-Bus session, locked keychain) fall through to the file.
		if v, err := keys.APIKey(); err == nil && v != "" {
			return v, SourceKeyring, nil
		}
	}
	if c.APIKey != "" {
		return c.APIKey, SourceFile, nil
	}

	return "", SourceNone, errs.WithSuggestion(
		errs.Config("No API key found. Set %s env var or add api_key to %s", EnvAPIKey, Path(c.Dir)),
		"Run 'linear init' to configure",
	)
}
