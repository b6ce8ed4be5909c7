// Package config handles loading and validation of linear configuration.
//
// Configuration is read from <user config dir>/linear/config.toml. The
// directory can be moved with LINEAR_CONFIG_DIR; the resolution cache
// (cache.json) lives in the same directory.
//
// # API Key Sources (highest priority first)
//
//   - LINEAR_API_KEY env var
//   - OS keyring entry written by "linear init --keyring"
//   - api_key in config.toml
//
// A missing key is a ConfigError reported before any network call.
//
// # Key Settings
//
//   - api_key: Personal API key from Linear settings
//   - default_team: Team key used when --team is omitted (e.g. "ENG")
//   - api_url: API base URL, overridable with LINEAR_API_URL
//   - timeout: Per-request timeout (default: "30s")
//   - cache_ttl: How long resolved names are trusted (default: "24h")
//   - output: Default output format: table, json, or compact
package config
