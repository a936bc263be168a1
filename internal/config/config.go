// Package config loads runtime settings for the pagekeeper CLI.
package config

// Config holds everything the publisher needs to reach one content
// repository:
//
//   - APIBaseURL: root of the hosting provider's API, no trailing slash.
//   - Owner/Repo/Branch: the target repository and publish branch.
//   - AppID: the provider App identifier used for assertion signing.
//   - KeyPath: optional path to the PEM private key file; when empty the
//     key is imported interactively or restored from the encrypted cache.
//   - StateDBPath: location of the client-local sqlite state database.
type Config struct {
	APIBaseURL  string
	Owner       string
	Repo        string
	Branch      string
	AppID       string
	KeyPath     string
	StateDBPath string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "https://api.github.com"
	c.Branch = "main"
	c.StateDBPath = "pagekeeper.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
