// Package config holds the launcher's runtime settings and the persisted
// login preferences. Values are layered defaults -> JSON file -> flags,
// later sources taking precedence, and the remember-me preference is written
// back to the same JSON file after a successful remembered login.
package config

import (
	"path/filepath"
	"time"
)

// Config holds runtime settings for the launcher.
//
// DataDir is where the credential database, the session file, and the
// config file itself live. The service URLs point at the remote identity
// authority; tests point them at a local server.
type Config struct {
	DataDir      string
	RememberMe   bool
	LastUsername string

	AuthServiceURL     string
	ValidateServiceURL string
	TokenServiceURL    string
	ProfileServiceURL  string

	HTTPTimeout time.Duration

	// path is the JSON file Save writes to; set during loading.
	path string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = "config"
	c.RememberMe = false
	c.LastUsername = ""
	c.AuthServiceURL = "https://authserver.mojang.com/authenticate"
	c.ValidateServiceURL = "https://authserver.mojang.com/validate"
	c.TokenServiceURL = "https://login.live.com/oauth20_token.srf"
	c.ProfileServiceURL = "https://api.minecraftservices.com/minecraft/profile"
	c.HTTPTimeout = 10 * time.Second
	c.path = filepath.Join(c.DataDir, "launcher.json")
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	defaultPath := cfg.path
	parseJson(cfg)
	parseFlags(cfg)
	// Keep the config file next to the data when -d moved it and no
	// explicit config file was given.
	if cfg.path == defaultPath {
		cfg.path = filepath.Join(cfg.DataDir, "launcher.json")
	}
	return cfg
}

// CredentialDBPath is the fixed location of the local account database.
func (c *Config) CredentialDBPath() string {
	return filepath.Join(c.DataDir, "users.db")
}

// SessionPath is the fixed location of the session file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.DataDir, "session.json")
}

// AutoRestore implements the auth.Preferences collaborator: it reports
// whether the previous run asked to be remembered.
func (c *Config) AutoRestore() bool {
	return c.RememberMe
}

// RememberLogin implements the auth.Preferences collaborator: it records
// the remembered username and persists the config file.
func (c *Config) RememberLogin(username string) error {
	c.RememberMe = true
	c.LastUsername = username
	return c.Save()
}
