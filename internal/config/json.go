package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/minestat/launcher/internal/flagx"
	"github.com/minestat/launcher/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON (un)marshalling. Optional
// overlay fields are pointers so that an absent key leaves the default
// untouched; timex.Duration lets the timeout be written as "10s".
type JsonConfig struct {
	DataDir            string          `json:"data_dir,omitempty"`
	RememberMe         *bool           `json:"remember_me,omitempty"`
	LastUsername       *string         `json:"last_username,omitempty"`
	AuthServiceURL     string          `json:"auth_service_url,omitempty"`
	ValidateServiceURL string          `json:"validate_service_url,omitempty"`
	TokenServiceURL    string          `json:"token_service_url,omitempty"`
	ProfileServiceURL  string          `json:"profile_service_url,omitempty"`
	HTTPTimeout        *timex.Duration `json:"http_timeout,omitempty"`
}

// parseJson overlays cfg with values loaded from a JSON file.
//
// The file path comes from the -c/-config flags; when neither is given, the
// default location inside DataDir is tried. A missing default file is fine
// (first launch); an explicitly passed file that cannot be read or parsed
// panics, since silently ignoring an operator's config is worse.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	explicit := jsonConfigFile != ""
	if !explicit {
		jsonConfigFile = cfg.path
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return
		}
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(fmt.Errorf("parsing %s: %w", jsonConfigFile, err))
	}

	cfg.path = jsonConfigFile
	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	if jc.RememberMe != nil {
		cfg.RememberMe = *jc.RememberMe
	}
	if jc.LastUsername != nil {
		cfg.LastUsername = *jc.LastUsername
	}
	if jc.AuthServiceURL != "" {
		cfg.AuthServiceURL = jc.AuthServiceURL
	}
	if jc.ValidateServiceURL != "" {
		cfg.ValidateServiceURL = jc.ValidateServiceURL
	}
	if jc.TokenServiceURL != "" {
		cfg.TokenServiceURL = jc.TokenServiceURL
	}
	if jc.ProfileServiceURL != "" {
		cfg.ProfileServiceURL = jc.ProfileServiceURL
	}
	if jc.HTTPTimeout != nil {
		cfg.HTTPTimeout = jc.HTTPTimeout.Duration
	}
}

// Save writes the current settings back to the config file, creating the
// directory on first use.
func (c *Config) Save() error {
	timeout := timex.Duration{Duration: c.HTTPTimeout}
	jc := JsonConfig{
		DataDir:            c.DataDir,
		RememberMe:         &c.RememberMe,
		LastUsername:       &c.LastUsername,
		AuthServiceURL:     c.AuthServiceURL,
		ValidateServiceURL: c.ValidateServiceURL,
		TokenServiceURL:    c.TokenServiceURL,
		ProfileServiceURL:  c.ProfileServiceURL,
		HTTPTimeout:        &timeout,
	}

	data, err := json.MarshalIndent(jc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
