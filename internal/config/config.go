package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSheetURL is the out-of-the-box remote endpoint used when no
// settings record has ever been saved.
const DefaultSheetURL = "https://script.google.com/macros/s/AKfycbwSPNwoXb5NHH1qDGNh_sOpVv1FRMib9A11D8-Q3gXu1sR9REApcJ3h_tB6MCX9UeSe/exec"

type Config struct {
	Server struct {
		Port         string `yaml:"port"`
		Debug        bool   `yaml:"debug"`
		ReadTimeout  string `yaml:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout"`
	} `yaml:"server"`
	Store struct {
		// Backend is one of file, redis, postgres. Empty means file.
		Backend string `yaml:"backend"`
		Dir     string `yaml:"dir"`
	} `yaml:"store"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Cloud struct {
		SheetURL string `yaml:"sheet_url"`
		Enabled  *bool  `yaml:"enabled"`
	} `yaml:"cloud"`
}

// Load reads YAML config from path. A missing file yields the zero
// config rather than an error so the service can run on defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// DefaultSettingsURL resolves the default remote endpoint, preferring a
// configured override.
func (c Config) DefaultSettingsURL() string {
	if c.Cloud.SheetURL != "" {
		return c.Cloud.SheetURL
	}
	return DefaultSheetURL
}

// DefaultSettingsEnabled reports whether auto-push starts enabled.
// Unset means enabled, matching the historical behavior.
func (c Config) DefaultSettingsEnabled() bool {
	if c.Cloud.Enabled == nil {
		return true
	}
	return *c.Cloud.Enabled
}

// Duration parses a duration string or returns the fallback if empty
// or malformed.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
