package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Ning0612/Drivemover/internal/domain"
)

// Config represents the complete configuration for drivemover
type Config struct {
	// Auth holds the OAuth client credentials
	Auth AuthConfig `mapstructure:"auth"`

	// Account identifies the Google Drive account to operate on
	Account domain.Account `mapstructure:"account"`

	// Actions are the policy toggles gating planned changes
	Actions domain.Actions `mapstructure:"actions"`

	// Reports configures where CSV report files are written
	Reports ReportsConfig `mapstructure:"reports"`

	// DataDir is where run history and lock files live;
	// defaults to the user config directory
	DataDir string `mapstructure:"data_dir"`

	// Retries is the number of attempts per remote call
	Retries int `mapstructure:"retries"`

	// Log configures logging
	Log LogConfig `mapstructure:"log"`
}

// AuthConfig holds OAuth client credentials and the token cache location
type AuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	TokenFile    string `mapstructure:"token_file"`
}

// ReportsConfig holds the per-report output directories
type ReportsConfig struct {
	EntriesDir     string `mapstructure:"entries_dir"`
	PermissionsDir string `mapstructure:"permissions_dir"`
	PlansDir       string `mapstructure:"plans_dir"`
	OutcomesDir    string `mapstructure:"outcomes_dir"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	File     string `mapstructure:"file"`
	MaxSize  int    `mapstructure:"max_size_mb"`
	MaxAge   int    `mapstructure:"max_age_days"`
	Backups  int    `mapstructure:"max_backups"`
	Compress bool   `mapstructure:"compress"`
}

// DefaultDataDir returns the default data directory
func DefaultDataDir() string {
	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "drivemover")
	}
	return ".drivemover"
}

// Validate checks if the configuration is complete and consistent
func (c *Config) Validate() error {
	if c.Auth.ClientID == "" {
		return fmt.Errorf("%w: auth client_id cannot be empty", domain.ErrConfigInvalid)
	}
	if c.Auth.ClientSecret == "" {
		return fmt.Errorf("%w: auth client_secret cannot be empty", domain.ErrConfigInvalid)
	}

	if err := c.Account.Validate(); err != nil {
		return err
	}

	if c.Reports.EntriesDir == "" {
		return fmt.Errorf("%w: reports entries_dir cannot be empty", domain.ErrConfigInvalid)
	}
	if c.Reports.PermissionsDir == "" {
		return fmt.Errorf("%w: reports permissions_dir cannot be empty", domain.ErrConfigInvalid)
	}
	if c.Reports.PlansDir == "" {
		return fmt.Errorf("%w: reports plans_dir cannot be empty", domain.ErrConfigInvalid)
	}
	if c.Reports.OutcomesDir == "" {
		return fmt.Errorf("%w: reports outcomes_dir cannot be empty", domain.ErrConfigInvalid)
	}

	if c.Retries < 1 {
		return fmt.Errorf("%w: retries must be at least 1, got %d", domain.ErrConfigInvalid, c.Retries)
	}

	for _, email := range c.Actions.PermissionsKeepEmails {
		if email == "" {
			return fmt.Errorf("%w: keep-list emails cannot be empty", domain.ErrConfigInvalid)
		}
	}

	return nil
}
