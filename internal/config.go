package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	OutputDirectory string `mapstructure:"output"`
	CopyFiles       bool   `mapstructure:"copy_files"`
	AddMetadata     bool   `mapstructure:"add_metadata"`
	Organization    string `mapstructure:"organization"`
	SkipDuplicates  bool   `mapstructure:"skip_duplicates"`
	DuplicateMode   string `mapstructure:"duplicate_mode"`
	UseExifTool     bool   `mapstructure:"use_exiftool"`
}

func LoadConfig() (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to find user config dir: %w", err)
	}

	viper.SetConfigName("takeout-processor")
	viper.SetConfigType("toml")
	viper.AddConfigPath(filepath.Join(configDir, "takeout-processor"))

	// Set defaults:
	viper.SetDefault("output", filepath.Join(os.Getenv("HOME"), "Pictures", "takeout"))
	viper.SetDefault("copy_files", true)
	viper.SetDefault("add_metadata", true)
	viper.SetDefault("organization", "by-month")
	viper.SetDefault("skip_duplicates", false)
	viper.SetDefault("duplicate_mode", "hash")
	viper.SetDefault("use_exiftool", false)

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found; that's OK, just use defaults
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Older configs carried a boolean instead of the three-way mode. Honor it
	// here, at the loading boundary, and nowhere else: the pipeline only ever
	// sees the mode.
	if !viper.IsSet("organization") && viper.IsSet("organize_by_month") {
		if viper.GetBool("organize_by_month") {
			cfg.Organization = "by-month"
		} else {
			cfg.Organization = "flat"
		}
	}

	return &cfg, nil
}

// Options converts the loaded config into run options, validating the mode
// strings.
func (c *Config) Options() (*ProcessingOptions, error) {
	orgMode, err := ParseOrganizationMode(c.Organization)
	if err != nil {
		return nil, err
	}
	dupMode, err := ParseDuplicateMode(c.DuplicateMode)
	if err != nil {
		return nil, err
	}

	return &ProcessingOptions{
		OutputDirectory:  c.OutputDirectory,
		CopyFiles:        c.CopyFiles,
		AddMetadata:      c.AddMetadata,
		OrganizationMode: orgMode,
		SkipDuplicates:   c.SkipDuplicates,
		DuplicateMode:    dupMode,
		UseExifTool:      c.UseExifTool,
	}, nil
}
