// Package config manages application configuration from files and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Translate struct {
		Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
		Provider   string `mapstructure:"provider" yaml:"provider"`
		APIKey     string `mapstructure:"api_key" yaml:"api_key"`
		Region     string `mapstructure:"region" yaml:"region"`
		TargetLang string `mapstructure:"target_lang" yaml:"target_lang"`
	} `mapstructure:"translate" yaml:"translate"`
	Output struct {
		Format string `mapstructure:"format" yaml:"format"`
		Color  bool   `mapstructure:"color" yaml:"color"`
	} `mapstructure:"output" yaml:"output"`
}

// Load reads the configuration from ~/.xlnotes/config.yaml and environment
// variables. A missing config file is not an error; defaults apply.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(Dir())

	// Defaults. Every key is registered here so environment overrides are
	// visible to Unmarshal even without a config file.
	v.SetDefault("translate.enabled", false)
	v.SetDefault("translate.provider", "azure")
	v.SetDefault("translate.api_key", "")
	v.SetDefault("translate.region", "")
	v.SetDefault("translate.target_lang", "en")
	v.SetDefault("output.format", "table")
	v.SetDefault("output.color", true)

	// Environment variable overrides, e.g. XLNOTES_TRANSLATE_API_KEY
	v.SetEnvPrefix("XLNOTES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("could not parse configuration: %w", err)
	}

	return &cfg, nil
}

// Save writes the configuration to ~/.xlnotes/config.yaml.
func Save(cfg *Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("could not marshal configuration: %w", err)
	}

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	return nil
}

// Dir returns the configuration directory, honoring XLNOTES_CONFIG_DIR for
// tests and unusual setups.
func Dir() string {
	if dir := os.Getenv("XLNOTES_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".xlnotes"
	}
	return filepath.Join(home, ".xlnotes")
}
