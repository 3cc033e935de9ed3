// Package config loads and validates the service settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config contains the script configuration service settings.
type Config struct {
	// AutoReload applies changed configurations without asking the user.
	AutoReload bool `yaml:"auto_reload"`
	// StoragePath is the directory for the file-attribute cache and the
	// persisted roots store.
	StoragePath string `yaml:"storage_path,omitempty"`
	// RootsCacheSize bounds the per-file scope memoization in the roots
	// cache.
	RootsCacheSize int `yaml:"roots_cache_size,omitempty"`
	// ProjectRoot is the root against which outsider files are detected.
	ProjectRoot string `yaml:"project_root,omitempty"`
	// ScriptPatterns are the file name patterns the default support claims.
	ScriptPatterns []string `yaml:"script_patterns,omitempty"`
	// GradlePatterns are the file name patterns the Gradle support claims.
	GradlePatterns []string `yaml:"gradle_patterns,omitempty"`
	// LibDirs are directories scanned for dependency jars by the local
	// resolver.
	LibDirs []string `yaml:"lib_dirs,omitempty"`
	// SDKName and SDKHome identify the SDK scripts compile against.
	SDKName string `yaml:"sdk_name,omitempty"`
	SDKHome string `yaml:"sdk_home,omitempty"`
}

// GetDefaultConfig returns the settings used when no config file exists.
func GetDefaultConfig() *Config {
	storage := ".scriptconfig"
	if home, err := os.UserHomeDir(); err == nil {
		storage = filepath.Join(home, ".scriptconfig")
	}
	return &Config{
		AutoReload:     false,
		StoragePath:    storage,
		RootsCacheSize: 128,
		ProjectRoot:    ".",
		ScriptPatterns: []string{"*.kts"},
		GradlePatterns: []string{"*.gradle.kts"},
		SDKName:        "default",
		SDKHome:        os.Getenv("JAVA_HOME"),
	}
}

// LoadConfig loads configuration from a YAML file, filling defaults for
// omitted fields.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := GetDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// SaveConfig saves configuration to a YAML file.
func SaveConfig(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func validateConfig(config *Config) error {
	if config.RootsCacheSize < 0 {
		return fmt.Errorf("roots_cache_size must not be negative")
	}
	if len(config.ScriptPatterns) == 0 {
		return fmt.Errorf("script_patterns must not be empty")
	}
	patterns := append(append([]string(nil), config.ScriptPatterns...), config.GradlePatterns...)
	for _, p := range patterns {
		if _, err := filepath.Match(p, "probe"); err != nil {
			return fmt.Errorf("invalid pattern %q: %w", p, err)
		}
	}
	return nil
}
