package config

import (
	"fmt"
	"sync"
)

var (
	// globalConfig holds the process-wide configuration instance.
	globalConfig *Config

	// configPath is the file globalConfig was loaded from, empty for defaults.
	configPath string

	// configMutex protects access to globalConfig and configPath.
	configMutex sync.RWMutex
)

// Initialize loads configuration from the specified path with environment
// variable overrides and stores it as the global configuration.
// An empty path initializes from the defaults.
//
// Returns an error if configuration loading or validation fails, in which
// case the global configuration is unchanged.
func Initialize(path string) error {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return err
	}

	configMutex.Lock()
	globalConfig = cfg
	configPath = path
	configMutex.Unlock()

	return nil
}

// GetConfig returns the global configuration instance.
// It returns nil if Initialize has not been called successfully.
// This function is thread-safe and can be called concurrently.
//
// For testing, prefer using dependency injection with explicit Config
// instances rather than relying on the global configuration.
func GetConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// Path returns the file the global configuration was loaded from.
func Path() string {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return configPath
}

// SetConfig sets the global configuration instance.
// This function is primarily intended for testing.
func SetConfig(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = cfg
}

// ReloadConfig reloads the configuration from the path it was initialized
// with. "warden watch" calls it when the configuration file changes.
// The new configuration replaces the global instance only if loading and
// validation succeed.
//
// Returns an error if reloading fails, in which case the existing
// configuration remains unchanged.
func ReloadConfig() error {
	path := Path()
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}

	configMutex.Lock()
	globalConfig = cfg
	configMutex.Unlock()

	return nil
}
