package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := validateTemplatesConfig(&config.Templates); err != nil {
		return fmt.Errorf("templates config: %w", err)
	}

	if err := validateCacheConfig(&config.Cache); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	if err := validateStoreConfig(&config.Store); err != nil {
		return fmt.Errorf("store config: %w", err)
	}

	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Port 0 means system-assigned, used in tests.
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.Host != "" {
		dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
		for _, char := range dangerousChars {
			if strings.Contains(config.Host, char) {
				return fmt.Errorf("host contains dangerous character: %s", char)
			}
		}
	}

	for name, user := range config.Users {
		if name == "" {
			return fmt.Errorf("user with empty name")
		}
		if user.Password == "" {
			return fmt.Errorf("user %q has empty password", name)
		}
	}

	return nil
}

// validateTemplatesConfig validates template configuration values
func validateTemplatesConfig(config *TemplatesConfig) error {
	if config.Dir == "" {
		return fmt.Errorf("dir must not be empty")
	}
	if err := validatePath(config.Dir); err != nil {
		return fmt.Errorf("invalid dir %q: %w", config.Dir, err)
	}

	if !strings.HasPrefix(config.Extension, ".") {
		return fmt.Errorf("extension %q must start with a dot", config.Extension)
	}

	if config.ErrorTemplate == "" {
		return fmt.Errorf("error_template must not be empty")
	}

	return nil
}

// validateCacheConfig validates caching configuration values
func validateCacheConfig(config *CacheConfig) error {
	if config.MaxAge < 0 {
		return fmt.Errorf("max_age must not be negative, got %d", config.MaxAge)
	}

	return nil
}

// validateStoreConfig validates document-store configuration values
func validateStoreConfig(config *StoreConfig) error {
	if config.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", config.PageSize)
	}
	if config.MaxPageSize < config.PageSize {
		return fmt.Errorf("max_page_size %d is smaller than page_size %d",
			config.MaxPageSize, config.PageSize)
	}

	if config.Seed != "" {
		if err := validatePath(config.Seed); err != nil {
			return fmt.Errorf("invalid seed path %q: %w", config.Seed, err)
		}
	}

	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
