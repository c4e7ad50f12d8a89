// Package config provides configuration management for veneer using
// Viper for flexible loading from files, environment variables, and
// command-line flags.
//
// The configuration system supports YAML files and environment variable
// overrides with the VENEER_ prefix. It manages the HTTP server, the
// template directory, conditional caching, tenancy, and document-store
// settings.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Templates TemplatesConfig `yaml:"templates"`
	Cache     CacheConfig     `yaml:"cache"`
	Tenancy   TenancyConfig   `yaml:"tenancy"`
	Site      SiteConfig      `yaml:"site"`
	Store     StoreConfig     `yaml:"store"`
}

type ServerConfig struct {
	Host        string                `yaml:"host"`
	Port        int                   `yaml:"port"`
	Environment string                `yaml:"environment"`
	Users       map[string]UserConfig `yaml:"users"`
}

// UserConfig declares one basic-auth principal. Credentials here exist
// to resolve identity for the rendering context, not to gate access.
type UserConfig struct {
	Password string   `yaml:"password"`
	Roles    []string `yaml:"roles"`
	Tenant   string   `yaml:"tenant"`
}

type TemplatesConfig struct {
	Dir           string `yaml:"dir"`
	Extension     string `yaml:"extension"`
	ErrorTemplate string `yaml:"error_template"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	MaxAge  int  `yaml:"max_age"`
}

type TenancyConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Protected []string `yaml:"protected"`
}

type SiteConfig struct {
	LoginURL string `yaml:"login_url"`
}

type StoreConfig struct {
	Seed        string `yaml:"seed"`
	PageSize    int    `yaml:"page_size"`
	MaxPageSize int    `yaml:"max_page_size"`
}

// DefaultConfig returns the configuration used when no file, flag, or
// environment variable overrides a value.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "localhost",
			Port:        8080,
			Environment: "development",
		},
		Templates: TemplatesConfig{
			Dir:           "./templates",
			Extension:     ".html",
			ErrorTemplate: "error",
		},
		Cache: CacheConfig{
			Enabled: false,
			MaxAge:  60,
		},
		Site: SiteConfig{
			LoginURL: "/login",
		},
		Store: StoreConfig{
			PageSize:    25,
			MaxPageSize: 200,
		},
	}
}

// Load assembles the configuration from viper's merged sources on top
// of the defaults and validates the result.
func Load() (*Config, error) {
	config := DefaultConfig()

	if viper.IsSet("server.host") {
		config.Server.Host = viper.GetString("server.host")
	}
	if viper.IsSet("server.port") {
		config.Server.Port = viper.GetInt("server.port")
	}
	if viper.IsSet("server.environment") {
		config.Server.Environment = viper.GetString("server.environment")
	}
	if viper.IsSet("server.users") {
		users := make(map[string]UserConfig)
		for name := range viper.GetStringMap("server.users") {
			prefix := "server.users." + name
			users[name] = UserConfig{
				Password: viper.GetString(prefix + ".password"),
				Roles:    viper.GetStringSlice(prefix + ".roles"),
				Tenant:   viper.GetString(prefix + ".tenant"),
			}
		}
		config.Server.Users = users
	}

	if viper.IsSet("templates.dir") {
		config.Templates.Dir = viper.GetString("templates.dir")
	}
	if viper.IsSet("templates.extension") {
		config.Templates.Extension = viper.GetString("templates.extension")
	}
	if viper.IsSet("templates.error_template") {
		config.Templates.ErrorTemplate = viper.GetString("templates.error_template")
	}

	if viper.IsSet("cache.enabled") {
		config.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if viper.IsSet("cache.max_age") {
		config.Cache.MaxAge = viper.GetInt("cache.max_age")
	}

	if viper.IsSet("tenancy.enabled") {
		config.Tenancy.Enabled = viper.GetBool("tenancy.enabled")
	}
	if viper.IsSet("tenancy.protected") {
		config.Tenancy.Protected = viper.GetStringSlice("tenancy.protected")
	}

	if viper.IsSet("site.login_url") {
		config.Site.LoginURL = viper.GetString("site.login_url")
	}

	if viper.IsSet("store.seed") {
		config.Store.Seed = viper.GetString("store.seed")
	}
	if viper.IsSet("store.page_size") {
		config.Store.PageSize = viper.GetInt("store.page_size")
	}
	if viper.IsSet("store.max_page_size") {
		config.Store.MaxPageSize = viper.GetInt("store.max_page_size")
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}
