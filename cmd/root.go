// Package cmd provides the command-line interface for veneer with
// configuration management supporting multiple configuration sources.
//
// Configuration System:
//
//	The CLI supports flexible configuration through multiple sources with clear precedence:
//	1. Command-line flags (--config, --port, etc.) - highest priority
//	2. VENEER_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (VENEER_SERVER_PORT, etc.)
//	4. Configuration files (.veneer.yml) - lowest priority
//
// Environment Variables:
//
//	VENEER_CONFIG_FILE: Path to custom configuration file
//	VENEER_SERVER_PORT: Override server port
//	VENEER_SERVER_HOST: Override server host
//	VENEER_CACHE_ENABLED: Enable conditional caching
//	And more following the VENEER_<SECTION>_<OPTION> pattern
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "veneer",
	Short: "An HTML veneer for JSON document APIs",
	Long: `Veneer serves a JSON document API and negotiates HTML documents on
top of it. Browsers get server-rendered pages resolved from a template
directory; API clients get untouched JSON from the same URLs.

Key Features:
  • Hierarchical template resolution with graceful fallback
  • Partial-update fragment rendering for progressive-enhancement clients
  • Conditional caching with content validators
  • Live template reload without restarts
  • Multi-tenant partition filtering

Quick Start:
  veneer serve                    Start the server
  veneer version                  Show version information`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .veneer.yml, can also use VENEER_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	bindFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	bindFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func bindFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", key, err))
	}
}

// initConfig initializes the configuration system.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. VENEER_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .veneer.yml in current directory
//
// The function also enables automatic environment variable binding for
// all configuration values with the VENEER_ prefix (e.g.
// VENEER_SERVER_PORT=8080).
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("VENEER_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".veneer")
	}

	viper.SetEnvPrefix("VENEER")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing or unreadable config file is not fatal; defaults and
	// environment variables still apply.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
