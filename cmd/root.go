// Package cmd provides the command-line interface for porter.
//
// Configuration System:
//
//	Values are resolved with this precedence:
//	1. Command-line flags (--template-dir, --engine, --log-level, ...)
//	2. PORTER_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (PORTER_TEMPLATES_DIR, PORTER_LOG_LEVEL, ...)
//	4. Configuration file (.porter.yml)
//	5. Defaults; the template directory falls back to
//	   $(dirname $DOCUMENT_ROOT)/resource/template
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/porter/internal/config"
	"github.com/conneroisu/porter/internal/porter"
)

var cfgFile string

// loadPorter returns the porter commands work with
var loadPorter = porter.Default

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "porter",
	Short: "Render template files with saved variables",
	Long: `Porter loads template files from a template directory, renders them with
named variables, or prints their raw source.

Quick Start:
  porter render test/render.php --var string=testing --var int=123
  porter raw test/raw.php
  porter id Test/Render.PHP
  porter list
  porter watch

Templates are rendered with pongo2 (Django syntax, {{ name }}) by default,
or with Go's text/template plus sprig functions when --engine gotemplate.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .porter.yml, can also use PORTER_CONFIG_FILE env var)")
	flags.StringP("template-dir", "d", "", "directory template filenames are resolved against")
	flags.StringP("engine", "e", "", "template engine (pongo2, gotemplate)")
	flags.StringP("log-level", "l", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")

	_ = viper.BindPFlag(config.KeyTemplatesDir, flags.Lookup("template-dir"))
	_ = viper.BindPFlag(config.KeyTemplatesEngine, flags.Lookup("engine"))
	_ = viper.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format"))
}

// initConfig initializes the configuration system.
//
// Config file priority (highest to lowest):
//  1. --config flag
//  2. PORTER_CONFIG_FILE environment variable
//  3. .porter.yml in the current directory
//
// Every key can also be set from the environment with the PORTER_ prefix,
// dots replaced by underscores (PORTER_TEMPLATES_ENGINE=gotemplate).
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("PORTER_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".porter")
	}

	viper.SetEnvPrefix("PORTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// a missing or unreadable config file falls back to defaults
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
