// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paperbase CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperbase/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	appName          = "paperbase"
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "paperbase/0.1"
)

// rootCmd is the base command for the paperbase CLI.
var rootCmd = &cobra.Command{
	Use:   "paperbase",
	Short: "Manage a personal library of academic papers",
	Long: `paperbase resolves paper identifiers and URLs (arXiv IDs, DOIs, IACR
ePrint IDs, or anything described by a source configuration file) to canonical
metadata records, stores them in a local searchable library, and optionally
downloads the documents.

Sources are pure configuration: drop a YAML file into the sources directory
to teach paperbase a new source, no code required.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paperbase.yaml or ~/.config/paperbase/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	if verbose, _ := rootCmd.PersistentFlags().GetBool("verbose"); verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(appName)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join(xdg.ConfigHome, appName))
	}

	viper.SetDefault("timeout", defaultTimeout)
	viper.SetDefault("user_agent", defaultUserAgent)
	viper.SetDefault("requests_per_second", 1.0)
	viper.SetDefault("sources_dir", filepath.Join(xdg.ConfigHome, appName, "sources.d"))
	viper.SetDefault("data_dir", filepath.Join(xdg.DataHome, appName))
	viper.SetDefault("max_results", 20)

	viper.SetEnvPrefix("PAPERBASE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// retrieverConfig assembles the engine settings from viper.
func retrieverConfig() types.RetrieverConfig {
	return types.RetrieverConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("timeout"),
			UserAgent: viper.GetString("user_agent"),
		},
		SourcesDir:        viper.GetString("sources_dir"),
		RequestsPerSecond: viper.GetFloat64("requests_per_second"),
	}
}

// libraryConfig assembles the store settings from viper.
func libraryConfig() types.LibraryConfig {
	return types.LibraryConfig{
		DataDir:    viper.GetString("data_dir"),
		MaxResults: viper.GetInt("max_results"),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
