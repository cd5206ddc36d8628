// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the syllabus-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built from the log flags before any subcommand runs.
var logger = zap.NewNop()

// rootCmd is the base command for the syllabus-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "syllabus-engine",
	Short: "Extract grading schemes, meeting times, and course codes from syllabi",
	Long: `syllabus-engine reads free-form syllabus text and extracts the grading
breakdown, the weekly class-meeting schedule, and the course code. Results
carry a confidence score; incomplete or low-confidence results are flagged
for human review.

Use extract for a single file, batch for a directory of text files, and
review to list results that need a human.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(logConfig())
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./syllabus-engine.yaml or ~/.config/syllabus-engine/syllabus-engine.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "diagnostic log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "console", "diagnostic log format: console or json")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("syllabus-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "syllabus-engine"))
		}
	}

	setDefaults(viper.GetViper())

	viper.SetEnvPrefix("SYLLABUS_ENGINE")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
