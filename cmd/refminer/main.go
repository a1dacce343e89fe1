// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the refminer CLI: full-text
// acquisition of PubMed articles and regex mining of the acquired files.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/refminer/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is configured from --log-level before any command runs.
var logger = zerolog.Nop()

var rootCmd = &cobra.Command{
	Use:   "refminer",
	Short: "Acquire full-text articles from PubMed and mine them for terms",
	Long: `refminer downloads the full text of PubMed articles from PubMed Central
or the publisher's platform, falling back across providers until one
succeeds, and mines the downloaded files (text, XML, HTML, PDF, Word,
Excel, including inside archives) for regular-expression matches.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := zerolog.ParseLevel(viper.GetString("log_level"))
		if err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(level).With().Timestamp().Logger()
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./refminer.yaml or ~/.config/refminer/refminer.yaml)")
	pf.String("log-level", "warn", "diagnostic log level: debug, info, warn, error")
	pf.String("secrets", secrets.BackendChain, "credential backend: env, keyring, dir, or chain")
	pf.String("secrets-dir", ".secrets", "directory of key files for the dir and chain backends")
	pf.String("db", "", "SQLite history database (empty disables recording)")

	viper.BindPFlag("log_level", pf.Lookup("log-level"))
	viper.BindPFlag("secrets", pf.Lookup("secrets"))
	viper.BindPFlag("secrets_dir", pf.Lookup("secrets-dir"))
	viper.BindPFlag("db", pf.Lookup("db"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("refminer")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "refminer"))
		}
	}

	viper.SetEnvPrefix("REFMINER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// resolver builds the credential resolver selected by --secrets.
func resolver() (secrets.Resolver, error) {
	return secrets.New(viper.GetString("secrets"), viper.GetString("secrets_dir"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
