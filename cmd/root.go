/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"

	"github.com/Kattu2003/PRODUCT/config"
	"github.com/Kattu2003/PRODUCT/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "backend",
	Short: "Account backend for the wellness website",
	Long: `Account backend for the wellness website. It serves signup, login and
session endpoints under /auth and owns the users table.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and initialises the startup logger.
func setup(ctx context.Context) (config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	log := logger.Init(logger.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	return cfg, log, nil
}
