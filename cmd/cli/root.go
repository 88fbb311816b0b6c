package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sevigo/review-warden/internal/app"
	"github.com/sevigo/review-warden/internal/wire"
)

var (
	configPath  string
	githubToken string
)

var rootCmd = &cobra.Command{
	Use:   "warden-cli",
	Short: "warden-cli is the command-line interface for Review Warden.",
	Long: `A CLI for Review Warden: review pull requests without the server, inspect
commentable diff lines, index coding standards and browse review history.`,
	SilenceUsage: true,
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config.yaml (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&githubToken, "github-token", "t", "", "GitHub token, overrides github.token")

	if err := viper.BindPFlag("github_token", rootCmd.PersistentFlags().Lookup("github-token")); err != nil {
		fmt.Fprintln(os.Stderr, "error binding flag:", err)
		os.Exit(1)
	}
}

// initConfig lets WARDEN_GITHUB_TOKEN and GITHUB_TOKEN fill --github-token.
func initConfig() {
	viper.SetEnvPrefix("WARDEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindEnv("github_token", "WARDEN_GITHUB_TOKEN", "GITHUB_TOKEN"); err != nil {
		fmt.Fprintln(os.Stderr, "error binding env:", err)
	}
}

// initApp assembles the application for a command; callers must run cleanup.
func initApp(ctx context.Context) (*app.App, func(), error) {
	a, cleanup, err := wire.InitializeApp(ctx, configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize app: %w\n\nTip: Check that your config.yaml exists and is valid", err)
	}
	return a, cleanup, nil
}

// token prefers the flag, then the environment, then github.token.
func token(a *app.App) string {
	if t := viper.GetString("github_token"); t != "" {
		return t
	}
	return a.Cfg.GitHub.Token
}
