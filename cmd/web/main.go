package main

import (
	"fmt"
	"net"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/seo-tools/searchledger/pkg/metrics"
	"github.com/seo-tools/searchledger/pkg/server"
	"github.com/seo-tools/searchledger/pkg/services/account"
	"github.com/seo-tools/searchledger/pkg/services/config"
)

var (
	cfgPath         string
	credentialsPath string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the searchledger API server",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the settings file")
	rootCmd.Flags().StringVar(&credentialsPath, "credentials", config.DefaultCredentialsPath(),
		"Path to the credentials file (default is $HOME/.searchledger/credentials)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	settings, err := config.LoadSettings(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	registry, err := config.NewRegistry(credentialsPath)
	if err != nil {
		return fmt.Errorf("failed to create credentials registry: %w", err)
	}

	promRegistry := prometheus.NewRegistry()

	explorer, err := account.NewExplorer(logger, account.Dependencies{
		Registry: registry,
		Settings: settings,
		Metrics:  metrics.New(promRegistry),
	})
	if err != nil {
		return fmt.Errorf("failed to create account explorer: %w", err)
	}

	logger.Info().Msgf("Credentials found at `%s` successfully loaded.", credentialsPath)
	profiles, _ := registry.GetProfiles(ctx)
	for _, profile := range profiles {
		logger.Info().Msgf("Found account profile `%s`", profile)
	}

	host := os.Getenv("SERVER_HOST")
	port := os.Getenv("SERVER_PORT")

	if host == "" || port == "" {
		logger.Error().Msgf("Missing server configuration from .env file")
		os.Exit(1)
	}

	webAPI := server.NewWebAPI(logger, server.Config{
		Addr: net.JoinHostPort(host, port),
		Dependencies: server.Dependencies{
			Account:  explorer,
			Registry: promRegistry,
		},
	})

	return webAPI.Start()
}
