package cmd

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/devbyilmir/incidents-manager/internal/server"
	"github.com/devbyilmir/incidents-manager/internal/store"
)

var (
	serveBind      string
	serveJWTSecret string
	serveTokenTTL  time.Duration
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the companion incident service",
	Long: `Run the incident service the console connects to.

The service owns the SQLite database and exposes the REST contract:
session auth under /auth and incident CRUD under /incidents. It runs
until interrupted (Ctrl+C) and shuts down gracefully.

Examples:
  # Run on the default bind address
  incidents serve --jwt-secret change-me

  # Custom bind and database
  incidents serve --bind 0.0.0.0:8000 --db /var/lib/incidents/incidents.db --jwt-secret change-me`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveBind, "bind", "127.0.0.1:8000", "Bind address for the service")
	serveCmd.Flags().StringVar(&serveJWTSecret, "jwt-secret", "", "Secret for signing session tokens (required)")
	serveCmd.Flags().DurationVar(&serveTokenTTL, "token-ttl", 24*time.Hour, "Session token lifetime")

	viper.BindPFlag("server.bind", serveCmd.Flags().Lookup("bind"))
	viper.BindPFlag("server.jwt_secret", serveCmd.Flags().Lookup("jwt-secret"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config := GetConfig()

	logger := logrus.New()
	if level, err := logrus.ParseLevel(config.Log.Level); err == nil {
		logger.SetLevel(level)
	}

	st, err := store.NewStore(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()
	logger.WithField("path", config.Database.Path).Info("database ready")

	srv, err := server.New(st, server.Options{
		Bind:      config.Server.Bind,
		JWTSecret: config.Server.JWTSecret,
		TokenTTL:  serveTokenTTL,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("service error: %w", err)
	}
	logger.Info("incident service stopped")
	return nil
}
