package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile     string
	serverURL   string
	dbPath      string
	redisURL    string
	triggerPath string
	sessionPath string
	logLevel    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "incidents",
	Short: "Terminal console for tracking operational incidents",
	Long: `Incidents is a terminal client for the facility incident service.

The console mirrors the service's incident collection, filters and
searches it locally, and sends every change back to the service followed
by a full reload. Sibling commands (create, list, login) share the same
session, and a running console picks up their changes through the
refresh trigger.

Commands:
- console: interactive incident list
- serve:   run the companion incident service
- login:   sign in and persist the session
- create:  file an incident from the command line
- list:    print the collection without the UI`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.incidents.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://127.0.0.1:8000", "Incident service base URL")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "./data/incidents.db", "SQLite database path (serve, seed, reset)")
	rootCmd.PersistentFlags().StringVar(&redisURL, "redis", "", "Redis URL for the refresh trigger (optional)")
	rootCmd.PersistentFlags().StringVar(&triggerPath, "trigger-file", defaultTriggerPath(), "Refresh trigger file path")
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session", defaultSessionPath(), "Session token file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	// Bind flags to viper
	viper.BindPFlag("server.url", rootCmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("redis.url", rootCmd.PersistentFlags().Lookup("redis"))
	viper.BindPFlag("trigger.path", rootCmd.PersistentFlags().Lookup("trigger-file"))
	viper.BindPFlag("session.path", rootCmd.PersistentFlags().Lookup("session"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".incidents" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".incidents")
	}

	viper.SetEnvPrefix("INCIDENTS")
	viper.AutomaticEnv() // read in environment variables that match

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	viper.SetDefault("server.url", "http://127.0.0.1:8000")
	viper.SetDefault("database.path", "./data/incidents.db")
	viper.SetDefault("redis.url", "")
	viper.SetDefault("trigger.path", defaultTriggerPath())
	viper.SetDefault("session.path", defaultSessionPath())
	viper.SetDefault("log.level", "info")
	viper.SetDefault("server.jwt_secret", "")
	viper.SetDefault("server.bind", "127.0.0.1:8000")
}

// GetConfig returns the current configuration values
func GetConfig() Config {
	return Config{
		Server: ServerConfig{
			URL:       viper.GetString("server.url"),
			Bind:      viper.GetString("server.bind"),
			JWTSecret: viper.GetString("server.jwt_secret"),
		},
		Database: DatabaseConfig{
			Path: viper.GetString("database.path"),
		},
		Redis: RedisConfig{
			URL: viper.GetString("redis.url"),
		},
		Trigger: TriggerConfig{
			Path: viper.GetString("trigger.path"),
		},
		Session: SessionConfig{
			Path: viper.GetString("session.path"),
		},
		Log: LogConfig{
			Level: viper.GetString("log.level"),
		},
	}
}

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Trigger  TriggerConfig  `mapstructure:"trigger"`
	Session  SessionConfig  `mapstructure:"session"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	URL       string `mapstructure:"url"`
	Bind      string `mapstructure:"bind"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type TriggerConfig struct {
	Path string `mapstructure:"path"`
}

type SessionConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".incidents-session"
	}
	return filepath.Join(home, ".incidents", "session")
}

func defaultTriggerPath() string {
	return filepath.Join(os.TempDir(), "incidents-refresh")
}
