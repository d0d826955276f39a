package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	confirmReset bool
	resetRedis   bool
	resetDB      bool
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the database and/or Redis trigger data",
	Long: `Reset clears the SQLite database and/or the Redis data used by the
refresh trigger.

By default both are reset. Use --redis-only or --db-only to reset
selectively. Without a configured Redis URL the Redis step is skipped.

WARNING: This operation is irreversible and permanently deletes all
accounts, incidents, and audit history.

Examples:
  # Reset everything (asks for confirmation)
  incidents reset

  # Reset with automatic confirmation
  incidents reset --yes

  # Reset only the database
  incidents reset --db-only`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().BoolVarP(&confirmReset, "yes", "y", false, "Automatically confirm reset operation")
	resetCmd.Flags().BoolVar(&resetRedis, "redis-only", false, "Reset only Redis data")
	resetCmd.Flags().BoolVar(&resetDB, "db-only", false, "Reset only the database")
}

func runReset(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	resetBoth := !resetRedis && !resetDB
	if resetBoth {
		resetRedis = true
		resetDB = true
	}

	var targets []string
	if resetRedis && viper.GetString("redis.url") != "" {
		targets = append(targets, "Redis data")
	}
	if resetDB {
		targets = append(targets, "SQLite database")
	}
	if len(targets) == 0 {
		fmt.Println("Nothing to reset (no Redis configured).")
		return nil
	}

	fmt.Printf("This will permanently delete: %s\n", strings.Join(targets, " and "))

	if !confirmReset {
		fmt.Print("Are you sure you want to continue? (y/N): ")
		var response string
		fmt.Scanln(&response)
		if strings.ToLower(response) != "y" && strings.ToLower(response) != "yes" {
			fmt.Println("Reset operation cancelled.")
			return nil
		}
	}

	if resetRedis && viper.GetString("redis.url") != "" {
		if err := resetRedisData(ctx); err != nil {
			if !resetDB {
				return fmt.Errorf("failed to reset Redis data: %w", err)
			}
			fmt.Printf("Warning: failed to reset Redis data: %v\n", err)
		} else {
			fmt.Println("Redis data cleared")
		}
	}

	if resetDB {
		if err := resetDatabase(); err != nil {
			return fmt.Errorf("failed to reset database: %w", err)
		}
		fmt.Println("Database cleared")
	}

	fmt.Println("Reset completed.")
	return nil
}

func resetRedisData(ctx context.Context) error {
	opts, err := redis.ParseURL(viper.GetString("redis.url"))
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	keys, err := client.Keys(ctx, "incidents:*").Result()
	if err != nil {
		return fmt.Errorf("failed to list Redis keys: %w", err)
	}
	if len(keys) == 0 {
		fmt.Println("No Redis data found to clear")
		return nil
	}

	fmt.Printf("Clearing %d Redis keys...\n", len(keys))
	if err := client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete Redis keys: %w", err)
	}
	return nil
}

func resetDatabase() error {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "./data/incidents.db"
	}

	// WAL mode keeps sidecar files next to the database.
	dbFiles := []string{dbPath, dbPath + "-shm", dbPath + "-wal"}

	var removedFiles []string
	for _, file := range dbFiles {
		if _, err := os.Stat(file); err == nil {
			if err := os.Remove(file); err != nil {
				return fmt.Errorf("failed to remove database file %s: %w", file, err)
			}
			removedFiles = append(removedFiles, filepath.Base(file))
		}
	}

	if len(removedFiles) == 0 {
		fmt.Println("No database files found to remove")
		return nil
	}
	fmt.Printf("Removed database files: %s\n", strings.Join(removedFiles, ", "))
	return nil
}
