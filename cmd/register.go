package cmd

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	"github.com/devbyilmir/incidents-manager/internal/api"
)

var (
	registerEmail    string
	registerPassword string
	registerName     string
	registerRole     string
)

// registerCmd represents the register command
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new account on the incident service",
	Long: `Register a new account. Registration does not sign you in; run
'incidents login' afterwards.

Examples:
  incidents register --email operator@plant.local --name "Duty Operator" --password secret`,
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Account email (required)")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Account password (required)")
	registerCmd.Flags().StringVar(&registerName, "name", "", "Display name (required)")
	registerCmd.Flags().StringVar(&registerRole, "role", "operator", "Account role")
	registerCmd.MarkFlagRequired("email")
	registerCmd.MarkFlagRequired("password")
	registerCmd.MarkFlagRequired("name")
}

func runRegister(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config := GetConfig()

	// No session needed; registration is the one unauthenticated call.
	client := api.NewClient(config.Server.URL, nil, log.New(io.Discard, "", 0))
	err := client.Register(ctx, api.Registration{
		Email:    registerEmail,
		Password: registerPassword,
		Name:     registerName,
		Role:     registerRole,
	})
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Printf("Account %s created. Run 'incidents login' to sign in.\n", registerEmail)
	return nil
}
