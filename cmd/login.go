package cmd

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/devbyilmir/incidents-manager/internal/api"
)

var (
	loginEmail    string
	loginPassword string
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the incident service",
	Long: `Sign in to the incident service and persist the session token.

The session file is shared by the console and the one-shot commands
(create, list), so one login covers all of them.

Examples:
  # Interactive prompt for credentials
  incidents login

  # Non-interactive (password from flag; prefer the prompt)
  incidents login --email operator@plant.local --password secret`,
	RunE: runLogin,
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the saved session",
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)

	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (omit to be prompted)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config := GetConfig()

	email := loginEmail
	if email == "" {
		fmt.Print("Email: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read email: %w", err)
		}
		email = strings.TrimSpace(line)
	}

	password := loginPassword
	if password == "" {
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		password = string(raw)
	}

	session, err := api.NewSession(config.Session.Path)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	client := api.NewClient(config.Server.URL, session, log.New(io.Discard, "", 0))

	if err := client.Login(ctx, api.Credentials{Email: email, Password: password}); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	user, err := client.Me(ctx)
	if err != nil {
		return fmt.Errorf("session check failed: %w", err)
	}
	fmt.Printf("Signed in as %s (%s)\n", user.Name, user.Role)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config := GetConfig()

	session, err := api.NewSession(config.Session.Path)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	client := api.NewClient(config.Server.URL, session, log.New(io.Discard, "", 0))

	if err := client.Logout(ctx); err != nil {
		// The local session is cleared regardless; report but don't fail.
		fmt.Printf("Warning: server logout failed: %v\n", err)
	}
	fmt.Println("Signed out.")
	return nil
}
