package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/devbyilmir/incidents-manager/internal/api"
	"github.com/devbyilmir/incidents-manager/internal/notify"
	"github.com/devbyilmir/incidents-manager/internal/ui"
)

var forceTUI bool

// consoleCmd represents the console command
var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Open the interactive incident console",
	Long: `Open the terminal console against the incident service.

The console shows the incident collection with filtering and search,
and supports creating, editing, closing/reopening, and deleting
incidents. Every change is sent to the service and followed by a full
reload, so the screen always reflects the service's state.

When a refresh trigger is configured (Redis or the trigger file), a
running console also reloads when sibling commands change the
collection.

Examples:
  # Open the console against the default service
  incidents console

  # Point at a remote service
  incidents console --server http://10.0.0.5:8000

  # Share a Redis refresh trigger
  incidents console --redis redis://localhost:6379`,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)

	consoleCmd.Flags().BoolVar(&forceTUI, "force-tui", false, "Force TUI mode even in unsupported terminals")
}

func runConsole(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config := GetConfig()

	// The terminal belongs to the TUI; logs go to a file so the screen
	// stays clean.
	logFile := setupFileLogger()
	var logger *log.Logger
	if logFile != nil {
		logger = log.New(logFile, "[console] ", log.LstdFlags)
		defer logFile.Close()
	} else {
		logger = log.New(io.Discard, "[console] ", log.LstdFlags)
	}
	logger.Printf("Terminal info: %s", getTerminalInfo())

	if !forceTUI && !canInitializeTUI() {
		if needsPseudoTTY() {
			return runWithPseudoTTY(args)
		}
		fmt.Fprintln(os.Stderr, "The console cannot run in this terminal environment.")
		fmt.Fprintln(os.Stderr, "Use a native terminal or SSH with proper TERM settings,")
		fmt.Fprintln(os.Stderr, "or fall back to: incidents list")
		return fmt.Errorf("terminal does not support the console")
	}

	session, err := api.NewSession(config.Session.Path)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	client := api.NewClient(config.Server.URL, session, logger)

	trigger := notify.NewTrigger(config.Redis.URL, config.Trigger.Path, logger)
	defer trigger.Close()

	co := ui.NewCoordinator(ctx, client, trigger, logger)
	if err := co.Start(ctx); err != nil {
		return fmt.Errorf("console error: %w", err)
	}
	return nil
}

// canInitializeTUI tests if tcell can actually be initialized
func canInitializeTUI() bool {
	screen, err := tcell.NewScreen()
	if err != nil {
		return false
	}
	if err := screen.Init(); err != nil {
		return false
	}
	screen.Fini()
	return true
}

// getTerminalInfo returns detailed terminal information for the log.
func getTerminalInfo() string {
	var info []string

	term := os.Getenv("TERM")
	if term == "" {
		info = append(info, "TERM=<not set>")
	} else {
		info = append(info, fmt.Sprintf("TERM=%s", term))
	}
	if termProgram := os.Getenv("TERM_PROGRAM"); termProgram != "" {
		info = append(info, fmt.Sprintf("TERM_PROGRAM=%s", termProgram))
	}
	if width, height := getTerminalSize(); width > 0 && height > 0 {
		info = append(info, fmt.Sprintf("Size=%dx%d", width, height))
	}
	if isTerminal() {
		info = append(info, "TTY=yes")
	} else {
		info = append(info, "TTY=no")
	}
	return strings.Join(info, ", ")
}

// isTerminal checks if stdout is a terminal
func isTerminal() bool {
	if fileInfo, err := os.Stdout.Stat(); err == nil {
		return (fileInfo.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// needsPseudoTTY checks if we need to use script command for pseudo-TTY
func needsPseudoTTY() bool {
	if file, err := os.OpenFile("/dev/tty", os.O_RDWR, 0); err == nil {
		file.Close()
		return false
	}
	return true
}

// runWithPseudoTTY re-executes the console using script for pseudo-TTY
func runWithPseudoTTY(args []string) error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	cmdArgs := []string{"console"}
	cmdArgs = append(cmdArgs, args...)

	hasForceTUI := false
	for _, arg := range args {
		if arg == "--force-tui" {
			hasForceTUI = true
			break
		}
	}
	if !hasForceTUI {
		cmdArgs = append(cmdArgs, "--force-tui")
	}

	quotedArgs := make([]string, len(cmdArgs))
	for i, arg := range cmdArgs {
		quotedArgs[i] = fmt.Sprintf("%q", arg)
	}
	fullCmd := fmt.Sprintf("TERM=%s %q %s",
		os.Getenv("TERM"), executable, strings.Join(quotedArgs, " "))

	scriptCmd := exec.Command("script", "-qec", fullCmd, "/dev/null")
	scriptCmd.Stdin = os.Stdin
	scriptCmd.Stdout = os.Stdout
	scriptCmd.Stderr = os.Stderr
	scriptCmd.Env = os.Environ()
	return scriptCmd.Run()
}

// setupFileLogger creates the console log file under ./logs.
func setupFileLogger() *os.File {
	wd, err := os.Getwd()
	if err != nil {
		return nil
	}
	logDir := filepath.Join(wd, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil
	}
	logFile, err := os.OpenFile(filepath.Join(logDir, "incidents-console.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil
	}
	return logFile
}
