package cmd

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devbyilmir/incidents-manager/internal/api"
	"github.com/devbyilmir/incidents-manager/internal/incident"
	"github.com/devbyilmir/incidents-manager/internal/store"
)

var (
	listFilter string
	listSearch string
	listAudit  bool
	auditLimit int
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List incidents in plain text",
	Long: `List incidents from the service in a simple text format.
This command works in any terminal environment and provides an
alternative to the console when terminal capabilities are limited.

The same filter and search semantics as the console apply: the filter
value matches either the priority or the status of a record, and the
search is a case-insensitive substring over title, location, and
creator name.

Examples:
  # List everything
  incidents list

  # Only critical records
  incidents list --filter critical

  # Open records mentioning the compressor hall
  incidents list --filter open --search compressor

  # Show the local audit log instead (reads the service database)
  incidents list --audit`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listFilter, "filter", incident.FilterAll, "Filter by priority or status")
	listCmd.Flags().StringVar(&listSearch, "search", "", "Search term over title, location, creator")
	listCmd.Flags().BoolVar(&listAudit, "audit", false, "Show the mutation audit log from the local database")
	listCmd.Flags().IntVar(&auditLimit, "audit-limit", 50, "Maximum audit entries to show")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config := GetConfig()

	if listAudit {
		return listAuditLog(cmd, config)
	}

	session, err := api.NewSession(config.Session.Path)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	client := api.NewClient(config.Server.URL, session, log.New(io.Discard, "", 0))

	incidents, err := client.List(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			return fmt.Errorf("not signed in, run 'incidents login' first")
		}
		return fmt.Errorf("failed to load incidents: %w", err)
	}

	visible := incident.Filter(incidents, listFilter, listSearch)
	if len(visible) == 0 {
		fmt.Println("No incidents found.")
		return nil
	}

	fmt.Printf("Showing %d of %d incidents:\n\n", len(visible), len(incidents))
	for i, inc := range visible {
		fmt.Printf("%d. [%s] %s\n", i+1, strings.ToUpper(inc.Priority.String()), inc.Title)
		fmt.Printf("   ID: %d\n", inc.ID)
		fmt.Printf("   Type: %s\n", inc.Type)
		fmt.Printf("   Status: %s\n", inc.Status)
		fmt.Printf("   Location: %s\n", inc.Location)
		fmt.Printf("   Creator: %s\n", inc.CreatorName())
		fmt.Printf("   Created: %s\n", inc.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		if inc.Description != "" {
			fmt.Printf("   Description: %s\n", inc.Description)
		}
		fmt.Println()
	}
	return nil
}

// listAuditLog prints mutation history straight from the service
// database, so it only works on the host running `incidents serve`.
func listAuditLog(cmd *cobra.Command, config Config) error {
	ctx := cmd.Context()

	st, err := store.NewStore(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	entries, err := st.ListActions(ctx, auditLimit)
	if err != nil {
		return fmt.Errorf("failed to load audit log: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No audit entries found.")
		return nil
	}

	fmt.Printf("Showing %d audit entries:\n\n", len(entries))
	for i, e := range entries {
		fmt.Printf("%d. %s incident #%d by %s\n", i+1, e.Action, e.IncidentID, e.Actor)
		fmt.Printf("   Time: %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		if len(e.Details) > 0 {
			fmt.Printf("   Details: %v\n", e.Details)
		}
		fmt.Println()
	}
	return nil
}
