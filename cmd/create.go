package cmd

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	"github.com/devbyilmir/incidents-manager/internal/api"
	"github.com/devbyilmir/incidents-manager/internal/incident"
	"github.com/devbyilmir/incidents-manager/internal/notify"
)

var (
	createTitle       string
	createDescription string
	createType        string
	createPriority    string
	createLocation    string
)

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "File an incident from the command line",
	Long: `File an incident without opening the console.

The record is created through the service using the saved session, then
the refresh trigger is fired so any running console reloads and shows
the new record.

Examples:
  incidents create --title "Valve leak at compressor 3" --location "Compressor hall" --priority high --type leak`,
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVar(&createTitle, "title", "", "Incident title (required)")
	createCmd.Flags().StringVar(&createDescription, "description", "", "Incident description")
	createCmd.Flags().StringVar(&createType, "type", string(incident.TypeOther), "Incident type")
	createCmd.Flags().StringVar(&createPriority, "priority", string(incident.PriorityMedium), "Priority (low, medium, high, critical)")
	createCmd.Flags().StringVar(&createLocation, "location", "", "Location at the facility (required)")
	createCmd.MarkFlagRequired("title")
	createCmd.MarkFlagRequired("location")
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config := GetConfig()

	draft := incident.Draft{
		Title:       createTitle,
		Description: createDescription,
		Type:        incident.Type(createType),
		Priority:    incident.Priority(createPriority),
		Location:    createLocation,
	}
	if err := draft.Validate(); err != nil {
		return err
	}
	if !draft.Type.IsValid() {
		return fmt.Errorf("unknown incident type %q", createType)
	}
	if !draft.Priority.IsValid() {
		return fmt.Errorf("unknown priority %q", createPriority)
	}

	session, err := api.NewSession(config.Session.Path)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	client := api.NewClient(config.Server.URL, session, log.New(io.Discard, "", 0))

	created, err := client.Create(ctx, draft)
	if err != nil {
		if api.IsUnauthorized(err) {
			return fmt.Errorf("not signed in, run 'incidents login' first")
		}
		return fmt.Errorf("failed to create incident: %w", err)
	}
	fmt.Printf("Created incident #%d: %s\n", created.ID, created.Title)

	// Nudge any running console to reload. Best effort: the record is
	// already created, a trigger failure only delays the refresh.
	trigger := notify.NewTrigger(config.Redis.URL, config.Trigger.Path, log.New(io.Discard, "", 0))
	defer trigger.Close()
	if err := trigger.Fire(ctx); err != nil {
		fmt.Printf("Warning: refresh trigger failed: %v\n", err)
	}
	return nil
}
