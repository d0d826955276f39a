package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/devbyilmir/incidents-manager/internal/incident"
	"github.com/devbyilmir/incidents-manager/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed sample accounts and incidents into the database",
	Long: `Seed a sample operator account and a few incidents into the SQLite
database. Useful for trying the console locally before anyone has
registered.

The seeded account is operator@plant.local with password "operator".`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config := GetConfig()

	logger := log.New(cmd.OutOrStdout(), "[seed] ", log.LstdFlags)
	logger.Println("Seeding sample data...")

	st, err := store.NewStore(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	user, err := st.GetUserByEmail(ctx, "operator@plant.local")
	if err == store.ErrNotFound {
		hashed, err := bcrypt.GenerateFromPassword([]byte("operator"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		id, err := st.CreateUser(ctx, "operator@plant.local", "Duty Operator", "operator", string(hashed))
		if err != nil {
			return fmt.Errorf("failed to create sample user: %w", err)
		}
		user, err = st.GetUserByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to reload sample user: %w", err)
		}
		logger.Printf("Created sample account %s", user.Email)
	} else if err != nil {
		return fmt.Errorf("failed to check sample user: %w", err)
	} else {
		logger.Printf("Sample account %s already exists", user.Email)
	}

	existing, err := st.ListIncidents(ctx)
	if err != nil {
		return fmt.Errorf("failed to list incidents: %w", err)
	}
	if len(existing) > 0 {
		logger.Printf("Database already has %d incidents, skipping incident seed", len(existing))
		return nil
	}

	samples := []incident.Draft{
		{
			Title:       "Gas odor near compressor station 2",
			Description: "Operator reported a persistent gas odor during the night round. Concentration below alarm threshold but rising.",
			Type:        incident.TypeGasBuildup,
			Priority:    incident.PriorityCritical,
			Location:    "Compressor station 2",
		},
		{
			Title:       "Condensate pump vibration above limit",
			Description: "Vibration sensors on pump P-301 exceed the warning band. Bearing wear suspected.",
			Type:        incident.TypeEquipmentFailure,
			Priority:    incident.PriorityHigh,
			Location:    "Pump house",
		},
		{
			Title:       "PLC losing link to flow transmitter",
			Description: "Intermittent communication faults between the station PLC and FT-112 since the last firmware update.",
			Type:        incident.TypeAutomationFault,
			Priority:    incident.PriorityMedium,
			Location:    "Metering skid",
		},
		{
			Title:       "Surface rust on pipeline support bracket",
			Description: "Visual inspection found corrosion on a support bracket at kilometer 14. No wall loss measured yet.",
			Type:        incident.TypeCorrosion,
			Priority:    incident.PriorityLow,
			Location:    "Pipeline km 14",
		},
	}

	for _, draft := range samples {
		created, err := st.CreateIncident(ctx, draft, user.ID)
		if err != nil {
			logger.Printf("Failed to create sample incident: %v", err)
			continue
		}
		logger.Printf("Created incident #%d: %s", created.ID, created.Title)
	}

	logger.Println("Seeding completed")
	return nil
}
