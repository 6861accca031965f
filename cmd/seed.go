package cmd

import (
	"context"
	"fmt"
	"log"

	appErrors "github.com/frahmantamala/permit-service/internal"
	"github.com/frahmantamala/permit-service/internal/permit"
	"github.com/frahmantamala/permit-service/internal/user"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with a demo user and permit for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		deps, err := initializeDependencies(ctx)
		if err != nil {
			log.Fatalf("failed to init dependencies: %v", err)
		}
		defer deps.DB.Close()

		if clearData {
			if _, err := deps.DB.ExecContext(ctx, "TRUNCATE kplc_permits, users RESTART IDENTITY"); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared permits and users")
		}

		if err := seedDemoData(ctx, deps.UserService, deps.PermitService); err != nil {
			log.Fatalf("failed to seed: %v", err)
		}

		if err := deps.EventBus.Wait(ctx); err != nil {
			log.Printf("event handlers did not finish: %v", err)
		}
	},
}

func seedDemoData(ctx context.Context, users *user.Service, permits *permit.Service) error {
	demo := user.CreateUserDTO{Name: "Demo Operator", Email: "operator@kplc.example", IDNumber: "12345678"}
	if _, _, err := users.Create(ctx, demo); err != nil {
		if !isConflict(err) {
			return fmt.Errorf("seed user: %w", err)
		}
		fmt.Println("demo user already exists:", demo.Email)
	} else {
		fmt.Println("Seeded demo user:", demo.Email)
	}

	payload := permit.Payload{
		permit.FieldPermitNumber:  "DEMO-0001",
		permit.FieldIssuedTo:      "Demo Operator",
		permit.FieldSubstation:    "Juja Road",
		permit.FieldUrgency:       "normal",
		permit.FieldStatus:        "pending",
		permit.FieldConsentPerson: "Shift Engineer",
		permit.FieldWorkDetails:   []any{map[string]any{"task": "replace insulator", "feeder": "F12"}},
		permit.FieldEarthPoints:   []any{map[string]any{"loc": "A"}, map[string]any{"loc": "B"}},
		permit.FieldIssueDate:     "2024-01-15",
		permit.FieldIssueTime:     "08:00",
	}
	id, err := permits.Create(ctx, payload)
	if err != nil {
		if !isConflict(err) {
			return fmt.Errorf("seed permit: %w", err)
		}
		fmt.Println("demo permit already exists:", payload[permit.FieldPermitNumber])
		return nil
	}
	fmt.Println("Seeded demo permit:", id)
	return nil
}

func isConflict(err error) bool {
	appErr, ok := appErrors.AsAppError(err)
	return ok && appErr.Type == appErrors.ErrorTypeConflict
}
