package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/airline/cmd/airline/output"
	"github.com/marshallshelly/airline/pkg/migration"
	"github.com/marshallshelly/airline/pkg/runtime"
)

var (
	// Migrate flags
	dryRun bool
	steps  int
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the airline schema",
	Long: `Create or remove the airline tables, sequences and triggers.

Subcommands:
  up      - Apply pending migrations
  down    - Rollback migrations
  status  - Show migration status`,
}

// migrateUpCmd applies pending migrations
var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	Long: `Apply every pending migration in version order.

Examples:
  airline migrate up             # Create the schema
  airline migrate up --dry-run   # Preview without applying`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateUp(cmd.Context())
	},
}

// migrateDownCmd rolls back migrations
var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Rollback migrations",
	Long: `Rollback the most recently applied migrations. This drops tables and
everything in them.

Examples:
  airline migrate down           # Rollback the last migration
  airline migrate down --steps 2 # Rollback the last two
  airline migrate down --dry-run # Preview without executing`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateDown(cmd.Context())
	},
}

// migrateStatusCmd shows migration status
var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	Long: `Show the status of all migrations (pending, applied, failed).

Examples:
  airline migrate status         # Show migration status
  airline migrate status --json  # Output in JSON format`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateStatus(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)

	migrateUpCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview migrations without applying")
	migrateDownCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview rollback without executing")
	migrateDownCmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to rollback")
}

// withMigrations connects, prepares the tracking table and loads the
// embedded migrations.
func withMigrations(ctx context.Context, fn func(exec *migration.Executor, migrations []migration.Migration) error) error {
	migrations, err := migration.Load()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	exec := migration.NewExecutor(db, logger)
	if err := exec.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	return fn(exec, migrations)
}

func runMigrateUp(ctx context.Context) error {
	return withMigrations(ctx, func(exec *migration.Executor, migrations []migration.Migration) error {
		if dryRun {
			status, err := exec.Status(ctx, migrations)
			if err != nil {
				return err
			}
			output.Section("DRY RUN - Preview")
			pending := 0
			for _, r := range status {
				if r.Status != migration.StatusApplied {
					output.Info("%s %s - %s", output.StatusIcon(string(migration.StatusPending)), r.Version, r.Name)
					pending++
				}
			}
			if pending == 0 {
				output.Info("No pending migrations")
			}
			return nil
		}

		output.Section("Applying Migrations")
		applied, err := exec.ApplyAll(ctx, migrations)
		for _, m := range applied {
			output.Success("Applied %s - %s", m.Version, m.Name)
		}
		if err != nil {
			return err
		}

		if len(applied) == 0 {
			output.Info("No pending migrations")
			return nil
		}
		output.Success("Successfully applied %d migration(s)", len(applied))
		return nil
	})
}

func runMigrateDown(ctx context.Context) error {
	if steps < 1 {
		return &runtime.ValidationError{Field: "steps", Message: "must be at least 1"}
	}

	return withMigrations(ctx, func(exec *migration.Executor, migrations []migration.Migration) error {
		if dryRun {
			records, err := exec.Records(ctx)
			if err != nil {
				return err
			}
			output.Section("DRY RUN - Preview")
			shown := 0
			for i := len(records) - 1; i >= 0 && shown < steps; i-- {
				if records[i].Status == migration.StatusApplied {
					output.Warning("Would roll back %s - %s", records[i].Version, records[i].Name)
					shown++
				}
			}
			if shown == 0 {
				output.Info("No migrations to rollback")
			}
			return nil
		}

		output.Section("Rolling Back Migrations")
		rolled := 0
		for range steps {
			m, err := exec.RollbackLast(ctx, migrations)
			if err != nil {
				return err
			}
			if m == nil {
				break
			}
			output.Success("Rolled back %s - %s", m.Version, m.Name)
			rolled++
		}

		if rolled == 0 {
			output.Info("No migrations to rollback")
			return nil
		}
		output.Success("Successfully rolled back %d migration(s)", rolled)
		return nil
	})
}

func runMigrateStatus(ctx context.Context) error {
	return withMigrations(ctx, func(exec *migration.Executor, migrations []migration.Migration) error {
		status, err := exec.Status(ctx, migrations)
		if err != nil {
			return fmt.Errorf("failed to get migration status: %w", err)
		}

		if jsonOutput {
			return output.JSON(output.Out, status)
		}

		rows := make([][]string, len(status))
		var applied, pending, failed int
		for i, r := range status {
			appliedAt := "N/A"
			if r.AppliedAt != nil {
				appliedAt = r.AppliedAt.Format("2006-01-02 15:04:05")
			}
			rows[i] = []string{r.Version, r.Name, output.StatusIcon(string(r.Status)) + " " + string(r.Status), appliedAt}

			switch r.Status {
			case migration.StatusApplied:
				applied++
			case migration.StatusFailed:
				failed++
			default:
				pending++
			}
		}
		if err := output.Table(output.Out, []string{"VERSION", "NAME", "STATUS", "APPLIED AT"}, rows); err != nil {
			return err
		}

		summary := fmt.Sprintf("Summary: %d applied, %d pending", applied, pending)
		if failed > 0 {
			summary += fmt.Sprintf(", %d failed", failed)
		}
		output.Muted("\n%s", summary)
		return nil
	})
}
