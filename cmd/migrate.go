package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/podforge/podforge-api/internal/database"
	"github.com/podforge/podforge-api/internal/models"
	"github.com/podforge/podforge-api/pkg/config"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Manage database migrations for the PodForge API.

Migrations are schema-driven: the job table schema is derived from the
model definitions and applied with GORM's auto-migration.

Available subcommands:
  up      - Apply the current schema
  down    - Drop the job table
  status  - Show current schema status`,
}

// migrateUpCmd applies the current schema
var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply the current schema",
	Long: `Apply the current database schema.

This command creates or updates the job table to match the model
definitions, bringing the schema up to date.`,
	RunE: runMigrateUp,
}

// migrateDownCmd drops the job table
var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Drop the job table",
	Long: `Drop the job table from the database.

This removes all queued, running, and finished generation jobs.
The table is recreated empty the next time 'migrate up' or 'serve' runs.`,
	RunE: runMigrateDown,
}

// migrateStatusCmd shows schema status
var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show schema status",
	Long: `Display the current status of the database schema.

This command shows whether the job table exists and how many job
records it currently holds per status.`,
	RunE: runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateStatusCmd)

	migrateCmd.PersistentFlags().Bool("dry-run", false, "show what would be done without making changes")
}

// openDatabase opens the configured database for migration commands
func openDatabase() (*database.DB, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	db, err := database.Initialize(cfg.Database.Path, cfg.Database.Verbose)
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	return db, nil
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if dryRun {
		fmt.Println("Dry run mode - no changes will be made")
		fmt.Println("Would apply schema for: jobs")
		return nil
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}

	if err := db.AutoMigrate(&models.Job{}); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}

	fmt.Println("Schema applied: jobs")
	return nil
}

func runMigrateDown(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if dryRun {
		fmt.Println("Dry run mode - no changes will be made")
		fmt.Println("Would drop table: jobs")
		return nil
	}

	// Confirmation prompt for destructive action
	fmt.Print("WARNING: This will drop the jobs table and all job records. Continue? (y/N): ")
	var response string
	_, _ = fmt.Scanln(&response)
	if response != "y" && response != "Y" {
		fmt.Println("Migration rollback cancelled")
		return nil
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}

	if err := db.DB.Migrator().DropTable(&models.Job{}); err != nil {
		return fmt.Errorf("dropping jobs table: %w", err)
	}

	fmt.Println("Dropped table: jobs")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}

	fmt.Println("Database Migration Status")
	fmt.Println(repeatString("=", 50))

	if !db.DB.Migrator().HasTable(&models.Job{}) {
		fmt.Println("\nJob table: missing (run 'migrate up')")
		return nil
	}

	fmt.Println("\nJob table: present")

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := db.DB.Model(&models.Job{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return fmt.Errorf("counting jobs: %w", err)
	}

	if len(counts) == 0 {
		fmt.Println("No job records")
		return nil
	}
	for _, c := range counts {
		fmt.Printf("  %-12s %d\n", c.Status, c.Count)
	}

	return nil
}

// repeatString repeats a string n times
func repeatString(s string, n int) string {
	if n <= 0 {
		return ""
	}
	result := ""
	for i := 0; i < n; i++ {
		result += s
	}
	return result
}
