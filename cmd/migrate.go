/*
Copyright © 2026 lpakula
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lpakula/agent-moderails/internal/store"
	"github.com/lpakula/agent-moderails/internal/ui"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations to the latest schema version",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	w, err := openWorkspace()
	if err != nil || w == nil {
		// Unlike other commands, a missing database here is an operational
		// failure worth a non-zero exit.
		if w == nil && err == nil {
			os.Exit(1)
		}
		return err
	}
	defer func() { _ = w.Close() }()

	if !w.HasDatabase() {
		fmt.Println(ui.StyleError.Render("✗ No database found. Run: moderails init"))
		os.Exit(1)
	}

	current, err := w.Store.SchemaVersion()
	if err != nil {
		HandleFatalError("✗ Could not read schema version", err)
	}
	cmd.Printf("Current schema version: %d\n", current)
	cmd.Printf("Latest schema version: %d\n", store.LatestSchemaVersion)

	if current >= store.LatestSchemaVersion {
		cmd.Println(ui.StyleSuccess.Render("✓ Database is up to date"))
		return nil
	}

	cmd.Println("\nApplying migrations...")
	if err := w.Store.Migrate(); err != nil {
		HandleFatalError("✗ Migration failed", err)
	}
	cmd.Println(ui.StyleSuccess.Render("✓ Database migrated successfully"))
	return nil
}
