/*
Copyright © 2026 lpakula
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lpakula/agent-moderails/internal/config"
	"github.com/lpakula/agent-moderails/internal/workspace"
)

var (
	// verbose enables technical error output.
	verbose bool
	// jsonOutput switches machine-readable output where a command supports it.
	jsonOutput bool
	// version is the application version.
	version = "0.3.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "moderails",
	Short:   "Structured agent workflow with persistent memory.",
	Version: version,
	Long: `moderails maintains a workflow ledger for AI coding agents: epics, tasks,
sessions and a mode-driven protocol (research, plan, execute, complete).

Run 'moderails init' once per project, then 'moderails start' to begin.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			os.Exit(0)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "machine-readable output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		switch cmd.Name() {
		case "init", "migrate", "help", "completion", cobra.ShellCompRequestCmd:
			return
		}
		preflight()
	}
}

// preflight runs before every workspace command: migrate the schema if
// needed, then quietly pick up ledger entries written by other checkouts.
// A missing workspace is not an error here; the command itself reports it.
func preflight() {
	w, err := workspace.Open()
	if err != nil {
		return
	}
	defer func() { _ = w.Close() }()

	migrate, err := w.Store.NeedsMigration()
	if err == nil && migrate {
		if err := w.Store.Migrate(); err != nil {
			LogError("auto-migrate", err)
			return
		}
		fmt.Println("✓ Database migrated to latest schema")
	}

	if imported, err := w.Ledger.SyncFromFile(); err == nil && imported > 0 {
		fmt.Fprintf(os.Stderr, "✓ Synced %d tasks from history.jsonl\n", imported)
	}
}

// openWorkspace opens the discovered workspace. A missing workspace prints
// the canonical hint and returns a nil workspace with a nil error; callers
// bail out quietly so agents get exit code 0.
func openWorkspace() (*workspace.Workspace, error) {
	w, err := workspace.Open()
	if errors.Is(err, config.ErrNotFound) {
		fmt.Println("❌ No moderails database found. Run `moderails init` first.")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}
