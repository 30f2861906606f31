/*
Copyright © 2026 lpakula
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lpakula/agent-moderails/internal/config"
	"github.com/lpakula/agent-moderails/internal/ui"
	"github.com/lpakula/agent-moderails/internal/workspace"
)

var initPrivate bool

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize moderails in the current directory",
	Long: `Create the workspace layout under <base_dir>/moderails: the SQLite
database, the history ledger location and the context directories.
Re-running init on an existing workspace is safe.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initPrivate, "private", false, "private mode: gitignore all moderails files (don't commit to version control)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	w, err := workspace.Init(cwd, initPrivate)
	if err != nil {
		return reportDomainError(fmt.Errorf("initialize workspace: %w", err))
	}
	defer func() { _ = w.Close() }()

	if jsonOutput {
		out, err := json.Marshal(map[string]string{
			"status": "initialized",
			"path":   config.DBPath(w.Dir),
		})
		if err != nil {
			return err
		}
		cmd.Println(string(out))
		return nil
	}

	relDB := config.DBPath(w.Dir)
	if rel, err := filepath.Rel(cwd, relDB); err == nil {
		relDB = rel
	}

	cmd.Println()
	cmd.Println(ui.StyleSuccess.Render("✓ ModeRails initialized successfully!"))
	if initPrivate {
		cmd.Println(ui.StyleWarning.Render("  🔒 Private mode: all moderails files are gitignored"))
	}
	cmd.Println()
	cmd.Printf("  Database:  %s\n", ui.StyleEpic.Render(relDB))
	cmd.Println()
	cmd.Println("Getting started:")
	cmd.Println()
	cmd.Printf("  %s - see the protocol and current status\n", ui.StyleSuccess.Render("moderails start"))
	cmd.Printf("  %s - see all tasks\n", ui.StyleSuccess.Render("moderails list"))
	cmd.Printf("  %s - see all epics\n", ui.StyleSuccess.Render("moderails epic list"))
	cmd.Println()
	return nil
}
