/*
Copyright © 2026 lpakula
*/
package cmd

import (
	"github.com/spf13/cobra"
)

var syncForce bool

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Manually sync tasks from history.jsonl",
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "force sync even if the file hasn't changed")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	w, err := openWorkspace()
	if err != nil || w == nil {
		return err
	}
	defer func() { _ = w.Close() }()

	var imported int
	if syncForce {
		imported, err = w.Ledger.ForceSync()
	} else {
		imported, err = w.Ledger.SyncFromFile()
	}
	if err != nil {
		return err
	}

	if imported > 0 {
		cmd.Printf("✅ Imported %d tasks from history.jsonl\n", imported)
	} else {
		cmd.Println("✓ Already in sync")
	}
	return nil
}
