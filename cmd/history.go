/*
Copyright © 2026 lpakula
*/
package cmd

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lpakula/agent-moderails/internal/history"
)

// historyCmd groups ledger queries.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query the completed-task ledger",
}

var (
	historySearchQuery string
	historySearchFile  string
)

var historySearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search completed tasks by query or touched file",
	Long: `Search the store and history.jsonl for past work.

--query supports OR-semantics across pipe-delimited terms, matched
case-insensitively against task names and summaries:

  moderails history search --query "auth|login"

--file matches tasks that touched the given path.`,
	RunE: runHistorySearch,
}

func init() {
	historySearchCmd.Flags().StringVarP(&historySearchQuery, "query", "q", "", "pipe-delimited search terms")
	historySearchCmd.Flags().StringVarP(&historySearchFile, "file", "f", "", "file path to match against files changed")

	historyCmd.AddCommand(historySearchCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistorySearch(cmd *cobra.Command, args []string) error {
	if historySearchQuery == "" && historySearchFile == "" {
		cmd.Println("❌ Provide --query or --file")
		return nil
	}

	w, err := openWorkspace()
	if err != nil || w == nil {
		return err
	}
	defer func() { _ = w.Close() }()

	var results []history.Result
	if historySearchQuery != "" {
		results, err = w.Ledger.SearchByQuery(historySearchQuery)
	} else {
		results, err = w.Ledger.SearchByFile(historySearchFile)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		out, err := json.Marshal(results)
		if err != nil {
			return err
		}
		cmd.Println(string(out))
		return nil
	}

	if len(results) == 0 {
		cmd.Println("No matching tasks found.")
		return nil
	}
	for _, r := range results {
		line := "- " + r.Name
		if r.Summary != "" {
			line += ": " + r.Summary
		}
		var meta []string
		if r.Epic != "" {
			meta = append(meta, "epic "+r.Epic)
		}
		if r.CompletedAt != "" {
			meta = append(meta, r.CompletedAt)
		}
		if len(meta) > 0 {
			line += " (" + strings.Join(meta, ", ") + ")"
		}
		cmd.Println(line)
		for _, f := range r.FilesChanged {
			cmd.Println("    " + f)
		}
	}
	return nil
}
