/*
Copyright © 2026 lpakula
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lpakula/agent-moderails/internal/task"
	"github.com/lpakula/agent-moderails/internal/ui"
)

var (
	listStatus   string
	listEpicName string
	listOrder    string
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tasks (completed first, active at the bottom)",
	Long: `List tasks as colored single lines:

  id [type] [status] [epic] [timestamp] - name (githash)

The default order keeps the in-progress task at the bottom, right above
the prompt; pass --order active-first to invert it.`,
	RunE: runListTasks,
}

func init() {
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "filter by status (draft, in-progress, completed)")
	listCmd.Flags().StringVarP(&listEpicName, "epic-name", "e", "", "filter by epic name")
	listCmd.Flags().StringVar(&listOrder, "order", "", "listing order (completed-first, active-first)")
	rootCmd.AddCommand(listCmd)
}

func runListTasks(cmd *cobra.Command, args []string) error {
	policy, err := task.ParseSortPolicy(listOrder)
	if err != nil {
		return reportDomainError(err)
	}
	var status task.Status
	if listStatus != "" {
		if status, err = task.ParseStatus(listStatus); err != nil {
			return reportDomainError(err)
		}
	}

	w, err := openWorkspace()
	if err != nil || w == nil {
		return err
	}
	defer func() { _ = w.Close() }()

	tasks, err := w.Store.ListTasks(listEpicName, status)
	if err != nil {
		return reportDomainError(err)
	}
	if len(tasks) == 0 {
		cmd.Println("No tasks found.")
		return nil
	}

	task.Sort(tasks, policy)
	for _, t := range tasks {
		fmt.Println(ui.FormatTaskLine(t))
	}
	return nil
}
