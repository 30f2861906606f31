/*
Copyright © 2026 lpakula
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lpakula/agent-moderails/internal/modes"
)

var startRerail bool

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Show the protocol overview and current status",
	Long: `Print the start mode: the protocol overview, the current task, draft
tasks, epics and available skills.

With --rerail, dump the full session context instead (task plan, mandatory
context, current mode) so an agent can resume mid-task without re-running
the workflow prompts.`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVar(&startRerail, "rerail", false, "instant resume: load session context without workflow prompts")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	w, err := openWorkspace()
	if err != nil || w == nil {
		return err
	}
	defer func() { _ = w.Close() }()

	deps := w.ModeDeps()

	// The session can be missing when the database was imported or edited
	// by hand; entering start repairs it.
	if current, err := w.Store.InProgressTask(); err == nil && current != nil {
		if _, err := w.Store.EnsureSession(current.ID); err != nil {
			return err
		}
	}

	if startRerail {
		out, ok, err := modes.Rerail(deps, w.Dir)
		if err != nil {
			return reportDomainError(err)
		}
		if ok {
			cmd.Println(out)
			return nil
		}
		cmd.Println("No in-progress task. Showing full start mode.")
		cmd.Println()
	}

	ctx, err := modes.Build(deps, "start", nil)
	if err != nil {
		return reportDomainError(err)
	}
	cmd.Println(modes.Render(ctx, w.Dir))
	return nil
}
