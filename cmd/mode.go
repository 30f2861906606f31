/*
Copyright © 2026 lpakula
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lpakula/agent-moderails/internal/modes"
)

var modeName string

// modeCmd represents the mode command
var modeCmd = &cobra.Command{
	Use:   "mode",
	Short: "Print a mode definition with dynamic context",
	Long: `Render the named mode body with the current workspace state injected.
Use when switching modes (e.g. #execute --no-confirmation).

Unknown --flags are not errors: they are stripped of the leading dashes
and passed to the template as mode flags.`,
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	RunE:               runMode,
}

func init() {
	modeCmd.Flags().StringVarP(&modeName, "name", "n", "", "mode name (required)")
	_ = modeCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(modeCmd)
}

// switchableModes excludes start, which has its own command.
var switchableModes = []string{"fast", "research", "brainstorm", "plan", "execute", "complete", "abort"}

func runMode(cmd *cobra.Command, args []string) error {
	valid := false
	for _, m := range switchableModes {
		if modeName == m {
			valid = true
			break
		}
	}
	if !valid {
		fmt.Printf("❌ Invalid mode. Valid modes: %s\n", strings.Join(switchableModes, ", "))
		return nil
	}

	// Unknown options survive into args; --no-confirmation becomes the
	// template flag "no-confirmation".
	var flags []string
	for _, arg := range args {
		if strings.HasPrefix(arg, "--") {
			flags = append(flags, strings.TrimPrefix(arg, "--"))
		}
	}

	w, err := openWorkspace()
	if err != nil || w == nil {
		return err
	}
	defer func() { _ = w.Close() }()

	ctx, err := modes.Build(w.ModeDeps(), modeName, flags)
	if err != nil {
		return reportDomainError(err)
	}

	// Record where the agent is. Quietly skipped when nothing is in
	// progress.
	if _, err := w.Store.SetSessionMode(modeName); err != nil {
		return err
	}

	cmd.Println(modes.Render(ctx, w.Dir))
	return nil
}
