/*
Copyright © 2026 lpakula
*/
package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/lpakula/agent-moderails/internal/ui"
)

// epicCmd groups the epic management commands.
var epicCmd = &cobra.Command{
	Use:   "epic",
	Short: "Epic management commands",
}

var (
	epicCreateName   string
	epicCreateSkills []string
)

var epicCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new epic with optional skills",
	RunE:  runEpicCreate,
}

var (
	epicUpdateID          string
	epicUpdateName        string
	epicUpdateAddSkill    string
	epicUpdateRemoveSkill string
)

var epicUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update epic name or manage skills",
	RunE:  runEpicUpdate,
}

var epicListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all epics as a simple table (for agents)",
	RunE:  runEpicList,
}

var (
	epicLoadID    string
	epicLoadShort bool
)

var epicLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load epic context (completed tasks, summaries, and changes)",
	RunE:  runEpicLoad,
}

func init() {
	epicCreateCmd.Flags().StringVarP(&epicCreateName, "name", "n", "", "epic name (slug, required)")
	epicCreateCmd.Flags().StringSliceVarP(&epicCreateSkills, "skills", "s", nil, "skills to assign (can be repeated)")
	_ = epicCreateCmd.MarkFlagRequired("name")

	epicUpdateCmd.Flags().StringVarP(&epicUpdateID, "id", "i", "", "epic ID (6-character, required)")
	epicUpdateCmd.Flags().StringVarP(&epicUpdateName, "name", "n", "", "new epic name")
	epicUpdateCmd.Flags().StringVar(&epicUpdateAddSkill, "add-skill", "", "add a skill to this epic")
	epicUpdateCmd.Flags().StringVar(&epicUpdateRemoveSkill, "remove-skill", "", "remove a skill from this epic")
	_ = epicUpdateCmd.MarkFlagRequired("id")

	epicLoadCmd.Flags().StringVarP(&epicLoadID, "id", "i", "", "epic ID or name (required)")
	epicLoadCmd.Flags().BoolVarP(&epicLoadShort, "short", "s", false, "show only filenames instead of full diffs")
	_ = epicLoadCmd.MarkFlagRequired("id")

	epicCmd.AddCommand(epicCreateCmd, epicUpdateCmd, epicListCmd, epicLoadCmd)
	rootCmd.AddCommand(epicCmd)
}

func runEpicCreate(cmd *cobra.Command, args []string) error {
	w, err := openWorkspace()
	if err != nil || w == nil {
		return err
	}
	defer func() { _ = w.Close() }()

	e, err := w.Store.CreateEpic(epicCreateName)
	if err != nil {
		return reportDomainError(err)
	}

	if len(epicCreateSkills) > 0 {
		available := w.Knowledge.ListSkills()
		var assigned, invalid []string
		for _, skill := range epicCreateSkills {
			if containsString(available, skill) {
				if e.AddSkill(skill) {
					assigned = append(assigned, skill)
				}
			} else {
				invalid = append(invalid, skill)
			}
		}
		if len(assigned) > 0 {
			if e, err = w.Store.UpdateEpicSkills(e.ID, e.Skills); err != nil {
				return reportDomainError(err)
			}
		}
		if len(invalid) > 0 {
			cmd.Printf("⚠️  Unknown skills ignored: %s\n", strings.Join(invalid, ", "))
			cmd.Printf("   Available: %s\n", availableOrNone(available))
		}
	}

	cmd.Printf("✅ Created epic: %s - %s\n", e.ID, e.Name)
	if len(e.Skills) > 0 {
		cmd.Printf("   Skills: %s\n", strings.Join(e.Skills, ", "))
	}
	return nil
}

func runEpicUpdate(cmd *cobra.Command, args []string) error {
	if epicUpdateName == "" && epicUpdateAddSkill == "" && epicUpdateRemoveSkill == "" {
		cmd.Println("❌ Provide --name, --add-skill, or --remove-skill")
		return nil
	}

	w, err := openWorkspace()
	if err != nil || w == nil {
		return err
	}
	defer func() { _ = w.Close() }()

	e, err := w.Store.GetEpic(epicUpdateID)
	if err != nil {
		return reportDomainError(err)
	}

	if epicUpdateName != "" {
		if e, err = w.Store.RenameEpic(e.ID, epicUpdateName); err != nil {
			return reportDomainError(err)
		}
		cmd.Printf("✅ Updated epic: %s - %s\n", e.ID, e.Name)
	}

	if epicUpdateAddSkill != "" {
		available := w.Knowledge.ListSkills()
		if !containsString(available, epicUpdateAddSkill) {
			cmd.Printf("❌ Skill '%s' not found in skills/ directory\n", epicUpdateAddSkill)
			cmd.Printf("Available: %s\n", availableOrNone(available))
			return nil
		}
		if e.AddSkill(epicUpdateAddSkill) {
			if e, err = w.Store.UpdateEpicSkills(e.ID, e.Skills); err != nil {
				return reportDomainError(err)
			}
			cmd.Printf("✅ Added skill '%s' to epic: %s\n", epicUpdateAddSkill, e.Name)
		} else {
			cmd.Printf("ℹ️  Skill '%s' already assigned to epic\n", epicUpdateAddSkill)
		}
	}

	if epicUpdateRemoveSkill != "" {
		if e.RemoveSkill(epicUpdateRemoveSkill) {
			if e, err = w.Store.UpdateEpicSkills(e.ID, e.Skills); err != nil {
				return reportDomainError(err)
			}
			cmd.Printf("✅ Removed skill '%s' from epic: %s\n", epicUpdateRemoveSkill, e.Name)
		} else {
			cmd.Printf("ℹ️  Skill '%s' was not assigned to epic\n", epicUpdateRemoveSkill)
		}
	}

	if len(e.Skills) > 0 {
		cmd.Printf("   Skills: %s\n", strings.Join(e.Skills, ", "))
	}
	return nil
}

func runEpicList(cmd *cobra.Command, args []string) error {
	w, err := openWorkspace()
	if err != nil || w == nil {
		return err
	}
	defer func() { _ = w.Close() }()

	epics, err := w.Store.ListEpics()
	if err != nil {
		return reportDomainError(err)
	}
	if len(epics) == 0 {
		cmd.Println("No epics found.")
		return nil
	}
	cmd.Println(ui.EpicTable(epics))
	return nil
}

func runEpicLoad(cmd *cobra.Command, args []string) error {
	w, err := openWorkspace()
	if err != nil || w == nil {
		return err
	}
	defer func() { _ = w.Close() }()

	summary, err := w.EpicSummary(epicLoadID, epicLoadShort)
	if err != nil {
		return reportDomainError(err)
	}
	cmd.Println(summary)
	return nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func availableOrNone(skills []string) string {
	if len(skills) == 0 {
		return "none"
	}
	return strings.Join(skills, ", ")
}
