package modes

import (
	"fmt"
	"strings"
)

// Rerail builds the instant-resume dump for an interrupted session:
// everything the agent needs to pick up exactly where it left off,
// without walking the workflow prompts again. Returns false when no task
// is in-progress.
func Rerail(deps Deps, workspaceDir string) (string, bool, error) {
	t, err := deps.Store.InProgressTask()
	if err != nil {
		return "", false, err
	}
	if t == nil {
		return "", false, nil
	}
	sess, err := deps.Store.EnsureSession(t.ID)
	if err != nil {
		return "", false, err
	}

	var out []string
	out = append(out, "# Moderails Session\n")
	if deps.ProjectRoot != "" {
		out = append(out, fmt.Sprintf("**Project**: `%s`", deps.ProjectRoot))
	}
	out = append(out, fmt.Sprintf("**Task**: %s (`%s`) [%s]", t.Name, t.ID, t.Status))
	if t.EpicName != "" {
		out = append(out, fmt.Sprintf("**Epic**: %s (`%s`)", t.EpicName, t.EpicID))
	}
	mode := sess.CurrentMode
	out = append(out, fmt.Sprintf("**Mode**: %s", strings.ToUpper(mode)))
	out = append(out, "", "---\n")

	if protocol := Protocol(workspaceDir); protocol != "" {
		out = append(out, protocol, "", "---\n")
	}

	if mandatory := deps.Knowledge.MandatoryContext(); mandatory != "" {
		out = append(out, mandatory, "", "---\n")
	}

	if t.EpicID != "" {
		if epic, err := deps.Store.GetEpic(t.EpicID); err == nil && len(epic.Skills) > 0 {
			out = append(out, fmt.Sprintf("## Epic Skills (%s)\n", epic.Name))
			for _, skill := range epic.Skills {
				out = append(out, fmt.Sprintf("- %s (skills/%s/SKILL.md)", skill, skill))
			}
			out = append(out, "", "---\n")
		}
	}

	if t.FileName != "" {
		if content, err := deps.Store.PlanFileContent(t.ID); err == nil && content != "" {
			out = append(out, "## Task Plan\n")
			out = append(out, fmt.Sprintf("File: `%s`\n", t.FileName))
			out = append(out, content, "", "---\n")
		}
	}

	// The protocol above already covers start mode.
	if mode != "start" {
		ctx, err := Build(deps, mode, nil)
		if err != nil {
			return "", false, err
		}
		out = append(out, fmt.Sprintf("## Current Mode: %s\n", strings.ToUpper(mode)))
		out = append(out, Render(ctx, workspaceDir), "", "---\n")
	}

	out = append(out, "## Resume\n")
	if mode == "start" {
		out = append(out,
			"Session loaded. Ask the user to describe the task in more detail before proceeding.",
			"Once you understand the requirements, switch to research mode to begin analysis.")
	} else {
		out = append(out, fmt.Sprintf(
			"Current mode is `%s`. Ask the user what to do next before taking any action.",
			strings.ToUpper(mode)))
	}

	return strings.Join(out, "\n"), true, nil
}
