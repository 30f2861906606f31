package workspace

import (
	"sort"
	"strings"

	"github.com/lpakula/agent-moderails/internal/git"
	"github.com/lpakula/agent-moderails/internal/task"
)

// EpicSummary assembles the context an agent gets when it loads an epic:
// the completed task summaries in completion order, followed by the
// commit diffs of those tasks. With short set, the diffs collapse to a
// flat list of touched files.
func (w *Workspace) EpicSummary(epicRef string, short bool) (string, error) {
	epic, err := w.Store.GetEpic(epicRef)
	if err != nil {
		return "", err
	}

	tasks, err := w.Store.ListTasks(epic.Name, task.StatusCompleted)
	if err != nil {
		return "", err
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CompletedAt.Before(tasks[j].CompletedAt)
	})

	if len(tasks) == 0 {
		return "# Epic: " + epic.Name + "\n\nNo completed tasks yet.", nil
	}

	var b strings.Builder
	b.WriteString("# Epic: " + epic.Name + "\n")
	var hashes []string
	for _, t := range tasks {
		b.WriteString("\n- **" + t.Name + "**: " + t.Summary)
		if t.GitHash != "" {
			hashes = append(hashes, t.GitHash)
		}
	}

	if len(hashes) > 0 && w.Git.IsRepository() {
		var changes string
		if short {
			changes = git.EpicFilesChanged(w.Git, hashes)
		} else {
			changes = git.FormatEpicDiff(w.Git, hashes)
		}
		if changes != "" {
			b.WriteString("\n\n## Changes\n\n" + changes)
		}
	}
	return b.String(), nil
}
