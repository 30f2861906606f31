package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lpakula/agent-moderails/internal/task"
)

// taskColors returns the per-segment styles for one list line, keyed by
// status. Completed lines fade into the background so the active task
// stands out.
func taskColors(status task.Status) (statusStyle, idStyle, typeStyle, nameStyle lipgloss.Style) {
	switch status {
	case task.StatusCompleted:
		return StyleSuccess, StyleSubtle, StyleSubtle, StyleSubtle
	case task.StatusInProgress:
		return StyleWarning, StyleText, StyleSuccess, StyleText
	default: // draft
		return StyleDraft, StyleText, StyleSuccess, StyleText
	}
}

// FormatTaskLine renders one task as a colored single line:
//
//	id [type] [status] [epic] [timestamp] - name (githash7)
func FormatTaskLine(t task.Task) string {
	statusStyle, idStyle, typeStyle, nameStyle := taskColors(t.Status)

	parts := []string{
		idStyle.Render(t.ID),
		typeStyle.Render("[" + string(t.Type) + "]"),
		statusStyle.Render("[" + string(t.Status) + "]"),
	}
	if t.EpicName != "" {
		parts = append(parts, StyleEpic.Render("["+t.EpicName+"]"))
	}

	ts := t.CreatedAt
	if t.Status == task.StatusCompleted && !t.CompletedAt.IsZero() {
		ts = t.CompletedAt
	}
	parts = append(parts, StyleText.Render(ts.Format("[2006-01-02 15:04]")))

	parts = append(parts, "-", nameStyle.Render(t.Name))

	if t.GitHash != "" {
		hash := t.GitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		parts = append(parts, StyleHash.Render("("+hash+")"))
	}
	return strings.Join(parts, " ")
}

// TaskTable renders the agent-oriented plain table:
//
//	id     | name | status | epic_id
func TaskTable(tasks []task.Task) string {
	var b strings.Builder
	b.WriteString("id     | name                                             | status      | epic_id\n")
	b.WriteString("-------|--------------------------------------------------|-------------|--------\n")
	for _, t := range tasks {
		name := t.Name
		if len(name) > 50 {
			name = name[:48] + ".."
		}
		fmt.Fprintf(&b, "%s | %-48s | %-11s | %s\n", t.ID, name, t.Status, t.EpicID)
	}
	return strings.TrimRight(b.String(), "\n")
}

// EpicTable renders the agent-oriented epic table.
func EpicTable(epics []*task.Epic) string {
	var b strings.Builder
	b.WriteString("id     | name\n")
	b.WriteString("-------|--------------------------------------------------\n")
	for _, e := range epics {
		line := e.ID + " | " + e.Name
		if len(e.Skills) > 0 {
			line += " [" + strings.Join(e.Skills, ", ") + "]"
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
