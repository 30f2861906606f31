package modes

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/lpakula/agent-moderails/internal/task"
)

// Render merges a mode context into its template. Rendering never aborts
// a command: on template failure the raw template body is returned with
// an inline error marker appended.
func Render(ctx Context, workspaceDir string) string {
	body := Template(ctx.Name(), workspaceDir)
	return renderBody(ctx.Name(), body, ctx, workspaceDir)
}

// Protocol returns the shared protocol partial.
func Protocol(workspaceDir string) string {
	return Template("protocol", workspaceDir)
}

// RenderTaskPlan produces the initial content of a task's plan file.
func RenderTaskPlan(t *task.Task) string {
	tmpl, err := template.New("task-plan").Parse(templateRegistry["task-plan"].defaultContent)
	if err != nil {
		return "# " + t.Name + "\n"
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, t); err != nil {
		return "# " + t.Name + "\n"
	}
	return b.String()
}

func renderBody(name, body string, data any, workspaceDir string) string {
	tmpl, err := template.New(name).Parse(body)
	if err != nil {
		return fallback(body, err)
	}
	// The start template pulls in the protocol partial.
	if _, err := tmpl.New("protocol").Parse(Template("protocol", workspaceDir)); err != nil {
		return fallback(body, err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return fallback(body, err)
	}
	return collapseBlankLines(b.String())
}

func fallback(body string, err error) string {
	return body + fmt.Sprintf("\n\n<!-- template error: %v -->", err)
}

// collapseBlankLines squeezes runs of blank lines left behind by template
// conditionals down to a single one.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if blank {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n") + "\n"
}
