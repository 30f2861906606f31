package modes

import (
	"os"
	"path/filepath"
)

// Mode names accepted by the mode command. Order matters: it is the
// intended workflow order and drives the full-protocol rendering.
var Order = []string{"start", "research", "brainstorm", "plan", "execute", "complete", "abort", "fast"}

// IsValid reports whether name is a known mode.
func IsValid(name string) bool {
	for _, m := range Order {
		if m == name {
			return true
		}
	}
	return false
}

// templateConfig pairs a default template with the filename a user can
// drop under <workspace>/templates/ to override it.
type templateConfig struct {
	defaultContent string
	filename       string
}

var templateRegistry = map[string]templateConfig{
	"start":      {startTemplate, "start.md"},
	"research":   {researchTemplate, "research.md"},
	"brainstorm": {brainstormTemplate, "brainstorm.md"},
	"plan":       {planTemplate, "plan.md"},
	"execute":    {executeTemplate, "execute.md"},
	"complete":   {completeTemplate, "complete.md"},
	"abort":      {abortTemplate, "abort.md"},
	"fast":       {fastTemplate, "fast.md"},
	"task-plan":  {taskPlanTemplate, "task-plan.md"},
	"protocol":   {protocolPartial, "protocol.md"},
}

// Template returns the template body for a mode, preferring a user
// override file under <workspaceDir>/templates/ when one exists.
func Template(name, workspaceDir string) string {
	cfg, ok := templateRegistry[name]
	if !ok {
		return ""
	}
	if workspaceDir != "" {
		custom := filepath.Join(workspaceDir, "templates", cfg.filename)
		if data, err := os.ReadFile(custom); err == nil {
			return string(data)
		}
	}
	return cfg.defaultContent
}

const protocolPartial = `## Protocol

You are working inside a mode-driven workflow. Modes are switched with
` + "`moderails mode --name <mode>`" + ` and follow this lifecycle:

research -> plan -> execute -> complete

Rules:
- Exactly one task is in-progress at a time. Finish or abort it before
  starting another.
- Record decisions and findings in the task plan file, not in chat.
- Update the task summary before completing it. The summary is exported
  to the shared history and must describe what changed and why.
- Never skip plan mode for non-trivial work.`

const startTemplate = `# ModeRails
{{if .ProjectRoot}}
Project: ` + "`{{.ProjectRoot}}`" + `
{{end}}
{{template "protocol" .}}

## Current State
{{if .CurrentTask}}
Task in progress: **{{.CurrentTask.Name}}** (` + "`{{.CurrentTask.ID}}`" + `) [{{.CurrentTask.Type}}]
{{- if .CurrentTask.EpicName}}
Epic: {{.CurrentTask.EpicName}} (` + "`{{.CurrentTask.EpicID}}`" + `)
{{- end}}

Continue with ` + "`moderails mode --name research`" + ` or resume where you left
off with ` + "`moderails start --rerail`" + `.
{{else}}
No task is in progress.
{{end}}
{{if .DraftTasks}}
## Draft Tasks
{{range .DraftTasks}}
- {{.Name}} (` + "`{{.ID}}`" + `){{if .Description}} - {{.Description}}{{end}}
{{- end}}

Pick one up with ` + "`moderails task update --id <id> --status in-progress`" + `.
{{end}}
{{if .Epics}}
## Epics
{{range .Epics}}
- {{.Name}} (` + "`{{.ID}}`" + `)
{{- end}}
{{end}}
{{if .Skills}}
## Skills
{{range .Skills}}
- {{.}}
{{- end}}
{{end}}
## Next

Describe the task you want to work on. Create it with:

` + "```sh" + `
moderails task create --name "<short name>" [--epic <epic-id>] [--type feature|fix|refactor|chore]
` + "```" + ``

const researchTemplate = `# Mode: RESEARCH

Understand the problem before touching code. Read, do not write.
{{if .CurrentTask}}
Task: **{{.CurrentTask.Name}}** (` + "`{{.CurrentTask.ID}}`" + `)
{{- if .CurrentTask.Description}}
Description: {{.CurrentTask.Description}}
{{- end}}
{{end}}
{{if .EpicContext}}
{{.EpicContext}}
{{end}}
{{if .MandatoryContext}}
{{.MandatoryContext}}
{{end}}
{{if .Memories}}
## Memories

Load relevant memories before exploring from scratch:
{{range .Memories}}
- {{.}}
{{- end}}

` + "```sh" + `
moderails context load --memory <name>
` + "```" + `
{{end}}
{{if .FilesTree}}
## Files Touched by Past Work

{{.FilesTree}}

Search past work with ` + "`moderails task list`" + ` or the history search.
{{end}}
When the picture is clear, switch: ` + "`moderails mode --name plan`" + `.`

const brainstormTemplate = `# Mode: BRAINSTORM

Explore approaches with the user. No code changes, no file edits.
{{if .CurrentTask}}
Task: **{{.CurrentTask.Name}}** (` + "`{{.CurrentTask.ID}}`" + `)
{{end}}
Present 2-3 viable options with trade-offs, recommend one, and wait for
the user's pick. Then switch: ` + "`moderails mode --name plan`" + `.`

const planTemplate = `# Mode: PLAN
{{if .CurrentTask}}
Task: **{{.CurrentTask.Name}}** (` + "`{{.CurrentTask.ID}}`" + `)
{{if .CurrentTask.HasPlanFile}}
Plan file: ` + "`{{.CurrentTask.FilePath}}`" + `

Write the implementation plan into the plan file: concrete steps, files
to change, and how to verify. Get the user's approval on the plan before
switching to execute.
{{end}}
{{else}}
No task is in progress. Create one first.
{{end}}
Next: ` + "`moderails mode --name execute`" + `.`

const executeTemplate = `# Mode: EXECUTE
{{if .CurrentTask}}
Task: **{{.CurrentTask.Name}}** (` + "`{{.CurrentTask.ID}}`" + `)
{{- if .CurrentTask.HasPlanFile}}
Plan: ` + "`{{.CurrentTask.FilePath}}`" + `
{{- end}}

Work through the plan step by step. Tick off steps in the plan file as
you finish them. If the plan turns out wrong, go back to plan mode
instead of improvising.
{{- if .HasFlag "no-confirmation"}}

Confirmation prompts are disabled for this run; proceed through the plan
without pausing between steps.
{{- end}}
{{else}}
No task is in progress. Create one first.
{{end}}
When the work is done and verified: ` + "`moderails mode --name complete`" + `.`

const completeTemplate = `# Mode: COMPLETE
{{if .CurrentTask}}
Task: **{{.CurrentTask.Name}}** (` + "`{{.CurrentTask.ID}}`" + `)

1. Update the summary: what changed and why, one or two sentences.

` + "```sh" + `
moderails task update --id {{.CurrentTask.ID}} --summary "<summary>"
` + "```" + `
{{if .Git.IsRepo}}
2. Stage your changes, then complete with a commit message:

` + "```sh" + `
git add <files>
moderails task complete --id {{.CurrentTask.ID}} --commit-message "<message>"
` + "```" + `

Branch: ` + "`{{.Git.Branch}}`" + `{{if .Git.IsMain}} (main - consider a feature branch for larger work){{end}}
{{- if .Git.StagedFiles}}
Staged:
{{range .Git.StagedFiles}}
- {{.}}
{{- end}}
{{- end}}
{{- if .Git.UnstagedFiles}}
Unstaged (will NOT be committed):
{{range .Git.UnstagedFiles}}
- {{.}}
{{- end}}
{{- end}}
{{- if .Private}}

Private mode: the workflow files are gitignored and stay local.
{{- end}}
{{else}}
2. Not a git repository; complete without a commit:

` + "```sh" + `
moderails task complete --id {{.CurrentTask.ID}}
` + "```" + `
{{end}}
{{else}}
No task is in progress; nothing to complete.
{{end}}`

const abortTemplate = `# Mode: ABORT
{{if .CurrentTask}}
Task: **{{.CurrentTask.Name}}** (` + "`{{.CurrentTask.ID}}`" + `)

Abandoning this task. Either park it as a draft:

` + "```sh" + `
moderails task update --id {{.CurrentTask.ID}} --status draft
` + "```" + `

or delete it outright:

` + "```sh" + `
moderails task delete --id {{.CurrentTask.ID}} --confirm
` + "```" + `

Revert any half-finished changes before moving on.
{{else}}
No task is in progress; nothing to abort.
{{end}}`

const fastTemplate = `# Mode: FAST

Lightweight path for small, well-understood changes. The research and
plan stages are collapsed; everything else still applies.
{{if .MandatoryContext}}
{{.MandatoryContext}}
{{end}}
{{if .Memories}}
## Memories
{{range .Memories}}
- {{.}}
{{- end}}
{{end}}
{{if .FilesTree}}
## Files Touched by Past Work

{{.FilesTree}}
{{end}}
Make the change, verify it, then complete the task as usual.`

const taskPlanTemplate = `# {{.Name}}

## Goal

{{if .Summary}}{{.Summary}}{{else if .Description}}{{.Description}}{{else}}[task purpose]{{end}}

## Plan

- [ ] ...

## Verification

- [ ] ...

## Notes
`
