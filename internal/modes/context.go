// Package modes assembles per-mode context and renders the mode templates
// shown to the agent. Each mode gets its own typed context carrying only
// the data its template needs, so prompt payloads stay small.
package modes

import (
	"path/filepath"

	"github.com/lpakula/agent-moderails/internal/git"
	"github.com/lpakula/agent-moderails/internal/history"
	"github.com/lpakula/agent-moderails/internal/knowledge"
	"github.com/lpakula/agent-moderails/internal/store"
	"github.com/lpakula/agent-moderails/internal/task"
)

// Common carries the fields every mode context shares.
type Common struct {
	Mode        string
	Flags       []string
	ProjectRoot string
}

// Name returns the mode this context was built for.
func (c Common) Name() string { return c.Mode }

// HasFlag reports whether a pass-through flag was given (for example
// "no-confirmation" from "--no-confirmation").
func (c Common) HasFlag(name string) bool {
	for _, f := range c.Flags {
		if f == name {
			return true
		}
	}
	return false
}

// Context is the tagged union of per-mode contexts.
type Context interface {
	Name() string
}

// TaskView is the task projection exposed to templates.
type TaskView struct {
	ID          string
	Name        string
	Type        string
	Status      string
	Description string
	Summary     string
	FileName    string
	FilePath    string
	HasPlanFile bool
	EpicID      string
	EpicName    string
}

// EpicView is the epic projection exposed to templates.
type EpicView struct {
	ID   string
	Name string
}

// GitState is the version-control snapshot shown in complete mode.
type GitState struct {
	IsRepo        bool
	Branch        string
	IsMain        bool
	StagedFiles   []string
	UnstagedFiles []string
}

// StartContext feeds the start template.
type StartContext struct {
	Common
	CurrentTask *TaskView
	DraftTasks  []TaskView
	Epics       []EpicView
	Skills      []string
}

// ResearchContext feeds the research template.
type ResearchContext struct {
	Common
	CurrentTask      *TaskView
	EpicContext      string
	MandatoryContext string
	Memories         []string
	FilesTree        string
}

// FastContext feeds the fast template.
type FastContext struct {
	Common
	MandatoryContext string
	Memories         []string
	FilesTree        string
}

// TaskContext feeds the plan, execute, brainstorm, and abort templates.
type TaskContext struct {
	Common
	CurrentTask *TaskView
}

// CompleteContext feeds the complete template.
type CompleteContext struct {
	Common
	CurrentTask *TaskView
	Git         GitState
	Private     bool
}

// Deps are the collaborators the context builder pulls state from.
type Deps struct {
	Store     *store.Store
	Ledger    *history.Ledger
	Knowledge *knowledge.Service
	Git       *git.Client
	EpicDiff  func(epicRef string, short bool) (string, error)

	ProjectRoot string
	BaseDir     string // workspace path relative to the project root
	Private     bool
}

// Build assembles the context for one mode. Plan mode is the only read
// path with a write side effect: entering it materializes the plan file
// for the current task before the task is re-read.
func Build(deps Deps, mode string, flags []string) (Context, error) {
	common := Common{Mode: mode, Flags: flags, ProjectRoot: deps.ProjectRoot}

	switch mode {
	case "start":
		ctx := StartContext{Common: common}
		current, err := deps.currentTaskView()
		if err != nil {
			return nil, err
		}
		ctx.CurrentTask = current

		drafts, err := deps.Store.ListTasks("", task.StatusDraft)
		if err != nil {
			return nil, err
		}
		task.Sort(drafts, task.SortCompletedFirst)
		for _, t := range drafts {
			ctx.DraftTasks = append(ctx.DraftTasks, deps.taskView(t))
		}

		epics, err := deps.Store.ListEpics()
		if err != nil {
			return nil, err
		}
		for _, e := range epics {
			ctx.Epics = append(ctx.Epics, EpicView{ID: e.ID, Name: e.Name})
		}
		ctx.Skills = deps.Knowledge.ListSkills()
		return ctx, nil

	case "research":
		ctx := ResearchContext{
			Common:           common,
			MandatoryContext: deps.Knowledge.MandatoryContext(),
			Memories:         deps.Knowledge.ListMemories(),
			FilesTree:        knowledge.FilesTree(deps.Ledger.Entries()),
		}
		current, err := deps.currentTaskView()
		if err != nil {
			return nil, err
		}
		ctx.CurrentTask = current
		if current != nil && current.EpicName != "" && deps.EpicDiff != nil {
			summary, err := deps.EpicDiff(current.EpicName, true)
			if err == nil {
				ctx.EpicContext = summary
			}
		}
		return ctx, nil

	case "fast":
		return FastContext{
			Common:           common,
			MandatoryContext: deps.Knowledge.MandatoryContext(),
			Memories:         deps.Knowledge.ListMemories(),
			FilesTree:        knowledge.FilesTree(deps.Ledger.Entries()),
		}, nil

	case "complete":
		ctx := CompleteContext{Common: common, Private: deps.Private}
		current, err := deps.currentTaskView()
		if err != nil {
			return nil, err
		}
		ctx.CurrentTask = current

		if deps.Git.IsRepository() {
			branch := deps.Git.CurrentBranch()
			ctx.Git = GitState{
				IsRepo:        true,
				Branch:        branch,
				IsMain:        branch == "main",
				StagedFiles:   deps.Git.StagedFiles(),
				UnstagedFiles: deps.Git.UnstagedFiles(),
			}
		}
		return ctx, nil

	case "plan":
		ctx := TaskContext{Common: common}
		current, err := deps.currentTaskView()
		if err != nil {
			return nil, err
		}
		if current != nil && !current.HasPlanFile {
			if _, err := deps.Store.EnsurePlanFile(current.ID, RenderTaskPlan); err != nil {
				return nil, err
			}
			current, err = deps.currentTaskView()
			if err != nil {
				return nil, err
			}
		}
		ctx.CurrentTask = current
		return ctx, nil

	default: // execute, brainstorm, abort
		ctx := TaskContext{Common: common}
		current, err := deps.currentTaskView()
		if err != nil {
			return nil, err
		}
		ctx.CurrentTask = current
		return ctx, nil
	}
}

func (d Deps) currentTaskView() (*TaskView, error) {
	t, err := d.Store.InProgressTask()
	if err != nil || t == nil {
		return nil, err
	}
	view := d.taskView(*t)
	return &view, nil
}

func (d Deps) taskView(t task.Task) TaskView {
	view := TaskView{
		ID:          t.ID,
		Name:        t.Name,
		Type:        string(t.Type),
		Status:      string(t.Status),
		Description: t.Description,
		Summary:     t.Summary,
		FileName:    t.FileName,
		HasPlanFile: t.FileName != "",
		EpicID:      t.EpicID,
		EpicName:    t.EpicName,
	}
	if t.FileName != "" {
		view.FilePath = filepath.Join(d.BaseDir, t.FileName)
	}
	return view
}
