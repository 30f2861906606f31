/*
Copyright © 2026 lpakula
*/
package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/lpakula/agent-moderails/internal/config"
	"github.com/lpakula/agent-moderails/internal/store"
	"github.com/lpakula/agent-moderails/internal/task"
	"github.com/lpakula/agent-moderails/internal/ui"
	"github.com/lpakula/agent-moderails/internal/workspace"
)

// taskCmd groups the task management commands.
var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Task management commands",
}

var (
	taskCreateName        string
	taskCreateDescription string
	taskCreateEpic        string
	taskCreateType        string
	taskCreateStatus      string
)

var taskCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new task",
	Long:  `Create a new task. The plan file is created later, on first entry to plan mode.`,
	RunE:  runTaskCreate,
}

var (
	taskUpdateID          string
	taskUpdateName        string
	taskUpdateStatus      string
	taskUpdateType        string
	taskUpdateSummary     string
	taskUpdateDescription string
	taskUpdateGitHash     string
	taskUpdateFileName    string
)

var taskUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update task name, status, type, summary, description, git hash, or file name",
	RunE:  runTaskUpdate,
}

var (
	taskDeleteID      string
	taskDeleteConfirm bool
)

var taskDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a task",
	RunE:  runTaskDelete,
}

var (
	taskCompleteID      string
	taskCompleteSummary string
	taskCompleteMessage string
)

var taskCompleteCmd = &cobra.Command{
	Use:   "complete",
	Short: "Mark a task as completed and optionally commit changes",
	Long: `Mark a task as completed and export it to history.jsonl.

In git repositories: requires staged files and a --commit-message, stages
history.jsonl (unless in private mode), commits, and records the commit
hash on the task. In non-git projects: marks complete and exports only.`,
	RunE: runTaskComplete,
}

var taskLoadID string

var taskLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load task details and plan file",
	RunE:  runTaskLoad,
}

var (
	taskListStatus   string
	taskListEpicName string
)

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tasks as a simple table (for agents)",
	RunE:  runTaskList,
}

func init() {
	taskCreateCmd.Flags().StringVarP(&taskCreateName, "name", "n", "", "task name (required)")
	taskCreateCmd.Flags().StringVarP(&taskCreateDescription, "description", "d", "", "task description (context for draft tickets)")
	taskCreateCmd.Flags().StringVarP(&taskCreateEpic, "epic", "e", "", "epic name or ID (optional)")
	taskCreateCmd.Flags().StringVarP(&taskCreateType, "type", "t", "feature", "task type (feature, fix, refactor, chore)")
	taskCreateCmd.Flags().StringVarP(&taskCreateStatus, "status", "s", "in-progress", "initial status (draft, in-progress)")
	_ = taskCreateCmd.MarkFlagRequired("name")

	taskUpdateCmd.Flags().StringVarP(&taskUpdateID, "id", "i", "", "task ID (6-character, required)")
	taskUpdateCmd.Flags().StringVar(&taskUpdateName, "name", "", "new task name")
	taskUpdateCmd.Flags().StringVarP(&taskUpdateStatus, "status", "s", "", "new status (draft, in-progress, completed)")
	taskUpdateCmd.Flags().StringVar(&taskUpdateType, "type", "", "new task type")
	taskUpdateCmd.Flags().StringVar(&taskUpdateSummary, "summary", "", "task summary")
	taskUpdateCmd.Flags().StringVarP(&taskUpdateDescription, "description", "d", "", "task description")
	taskUpdateCmd.Flags().StringVar(&taskUpdateGitHash, "git-hash", "", "git commit hash")
	taskUpdateCmd.Flags().StringVar(&taskUpdateFileName, "file-name", "", "task file name (e.g. my-task.plan.md)")
	_ = taskUpdateCmd.MarkFlagRequired("id")

	taskDeleteCmd.Flags().StringVarP(&taskDeleteID, "id", "i", "", "task ID (6-character, required)")
	taskDeleteCmd.Flags().BoolVar(&taskDeleteConfirm, "confirm", false, "confirm deletion")
	_ = taskDeleteCmd.MarkFlagRequired("id")

	taskCompleteCmd.Flags().StringVarP(&taskCompleteID, "id", "i", "", "task ID (6-character, required)")
	taskCompleteCmd.Flags().StringVarP(&taskCompleteSummary, "summary", "s", "", "task summary")
	taskCompleteCmd.Flags().StringVarP(&taskCompleteMessage, "commit-message", "m", "", "git commit message")
	_ = taskCompleteCmd.MarkFlagRequired("id")

	taskLoadCmd.Flags().StringVarP(&taskLoadID, "id", "i", "", "task ID (6-character, required)")
	_ = taskLoadCmd.MarkFlagRequired("id")

	taskListCmd.Flags().StringVarP(&taskListStatus, "status", "s", "", "filter by status")
	taskListCmd.Flags().StringVarP(&taskListEpicName, "epic-name", "e", "", "filter by epic name")

	taskCmd.AddCommand(taskCreateCmd, taskUpdateCmd, taskDeleteCmd, taskCompleteCmd, taskLoadCmd, taskListCmd)
	rootCmd.AddCommand(taskCmd)
}

func runTaskCreate(cmd *cobra.Command, args []string) error {
	taskType, err := task.ParseType(taskCreateType)
	if err != nil {
		return reportDomainError(err)
	}
	status, err := task.ParseStatus(taskCreateStatus)
	if err != nil {
		return reportDomainError(err)
	}
	if status == task.StatusCompleted {
		fmt.Println("❌ Tasks cannot be created completed - complete them through the workflow")
		return nil
	}

	w, err := openWorkspace()
	if err != nil || w == nil {
		return err
	}
	defer func() { _ = w.Close() }()

	t, err := w.Store.CreateTask(taskCreateName, store.CreateTaskOptions{
		EpicName:    taskCreateEpic,
		Type:        taskType,
		Status:      status,
		Description: taskCreateDescription,
	})
	if err != nil {
		return reportDomainError(err)
	}

	cmd.Printf("✅ Task created: %s - %s\n", t.ID, ui.StyleSuccess.Render(t.Name))
	cmd.Printf("   Type: %s\n", t.Type)
	if t.EpicName != "" {
		cmd.Printf("   Epic: %s - %s\n", t.EpicID, t.EpicName)
	}
	cmd.Printf("   Status: %s\n", t.Status)
	return nil
}

func runTaskUpdate(cmd *cobra.Command, args []string) error {
	patch := task.TaskPatch{}
	flags := cmd.Flags()
	if flags.Changed("name") {
		patch.Name = &taskUpdateName
	}
	if flags.Changed("summary") {
		patch.Summary = &taskUpdateSummary
	}
	if flags.Changed("description") {
		patch.Description = &taskUpdateDescription
	}
	if flags.Changed("git-hash") {
		patch.GitHash = &taskUpdateGitHash
	}
	if flags.Changed("file-name") {
		patch.FileName = &taskUpdateFileName
	}
	if flags.Changed("status") {
		status, err := task.ParseStatus(taskUpdateStatus)
		if err != nil {
			return reportDomainError(err)
		}
		patch.Status = &status
	}
	if flags.Changed("type") {
		taskType, err := task.ParseType(taskUpdateType)
		if err != nil {
			return reportDomainError(err)
		}
		patch.Type = &taskType
	}

	w, err := openWorkspace()
	if err != nil || w == nil {
		return err
	}
	defer func() { _ = w.Close() }()

	t, err := w.Store.UpdateTask(taskUpdateID, patch)
	if err != nil {
		return reportDomainError(err)
	}

	cmd.Printf("✅ Updated task: %s - %s [%s] [%s]\n", t.ID, t.Name, t.Type, t.Status)
	if patch.Status != nil && *patch.Status == task.StatusCompleted {
		cmd.Println("\n💡 Now commit your changes with a descriptive message")
	}
	return nil
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	if !taskDeleteConfirm {
		cmd.Println("Use --confirm to delete")
		return nil
	}

	w, err := openWorkspace()
	if err != nil || w == nil {
		return err
	}
	defer func() { _ = w.Close() }()

	if err := w.Store.DeleteTask(taskDeleteID); err != nil {
		return reportDomainError(err)
	}
	cmd.Printf("✅ Deleted task: %s\n", taskDeleteID)
	return nil
}

func runTaskComplete(cmd *cobra.Command, args []string) error {
	w, err := openWorkspace()
	if err != nil || w == nil {
		return err
	}
	defer func() { _ = w.Close() }()

	useGit := w.Git.IsRepository()
	if useGit {
		// Require a clean handoff before touching the database.
		if len(w.Git.StagedFiles()) == 0 {
			cmd.Println("❌ No staged files found.")
			cmd.Println("\n💡 Stage your changes first:")
			cmd.Println("   git add <file1> <file2> ...")
			cmd.Println("\nThen run this command again.")
			return nil
		}
		if taskCompleteMessage == "" {
			cmd.Println("❌ --commit-message is required.")
			return nil
		}
	}

	if taskCompleteSummary != "" {
		if _, err := w.Store.UpdateTask(taskCompleteID, task.TaskPatch{Summary: &taskCompleteSummary}); err != nil {
			return reportDomainError(err)
		}
	}

	t, err := w.Store.CompleteTask(taskCompleteID, "")
	if err != nil {
		return reportDomainError(err)
	}
	cmd.Printf("✅ Task completed: %s - %s\n", t.ID, t.Name)

	if err := w.Ledger.ExportTask(t.ID); err != nil {
		return reportDomainError(err)
	}
	cmd.Println("✅ Exported to history.jsonl")

	if !useGit {
		return nil
	}
	return completeGitWorkflow(cmd, w, t.ID)
}

// completeGitWorkflow stages the ledger, commits, and records the commit
// hash on the task. Every git failure prints manual fallback instructions
// instead of failing the already-completed task.
func completeGitWorkflow(cmd *cobra.Command, w *workspace.Workspace, taskID string) error {
	historyPath := config.HistoryPath(w.Dir)

	if !w.Config.Private {
		// Let file watchers settle before staging the freshly written line.
		time.Sleep(200 * time.Millisecond)
		if err := w.Git.Add(historyPath); err != nil {
			cmd.Println("⚠️  Failed to stage history.jsonl")
			printGitFallback(cmd, taskID, fmt.Sprintf("git add %s\ngit commit -m %q", historyPath, taskCompleteMessage))
			return nil
		}
		cmd.Println("✅ Staged history.jsonl")
	}

	if err := w.Git.Commit(taskCompleteMessage); err != nil {
		cmd.Println("⚠️  Commit failed")
		printGitFallback(cmd, taskID, fmt.Sprintf("git commit -m %q", taskCompleteMessage))
		return nil
	}
	cmd.Printf("✅ Committed: %s\n", taskCompleteMessage)

	hash, err := w.Git.Head()
	if err != nil {
		cmd.Println("⚠️  Could not get git hash")
		printGitFallback(cmd, taskID, "")
		return nil
	}
	if _, err := w.Store.UpdateTask(taskID, task.TaskPatch{GitHash: &hash}); err != nil {
		return reportDomainError(err)
	}
	short := hash
	if len(short) > 7 {
		short = short[:7]
	}
	cmd.Printf("✅ Updated task with git hash: %s\n", short)
	cmd.Printf("\n🎉 Task %s fully completed and committed!\n", taskID)
	return nil
}

func printGitFallback(cmd *cobra.Command, taskID, prelude string) {
	cmd.Println("\n## FALLBACK: Complete git workflow manually")
	cmd.Println("```bash")
	if prelude != "" {
		cmd.Println(prelude)
	}
	cmd.Printf("moderails task update --id %s --git-hash $(git rev-parse HEAD)\n", taskID)
	cmd.Println("```")
}

func runTaskLoad(cmd *cobra.Command, args []string) error {
	w, err := openWorkspace()
	if err != nil || w == nil {
		return err
	}
	defer func() { _ = w.Close() }()

	t, err := w.Store.GetTask(taskLoadID)
	if err != nil {
		return reportDomainError(err)
	}

	cmd.Println("## TASK DETAILS")
	cmd.Println()
	cmd.Printf("**ID**: %s\n", t.ID)
	cmd.Printf("**Name**: %s\n", t.Name)
	cmd.Printf("**Type**: %s\n", t.Type)
	cmd.Printf("**Status**: %s\n", t.Status)
	if t.EpicName != "" {
		cmd.Printf("**Epic**: %s (%s)\n", t.EpicName, t.EpicID)
	}
	if t.FileName != "" {
		cmd.Printf("**File**: %s\n", filepath.Join(w.Config.BaseDir, config.Subdir, t.FileName))
	}
	if t.Summary != "" {
		cmd.Printf("**Summary**: %s\n", t.Summary)
	}
	if t.Description != "" {
		cmd.Printf("**Description**: %s\n", t.Description)
	}
	cmd.Println()

	if t.FileName != "" {
		if content, err := w.Store.PlanFileContent(t.ID); err == nil && content != "" {
			cmd.Println("## TASK PLAN")
			cmd.Println()
			cmd.Println(content)
		}
	}
	return nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	var status task.Status
	if taskListStatus != "" {
		var err error
		if status, err = task.ParseStatus(taskListStatus); err != nil {
			return reportDomainError(err)
		}
	}

	w, err := openWorkspace()
	if err != nil || w == nil {
		return err
	}
	defer func() { _ = w.Close() }()

	tasks, err := w.Store.ListTasks(taskListEpicName, status)
	if err != nil {
		return reportDomainError(err)
	}
	if len(tasks) == 0 {
		cmd.Println("No tasks found.")
		return nil
	}

	task.Sort(tasks, task.SortActiveFirst)
	cmd.Println(ui.TaskTable(tasks))
	return nil
}
