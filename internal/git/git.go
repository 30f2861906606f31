// Package git provides shell-based wrappers for the git CLI commands the
// workflow needs. It uses os/exec instead of go-git to ensure compatibility
// with the user's SSH keys, GPG signing config, and other shell settings.
//
// Every read helper degrades to an empty result outside a git repository so
// the rest of the CLI keeps working in plain directories.
package git

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Common errors returned by git operations.
var (
	ErrGitNotInstalled  = errors.New("git is not installed or not in PATH")
	ErrNotGitRepository = errors.New("not a git repository")
)

// Commander is an interface for executing commands.
// This allows mocking in tests.
type Commander interface {
	Run(name string, args ...string) (string, error)
	RunInDir(dir, name string, args ...string) (string, error)
}

// ShellCommander executes real shell commands.
type ShellCommander struct{}

// Run executes a command in the current directory.
func (c *ShellCommander) Run(name string, args ...string) (string, error) {
	return c.RunInDir("", name, args...)
}

// RunInDir executes a command in the specified directory.
func (c *ShellCommander) RunInDir(dir, name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg != "" {
			return "", fmt.Errorf("%w: %s", err, errMsg)
		}
		return "", err
	}
	return strings.TrimRight(stdout.String(), "\n"), nil
}

// Client wraps git CLI operations for a single working directory.
type Client struct {
	commander Commander
	workDir   string
}

// NewClient creates a new git client for the given directory.
func NewClient(workDir string) *Client {
	return &Client{
		commander: &ShellCommander{},
		workDir:   workDir,
	}
}

// NewClientWithCommander creates a client with a custom commander (for testing).
func NewClientWithCommander(workDir string, commander Commander) *Client {
	return &Client{
		commander: commander,
		workDir:   workDir,
	}
}

// IsGitInstalled checks if the git binary is available in PATH.
func (c *Client) IsGitInstalled() bool {
	_, err := c.commander.Run("git", "--version")
	return err == nil
}

// IsRepository checks if the working directory is a git repository.
func (c *Client) IsRepository() bool {
	_, err := c.commander.RunInDir(c.workDir, "git", "rev-parse", "--is-inside-work-tree")
	return err == nil
}

// CurrentBranch returns the name of the current branch, or "" outside a repo.
func (c *Client) CurrentBranch() string {
	output, err := c.commander.RunInDir(c.workDir, "git", "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return ""
	}
	return output
}

// Head returns the full hash of HEAD.
func (c *Client) Head() (string, error) {
	output, err := c.commander.RunInDir(c.workDir, "git", "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("get HEAD: %w", err)
	}
	return output, nil
}

// StagedFiles returns the paths staged for the next commit.
func (c *Client) StagedFiles() []string {
	output, err := c.commander.RunInDir(c.workDir, "git", "diff", "--cached", "--name-only")
	if err != nil {
		return nil
	}
	return splitLines(output)
}

// UnstagedFiles returns modified tracked paths not yet staged.
func (c *Client) UnstagedFiles() []string {
	output, err := c.commander.RunInDir(c.workDir, "git", "diff", "--name-only")
	if err != nil {
		return nil
	}
	return splitLines(output)
}

// Add stages files for commit.
func (c *Client) Add(paths ...string) error {
	args := append([]string{"add"}, paths...)
	_, err := c.commander.RunInDir(c.workDir, "git", args...)
	if err != nil {
		return fmt.Errorf("add files: %w", err)
	}
	return nil
}

// Commit creates a commit with the given message.
func (c *Client) Commit(message string) error {
	_, err := c.commander.RunInDir(c.workDir, "git", "commit", "-m", message)
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// CommitMeta returns the full hash and subject line of a commit.
// On error it returns the input ref with an empty subject.
func (c *Client) CommitMeta(ref string) (hash, subject string) {
	output, err := c.commander.RunInDir(c.workDir, "git", "show", "-s", "--format=%H%n%s", ref)
	if err != nil {
		return ref, ""
	}
	lines := strings.SplitN(output, "\n", 2)
	hash = lines[0]
	if len(lines) > 1 {
		subject = strings.TrimRight(lines[1], "\n")
	}
	return hash, subject
}

// NameStatus returns the file change summary of a commit as raw
// name-status lines ("A\tfile.go", "R100\told.go\tnew.go"). Rename and
// copy detection is enabled so moved files show both paths.
func (c *Client) NameStatus(ref string) string {
	output, err := c.commander.RunInDir(c.workDir, "git", "show", "--pretty=format:", "--name-status", "-M", "-C", ref)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(output)
}

// PatchUnified returns the commit patch with zero context lines, the most
// compact representation for feeding to a language model.
func (c *Client) PatchUnified(ref string) string {
	output, err := c.commander.RunInDir(c.workDir, "git", "show", "--pretty=format:", "--patch", "--unified=0", "-M", "-C", ref)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(output)
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
