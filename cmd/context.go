/*
Copyright © 2026 lpakula
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lpakula/agent-moderails/internal/config"
	"github.com/lpakula/agent-moderails/internal/knowledge"
)

// contextCmd groups the context management commands.
var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Context management commands",
}

var contextListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available skills, memories, and files from history",
	RunE:  runContextList,
}

var (
	contextLoadMandatory bool
	contextLoadMemories  []string
)

var contextLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load context: mandatory and/or memories",
	Long: `Load context into the conversation. Flags can be combined:

  moderails context load --mandatory --memory auth --memory payments

Loaded memories are recorded on the active session.`,
	RunE: runContextLoad,
}

var (
	contextSaveName    string
	contextSaveContent string
)

var contextSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save a memory file",
	Long: `Write a named memory under context/memories/. Content comes from
--content or, when omitted, from stdin.`,
	RunE: runContextSave,
}

func init() {
	contextLoadCmd.Flags().BoolVarP(&contextLoadMandatory, "mandatory", "m", false, "load mandatory context")
	contextLoadCmd.Flags().StringArrayVarP(&contextLoadMemories, "memory", "M", nil, "memory name to load (can specify multiple)")

	contextSaveCmd.Flags().StringVarP(&contextSaveName, "name", "n", "", "memory name (required)")
	contextSaveCmd.Flags().StringVar(&contextSaveContent, "content", "", "memory content (defaults to stdin)")
	_ = contextSaveCmd.MarkFlagRequired("name")

	contextCmd.AddCommand(contextListCmd, contextLoadCmd, contextSaveCmd)
	rootCmd.AddCommand(contextCmd)
}

func runContextList(cmd *cobra.Command, args []string) error {
	w, err := openWorkspace()
	if err != nil || w == nil {
		return err
	}
	defer func() { _ = w.Close() }()

	cmd.Println("## AVAILABLE CONTEXT")
	cmd.Println()

	cmd.Println("### SKILLS")
	cmd.Println()
	if skills := w.Knowledge.ListSkills(); len(skills) > 0 {
		for _, skill := range skills {
			cmd.Printf("- %s\n", skill)
		}
	} else {
		cmd.Println("No skills (add to skills/)")
	}
	cmd.Println()

	cmd.Println("### MEMORIES")
	cmd.Println()
	if memories := w.Knowledge.ListMemories(); len(memories) > 0 {
		for _, memory := range memories {
			cmd.Printf("- %s\n", memory)
		}
	} else {
		cmd.Println("No memories")
	}
	cmd.Println()

	cmd.Println("### FILES")
	cmd.Println()
	if tree := knowledge.FilesTree(w.Ledger.Entries()); tree != "" {
		cmd.Println(tree)
	} else {
		cmd.Println("No files")
	}

	cmd.Print("\n---\n\n")
	cmd.Println("### USAGE")
	cmd.Println()
	cmd.Println("```sh")
	cmd.Println("# Load context (flags can be combined)")
	cmd.Println("moderails context load --mandatory --memory auth --memory payments")
	cmd.Println("```")
	return nil
}

func runContextLoad(cmd *cobra.Command, args []string) error {
	if !contextLoadMandatory && len(contextLoadMemories) == 0 {
		cmd.Println("❌ Provide --mandatory or --memory")
		cmd.Println("\n💡 Run `moderails context list` to see available options")
		return nil
	}

	w, err := openWorkspace()
	if err != nil || w == nil {
		return err
	}
	defer func() { _ = w.Close() }()

	var parts []string

	if contextLoadMandatory {
		if mandatory := w.Knowledge.MandatoryContext(); mandatory != "" {
			parts = append(parts, mandatory)
		} else {
			parts = append(parts,
				"No mandatory context files found.\nAdd markdown files to: "+config.MandatoryDir(w.Dir)+"/")
		}
	}

	if len(contextLoadMemories) > 0 {
		var loaded, missing []string
		for _, name := range contextLoadMemories {
			content, ok := w.Knowledge.LoadMemory(name)
			if !ok {
				missing = append(missing, name)
				continue
			}
			loaded = append(loaded, fmt.Sprintf("<!-- Memory: %s -->\n%s", name, content))
			// Track what the agent has seen on the active session.
			if _, err := w.Store.AddSessionMemory(name); err != nil {
				return err
			}
		}
		if len(loaded) > 0 {
			parts = append(parts, strings.Join(loaded, "\n\n---\n\n"))
		}
		if len(missing) > 0 {
			msg := "❌ No memories found for: " + strings.Join(missing, ", ")
			if available := w.Knowledge.ListMemories(); len(available) > 0 {
				msg += "\nAvailable: " + strings.Join(available, ", ")
			}
			parts = append(parts, msg)
		}
	}

	cmd.Println(strings.Join(parts, "\n\n---\n\n"))
	return nil
}

func runContextSave(cmd *cobra.Command, args []string) error {
	content := contextSaveContent
	if content == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		content = string(data)
	}
	if strings.TrimSpace(content) == "" {
		cmd.Println("❌ Nothing to save: provide --content or pipe content on stdin")
		return nil
	}

	w, err := openWorkspace()
	if err != nil || w == nil {
		return err
	}
	defer func() { _ = w.Close() }()

	if err := w.Knowledge.SaveMemory(contextSaveName, content); err != nil {
		return fmt.Errorf("save memory: %w", err)
	}
	cmd.Printf("✅ Saved memory: %s\n", contextSaveName)
	return nil
}
