/*
Copyright © 2026 lpakula
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/lpakula/agent-moderails/internal/task"
)

// PrintError prints an error message without exiting, allowing for recovery.
// By default the clean user-facing message is shown; with --verbose the
// underlying technical error is printed instead.
func PrintError(userMsg string, technicalErr error) {
	if viper.GetBool("verbose") && technicalErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", technicalErr)
	} else {
		fmt.Fprintln(os.Stderr, userMsg)
	}
}

// HandleFatalError handles unrecoverable errors that should terminate the application.
func HandleFatalError(userMsg string, technicalErr error) {
	PrintError(userMsg, technicalErr)
	os.Exit(1)
}

// LogError logs an error without printing to stderr if verbose mode is off.
func LogError(msg string, err error) {
	if viper.GetBool("verbose") {
		if err != nil {
			fmt.Fprintf(os.Stderr, "[DEBUG] %s: %v\n", msg, err)
		} else {
			fmt.Fprintf(os.Stderr, "[DEBUG] %s\n", msg)
		}
	}
}

// reportDomainError prints domain errors (validation, not-found, conflict)
// as friendly messages and swallows them so the process exits 0; agents
// read the message, not the exit code. Anything else propagates.
func reportDomainError(err error) error {
	if err == nil {
		return nil
	}
	if task.IsDomain(err) {
		fmt.Printf("❌ %v\n", err)
		return nil
	}
	return err
}
