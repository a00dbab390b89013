// Package main is the entry point for the veribak CLI.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/thoreinstein/veribak/cmd/veribak/commands"
	"github.com/thoreinstein/veribak/internal/errors"
)

func main() {
	os.Exit(run(os.Stderr))
}

// run executes the CLI and maps any error onto a process exit code.
func run(stderr io.Writer) int {
	err := commands.Execute()
	if err == nil {
		return errors.ExitSuccess
	}

	exitErr := errors.Classify(err)
	fmt.Fprintf(stderr, "%s %s\n", color.New(color.FgRed, color.Bold).Sprint("Error:"), exitErr.Error())
	if details := errors.FlattenDetails(err); details != "" {
		fmt.Fprintf(stderr, "  %s\n", details)
	}
	if exitErr.Suggestion != "" {
		fmt.Fprintf(stderr, "  %s\n", color.YellowString(exitErr.Suggestion))
	}
	return exitErr.Code
}
