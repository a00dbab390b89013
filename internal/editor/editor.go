// Package editor launches the user's text editor on a file.
package editor

import (
	"context"
	"io"
	"os/exec"
	"strings"

	"github.com/thoreinstein/veribak/internal/errors"
)

// Streams are the terminal streams handed to the editor process.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Open runs the editor on path and waits for it to exit.
//
// The editor is taken from $VERIBAK_EDITOR, $EDITOR, then $VISUAL, and may carry
// arguments ("code --wait"). Without any of them nano is used when installed,
// otherwise vi.
func Open(ctx context.Context, path string, s Streams, getenv func(string) string) error {
	argv := Command(getenv)

	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	cmd.Stdin = s.In
	cmd.Stdout = s.Out
	cmd.Stderr = s.Err

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", argv[0])
	}
	return nil
}

// Command returns the editor command line without the file argument.
func Command(getenv func(string) string) []string {
	for _, key := range []string{"VERIBAK_EDITOR", "EDITOR", "VISUAL"} {
		if fields := strings.Fields(getenv(key)); len(fields) > 0 {
			return fields
		}
	}

	if _, err := exec.LookPath("nano"); err == nil {
		return []string{"nano"}
	}
	return []string{"vi"}
}
