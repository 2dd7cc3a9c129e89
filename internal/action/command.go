package action

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner runs a host command.
type CommandRunner interface {
	Run(ctx context.Context, argv []string) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("empty command")
	}
	out, err := exec.CommandContext(ctx, argv[0], argv[1:]...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: %w: %s", argv[0], err, msg)
		}
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}

// SplitCommandLine splits a command line into arguments, respecting single
// and double quotes. A quote of the other kind inside quotes is literal.
func SplitCommandLine(cmdLine string) []string {
	var args []string
	var current strings.Builder
	inQuote := false
	quoted := false
	quoteChar := rune(0)

	for _, r := range cmdLine {
		switch {
		case r == '"' || r == '\'':
			if inQuote && r == quoteChar {
				inQuote = false
				quoteChar = 0
			} else if !inQuote {
				inQuote = true
				quoted = true
				quoteChar = r
			} else {
				current.WriteRune(r)
			}
		case (r == ' ' || r == '\t') && !inQuote:
			if current.Len() > 0 || quoted {
				args = append(args, current.String())
				current.Reset()
				quoted = false
			}
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 || quoted {
		args = append(args, current.String())
	}

	return args
}
