package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"myreboot/internal/action"
)

// ErrUnsupported is returned when no native dialog can be shown on this desktop.
var ErrUnsupported = errors.New("native dialog not available")

// chooseSelection shows the selection dialog, natively when possible and in
// the terminal otherwise. Cancelling yields DoNothing.
func chooseSelection(opts action.DialogOptions, forceTTY bool) (action.Selection, error) {
	if !forceTTY {
		code, err := showDialog(opts)
		if err == nil {
			sel := action.FromCode(code)
			LogSelection("dialog", sel)
			return sel, nil
		}
		if !errors.Is(err, ErrUnsupported) || !isInteractive() {
			return action.Selection{}, err
		}
		LogDebug("Falling back to terminal prompt: %v", err)
	}

	sel, err := promptTerminal(opts)
	if err != nil {
		return action.Selection{}, err
	}
	LogSelection("terminal", sel)
	return sel, nil
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// promptTerminal asks the same question as the dialog with huh.
func promptTerminal(opts action.DialogOptions) (action.Selection, error) {
	if len(opts.Options) == 0 {
		return action.Selection{}, fmt.Errorf("no options to choose from")
	}

	choices := make([]huh.Option[action.Action], 0, len(opts.Options)+1)
	for _, o := range opts.Options {
		choices = append(choices, huh.NewOption(o.Label, o.Action))
	}
	choices = append(choices, huh.NewOption(valueOr(opts.CancelLabel, "Cancel"), action.DoNothing))

	sel := action.Selection{Action: opts.Default}
	fields := []huh.Field{
		huh.NewSelect[action.Action]().
			Title(opts.Title).
			Options(choices...).
			Value(&sel.Action),
	}
	if opts.PreActionLabel != "" {
		fields = append(fields, huh.NewConfirm().
			Title(opts.PreActionLabel).
			Value(&sel.RunPreAction))
	}

	form := huh.NewForm(huh.NewGroup(fields...))
	form.WithInput(os.Stdin).WithOutput(os.Stdout).WithTheme(huh.ThemeCharm())
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return action.Selection{}, nil
		}
		return action.Selection{}, err
	}
	if sel.Action == action.DoNothing {
		return action.Selection{}, nil
	}
	return sel, nil
}
