//go:build linux

package main

import (
	"errors"
	"os"
	"os/exec"

	"myreboot/internal/action"
	"myreboot/internal/desktop"
	"myreboot/internal/dlgtemplate"
)

// showDialog renders the dialog template with zenity (GTK) or kdialog (KDE)
// and returns the same result code the native Windows dialog would.
func showDialog(opts action.DialogOptions) (int, error) {
	if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		return 0, ErrUnsupported
	}

	buf, err := action.BuildDialog(opts)
	if err != nil {
		return 0, err
	}
	tmpl, err := dlgtemplate.Parse(buf)
	if err != nil {
		return 0, err
	}
	d := desktop.FromTemplate(tmpl, action.IDOK, action.IDCANCEL)
	defaultID := opts.DefaultOption()

	// Try zenity first (GTK)
	if path, err := exec.LookPath("zenity"); err == nil {
		return runListDialog(d, path, d.ZenityListArgs(defaultID), d.ZenityCheckboxArgs)
	}

	// Try kdialog (KDE)
	if path, err := exec.LookPath("kdialog"); err == nil {
		return runListDialog(d, path, d.KDialogListArgs(defaultID), d.KDialogCheckboxArgs)
	}

	LogWarn("No dialog tool found (install zenity or kdialog)")
	return 0, ErrUnsupported
}

func runListDialog(d desktop.Dialog, path string, listArgs []string, checkboxArgs func() []string) (int, error) {
	output, err := exec.Command(path, listArgs...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Cancel or window closed
			return action.IDCANCEL, nil
		}
		return 0, err
	}

	id, err := d.ParseChoice(string(output))
	if err != nil {
		return 0, err
	}
	code := int(id)
	if d.Checkbox != nil && exec.Command(path, checkboxArgs()...).Run() == nil {
		code |= action.PreActionBit
	}
	return code, nil
}
