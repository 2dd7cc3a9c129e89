// Package desktop renders a dialog template with the zenity or kdialog
// command line tools.
package desktop

import (
	"fmt"
	"strconv"
	"strings"

	"myreboot/internal/dlgtemplate"
)

// Dialog is the part of a template a list dialog can show.
type Dialog struct {
	Title    string
	Options  []dlgtemplate.Item
	Checkbox *dlgtemplate.Item
	OK       string
	Cancel   string
}

// FromTemplate picks options, the first checkbox and the button labels out of
// a parsed template.
func FromTemplate(t *dlgtemplate.Template, okID, cancelID uint32) Dialog {
	d := Dialog{Title: t.Title}
	for i := range t.Items {
		it := t.Items[i]
		switch {
		case it.Kind == dlgtemplate.OptionButton:
			d.Options = append(d.Options, it)
		case it.Kind == dlgtemplate.Checkbox && d.Checkbox == nil:
			d.Checkbox = &it
		case it.ID == okID:
			d.OK = it.Title
		case it.ID == cancelID:
			d.Cancel = it.Title
		}
	}
	return d
}

// ZenityListArgs builds a radio list whose second, hidden column is the
// option id zenity prints on OK.
func (d Dialog) ZenityListArgs(defaultID uint32) []string {
	args := []string{
		"--list", "--radiolist",
		"--title", d.Title,
		"--text", d.Title,
		"--column", "", "--column", "id", "--column", "",
		"--hide-column", "2", "--print-column", "2",
		"--hide-header",
	}
	if d.OK != "" {
		args = append(args, "--ok-label", d.OK)
	}
	if d.Cancel != "" {
		args = append(args, "--cancel-label", d.Cancel)
	}
	for _, o := range d.Options {
		checked := "FALSE"
		if o.ID == defaultID {
			checked = "TRUE"
		}
		args = append(args, checked, strconv.FormatUint(uint64(o.ID), 10), o.Title)
	}
	return args
}

// ZenityCheckboxArgs asks the checkbox question.
func (d Dialog) ZenityCheckboxArgs() []string {
	return []string{"--question", "--title", d.Title, "--text", d.Checkbox.Title}
}

// KDialogListArgs builds a kdialog radio list printing the option id.
func (d Dialog) KDialogListArgs(defaultID uint32) []string {
	args := []string{"--title", d.Title, "--radiolist", d.Title}
	for _, o := range d.Options {
		state := "off"
		if o.ID == defaultID {
			state = "on"
		}
		args = append(args, strconv.FormatUint(uint64(o.ID), 10), o.Title, state)
	}
	return args
}

// KDialogCheckboxArgs asks the checkbox question.
func (d Dialog) KDialogCheckboxArgs() []string {
	return []string{"--title", d.Title, "--yesno", d.Checkbox.Title}
}

// ParseChoice reads the option id printed by the tool and checks it is one
// of the dialog's options.
func (d Dialog) ParseChoice(output string) (uint32, error) {
	s := strings.TrimSpace(output)
	// zenity separates multiple printed columns with '|'
	s, _, _ = strings.Cut(s, "|")
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("unexpected dialog output %q", output)
	}
	for _, o := range d.Options {
		if o.ID == uint32(id) {
			return o.ID, nil
		}
	}
	return 0, fmt.Errorf("dialog returned unknown option %d", id)
}
