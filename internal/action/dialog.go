package action

import (
	"errors"

	"myreboot/internal/dlgtemplate"
)

// Option is one selectable action in the dialog.
type Option struct {
	Action Action
	Label  string
}

// DialogOptions describes the selection dialog.
type DialogOptions struct {
	Title          string
	Font           dlgtemplate.Font
	Layout         dlgtemplate.Layout
	Options        []Option
	Default        Action
	PreActionLabel string // empty hides the checkbox
	OKLabel        string
	CancelLabel    string
}

// Template lays the dialog out. The first option starts the tab group and
// the checkbox, when present, sits between the options and the buttons.
func (o DialogOptions) Template() (dlgtemplate.Template, error) {
	if len(o.Options) == 0 {
		return dlgtemplate.Template{}, errors.New("dialog needs at least one option")
	}

	entries := make([]dlgtemplate.Entry, 0, len(o.Options)+3)
	for i, opt := range o.Options {
		e := dlgtemplate.Entry{Kind: dlgtemplate.OptionButton, ID: opt.Action.ID(), Title: opt.Label}
		if i == 0 {
			e.Style = dlgtemplate.WS_GROUP | dlgtemplate.WS_TABSTOP
		}
		entries = append(entries, e)
	}
	if o.PreActionLabel != "" {
		entries = append(entries, dlgtemplate.Entry{
			Kind:  dlgtemplate.Checkbox,
			ID:    IDPreAction,
			Style: dlgtemplate.WS_GROUP | dlgtemplate.WS_TABSTOP,
			Title: o.PreActionLabel,
		})
	}
	entries = append(entries,
		dlgtemplate.Entry{Kind: dlgtemplate.DefaultPushButton, ID: IDOK, Style: dlgtemplate.WS_GROUP | dlgtemplate.WS_TABSTOP, Title: labelOr(o.OKLabel, "OK")},
		dlgtemplate.Entry{Kind: dlgtemplate.PushButton, ID: IDCANCEL, Style: dlgtemplate.WS_TABSTOP, Title: labelOr(o.CancelLabel, "Cancel")},
	)

	items, size := dlgtemplate.Stack(o.Layout.WithDefaults(), entries)
	return dlgtemplate.Template{
		Title: o.Title,
		Font:  o.Font,
		Style: dlgtemplate.DefaultDialogStyle,
		Rect:  size,
		Items: items,
	}, nil
}

// BuildDialog assembles the binary dialog template.
func BuildDialog(o DialogOptions) ([]byte, error) {
	t, err := o.Template()
	if err != nil {
		return nil, err
	}
	return dlgtemplate.Build(t)
}

// DefaultOption returns the option id checked when the dialog opens.
func (o DialogOptions) DefaultOption() uint32 {
	if len(o.Options) == 0 {
		return 0
	}
	for _, opt := range o.Options {
		if opt.Action == o.Default {
			return opt.Action.ID()
		}
	}
	return o.Options[0].Action.ID()
}

func labelOr(label, fallback string) string {
	if label == "" {
		return fallback
	}
	return label
}
