package dlgtemplate

// Layout holds the spacing used by Stack, in dialog units.
type Layout struct {
	Margin         int16 `json:"margin" toml:"margin"`
	Spacing        int16 `json:"spacing" toml:"spacing"`
	Width          int16 `json:"width" toml:"width"`
	OptionHeight   int16 `json:"option_height" toml:"option_height"`
	CheckboxHeight int16 `json:"checkbox_height" toml:"checkbox_height"`
	ButtonWidth    int16 `json:"button_width" toml:"button_width"`
	ButtonHeight   int16 `json:"button_height" toml:"button_height"`
}

// DefaultLayout matches the spacing of a stock Windows message dialog.
func DefaultLayout() Layout {
	return Layout{
		Margin:         7,
		Spacing:        4,
		Width:          186,
		OptionHeight:   10,
		CheckboxHeight: 10,
		ButtonWidth:    50,
		ButtonHeight:   14,
	}
}

// WithDefaults fills zero fields from DefaultLayout.
func (l Layout) WithDefaults() Layout {
	d := DefaultLayout()
	if l.Margin <= 0 {
		l.Margin = d.Margin
	}
	if l.Spacing < 0 {
		l.Spacing = d.Spacing
	}
	if l.Width <= 0 {
		l.Width = d.Width
	}
	if l.OptionHeight <= 0 {
		l.OptionHeight = d.OptionHeight
	}
	if l.CheckboxHeight <= 0 {
		l.CheckboxHeight = d.CheckboxHeight
	}
	if l.ButtonWidth <= 0 {
		l.ButtonWidth = d.ButtonWidth
	}
	if l.ButtonHeight <= 0 {
		l.ButtonHeight = d.ButtonHeight
	}
	return l
}

// Entry is an item before layout.
type Entry struct {
	Kind  Kind
	ID    uint32
	Style uint32
	Title string
}

// Stack places option buttons and checkboxes one below the other, then puts
// all push buttons on a single right-aligned row under them. Every entry
// shifts the ones after it down by its height plus the spacing. Items keep
// the entry order; the returned size is the client area of the dialog.
func Stack(l Layout, entries []Entry) ([]Item, Rect) {
	items := make([]Item, 0, len(entries))
	y := l.Margin
	rowWidth := l.Width - 2*l.Margin

	var buttons []int
	for _, e := range entries {
		it := Item{Kind: e.Kind, ID: e.ID, Style: e.Style, Title: e.Title}
		switch e.Kind {
		case PushButton, DefaultPushButton:
			buttons = append(buttons, len(items))
		default:
			h := l.OptionHeight
			if e.Kind == Checkbox {
				h = l.CheckboxHeight
			}
			it.Rect = Rect{X: l.Margin, Y: y, W: rowWidth, H: h}
			y += h + l.Spacing
		}
		items = append(items, it)
	}

	height := y - l.Spacing + l.Margin
	if len(items) == 0 {
		height = 2 * l.Margin
	}
	if len(buttons) > 0 {
		n := int16(len(buttons))
		x := l.Width - l.Margin - n*l.ButtonWidth - (n-1)*l.Spacing
		if len(buttons) == len(items) {
			y = l.Margin
		} else {
			y += l.Spacing
		}
		for _, i := range buttons {
			items[i].Rect = Rect{X: x, Y: y, W: l.ButtonWidth, H: l.ButtonHeight}
			x += l.ButtonWidth + l.Spacing
		}
		height = y + l.ButtonHeight + l.Margin
	}

	return items, Rect{W: l.Width, H: height}
}
