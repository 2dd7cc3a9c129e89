package dlgtemplate

import (
	"fmt"
	"math"
)

// Window and dialog styles used by the assembler.
const (
	WS_POPUP   = 0x80000000
	WS_CHILD   = 0x40000000
	WS_VISIBLE = 0x10000000
	WS_CAPTION = 0x00C00000
	WS_SYSMENU = 0x00080000
	WS_GROUP   = 0x00020000
	WS_TABSTOP = 0x00010000

	DS_SETFONT    = 0x00000040
	DS_MODALFRAME = 0x00000080
	DS_CENTER     = 0x00000800

	BS_PUSHBUTTON      = 0x0
	BS_DEFPUSHBUTTON   = 0x1
	BS_AUTOCHECKBOX    = 0x3
	BS_AUTORADIOBUTTON = 0x9
	bsTypeMask         = 0xF

	baseItemStyle = WS_CHILD | WS_VISIBLE

	dialogVersion   = 1
	dialogSignature = 0xFFFF
	ordinalMarker   = 0xFFFF
	buttonClass     = 0x0080
)

// Kind is the native control kind of an item.
type Kind int

const (
	OptionButton Kind = iota
	Checkbox
	PushButton
	DefaultPushButton
)

func (k Kind) String() string {
	switch k {
	case OptionButton:
		return "option"
	case Checkbox:
		return "checkbox"
	case PushButton:
		return "button"
	case DefaultPushButton:
		return "default-button"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) styleBits() uint32 {
	switch k {
	case OptionButton:
		return BS_AUTORADIOBUTTON
	case Checkbox:
		return BS_AUTOCHECKBOX
	case DefaultPushButton:
		return BS_DEFPUSHBUTTON
	default:
		return BS_PUSHBUTTON
	}
}

func kindFromStyle(style uint32) (Kind, error) {
	switch style & bsTypeMask {
	case BS_AUTORADIOBUTTON:
		return OptionButton, nil
	case BS_AUTOCHECKBOX:
		return Checkbox, nil
	case BS_DEFPUSHBUTTON:
		return DefaultPushButton, nil
	case BS_PUSHBUTTON:
		return PushButton, nil
	}
	return 0, fmt.Errorf("unsupported button style %#x", style&bsTypeMask)
}

// Rect is a position and size in dialog units.
type Rect struct {
	X, Y, W, H int16
}

// Item describes one control record.
type Item struct {
	Kind    Kind
	ID      uint32
	Style   uint32 // extra style bits, or'ed with the base and kind styles
	ExStyle uint32
	Rect    Rect
	Title   string
}

// Font is the dialog font descriptor.
type Font struct {
	PointSize uint16
	Weight    uint16
	Italic    bool
	Charset   uint8
	Face      string
}

// Template is the logical description of a dialog.
type Template struct {
	Title   string
	Font    Font
	Style   uint32 // DS_SETFONT is always added
	ExStyle uint32
	Rect    Rect
	Items   []Item
}

// DefaultDialogStyle is a centered modal popup with a caption and system menu.
const DefaultDialogStyle = WS_POPUP | WS_CAPTION | WS_SYSMENU | DS_MODALFRAME | DS_CENTER

// Build encodes t as a DLGTEMPLATEEX followed by one DLGITEMTEMPLATEEX per
// item, in the order given. On error no buffer is returned.
func Build(t Template) ([]byte, error) {
	if len(t.Items) > math.MaxUint16 {
		return nil, fmt.Errorf("too many dialog items: %d", len(t.Items))
	}

	c := NewCursor(Size(t))
	writeFields(c, headerFields, []uint32{
		dialogVersion,
		dialogSignature,
		0,
		t.ExStyle,
		t.Style | DS_SETFONT,
		uint32(len(t.Items)),
		u16(t.Rect.X), u16(t.Rect.Y), u16(t.Rect.W), u16(t.Rect.H),
	})
	c.WriteU16(0) // no menu
	c.WriteU16(0) // default dialog class
	if err := c.WriteText("dialog title", t.Title); err != nil {
		return nil, err
	}

	italic := uint32(0)
	if t.Font.Italic {
		italic = 1
	}
	writeFields(c, fontFields, []uint32{
		uint32(t.Font.PointSize),
		uint32(t.Font.Weight),
		italic,
		uint32(t.Font.Charset),
	})
	if err := c.WriteText("font face", t.Font.Face); err != nil {
		return nil, err
	}

	for i, it := range t.Items {
		c.Align4()
		writeFields(c, itemFields, []uint32{
			0,
			it.ExStyle,
			baseItemStyle | it.Kind.styleBits() | it.Style,
			u16(it.Rect.X), u16(it.Rect.Y), u16(it.Rect.W), u16(it.Rect.H),
			it.ID,
			ordinalMarker,
			buttonClass,
		})
		if err := c.WriteText(fmt.Sprintf("item %d title", i), it.Title); err != nil {
			return nil, err
		}
		c.WriteU16(0) // extra data count
	}

	return c.Bytes(), nil
}

func u16(v int16) uint32 {
	return uint32(uint16(v))
}

// HeaderSize is the encoded size of the dialog header of t.
func HeaderSize(t Template) int {
	return headerFixedSize + 2 + 2 + TextSize(t.Title) + fontFixedSize + TextSize(t.Font.Face)
}

// ItemSize is the number of bytes it occupies when written at offset,
// alignment padding included.
func ItemSize(offset int, it Item) int {
	return align4(offset) - offset + itemFixedSize + TextSize(it.Title) + 2
}

// Size is the exact encoded length of t.
func Size(t Template) int {
	n := HeaderSize(t)
	for _, it := range t.Items {
		n += ItemSize(n, it)
	}
	return n
}

// Parse decodes a buffer produced by Build. Item styles come back without
// the base and kind bits, so Parse(Build(t)) reproduces t.
func Parse(buf []byte) (*Template, error) {
	r := &reader{buf: buf}
	h, err := r.readFields(headerFields)
	if err != nil {
		return nil, err
	}
	if h["dlgVer"] != dialogVersion || h["signature"] != dialogSignature {
		return nil, fmt.Errorf("not an extended dialog template (version %d, signature %#x)", h["dlgVer"], h["signature"])
	}
	if err := r.skipNameOrOrdinal("menu"); err != nil {
		return nil, err
	}
	if err := r.skipNameOrOrdinal("class"); err != nil {
		return nil, err
	}

	t := &Template{
		Style:   h["style"] &^ DS_SETFONT,
		ExStyle: h["exStyle"],
		Rect:    rectOf(h),
	}
	if t.Title, err = r.readText("dialog title"); err != nil {
		return nil, err
	}
	if h["style"]&DS_SETFONT != 0 {
		f, err := r.readFields(fontFields)
		if err != nil {
			return nil, err
		}
		t.Font = Font{
			PointSize: uint16(f["pointsize"]),
			Weight:    uint16(f["weight"]),
			Italic:    f["italic"] != 0,
			Charset:   uint8(f["charset"]),
		}
		if t.Font.Face, err = r.readText("font face"); err != nil {
			return nil, err
		}
	}

	count := int(h["cDlgItems"])
	t.Items = make([]Item, 0, count)
	for i := 0; i < count; i++ {
		r.align4()
		f, err := r.readFields(itemFields)
		if err != nil {
			return nil, err
		}
		if f["classMarker"] != ordinalMarker || f["classOrdinal"] != buttonClass {
			return nil, fmt.Errorf("item %d: unsupported control class", i)
		}
		kind, err := kindFromStyle(f["style"])
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		it := Item{
			Kind:    kind,
			ID:      f["id"],
			Style:   f["style"] &^ (baseItemStyle | bsTypeMask),
			ExStyle: f["exStyle"],
			Rect:    rectOf(f),
		}
		if it.Title, err = r.readText(fmt.Sprintf("item %d title", i)); err != nil {
			return nil, err
		}
		extra, err := r.readU16("extra data count")
		if err != nil {
			return nil, err
		}
		if extra > 0 {
			if err := r.need(int(extra), "extra data"); err != nil {
				return nil, err
			}
			r.off += int(extra)
		}
		t.Items = append(t.Items, it)
	}
	return t, nil
}

func rectOf(f map[string]uint32) Rect {
	return Rect{
		X: int16(uint16(f["x"])),
		Y: int16(uint16(f["y"])),
		W: int16(uint16(f["cx"])),
		H: int16(uint16(f["cy"])),
	}
}

func (r *reader) skipNameOrOrdinal(what string) error {
	first, err := r.readU16(what)
	if err != nil {
		return err
	}
	switch first {
	case 0:
		return nil
	case ordinalMarker:
		_, err := r.readU16(what)
		return err
	}
	r.off -= 2
	_, err = r.readText(what)
	return err
}
