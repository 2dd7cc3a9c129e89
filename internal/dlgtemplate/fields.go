package dlgtemplate

import (
	"encoding/binary"
	"fmt"
)

// field is one fixed-width scalar of a packed ABI record.
type field struct {
	name  string
	width int
}

// Fixed part of DLGTEMPLATEEX, up to (not including) the menu reference.
var headerFields = []field{
	{"dlgVer", 2},
	{"signature", 2},
	{"helpID", 4},
	{"exStyle", 4},
	{"style", 4},
	{"cDlgItems", 2},
	{"x", 2},
	{"y", 2},
	{"cx", 2},
	{"cy", 2},
}

// Fixed part of DLGITEMTEMPLATEEX, up to (not including) the title: 28
// bytes, with the DWORD id of the winuser.h layout rather than the WORD id of
// the older DLGITEMTEMPLATE. The class is always an ordinal, so its two
// units are part of the table.
var itemFields = []field{
	{"helpID", 4},
	{"exStyle", 4},
	{"style", 4},
	{"x", 2},
	{"y", 2},
	{"cx", 2},
	{"cy", 2},
	{"id", 4},
	{"classMarker", 2},
	{"classOrdinal", 2},
}

// Font descriptor that follows the dialog title when DS_SETFONT is set.
var fontFields = []field{
	{"pointsize", 2},
	{"weight", 2},
	{"italic", 1},
	{"charset", 1},
}

func tableSize(fields []field) int {
	n := 0
	for _, f := range fields {
		n += f.width
	}
	return n
}

var (
	headerFixedSize = tableSize(headerFields)
	itemFixedSize   = tableSize(itemFields)
	fontFixedSize   = tableSize(fontFields)
)

// writeFields writes values in table order. values must match the table length.
func writeFields(c *Cursor, fields []field, values []uint32) {
	if len(values) != len(fields) {
		panic(fmt.Sprintf("dlgtemplate: %d values for %d fields", len(values), len(fields)))
	}
	for i, f := range fields {
		switch f.width {
		case 1:
			c.WriteU8(uint8(values[i]))
		case 2:
			c.WriteU16(uint16(values[i]))
		case 4:
			c.WriteU32(values[i])
		}
	}
}

// reader walks an encoded template.
type reader struct {
	buf []byte
	off int
}

func (r *reader) need(n int, what string) error {
	if r.off+n > len(r.buf) {
		return fmt.Errorf("truncated template reading %s at offset %d", what, r.off)
	}
	return nil
}

func (r *reader) readFields(fields []field) (map[string]uint32, error) {
	out := make(map[string]uint32, len(fields))
	for _, f := range fields {
		if err := r.need(f.width, f.name); err != nil {
			return nil, err
		}
		switch f.width {
		case 1:
			out[f.name] = uint32(r.buf[r.off])
		case 2:
			out[f.name] = uint32(binary.LittleEndian.Uint16(r.buf[r.off:]))
		case 4:
			out[f.name] = binary.LittleEndian.Uint32(r.buf[r.off:])
		}
		r.off += f.width
	}
	return out, nil
}

func (r *reader) readU16(what string) (uint16, error) {
	if err := r.need(2, what); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

func (r *reader) readText(what string) (string, error) {
	start := r.off
	for {
		u, err := r.readU16(what)
		if err != nil {
			return "", err
		}
		if u == 0 {
			break
		}
	}
	decoded, err := utf16le.NewDecoder().Bytes(r.buf[start : r.off-2])
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", what, err)
	}
	return string(decoded), nil
}

func (r *reader) align4() {
	r.off = align4(r.off)
}
