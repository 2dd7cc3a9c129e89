// Package dlgtemplate builds extended Win32 dialog templates (DLGTEMPLATEEX)
// in memory so a modal dialog can be shown without a compiled resource file.
package dlgtemplate

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// MaxTextUnits is the default per-field text capacity in UTF-16 code units,
// terminator included.
const MaxTextUnits = 50

// ErrEncodingOverflow is returned when a text field does not fit its capacity.
var ErrEncodingOverflow = errors.New("text exceeds field capacity")

// ErrEmbeddedNUL is returned for text containing U+0000, which would end the
// field early for every reader.
var ErrEmbeddedNUL = errors.New("text contains NUL")

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Cursor is a growable byte buffer with a write offset.
// Bytes skipped by Align4 are always zero.
type Cursor struct {
	buf       []byte
	off       int
	textLimit int
}

// NewCursor returns a cursor with room for sizeHint bytes before it has to grow.
func NewCursor(sizeHint int) *Cursor {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Cursor{
		buf:       make([]byte, 0, sizeHint),
		textLimit: MaxTextUnits,
	}
}

// SetTextLimit sets the per-field text capacity. n <= 0 removes the cap.
func (c *Cursor) SetTextLimit(n int) {
	c.textLimit = n
}

// Len returns the write offset.
func (c *Cursor) Len() int {
	return c.off
}

// Bytes returns the encoded buffer up to the write offset.
func (c *Cursor) Bytes() []byte {
	return c.buf[:c.off]
}

// reserve makes sure n bytes are writable at the offset and returns them.
func (c *Cursor) reserve(n int) []byte {
	end := c.off + n
	if end > len(c.buf) {
		if end > cap(c.buf) {
			grown := make([]byte, end, 2*end)
			copy(grown, c.buf)
			c.buf = grown
		} else {
			c.buf = c.buf[:end]
			clear(c.buf[c.off:end])
		}
	}
	dst := c.buf[c.off:end]
	c.off = end
	return dst
}

func (c *Cursor) WriteU8(v uint8) {
	c.reserve(1)[0] = v
}

func (c *Cursor) WriteU16(v uint16) {
	binary.LittleEndian.PutUint16(c.reserve(2), v)
}

func (c *Cursor) WriteU32(v uint32) {
	binary.LittleEndian.PutUint32(c.reserve(4), v)
}

// WriteText writes s as NUL-terminated UTF-16LE and advances by
// (units+1)*2 bytes. Nothing is written when s does not fit the text limit
// or contains NUL.
func (c *Cursor) WriteText(field, s string) error {
	if strings.IndexByte(s, 0) >= 0 {
		return fmt.Errorf("%s: %w", field, ErrEmbeddedNUL)
	}
	encoded, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return fmt.Errorf("encode %s: %w", field, err)
	}
	units := len(encoded) / 2
	if c.textLimit > 0 && units+1 > c.textLimit {
		return fmt.Errorf("%s: %d code units, limit %d: %w", field, units+1, c.textLimit, ErrEncodingOverflow)
	}
	copy(c.reserve(len(encoded)), encoded)
	c.WriteU16(0)
	return nil
}

// Align4 moves the offset to the next multiple of 4 without writing.
func (c *Cursor) Align4() {
	if pad := align4(c.off) - c.off; pad > 0 {
		c.reserve(pad)
	}
}

func align4(n int) int {
	return (n + 3) &^ 3
}

// TextSize returns the encoded size of s in bytes, terminator included.
func TextSize(s string) int {
	encoded, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return 0
	}
	return len(encoded) + 2
}
