package dlgtemplate

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestCursorScalars(t *testing.T) {
	c := NewCursor(0)
	c.WriteU8(0x12)
	c.WriteU16(0x3456)
	c.WriteU32(0x789abcde)

	want := []byte{0x12, 0x56, 0x34, 0xde, 0xbc, 0x9a, 0x78}
	if !bytes.Equal(c.Bytes(), want) {
		t.Fatalf("bytes = % x, want % x", c.Bytes(), want)
	}
	if c.Len() != 7 {
		t.Fatalf("len = %d, want 7", c.Len())
	}
}

func TestCursorAlign4(t *testing.T) {
	for start := 0; start < 9; start++ {
		c := NewCursor(1)
		for i := 0; i < start; i++ {
			c.WriteU8(0xff)
		}
		c.Align4()
		if c.Len()%4 != 0 {
			t.Fatalf("start %d: len %d not aligned", start, c.Len())
		}
		if c.Len()-start > 3 {
			t.Fatalf("start %d: moved %d bytes", start, c.Len()-start)
		}
		for i := start; i < c.Len(); i++ {
			if c.Bytes()[i] != 0 {
				t.Fatalf("start %d: padding byte %d = %#x", start, i, c.Bytes()[i])
			}
		}
	}
}

func TestWriteText(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
	}{
		{"", []byte{0, 0}},
		{"Hé", []byte{'H', 0, 0xe9, 0, 0, 0}},
		{"😀", []byte{0x3d, 0xd8, 0x00, 0xde, 0, 0}},
	}
	for _, tt := range tests {
		c := NewCursor(0)
		if err := c.WriteText("text", tt.in); err != nil {
			t.Fatalf("WriteText(%q): %v", tt.in, err)
		}
		if !bytes.Equal(c.Bytes(), tt.want) {
			t.Fatalf("WriteText(%q) = % x, want % x", tt.in, c.Bytes(), tt.want)
		}
		if c.Len() != TextSize(tt.in) {
			t.Fatalf("TextSize(%q) = %d, cursor advanced %d", tt.in, TextSize(tt.in), c.Len())
		}
	}
}

func TestWriteTextLimit(t *testing.T) {
	c := NewCursor(0)
	if err := c.WriteText("fits", strings.Repeat("a", MaxTextUnits-1)); err != nil {
		t.Fatalf("text at the limit: %v", err)
	}
	before := c.Len()

	err := c.WriteText("too long", strings.Repeat("a", MaxTextUnits))
	if !errors.Is(err, ErrEncodingOverflow) {
		t.Fatalf("expected ErrEncodingOverflow, got %v", err)
	}
	if c.Len() != before {
		t.Fatalf("rejected text moved the cursor from %d to %d", before, c.Len())
	}

	err = c.WriteText("nul", "O\x00K")
	if !errors.Is(err, ErrEmbeddedNUL) {
		t.Fatalf("expected ErrEmbeddedNUL, got %v", err)
	}
	if c.Len() != before {
		t.Fatalf("text with NUL moved the cursor from %d to %d", before, c.Len())
	}

	c.SetTextLimit(0)
	if err := c.WriteText("unbounded", strings.Repeat("a", 200)); err != nil {
		t.Fatalf("unbounded text: %v", err)
	}
}
