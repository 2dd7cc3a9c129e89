// Package grubenv edits GRUB's environment block, a fixed-size text file of
// key=value lines padded with '#'.
package grubenv

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	// Capacity is the size of the environment block. GRUB reads it as a
	// fixed block, so every rewrite writes exactly this many bytes.
	Capacity = 1024

	// Filler pads the block up to Capacity.
	Filler = '#'

	// Header is the first line grub-editenv writes.
	Header = "# GRUB Environment Block\n"
)

var (
	ErrIoUnavailable     = errors.New("environment block unavailable")
	ErrIoWriteIncomplete = errors.New("environment block write incomplete")
	ErrContentTooLarge   = errors.New("environment block content too large")
)

// RewriteConfig removes every line starting with keyPrefix from the file at
// path and pads the rest back to Capacity bytes, in place.
func RewriteConfig(path, keyPrefix string) error {
	return rewrite(path, func(lines []string) []string {
		return dropPrefix(lines, keyPrefix)
	})
}

// SetValue replaces every key= line with a single key=value line placed after
// the remaining variables, in place.
func SetValue(path, key, value string) error {
	if err := validKey(key); err != nil {
		return err
	}
	if strings.ContainsAny(value, "\n") {
		return fmt.Errorf("value for %q contains a newline", key)
	}
	return rewrite(path, func(lines []string) []string {
		lines = terminate(dropPrefix(lines, key+"="))
		return append(lines, key+"="+value+"\n")
	})
}

// Create writes an empty environment block at path, replacing any file there.
func Create(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIoUnavailable, err)
	}
	defer f.Close()
	return writeBlock(f, pad([]string{Header}))
}

func rewrite(path string, edit func([]string) []string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIoUnavailable, err)
	}
	defer f.Close()

	lines, err := readLines(f)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrIoUnavailable, path, err)
	}

	block := pad(edit(lines))
	if block == nil {
		return fmt.Errorf("%s: %w", path, ErrContentTooLarge)
	}
	if err := writeBlock(f, block); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// readLines splits the file into lines that keep their terminators. Like
// fgets with a Capacity+1 buffer, a longer line is returned in pieces.
func readLines(r io.Reader) ([]string, error) {
	br := bufio.NewReaderSize(r, Capacity+1)
	var lines []string
	var cur []byte
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		cur = append(cur, b)
		if b == '\n' || len(cur) == Capacity {
			lines = append(lines, string(cur))
			cur = nil
		}
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines, nil
}

func dropPrefix(lines []string, prefix string) []string {
	out := lines[:0:0]
	for _, l := range lines {
		if !strings.HasPrefix(l, prefix) {
			out = append(out, l)
		}
	}
	return out
}

// terminate drops the filler from an unterminated last line and ends it with
// a newline, so a line appended after it starts on its own. A last line that
// is only filler is removed.
func terminate(lines []string) []string {
	n := len(lines)
	if n == 0 || strings.HasSuffix(lines[n-1], "\n") {
		return lines
	}
	last := strings.TrimRight(lines[n-1], string(Filler))
	if last == "" {
		return lines[:n-1]
	}
	return append(lines[:n-1:n-1], last+"\n")
}

// pad joins lines and fills the block to Capacity. It returns nil when the
// content does not fit.
func pad(lines []string) []byte {
	var b bytes.Buffer
	b.Grow(Capacity)
	for _, l := range lines {
		b.WriteString(l)
	}
	if b.Len() > Capacity {
		return nil
	}
	b.Write(bytes.Repeat([]byte{Filler}, Capacity-b.Len()))
	return b.Bytes()
}

func writeBlock(f *os.File, block []byte) error {
	n, err := f.WriteAt(block, 0)
	if err != nil {
		return fmt.Errorf("%w: wrote %d of %d bytes: %w", ErrIoWriteIncomplete, n, len(block), err)
	}
	if n != len(block) {
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrIoWriteIncomplete, n, len(block))
	}
	// A block that used to be longer must not keep its old tail.
	if err := f.Truncate(int64(len(block))); err != nil {
		return fmt.Errorf("%w: truncate: %w", ErrIoWriteIncomplete, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: sync: %w", ErrIoWriteIncomplete, err)
	}
	return nil
}

func validKey(key string) error {
	if key == "" || strings.ContainsAny(key, "=\n#") {
		return fmt.Errorf("invalid environment key %q", key)
	}
	return nil
}
