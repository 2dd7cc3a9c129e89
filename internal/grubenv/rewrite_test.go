package grubenv

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeBlockFile(t *testing.T, content string) string {
	t.Helper()
	if len(content) < Capacity {
		content += strings.Repeat("#", Capacity-len(content))
	}
	path := filepath.Join(t.TempDir(), "grubenv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write block: %v", err)
	}
	return path
}

func readBlockFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read block: %v", err)
	}
	return string(data)
}

func padded(s string) string {
	return s + strings.Repeat("#", Capacity-len(s))
}

func TestRewriteConfigRemovesSavedEntry(t *testing.T) {
	path := writeBlockFile(t, "saved_entry=3\nother=1\n")

	if err := RewriteConfig(path, "saved_entry="); err != nil {
		t.Fatalf("RewriteConfig: %v", err)
	}
	got := readBlockFile(t, path)
	if want := padded("other=1\n"); got != want {
		t.Fatalf("block = %q, want %q", got, want)
	}
}

func TestRewriteConfigKeepsOrder(t *testing.T) {
	content := Header + "a=1\nsaved_entry=Windows Boot Manager\nb=2\nsaved_entry=2\nc=3\n"
	path := writeBlockFile(t, content)

	if err := RewriteConfig(path, "saved_entry="); err != nil {
		t.Fatalf("RewriteConfig: %v", err)
	}
	got := readBlockFile(t, path)
	if len(got) != Capacity {
		t.Fatalf("block is %d bytes", len(got))
	}
	if want := padded(Header + "a=1\nb=2\nc=3\n"); got != want {
		t.Fatalf("block = %q, want %q", got, want)
	}
}

func TestRewriteConfigIdempotent(t *testing.T) {
	path := writeBlockFile(t, Header+"saved_entry=0\nnext_entry=\n")
	if err := RewriteConfig(path, "saved_entry="); err != nil {
		t.Fatalf("first rewrite: %v", err)
	}
	first := readBlockFile(t, path)
	if err := RewriteConfig(path, "saved_entry="); err != nil {
		t.Fatalf("second rewrite: %v", err)
	}
	if second := readBlockFile(t, path); second != first {
		t.Fatalf("second rewrite changed the block:\n%q\n%q", first, second)
	}
}

func TestRewriteConfigNoMatch(t *testing.T) {
	content := padded(Header + "x=1\n")
	path := writeBlockFile(t, content)
	if err := RewriteConfig(path, "saved_entry="); err != nil {
		t.Fatalf("RewriteConfig: %v", err)
	}
	if got := readBlockFile(t, path); got != content {
		t.Fatalf("block changed: %q", got)
	}
}

func TestRewriteConfigFixesSize(t *testing.T) {
	dir := t.TempDir()
	short := filepath.Join(dir, "short")
	if err := os.WriteFile(short, []byte("saved_entry=1\nk=v\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	long := filepath.Join(dir, "long")
	// The oversized value is split like fgets would; only its first piece matches.
	if err := os.WriteFile(long, []byte("k=v\nextra="+strings.Repeat("x", 1100)+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := RewriteConfig(short, "saved_entry="); err != nil {
		t.Fatalf("short: %v", err)
	}
	if got := readBlockFile(t, short); got != padded("k=v\n") {
		t.Fatalf("short block = %q", got)
	}

	if err := RewriteConfig(long, "extra="); err != nil {
		t.Fatalf("long: %v", err)
	}
	if got := readBlockFile(t, long); len(got) != Capacity || !strings.HasPrefix(got, "k=v\n") {
		t.Fatalf("long block is %d bytes: %q", len(got), got[:16])
	}
}

func TestRewriteConfigMissingFile(t *testing.T) {
	err := RewriteConfig(filepath.Join(t.TempDir(), "missing"), "saved_entry=")
	if !errors.Is(err, ErrIoUnavailable) {
		t.Fatalf("expected ErrIoUnavailable, got %v", err)
	}
}

func TestRewriteConfigTooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grubenv")
	content := strings.Repeat("k=vvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvv\n", 40)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := RewriteConfig(path, "saved_entry="); !errors.Is(err, ErrContentTooLarge) {
		t.Fatalf("expected ErrContentTooLarge, got %v", err)
	}
	if got := readBlockFile(t, path); got != content {
		t.Fatalf("oversized block was modified")
	}
}

func TestSetValue(t *testing.T) {
	path := writeBlockFile(t, Header+"saved_entry=0\nother=1\n")

	if err := SetValue(path, "saved_entry", "Windows Boot Manager (on /dev/sda1)"); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	want := padded(Header + "other=1\nsaved_entry=Windows Boot Manager (on /dev/sda1)\n")
	if got := readBlockFile(t, path); got != want {
		t.Fatalf("block = %q, want %q", got, want)
	}

	if err := SetValue(path, "saved_entry", "2"); err != nil {
		t.Fatalf("SetValue again: %v", err)
	}
	if got := readBlockFile(t, path); got != padded(Header+"other=1\nsaved_entry=2\n") {
		t.Fatalf("block after second set = %q", got)
	}
}

func TestSetValueUnterminatedLastLine(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"no padding", "other=1", "other=1\nsaved_entry=2\n"},
		{"padding after value", padded("other=1"), "other=1\nsaved_entry=2\n"},
		{"padding only", padded(Header), Header + "saved_entry=2\n"},
	}
	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), "grubenv")
		if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if err := SetValue(path, "saved_entry", "2"); err != nil {
			t.Fatalf("%s: SetValue: %v", tt.name, err)
		}
		if got := readBlockFile(t, path); got != padded(tt.want) {
			t.Fatalf("%s: block = %q, want %q", tt.name, got, padded(tt.want))
		}
		env, err := Load(path)
		if err != nil {
			t.Fatalf("%s: Load: %v", tt.name, err)
		}
		if v, ok := env.Get("saved_entry"); !ok || v != "2" {
			t.Fatalf("%s: saved_entry = %q, %v", tt.name, v, ok)
		}
	}
}

func TestSetValueRejectsBadInput(t *testing.T) {
	path := writeBlockFile(t, Header)
	for _, tc := range []struct{ key, value string }{
		{"", "x"},
		{"a=b", "x"},
		{"k", "line\nbreak"},
	} {
		if err := SetValue(path, tc.key, tc.value); err == nil {
			t.Fatalf("SetValue(%q, %q) succeeded", tc.key, tc.value)
		}
	}
}

func TestCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grubenv")
	if err := Create(path); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got := []byte(readBlockFile(t, path))
	if len(got) != Capacity || !bytes.HasPrefix(got, []byte(Header)) {
		t.Fatalf("unexpected block %q", got[:32])
	}
}

func TestReadLinesSplitsLongLines(t *testing.T) {
	long := strings.Repeat("a", Capacity+10) + "\nb=1\n"
	lines, err := readLines(strings.NewReader(long))
	if err != nil {
		t.Fatalf("readLines: %v", err)
	}
	if len(lines) != 3 || len(lines[0]) != Capacity || lines[1] != strings.Repeat("a", 10)+"\n" || lines[2] != "b=1\n" {
		t.Fatalf("unexpected lines %d: %q", len(lines), lines[1:])
	}
}
