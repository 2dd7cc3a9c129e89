package grubenv

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoad(t *testing.T) {
	path := writeBlockFile(t, Header+"abc=xyz\n#ignored line\njjj=123\n")

	env, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v, ok := env.Get("abc"); !ok || v != "xyz" {
		t.Fatalf("abc = %q, %v", v, ok)
	}
	if v, ok := env.Get("jjj"); !ok || v != "123" {
		t.Fatalf("jjj = %q, %v", v, ok)
	}
	if _, ok := env.Get("ignored line"); ok {
		t.Fatalf("comment parsed as a variable")
	}
	if keys := env.Keys(); !reflect.DeepEqual(keys, []string{"abc", "jjj"}) {
		t.Fatalf("keys = %v", keys)
	}
	if env.String() != "abc=xyz\njjj=123\n" {
		t.Fatalf("String() = %q", env.String())
	}
}

func TestEnvSetAndUnset(t *testing.T) {
	path := writeBlockFile(t, Header+"abc=xyz\njjj=123\n")
	env, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := env.Set("jjj", "999"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := env.Unset("abc"); err != nil {
		t.Fatalf("Unset: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reflect.DeepEqual(reloaded.Map(), map[string]string{"jjj": "999"}) {
		t.Fatalf("reloaded = %v", reloaded.Map())
	}
	if !reflect.DeepEqual(env.Map(), reloaded.Map()) {
		t.Fatalf("view %v differs from disk %v", env.Map(), reloaded.Map())
	}
	if got := readBlockFile(t, path); got != padded(Header+"jjj=999\n") {
		t.Fatalf("block = %q", got)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, ErrIoUnavailable) {
		t.Fatalf("expected ErrIoUnavailable, got %v", err)
	}
}
