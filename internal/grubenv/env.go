package grubenv

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Env is a read-only view of the variables in an environment block.
type Env struct {
	path   string
	values map[string]string
	order  []string
}

// Load parses the block at path. Comment and padding lines are skipped.
func Load(path string) (*Env, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIoUnavailable, err)
	}
	return parse(path, string(data)), nil
}

func parse(path, content string) *Env {
	e := &Env{path: path, values: make(map[string]string)}
	for _, line := range strings.Split(content, "\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if _, seen := e.values[key]; !seen {
			e.order = append(e.order, key)
		}
		e.values[key] = value
	}
	return e
}

// Path returns the file the block was loaded from.
func (e *Env) Path() string {
	return e.path
}

func (e *Env) Get(key string) (string, bool) {
	v, ok := e.values[key]
	return v, ok
}

// Keys returns the variable names in file order.
func (e *Env) Keys() []string {
	return append([]string(nil), e.order...)
}

// Map returns a copy of all variables.
func (e *Env) Map() map[string]string {
	out := make(map[string]string, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out
}

// Set writes key=value to the block on disk and updates the view.
func (e *Env) Set(key, value string) error {
	if err := SetValue(e.path, key, value); err != nil {
		return err
	}
	if _, seen := e.values[key]; seen {
		e.order = removeKey(e.order, key)
	}
	e.order = append(e.order, key)
	e.values[key] = value
	return nil
}

// Unset removes key from the block on disk and from the view.
func (e *Env) Unset(key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := RewriteConfig(e.path, key+"="); err != nil {
		return err
	}
	delete(e.values, key)
	e.order = removeKey(e.order, key)
	return nil
}

func removeKey(keys []string, key string) []string {
	out := keys[:0:0]
	for _, k := range keys {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}

// String renders the variables as sorted key=value lines.
func (e *Env) String() string {
	keys := e.Keys()
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, e.values[k])
	}
	return b.String()
}
