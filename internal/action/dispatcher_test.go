package action

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"myreboot/internal/grubenv"
)

type recorder struct {
	calls []string
	err   map[string]error
}

func (r *recorder) Set(key, value string) error {
	r.calls = append(r.calls, "set "+key+"="+value)
	return r.err["set"]
}

func (r *recorder) Unset(key string) error {
	r.calls = append(r.calls, "unset "+key)
	return r.err["unset"]
}

func (r *recorder) RunPreAction(_ context.Context, sel Selection) error {
	r.calls = append(r.calls, "pre "+sel.Action.String())
	return r.err["pre"]
}

func (r *recorder) Run(_ context.Context, argv []string) error {
	r.calls = append(r.calls, "run "+strings.Join(argv, " "))
	return r.err["run"]
}

func newDispatcher(r *recorder, host string) *Dispatcher {
	return &Dispatcher{
		Host:      host,
		Entries:   map[string]string{OSWindows: "Windows Boot Manager", OSLinux: ""},
		Env:       r,
		PreAction: r,
		Runner:    r,
		Reboot:    "shutdown /g /t 0",
		Shutdown:  "systemctl poweroff",
	}
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		name string
		host string
		sel  Selection
		want []string
	}{
		{"nothing", OSWindows, Selection{RunPreAction: true}, nil},
		{"windows to linux", OSWindows, Selection{Action: RebootOther}, []string{"unset saved_entry", "run shutdown /g /t 0"}},
		{"windows again", OSWindows, Selection{Action: RebootSame, RunPreAction: true}, []string{"pre reboot-same", "set saved_entry=Windows Boot Manager", "run shutdown /g /t 0"}},
		{"linux to windows", OSLinux, Selection{Action: RebootOther}, []string{"set saved_entry=Windows Boot Manager", "run shutdown /g /t 0"}},
		{"power off", OSLinux, Selection{Action: PowerOff}, []string{"run systemctl poweroff"}},
	}
	for _, tt := range tests {
		r := &recorder{}
		if err := newDispatcher(r, tt.host).Dispatch(context.Background(), tt.sel); err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if !reflect.DeepEqual(r.calls, tt.want) {
			t.Fatalf("%s: calls = %q, want %q", tt.name, r.calls, tt.want)
		}
	}
}

func TestDispatchStopsOnFailure(t *testing.T) {
	boom := errors.New("boom")
	for _, step := range []string{"pre", "unset"} {
		r := &recorder{err: map[string]error{step: boom}}
		err := newDispatcher(r, OSWindows).Dispatch(context.Background(), Selection{Action: RebootOther, RunPreAction: true})
		if !errors.Is(err, boom) {
			t.Fatalf("%s: expected boom, got %v", step, err)
		}
		for _, c := range r.calls {
			if strings.HasPrefix(c, "run ") {
				t.Fatalf("%s: power command ran after failure: %q", step, r.calls)
			}
		}
	}
}

func TestDispatchDryRun(t *testing.T) {
	r := &recorder{}
	d := newDispatcher(r, OSLinux)
	d.DryRun = true
	if err := d.Dispatch(context.Background(), Selection{Action: RebootOther}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !reflect.DeepEqual(r.calls, []string{"set saved_entry=Windows Boot Manager"}) {
		t.Fatalf("calls = %q", r.calls)
	}
}

func TestDispatchWithoutPreAction(t *testing.T) {
	r := &recorder{}
	d := newDispatcher(r, OSLinux)
	d.PreAction = nil
	err := d.Dispatch(context.Background(), Selection{Action: PowerOff, RunPreAction: true})
	if !errors.Is(err, ErrNoPreAction) {
		t.Fatalf("expected ErrNoPreAction, got %v", err)
	}
	if len(r.calls) != 0 {
		t.Fatalf("unexpected calls %q", r.calls)
	}
}

func TestDispatchMissingEntry(t *testing.T) {
	for _, sel := range []Selection{{Action: RebootOther}, {Action: RebootSame}} {
		r := &recorder{}
		d := newDispatcher(r, OSLinux)
		d.Entries = nil
		err := d.Dispatch(context.Background(), sel)
		if !errors.Is(err, ErrNoEntry) {
			t.Fatalf("%s: expected ErrNoEntry, got %v", sel, err)
		}
		if len(r.calls) != 0 {
			t.Fatalf("%s: block or power command touched: %q", sel, r.calls)
		}
	}

	// Power off never needs an entry.
	r := &recorder{}
	d := newDispatcher(r, OSLinux)
	d.Entries = nil
	if err := d.Dispatch(context.Background(), Selection{Action: PowerOff}); err != nil {
		t.Fatalf("power off: %v", err)
	}
}

func TestSetNextBoot(t *testing.T) {
	tests := []struct {
		target string
		want   []string
	}{
		{OSWindows, []string{"set saved_entry=Windows Boot Manager"}},
		{OSLinux, []string{"unset saved_entry"}},
		{NextBootDefault, []string{"unset saved_entry"}},
		{"unset", []string{"unset saved_entry"}},
	}
	for _, tt := range tests {
		r := &recorder{}
		if err := newDispatcher(r, OSWindows).SetNextBoot(tt.target); err != nil {
			t.Fatalf("%s: %v", tt.target, err)
		}
		if !reflect.DeepEqual(r.calls, tt.want) {
			t.Fatalf("%s: calls = %q, want %q", tt.target, r.calls, tt.want)
		}
	}

	r := &recorder{}
	if err := newDispatcher(r, OSWindows).SetNextBoot("macos"); err == nil {
		t.Fatal("unknown target accepted")
	}
	d := newDispatcher(r, OSWindows)
	d.Entries = map[string]string{OSLinux: ""}
	if err := d.SetNextBoot(OSWindows); !errors.Is(err, ErrNoEntry) {
		t.Fatalf("expected ErrNoEntry, got %v", err)
	}
	if len(r.calls) != 0 {
		t.Fatalf("unexpected calls %q", r.calls)
	}
}

func TestBlockFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grubenv")
	content := "saved_entry=3\nother=1\n"
	content += strings.Repeat("#", grubenv.Capacity-len(content))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	r := &recorder{}
	d := newDispatcher(r, OSWindows)
	d.Env = BlockFile(path)
	if err := d.Dispatch(context.Background(), Selection{Action: RebootOther}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "other=1\n" + strings.Repeat("#", grubenv.Capacity-len("other=1\n"))
	if string(data) != want {
		t.Fatalf("block = %q", data)
	}
}
