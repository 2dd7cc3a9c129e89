package action

import (
	"errors"
	"io/fs"

	"myreboot/internal/grubenv"
)

// Next-boot values besides the OS names.
const (
	NextBootDefault = "default"
	NextBootUnknown = "unknown"
)

// BootState is what the environment block says about the next boot.
type BootState struct {
	Host        string            `json:"host"`
	GrubenvPath string            `json:"grubenv_path"`
	SavedEntry  string            `json:"saved_entry,omitempty"`
	NextBoot    string            `json:"next_boot"`
	Variables   map[string]string `json:"variables"`
}

// NextBootOS maps a saved entry to the OS it boots. Without a saved entry
// GRUB boots its default, which is the OS configured with an empty entry.
func NextBootOS(entries map[string]string, saved string, ok bool) string {
	for _, name := range []string{OSWindows, OSLinux} {
		if e, found := entries[name]; found && e == saved && (ok || e == "") {
			return name
		}
	}
	if !ok {
		return NextBootDefault
	}
	return NextBootUnknown
}

// ReadBootState loads the environment block at path.
func ReadBootState(path, key, host string, entries map[string]string) (BootState, error) {
	st := BootState{Host: host, GrubenvPath: path, Variables: map[string]string{}}
	env, err := grubenv.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			st.NextBoot = NextBootOS(entries, "", false)
		}
		return st, err
	}
	saved, ok := env.Get(key)
	st.SavedEntry = saved
	st.NextBoot = NextBootOS(entries, saved, ok)
	st.Variables = env.Map()
	return st, nil
}
