package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"myreboot/internal/action"
	"myreboot/internal/dlgtemplate"
)

// LogConfig represents logging configuration
type LogConfig struct {
	MaxSizeMB  int  `json:"max_size_mb,omitempty" toml:"max_size_mb,omitempty"`   // Max log file size in MB before rotation (default: 10)
	MaxBackups int  `json:"max_backups,omitempty" toml:"max_backups,omitempty"`   // Max number of old log files to keep (default: 7)
	MaxAgeDays int  `json:"max_age_days,omitempty" toml:"max_age_days,omitempty"` // Max days to retain old log files (default: 7)
	Compress   bool `json:"compress,omitempty" toml:"compress,omitempty"`         // Compress rotated log files (default: true)
	ToStdout   bool `json:"to_stdout,omitempty" toml:"to_stdout,omitempty"`       // Also write logs to stdout (default: false)
}

// DefaultLogConfig returns the default logging configuration
func DefaultLogConfig() LogConfig {
	return LogConfig{
		MaxSizeMB:  10,
		MaxBackups: 7,
		MaxAgeDays: 7,
		Compress:   true,
	}
}

// Config represents the application configuration
type Config struct {
	GrubenvPath   string            `json:"grubenv_path,omitempty" toml:"grubenv_path,omitempty"`
	SavedEntryKey string            `json:"saved_entry_key,omitempty" toml:"saved_entry_key,omitempty"`
	GrubEntries   map[string]string `json:"grub_entries" toml:"grub_entries"` // "windows"/"linux" -> menu entry, empty for GRUB's default
	Commands      CommandsConfig    `json:"commands" toml:"commands"`
	PreAction     *PreActionConfig  `json:"pre_action,omitempty" toml:"pre_action,omitempty"`
	Dialog        DialogConfig      `json:"dialog" toml:"dialog"`
	Hotkey        string            `json:"hotkey,omitempty" toml:"hotkey,omitempty"` // key pressed with the platform modifiers, e.g. "R"
	Logging       *LogConfig        `json:"logging,omitempty" toml:"logging,omitempty"`
}

// CommandsConfig holds the power commands, split like a shell command line.
type CommandsConfig struct {
	Reboot   string `json:"reboot,omitempty" toml:"reboot,omitempty"`
	Shutdown string `json:"shutdown,omitempty" toml:"shutdown,omitempty"`
}

// PreActionConfig names the script offered by the dialog checkbox.
type PreActionConfig struct {
	Label  string `json:"label" toml:"label"`
	Script string `json:"script" toml:"script"` // filename in the scripts folder
}

// DialogConfig controls the selection dialog.
type DialogConfig struct {
	Title       string              `json:"title,omitempty" toml:"title,omitempty"`
	Font        string              `json:"font,omitempty" toml:"font,omitempty"`
	PointSize   uint16              `json:"point_size,omitempty" toml:"point_size,omitempty"`
	Layout      *dlgtemplate.Layout `json:"layout,omitempty" toml:"layout,omitempty"`
	Default     string              `json:"default,omitempty" toml:"default,omitempty"` // action name checked on open
	Labels      map[string]string   `json:"labels,omitempty" toml:"labels,omitempty"`  // action name -> option label
	OKLabel     string              `json:"ok_label,omitempty" toml:"ok_label,omitempty"`
	CancelLabel string              `json:"cancel_label,omitempty" toml:"cancel_label,omitempty"`
}

// GetLogConfigWithDefaults returns log config, using defaults if logging section is absent
func (c *Config) GetLogConfigWithDefaults() LogConfig {
	if c == nil || c.Logging == nil {
		return DefaultLogConfig()
	}

	cfg := DefaultLogConfig()

	if c.Logging.MaxSizeMB > 0 {
		cfg.MaxSizeMB = c.Logging.MaxSizeMB
	}
	if c.Logging.MaxBackups > 0 {
		cfg.MaxBackups = c.Logging.MaxBackups
	}
	if c.Logging.MaxAgeDays > 0 {
		cfg.MaxAgeDays = c.Logging.MaxAgeDays
	}
	// For booleans, only override if the logging section exists
	// This allows users to explicitly set false
	cfg.Compress = c.Logging.Compress
	cfg.ToStdout = c.Logging.ToStdout

	return cfg
}

// Grubenv returns the environment block path with the host default applied
func (c *Config) Grubenv() string {
	if c == nil || c.GrubenvPath == "" {
		return defaultGrubenvPath
	}
	return c.GrubenvPath
}

// EntryKey returns the grubenv variable holding the next boot entry
func (c *Config) EntryKey() string {
	if c == nil || c.SavedEntryKey == "" {
		return "saved_entry"
	}
	return c.SavedEntryKey
}

// RebootCommand returns the configured reboot command or the host default
func (c *Config) RebootCommand() string {
	if c == nil || c.Commands.Reboot == "" {
		return defaultRebootCommand
	}
	return c.Commands.Reboot
}

// ShutdownCommand returns the configured shutdown command or the host default
func (c *Config) ShutdownCommand() string {
	if c == nil || c.Commands.Shutdown == "" {
		return defaultShutdownCommand
	}
	return c.Commands.Shutdown
}

// DialogOptions turns the dialog section into the dialog description.
func (c *Config) DialogOptions() action.DialogOptions {
	d := DialogConfig{}
	if c != nil {
		d = c.Dialog
	}

	other := osDisplayName(action.OtherOS(hostOS))
	same := osDisplayName(hostOS)
	labels := map[action.Action]string{
		action.RebootOther: "Reboot into " + other,
		action.RebootSame:  "Reboot into " + same,
		action.PowerOff:    "Power off",
	}
	for name, label := range d.Labels {
		if a, err := action.ParseAction(name); err == nil && label != "" {
			labels[a] = label
		}
	}

	opts := action.DialogOptions{
		Title: valueOr(d.Title, "my-reboot"),
		Font: dlgtemplate.Font{
			PointSize: d.PointSize,
			Weight:    400,
			Charset:   1, // DEFAULT_CHARSET
			Face:      valueOr(d.Font, "Segoe UI"),
		},
		Layout:      dlgtemplate.DefaultLayout(),
		Default:     action.RebootOther,
		OKLabel:     d.OKLabel,
		CancelLabel: d.CancelLabel,
	}
	if opts.Font.PointSize == 0 {
		opts.Font.PointSize = 9
	}
	if d.Layout != nil {
		opts.Layout = *d.Layout
	}
	if a, err := action.ParseAction(d.Default); err == nil && a != action.DoNothing {
		opts.Default = a
	}
	for _, a := range []action.Action{action.RebootOther, action.RebootSame, action.PowerOff} {
		opts.Options = append(opts.Options, action.Option{Action: a, Label: labels[a]})
	}
	if c != nil && c.PreAction != nil && c.PreAction.Script != "" {
		opts.PreActionLabel = valueOr(c.PreAction.Label, "Run "+c.PreAction.Script+" first")
	}
	return opts
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func osDisplayName(name string) string {
	switch name {
	case action.OSWindows:
		return "Windows"
	case action.OSLinux:
		return "Linux"
	}
	return name
}

// ConfigDir returns the configuration directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "my-reboot")
}

// ScriptsDir returns the Lua scripts directory path
func ScriptsDir() string {
	return filepath.Join(ConfigDir(), "scripts")
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "my-reboot.json")
}

// TOMLConfigPath is read when the JSON config does not exist
func TOMLConfigPath() string {
	return filepath.Join(ConfigDir(), "my-reboot.toml")
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// LoadConfig loads configuration from the specified path
// If path is empty, uses the default path, falling back to my-reboot.toml
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			if _, err := os.Stat(TOMLConfigPath()); err == nil {
				path = TOMLConfigPath()
			}
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if isTOML(path) {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &cfg, nil
}

// SaveConfig saves configuration to the specified path
// If path is empty, uses the default path
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var data []byte
	var err error
	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// CreateDefaultConfig creates a default configuration file if it doesn't exist
func CreateDefaultConfig() error {
	path := DefaultConfigPath()
	for _, p := range []string{path, TOMLConfigPath()} {
		if _, err := os.Stat(p); err == nil {
			// Config already exists
			return nil
		}
	}

	return SaveConfig(defaultConfig(), path)
}

// defaultConfig is the configuration written on first run
func defaultConfig() *Config {
	layout := dlgtemplate.DefaultLayout()
	return &Config{
		GrubenvPath:   defaultGrubenvPath,
		SavedEntryKey: "saved_entry",
		GrubEntries: map[string]string{
			action.OSWindows: "Windows Boot Manager",
			action.OSLinux:   "",
		},
		Commands: CommandsConfig{
			Reboot:   defaultRebootCommand,
			Shutdown: defaultShutdownCommand,
		},
		Dialog: DialogConfig{
			Title:     "my-reboot",
			Font:      "Segoe UI",
			PointSize: 9,
			Layout:    &layout,
		},
		Hotkey: "R",
	}
}

// loadOrCreateConfig loads the config, writing the default one on first run.
// A config that exists but cannot be read or parsed is returned as an error
// along with the built-in defaults; only read-only commands may go on with them.
func loadOrCreateConfig() (*Config, error) {
	cfg, err := LoadConfig("")
	if err != nil && os.IsNotExist(err) {
		if createErr := CreateDefaultConfig(); createErr != nil {
			LogWarn("Using built-in defaults, config not created: %v", createErr)
			return defaultConfig(), nil
		}
		cfg, err = LoadConfig("")
	}
	if err != nil {
		return defaultConfig(), fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
