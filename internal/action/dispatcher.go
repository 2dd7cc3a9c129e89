package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"myreboot/internal/grubenv"
)

// Operating systems known to the dual-boot setup.
const (
	OSWindows = "windows"
	OSLinux   = "linux"
)

// OtherOS returns the operating system that is not host.
func OtherOS(host string) string {
	if host == OSWindows {
		return OSLinux
	}
	return OSWindows
}

// ErrNoPreAction is returned when a pre-action was requested but none is configured.
var ErrNoPreAction = errors.New("no pre-action configured")

// ErrNoEntry is returned when the target OS has no grub entry configured.
// An empty entry is a valid choice; a missing one is not.
var ErrNoEntry = errors.New("no grub entry configured")

// EnvWriter edits the boot environment.
type EnvWriter interface {
	Set(key, value string) error
	Unset(key string) error
}

// PreActionRunner runs the user's pre-action.
type PreActionRunner interface {
	RunPreAction(ctx context.Context, sel Selection) error
}

// BlockFile writes an environment block file in place.
type BlockFile string

func (p BlockFile) Set(key, value string) error {
	return grubenv.SetValue(string(p), key, value)
}

func (p BlockFile) Unset(key string) error {
	return grubenv.RewriteConfig(string(p), key+"=")
}

// Dispatcher carries out a Selection: pre-action, boot entry, then the
// power command. Any failure stops the sequence before the power command.
type Dispatcher struct {
	Host          string
	Entries       map[string]string // grub entry per OS; empty lets GRUB pick its default
	SavedEntryKey string
	Env           EnvWriter
	PreAction     PreActionRunner
	Runner        CommandRunner
	Reboot        string
	Shutdown      string
	DryRun        bool
	Log           logrus.FieldLogger
}

func (d *Dispatcher) logger() logrus.FieldLogger {
	if d.Log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		return l
	}
	return d.Log
}

// Dispatch runs sel. DoNothing returns without side effects.
func (d *Dispatcher) Dispatch(ctx context.Context, sel Selection) error {
	log := d.logger().WithField("selection", sel.String())
	if sel.Action == DoNothing {
		log.Info("Nothing to do")
		return nil
	}

	if sel.RunPreAction {
		if d.PreAction == nil {
			return ErrNoPreAction
		}
		if err := d.PreAction.RunPreAction(ctx, sel); err != nil {
			return fmt.Errorf("pre-action: %w", err)
		}
	}

	if err := d.applyBootEntry(sel.Action, log); err != nil {
		return fmt.Errorf("boot entry: %w", err)
	}

	command := d.Reboot
	if sel.Action == PowerOff {
		command = d.Shutdown
	}
	argv := SplitCommandLine(command)
	if len(argv) == 0 {
		return fmt.Errorf("no command configured for %s", sel.Action)
	}
	if d.DryRun {
		log.WithField("command", command).Warn("Dry run, not executing power command")
		return nil
	}
	log.WithField("command", command).Info("Executing power command")
	return d.Runner.Run(ctx, argv)
}

// SetNextBoot edits the boot entry for target without running any command.
// target is an OS name, or NextBootDefault ("unset" also works) to leave the
// choice to GRUB.
func (d *Dispatcher) SetNextBoot(target string) error {
	log := d.logger().WithField("target", target)
	if target == NextBootDefault || target == "unset" {
		log.Info("Removing saved boot entry")
		return d.Env.Unset(d.entryKey())
	}
	if target != OSWindows && target != OSLinux {
		return fmt.Errorf("unknown boot target %q (want %s, %s or %s)", target, OSWindows, OSLinux, NextBootDefault)
	}
	return d.setEntry(target, log)
}

func (d *Dispatcher) entryKey() string {
	if d.SavedEntryKey == "" {
		return "saved_entry"
	}
	return d.SavedEntryKey
}

func (d *Dispatcher) applyBootEntry(a Action, log logrus.FieldLogger) error {
	switch a {
	case RebootOther:
		return d.setEntry(OtherOS(d.Host), log)
	case RebootSame:
		return d.setEntry(d.Host, log)
	}
	return nil
}

func (d *Dispatcher) setEntry(target string, log logrus.FieldLogger) error {
	key := d.entryKey()
	entry, ok := d.Entries[target]
	if !ok {
		return fmt.Errorf("%w for %s", ErrNoEntry, target)
	}
	if entry == "" {
		log.WithFields(logrus.Fields{"os": target, "key": key}).Info("Removing saved boot entry")
		return d.Env.Unset(key)
	}
	log.WithFields(logrus.Fields{"os": target, "key": key, "entry": entry}).Info("Setting saved boot entry")
	return d.Env.Set(key, entry)
}
