package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shayne/yargs"

	"myreboot/internal/action"
)

func main() {
	if err := runCLI(); err != nil {
		fmt.Fprintf(os.Stderr, "my-reboot: %v\n", err)
		os.Exit(1)
	}
}

func runCLI() error {
	args := ensureSubcommand(os.Args[1:])
	handlers := map[string]yargs.SubcommandHandler{
		"dialog":  handleDialogCommand,
		"show":    handleShowCommand,
		"run":     handleRunCommand,
		"unset":   handleUnsetCommand,
		"set":     handleSetCommand,
		"tray":    handleTrayCommand,
		"version": handleVersionCommand,
	}
	if err := yargs.RunSubcommands(context.Background(), args, helpConfig, struct{}{}, handlers); err != nil {
		if errors.Is(err, yargs.ErrShown) {
			return nil
		}
		return err
	}
	return nil
}

var helpConfig = yargs.HelpConfig{
	Command: yargs.CommandInfo{
		Name:        "my-reboot",
		Description: "Choose the next OS of a GRUB dual-boot machine and reboot into it",
		Examples: []string{
			"my-reboot",
			"my-reboot dialog --tty",
			"my-reboot show",
			"my-reboot show --query .next_boot",
			"my-reboot run reboot-other --pre-action",
			"my-reboot unset",
			"my-reboot set windows",
			"my-reboot tray",
		},
	},
	SubCommands: map[string]yargs.SubCommandInfo{
		"dialog": {
			Name:        "dialog",
			Description: "Ask what to do and do it (default)",
			Usage:       "[--tty]",
		},
		"show": {
			Name:        "show",
			Description: "Show the next boot OS from the GRUB environment block",
			Usage:       "[--json] [--query <jq>]",
		},
		"run": {
			Name:        "run",
			Description: "Run an action without asking",
			Usage:       "<reboot-other|reboot-same|power-off> [--pre-action]",
			Examples: []string{
				"my-reboot run reboot-other",
				"my-reboot run power-off --pre-action",
			},
		},
		"unset": {
			Name:        "unset",
			Description: "Remove the saved boot entry so GRUB boots its default",
		},
		"set": {
			Name:        "set",
			Description: "Choose the next boot OS without rebooting",
			Usage:       "<windows|linux|default>",
			Examples: []string{
				"my-reboot set windows",
				"my-reboot set default",
			},
		},
		"tray": {
			Name:        "tray",
			Description: "Stay in the system tray",
		},
		"version": {
			Name:        "version",
			Description: "Show version",
		},
	},
}

var knownCommands = []string{"dialog", "show", "run", "unset", "set", "tray", "version", "help"}

// ensureSubcommand makes the dialog the default command.
func ensureSubcommand(args []string) []string {
	if len(args) == 0 {
		return []string{"dialog"}
	}
	switch args[0] {
	case "-h", "--help", "--version":
		return args
	}
	for _, c := range knownCommands {
		if args[0] == c {
			return args
		}
	}
	if strings.HasPrefix(args[0], "-") {
		return append([]string{"dialog"}, args...)
	}
	return args
}

type dialogFlags struct {
	TTY bool `flag:"tty" help:"ask in the terminal instead of a window"`
}

func handleDialogCommand(ctx context.Context, args []string) error {
	result, err := yargs.ParseAndHandleHelp[struct{}, dialogFlags, struct{}](args, helpConfig)
	if errors.Is(err, yargs.ErrShown) {
		return nil
	}
	if err != nil {
		return err
	}

	cfg, err := loadApp("dialog")
	defer LogShutdown()
	if err != nil {
		return err
	}

	sel, err := chooseSelection(cfg.DialogOptions(), result.SubCommandFlags.TTY)
	if err != nil {
		return err
	}
	return dispatch(ctx, cfg, sel)
}

type showFlags struct {
	JSON  bool   `flag:"json" help:"print the state as JSON"`
	Query string `flag:"query" short:"q" help:"filter the JSON state with a jq expression"`
}

func handleShowCommand(ctx context.Context, args []string) error {
	result, err := yargs.ParseAndHandleHelp[struct{}, showFlags, struct{}](args, helpConfig)
	if errors.Is(err, yargs.ErrShown) {
		return nil
	}
	if err != nil {
		return err
	}
	flags := result.SubCommandFlags

	cfg, err := loadApp("show")
	defer LogShutdown()
	if err != nil {
		fmt.Fprintf(os.Stderr, "my-reboot: %v (showing built-in defaults)\n", err)
	}

	// A missing block still has a next boot: whatever GRUB defaults to.
	st, stateErr := GetCache().State(cfg)
	if stateErr != nil && st.NextBoot == "" {
		return stateErr
	}

	switch {
	case flags.Query != "":
		err = queryState(ctx, os.Stdout, st, flags.Query)
	case flags.JSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(st)
	default:
		writeState(os.Stdout, st, newStateStyler(os.Stdout))
		err = nil
	}
	if err != nil {
		return err
	}
	return stateErr
}

type runFlags struct {
	PreAction bool `flag:"pre-action" short:"p" help:"run the configured pre-action script first"`
}

type runArgs struct {
	Action string `pos:"0" help:"reboot-other|reboot-same|power-off"`
}

func handleRunCommand(ctx context.Context, args []string) error {
	result, err := yargs.ParseAndHandleHelp[struct{}, runFlags, runArgs](args, helpConfig)
	if errors.Is(err, yargs.ErrShown) {
		return nil
	}
	if err != nil {
		return err
	}

	a, err := action.ParseAction(result.Args.Action)
	if err != nil {
		return err
	}

	cfg, err := loadApp("run")
	defer LogShutdown()
	if err != nil {
		return err
	}

	sel := action.Selection{Action: a, RunPreAction: result.SubCommandFlags.PreAction}
	LogSelection("command line", sel)
	return dispatch(ctx, cfg, sel)
}

func handleUnsetCommand(_ context.Context, args []string) error {
	_, err := yargs.ParseAndHandleHelp[struct{}, struct{}, struct{}](args, helpConfig)
	if errors.Is(err, yargs.ErrShown) {
		return nil
	}
	if err != nil {
		return err
	}

	cfg, err := loadApp("unset")
	defer LogShutdown()
	if err != nil {
		return err
	}
	return setNextBoot(cfg, action.NextBootDefault)
}

type setArgs struct {
	Target string `pos:"0" help:"windows|linux|default"`
}

func handleSetCommand(_ context.Context, args []string) error {
	result, err := yargs.ParseAndHandleHelp[struct{}, struct{}, setArgs](args, helpConfig)
	if errors.Is(err, yargs.ErrShown) {
		return nil
	}
	if err != nil {
		return err
	}
	if result.Args.Target == "" {
		return fmt.Errorf("missing target (want windows, linux or default)")
	}

	cfg, err := loadApp("set")
	defer LogShutdown()
	if err != nil {
		return err
	}
	return setNextBoot(cfg, result.Args.Target)
}

func handleTrayCommand(_ context.Context, args []string) error {
	_, err := yargs.ParseAndHandleHelp[struct{}, struct{}, struct{}](args, helpConfig)
	if errors.Is(err, yargs.ErrShown) {
		return nil
	}
	if err != nil {
		return err
	}

	// Ensure only one tray is running
	if err := EnsureSingleInstance(); err != nil {
		return err
	}
	cfg, err := loadApp("tray")
	if err != nil {
		// The tray still starts so the config can be fixed and reloaded.
		configErr = err
	}
	appConfig = cfg
	runTray()
	return nil
}

func handleVersionCommand(_ context.Context, args []string) error {
	_, err := yargs.ParseAndHandleHelp[struct{}, struct{}, struct{}](args, helpConfig)
	if errors.Is(err, yargs.ErrShown) {
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("my-reboot %s (commit %s, built %s)\n", Version, getShortCommit(), valueOr(buildDate, "unknown"))
	return nil
}
