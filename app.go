package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"myreboot/internal/action"
	"myreboot/internal/script"
)

// loadApp loads config and starts logging for one command run. A broken
// config file comes back as an error next to the built-in defaults; commands
// that write the block or run a power command must stop on it.
func loadApp(command string) (*Config, error) {
	// Try to load config early for logging settings
	var logCfg LogConfig
	cfg, err := LoadConfig("")
	if err == nil {
		logCfg = cfg.GetLogConfigWithDefaults()
	} else {
		logCfg = DefaultLogConfig()
	}
	if err := InitLoggerWithConfig(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to initialize logger: %v\n", err)
	}
	if os.Getenv("MYREBOOT_DEBUG") != "" {
		SetDebugMode(true)
	}
	_, dryRun = os.LookupEnv("NO_REBOOT_ACTION")

	LogStartup(command)
	InitCache()

	cfg, err = loadOrCreateConfig()
	if err != nil {
		LogError("Config not loaded: %v", err)
		return cfg, err
	}
	LogConfigLoaded(cfg)
	return cfg, nil
}

// envLogger logs and invalidates the cached state on every block edit.
type envLogger struct {
	path string
	env  action.EnvWriter
}

func (e envLogger) Set(key, value string) error {
	err := e.env.Set(key, value)
	GetCache().Invalidate(e.path)
	LogGrubenvRewritten(e.path, "set "+key+"="+value, err)
	return err
}

func (e envLogger) Unset(key string) error {
	err := e.env.Unset(key)
	GetCache().Invalidate(e.path)
	LogGrubenvRewritten(e.path, "unset "+key, err)
	return err
}

type runnerLogger struct {
	runner action.CommandRunner
}

func (r runnerLogger) Run(ctx context.Context, argv []string) error {
	err := r.runner.Run(ctx, argv)
	LogCommandExecuted(strings.Join(argv, " "), err)
	return err
}

type preActionLogger struct {
	pre *script.PreAction
}

func (p preActionLogger) RunPreAction(ctx context.Context, sel action.Selection) error {
	err := p.pre.RunPreAction(ctx, sel)
	GetCache().SetScriptResult(p.pre.Script, err)
	LogScriptExecuted(p.pre.Script, err)
	return err
}

// newDispatcher wires the dispatcher to the real block file, script engine
// and command runner.
func newDispatcher(cfg *Config) (*action.Dispatcher, error) {
	d := &action.Dispatcher{
		Host:          hostOS,
		Entries:       cfg.GrubEntries,
		SavedEntryKey: cfg.EntryKey(),
		Env:           envLogger{path: cfg.Grubenv(), env: action.BlockFile(cfg.Grubenv())},
		Runner:        runnerLogger{runner: action.ExecRunner{}},
		Reboot:        cfg.RebootCommand(),
		Shutdown:      cfg.ShutdownCommand(),
		DryRun:        dryRun,
		Log:           log,
	}
	if cfg.PreAction != nil && cfg.PreAction.Script != "" {
		engine, err := script.NewEngine(ScriptsDir(), cfg.Grubenv(), log)
		if err != nil {
			return nil, err
		}
		d.PreAction = preActionLogger{pre: &script.PreAction{Engine: engine, Script: cfg.PreAction.Script, Host: hostOS}}
	}
	return d, nil
}

// setNextBoot edits the boot entry for target under the writer lock and runs
// nothing else.
func setNextBoot(cfg *Config, target string) error {
	lock, err := acquireLock("write")
	if err != nil {
		return err
	}
	defer lock.Release()

	d, err := newDispatcher(cfg)
	if err != nil {
		return err
	}
	if err := d.SetNextBoot(target); err != nil {
		LogError("Setting next boot to %s failed: %v", target, err)
		return err
	}
	return nil
}

// dispatch carries out sel while holding the writer lock, so two my-reboot
// processes never rewrite the block at the same time.
func dispatch(ctx context.Context, cfg *Config, sel action.Selection) error {
	if sel.Action == action.DoNothing {
		LogInfo("Nothing selected")
		return nil
	}
	lock, err := acquireLock("write")
	if err != nil {
		return err
	}
	defer lock.Release()

	d, err := newDispatcher(cfg)
	if err != nil {
		return err
	}
	if err := d.Dispatch(ctx, sel); err != nil {
		LogError("Action %s failed: %v", sel, err)
		return err
	}
	return nil
}
