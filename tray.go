package main

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"myreboot/internal/action"
)

//go:embed assets/icon.ico
var defaultIcon []byte

var (
	appConfig  *Config
	configErr  error // set while the config file is broken; blocks actions
	stateMutex sync.RWMutex

	// Menu items
	mStatus     *systray.MenuItem
	mActions    []*systray.MenuItem
	mChoose     *systray.MenuItem
	mPreAction  *systray.MenuItem
	mUnset      *systray.MenuItem
	mDebug      *systray.MenuItem
	mReloadCfg  *systray.MenuItem
	mOpenCfg    *systray.MenuItem
	mOpenLog    *systray.MenuItem
	mQuit       *systray.MenuItem
	trayActions = []action.Action{action.RebootOther, action.RebootSame, action.PowerOff}

	// busy is set while an action or dialog is running
	busy sync.Mutex
)

func runTray() {
	systray.Run(onReady, onExit)
}

func onReady() {
	systray.SetIcon(defaultIcon)
	systray.SetTitle("")
	systray.SetTooltip("my-reboot")

	// Status display as submenu (kept enabled for better contrast)
	mStatusMenu := systray.AddMenuItem("Status", "Next boot")
	mStatus = mStatusMenu.AddSubMenuItem("Reading boot state...", "")

	systray.AddSeparator()

	opts := currentConfig().DialogOptions()
	for _, a := range trayActions {
		item := systray.AddMenuItem(optionLabel(opts, a), "")
		mActions = append(mActions, item)
	}
	mChoose = systray.AddMenuItem("Choose...", "Open the selection dialog")
	mPreAction = systray.AddMenuItemCheckbox("Run pre-action first", "Run the configured script before the action", false)
	updatePreActionItem()

	systray.AddSeparator()

	mUnset = systray.AddMenuItem("Boot GRUB default next", "Remove the saved boot entry")
	mDebug = systray.AddMenuItemCheckbox("Debug Mode", "Enable debug logging", debugMode)
	mReloadCfg = systray.AddMenuItem("Reload Config", "Reload configuration from file")
	mOpenCfg = systray.AddMenuItem("Open Config", DefaultConfigPath())
	mOpenLog = systray.AddMenuItem("Open Log", GetLogPath())

	systray.AddSeparator()

	// About submenu with version info (kept enabled for better contrast)
	mAbout := systray.AddMenuItem("About", "About my-reboot")
	_ = mAbout.AddSubMenuItem(fmt.Sprintf("Version: %s", Version), "")
	_ = mAbout.AddSubMenuItem(fmt.Sprintf("Commit: %s", getShortCommit()), "")
	_ = mAbout.AddSubMenuItem(fmt.Sprintf("Build: %s", valueOr(buildDate, "unknown")), "")
	if dryRun {
		_ = mAbout.AddSubMenuItem("Dry run: power commands disabled", "")
	}

	systray.AddSeparator()

	mQuit = systray.AddMenuItem("Quit", "Quit the application")

	for i, a := range trayActions {
		go handleActionClick(mActions[i], a)
	}
	go handleMenuClicks()

	refreshStatus()

	// Global hotkey for the selection dialog
	InitHotkeys()
}

func onExit() {
	LogShutdown()
	CleanupHotkeys()
	ReleaseSingleInstance()
}

func currentConfig() *Config {
	stateMutex.RLock()
	defer stateMutex.RUnlock()
	return appConfig
}

// writableConfig returns the config for actions that edit the block or run
// a power command, refusing while the config file is broken.
func writableConfig() (*Config, error) {
	stateMutex.RLock()
	defer stateMutex.RUnlock()
	if configErr != nil {
		return nil, configErr
	}
	return appConfig, nil
}

func optionLabel(opts action.DialogOptions, a action.Action) string {
	for _, o := range opts.Options {
		if o.Action == a {
			return o.Label
		}
	}
	return a.String()
}

func updatePreActionItem() {
	cfg := currentConfig()
	if cfg.PreAction == nil || cfg.PreAction.Script == "" {
		mPreAction.Uncheck()
		mPreAction.Hide()
		return
	}
	mPreAction.SetTitle(cfg.DialogOptions().PreActionLabel)
	mPreAction.Show()
}

func handleActionClick(item *systray.MenuItem, a action.Action) {
	for range item.ClickedCh {
		LogTrayAction(a.String())
		runSelection(action.Selection{Action: a, RunPreAction: mPreAction.Checked()})
	}
}

func handleMenuClicks() {
	for {
		select {
		case <-mChoose.ClickedCh:
			LogTrayAction("choose")
			go openDialog()

		case <-mPreAction.ClickedCh:
			if mPreAction.Checked() {
				mPreAction.Uncheck()
			} else {
				mPreAction.Check()
			}

		case <-mUnset.ClickedCh:
			LogTrayAction("unset")
			unsetEntry()

		case <-mDebug.ClickedCh:
			toggleDebug()

		case <-mReloadCfg.ClickedCh:
			reloadConfig()

		case <-mOpenCfg.ClickedCh:
			openInEditor(DefaultConfigPath())

		case <-mOpenLog.ClickedCh:
			openInEditor(GetLogPath())

		case <-mQuit.ClickedCh:
			systray.Quit()
			return
		}
	}
}

// openDialog shows the selection dialog from the tray or the hotkey.
func openDialog() {
	if !busy.TryLock() {
		LogDebug("Dialog already open")
		return
	}
	sel, err := chooseSelection(currentConfig().DialogOptions(), false)
	busy.Unlock()
	if err != nil {
		LogError("Dialog failed: %v", err)
		mStatus.SetTitle(fmt.Sprintf("Dialog error: %s", truncateError(err)))
		return
	}
	runSelection(sel)
}

func runSelection(sel action.Selection) {
	if !busy.TryLock() {
		mStatus.SetTitle("Busy, try again")
		return
	}
	defer busy.Unlock()

	if sel.Action == action.DoNothing {
		return
	}
	cfg, err := writableConfig()
	if err != nil {
		mStatus.SetTitle(fmt.Sprintf("Config error: %s", truncateError(err)))
		return
	}
	mStatus.SetTitle(fmt.Sprintf("Running %s...", sel))
	if err := dispatch(context.Background(), cfg, sel); err != nil {
		mStatus.SetTitle(fmt.Sprintf("Error: %s", truncateError(err)))
		return
	}
	refreshStatus()
}

func unsetEntry() {
	cfg, err := writableConfig()
	if err != nil {
		mStatus.SetTitle(fmt.Sprintf("Config error: %s", truncateError(err)))
		return
	}
	if err := setNextBoot(cfg, action.NextBootDefault); err != nil {
		mStatus.SetTitle(fmt.Sprintf("Error: %s", truncateError(err)))
		return
	}
	refreshStatus()
}

// refreshStatus shows the next boot OS, read through the state cache.
func refreshStatus() {
	cfg, err := writableConfig()
	if err != nil {
		mStatus.SetTitle(fmt.Sprintf("Config error: %s", truncateError(err)))
		return
	}
	st, err := GetCache().State(cfg)
	if err != nil {
		mStatus.SetTitle(fmt.Sprintf("Boot state error: %s", truncateError(err)))
		return
	}
	title := fmt.Sprintf("Next boot: %s", osDisplayName(st.NextBoot))
	if cfg.PreAction != nil {
		if r, ok := GetCache().ScriptResult(cfg.PreAction.Script); ok && r.Err != "" {
			title += fmt.Sprintf(" (pre-action failed at %s)", r.RanAt.Format("15:04:05"))
		}
	}
	if dryRun {
		title += " (dry run)"
	}
	mStatus.SetTitle(title)
	LogDebug("%s, %s", title, GetCache().Stats())
}

func reloadConfig() {
	cfg, err := LoadConfig("")
	if err != nil {
		LogError("Config reload failed: %v", err)
		mStatus.SetTitle(fmt.Sprintf("Config error: %v", truncateError(err)))
		return
	}
	stateMutex.Lock()
	appConfig = cfg
	configErr = nil
	stateMutex.Unlock()
	GetCache().Clear()

	opts := cfg.DialogOptions()
	for i, a := range trayActions {
		mActions[i].SetTitle(optionLabel(opts, a))
	}
	updatePreActionItem()

	LogConfigLoaded(cfg)
	refreshStatus()
}

func openInEditor(path string) {
	LogTrayAction("open " + path)
	if err := openFile(path); err != nil {
		LogError("Failed to open %s: %v", path, err)
		mStatus.SetTitle(fmt.Sprintf("Open failed: %s", truncateError(err)))
	}
}

func toggleDebug() {
	if debugMode {
		mDebug.Uncheck()
	} else {
		mDebug.Check()
	}
	SetDebugMode(!debugMode)
}

func truncateError(err error) string {
	s := err.Error()
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}
