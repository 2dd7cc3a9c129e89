package main

import (
	"fmt"
	"strings"
	"time"

	"golang.design/x/hotkey"
)

var dialogHotkey *hotkey.Hotkey

var hotkeyKeys = map[string]hotkey.Key{
	"A": hotkey.KeyA, "B": hotkey.KeyB, "C": hotkey.KeyC, "D": hotkey.KeyD,
	"E": hotkey.KeyE, "F": hotkey.KeyF, "G": hotkey.KeyG, "H": hotkey.KeyH,
	"I": hotkey.KeyI, "J": hotkey.KeyJ, "K": hotkey.KeyK, "L": hotkey.KeyL,
	"M": hotkey.KeyM, "N": hotkey.KeyN, "O": hotkey.KeyO, "P": hotkey.KeyP,
	"Q": hotkey.KeyQ, "R": hotkey.KeyR, "S": hotkey.KeyS, "T": hotkey.KeyT,
	"U": hotkey.KeyU, "V": hotkey.KeyV, "W": hotkey.KeyW, "X": hotkey.KeyX,
	"Y": hotkey.KeyY, "Z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,
}

// InitHotkeys registers the global hotkey that opens the selection dialog.
// Called from onReady after systray is initialized
func InitHotkeys() {
	name := strings.ToUpper(strings.TrimSpace(currentConfig().Hotkey))
	if name == "" {
		LogDebug("No dialog hotkey configured")
		return
	}
	go initHotkeyAsync(name)
}

func initHotkeyAsync(name string) {
	// Small delay to ensure systray is fully initialized
	time.Sleep(500 * time.Millisecond)

	key, ok := hotkeyKeys[name]
	if !ok {
		LogWarn("Unsupported hotkey %q, want A-Z or 0-9", name)
		mStatus.SetTitle(fmt.Sprintf("Hotkey error: unsupported key %q", name))
		return
	}

	mods, desc := getDialogHotkeyModifiers()
	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		LogError("Hotkey %s+%s registration failed: %v", desc, name, err)
		mStatus.SetTitle(fmt.Sprintf("Hotkey error: %s", truncateError(err)))
		return
	}
	dialogHotkey = hk
	LogInfo("Registered dialog hotkey %s+%s", desc, name)

	for range hk.Keydown() {
		LogTrayAction("hotkey")
		go openDialog()
	}
}

// CleanupHotkeys unregisters the dialog hotkey
func CleanupHotkeys() {
	if dialogHotkey != nil {
		dialogHotkey.Unregister()
	}
}
