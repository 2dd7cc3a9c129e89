//go:build linux

package main

import "golang.design/x/hotkey"

// getDialogHotkeyModifiers returns the platform-specific modifiers for the dialog hotkey
// Linux: Ctrl+Alt (Mod1 is typically Alt on X11)
func getDialogHotkeyModifiers() ([]hotkey.Modifier, string) {
	return []hotkey.Modifier{hotkey.ModCtrl, hotkey.Mod1}, "Ctrl+Alt"
}
