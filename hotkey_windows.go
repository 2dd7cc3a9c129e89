//go:build windows

package main

import "golang.design/x/hotkey"

// getDialogHotkeyModifiers returns the platform-specific modifiers for the dialog hotkey
// Windows: Ctrl+Alt
func getDialogHotkeyModifiers() ([]hotkey.Modifier, string) {
	return []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModAlt}, "Ctrl+Alt"
}
