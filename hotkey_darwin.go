//go:build darwin

package main

import "golang.design/x/hotkey"

// getDialogHotkeyModifiers returns the platform-specific modifiers for the dialog hotkey
// macOS: Control+Option
func getDialogHotkeyModifiers() ([]hotkey.Modifier, string) {
	return []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModOption}, "Ctrl+Option"
}
