//go:build windows

package main

import "myreboot/internal/action"

const hostOS = action.OSWindows

// GRUB on the EFI partition is reached through a mount or junction configured by the user.
const defaultGrubenvPath = `C:\grubenv.dir\grubenv`

const (
	defaultRebootCommand   = "shutdown /g /t 0"
	defaultShutdownCommand = "shutdown /sg /t 0"
)
