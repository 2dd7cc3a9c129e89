//go:build !windows

package main

import "myreboot/internal/action"

const hostOS = action.OSLinux

const defaultGrubenvPath = "/boot/grub/grubenv"

const (
	defaultRebootCommand   = "systemctl reboot"
	defaultShutdownCommand = "systemctl poweroff"
)
