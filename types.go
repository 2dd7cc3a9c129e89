// Package main is my-reboot: pick the next OS of a GRUB dual-boot machine and reboot into it.
package main

// Global debug flag
var debugMode bool

// SetDebugMode enables or disables debug output
func SetDebugMode(debug bool) {
	debugMode = debug
	SetLogLevel(debug)
}

// dryRun is set from NO_REBOOT_ACTION: everything runs except the power command.
var dryRun bool
