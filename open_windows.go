//go:build windows

package main

import "os/exec"

// openFile opens path with the program associated with its extension
func openFile(path string) error {
	return exec.Command("rundll32", "url.dll,FileProtocolHandler", path).Start()
}
