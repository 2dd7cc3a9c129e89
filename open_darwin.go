//go:build darwin

package main

import "os/exec"

// openFile opens path with the desktop's default handler
func openFile(path string) error {
	return exec.Command("open", path).Start()
}
