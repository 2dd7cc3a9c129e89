//go:build !darwin && !linux && !windows

package main

import "errors"

func openFile(string) error {
	return errors.New("opening files is not supported on this platform")
}
