//go:build !linux && !windows

package main

import "myreboot/internal/action"

// showDialog has no native implementation here; the terminal prompt is used.
func showDialog(opts action.DialogOptions) (int, error) {
	return 0, ErrUnsupported
}
