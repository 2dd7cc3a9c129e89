//go:build windows

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"
)

// instanceLock is either a named mutex (the tray) or a locked file.
type instanceLock struct {
	handle windows.Handle
	file   *os.File
}

var trayLock *instanceLock

// EnsureSingleInstance ensures only one tray instance is running.
// Returns an error if another instance is already running.
func EnsureSingleInstance() error {
	mutexName, err := windows.UTF16PtrFromString("Global\\my-reboot-tray")
	if err != nil {
		return fmt.Errorf("failed to create mutex name: %w", err)
	}

	handle, err := windows.CreateMutex(nil, false, mutexName)
	if err != nil && err != windows.ERROR_ALREADY_EXISTS {
		return fmt.Errorf("failed to create mutex: %w", err)
	}

	// WAIT_OBJECT_0 means we own the mutex, WAIT_TIMEOUT that another process does.
	// WAIT_ABANDONED also grants ownership after a crashed holder.
	event, err := windows.WaitForSingleObject(handle, 0)
	if err != nil || (event != windows.WAIT_OBJECT_0 && event != windows.WAIT_ABANDONED) {
		windows.CloseHandle(handle)
		return fmt.Errorf("another my-reboot tray is already running")
	}

	trayLock = &instanceLock{handle: handle}
	return nil
}

// ReleaseSingleInstance releases the tray mutex
func ReleaseSingleInstance() {
	if trayLock != nil {
		trayLock.Release()
		trayLock = nil
	}
}

// acquireLock takes an exclusive lock on <config dir>/<name>.lock without
// waiting. File locks belong to the process, not the calling thread.
func acquireLock(name string) (*instanceLock, error) {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, name+".lock"), os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	ol := new(windows.Overlapped)
	flags := uint32(windows.LOCKFILE_EXCLUSIVE_LOCK | windows.LOCKFILE_FAIL_IMMEDIATELY)
	if err := windows.LockFileEx(windows.Handle(f.Fd()), flags, 0, 1, 0, ol); err != nil {
		f.Close()
		return nil, fmt.Errorf("another my-reboot %s is already running", name)
	}

	return &instanceLock{file: f}, nil
}

// Release unlocks the file or gives up the mutex
func (l *instanceLock) Release() {
	if l.file != nil {
		windows.UnlockFileEx(windows.Handle(l.file.Fd()), 0, 1, 0, new(windows.Overlapped))
		l.file.Close()
		return
	}
	windows.ReleaseMutex(l.handle)
	windows.CloseHandle(l.handle)
}
