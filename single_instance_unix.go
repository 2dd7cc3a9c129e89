//go:build unix

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// instanceLock is an exclusive flock held while the file stays open.
type instanceLock struct {
	f *os.File
}

var trayLock *instanceLock

// EnsureSingleInstance ensures only one tray instance is running.
// Returns an error if another instance is already running.
func EnsureSingleInstance() error {
	l, err := acquireLock("tray")
	if err != nil {
		return err
	}
	trayLock = l
	return nil
}

// ReleaseSingleInstance releases the tray lock
func ReleaseSingleInstance() {
	if trayLock != nil {
		trayLock.Release()
		trayLock = nil
	}
}

// acquireLock takes the named lock without blocking.
func acquireLock(name string) (*instanceLock, error) {
	lockPath := getLockFilePath(name)

	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, fmt.Errorf("another my-reboot %s is already running", name)
	}

	// Write PID to lock file
	f.Truncate(0)
	f.Seek(0, 0)
	fmt.Fprintf(f, "%d\n", os.Getpid())

	return &instanceLock{f: f}, nil
}

// Release unlocks the lock file. The file stays so a later locker never
// locks an unlinked inode.
func (l *instanceLock) Release() {
	unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	l.f.Close()
}

func getLockFilePath(name string) string {
	dir := ConfigDir()
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "my-reboot")
	}
	return filepath.Join(dir, name+".lock")
}
