package main

import "fmt"

const (
	VersionMajor   = 0
	VersionMinor   = 3
	VersionPatch   = 0
	VersionRelease = "-dev" // -dev -release etc.
)

var Version = fmt.Sprintf("%d.%d.%d%s", VersionMajor, VersionMinor, VersionPatch, VersionRelease)

var (
	commit    string
	buildDate string
)

// getShortCommit returns the first 8 characters of the commit hash
func getShortCommit() string {
	if len(commit) >= 8 {
		return commit[:8]
	}
	if commit == "" {
		return "dev"
	}
	return commit
}
