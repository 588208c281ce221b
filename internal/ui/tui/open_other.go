//go:build !windows && !darwin

package tui

import (
	"os/exec"
	"path/filepath"
)

// openInFileManager opens the directory containing path. xdg-open cannot
// select an item, so the parent is the closest match.
func openInFileManager(path string) error {
	return exec.Command("xdg-open", filepath.Dir(path)).Start()
}

// openWithDefaultApp opens the file with xdg-open
func openWithDefaultApp(path string) error {
	return exec.Command("xdg-open", path).Start()
}
