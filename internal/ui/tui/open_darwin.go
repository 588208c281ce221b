//go:build darwin

package tui

import "os/exec"

// openInFileManager reveals the given path in Finder (opens parent directory with item selected)
func openInFileManager(path string) error {
	return exec.Command("open", "-R", path).Start()
}

// openWithDefaultApp opens the file with the application registered for it
func openWithDefaultApp(path string) error {
	return exec.Command("open", path).Start()
}
