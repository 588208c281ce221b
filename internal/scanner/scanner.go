// Package scanner enumerates directory trees for sources that need one
// native watch per directory.
package scanner

import "context"

// Scanner enumerates the directories of a subtree
type Scanner interface {
	// Dirs returns root followed by every directory below it
	Dirs(ctx context.Context, root string) ([]string, error)
}
