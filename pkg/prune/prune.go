// Package prune removes directories left without files after duplicates
// were deleted or moved out of the source tree.
package prune

import (
	"cmp"
	"context"
	"fmt"
	"path"
	"slices"

	"github.com/sdejongh/dupnorris/pkg/logging"
	"github.com/sdejongh/dupnorris/pkg/models"
	"github.com/sdejongh/dupnorris/pkg/storage"
)

// Result summarizes a pruning pass
type Result struct {
	Removed []string
	Errors  []*models.FileError
}

// Pruner removes empty directories beneath a backend's root
type Pruner struct {
	logger logging.Logger
}

// New creates a pruner. logger may be nil.
func New(logger logging.Logger) *Pruner {
	return &Pruner{logger: logging.OrNull(logger)}
}

// Prune removes every directory under the root with no entry left beneath it,
// deepest first, so a parent emptied by removing its last child is pruned in
// the same pass. The root itself is never removed. Removal failures are
// recorded and do not stop the pass.
func (p *Pruner) Prune(ctx context.Context, backend storage.Backend) (*Result, error) {
	tree, err := backend.ListTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate %s: %w", backend.Root(), err)
	}

	candidates := Candidates(tree)
	result := &Result{}

	for _, dir := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if err := backend.Remove(ctx, dir); err != nil {
			fe := &models.FileError{Path: dir, Op: "prune", Err: err}
			result.Errors = append(result.Errors, fe)
			p.logger.Warn(ctx, "Failed to remove empty directory", logging.Fields{
				"path":  dir,
				"error": err.Error(),
			})
			continue
		}

		result.Removed = append(result.Removed, dir)
		p.logger.Debug(ctx, "Removed empty directory", logging.Fields{"path": dir})
	}

	return result, nil
}

// Candidates returns the directories of tree that hold no entry at any depth,
// ordered by descending path length.
func Candidates(tree *storage.Tree) []string {
	contents := make(map[string][]string, len(tree.Dirs))
	for _, dir := range tree.Dirs {
		contents[dir] = nil
	}

	for _, entry := range tree.Entries {
		for dir := path.Dir(entry); dir != "." && dir != "/"; dir = path.Dir(dir) {
			contents[dir] = append(contents[dir], entry)
		}
	}

	var empty []string
	for _, dir := range tree.Dirs {
		if len(contents[dir]) == 0 {
			empty = append(empty, dir)
		}
	}

	slices.SortStableFunc(empty, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return empty
}
