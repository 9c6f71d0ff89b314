package dedupe

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/sdejongh/dupnorris/pkg/logging"
	"github.com/sdejongh/dupnorris/pkg/models"
)

// HashFunc digests the file at an absolute path
type HashFunc func(ctx context.Context, absPath string) (string, error)

// Verify re-reads every planned source file and its duplicates from disk and
// keeps only the duplicates whose fresh digest still equals the source's.
// Actions left without a qualifying duplicate are dropped. A read failure
// fails the whole verification, like a fingerprinting failure would.
// targets are the snapshots the actions were planned against.
func Verify(ctx context.Context, source *models.DirectorySnapshot, targets []*models.DirectorySnapshot, actions []models.DeleteAction, hash HashFunc, logger logging.Logger) ([]models.DeleteAction, error) {
	logger = logging.OrNull(logger)
	inSource := pathSet(removable(source, targets))
	digests := make(map[string]string)

	digest := func(path string) (string, error) {
		if h, ok := digests[path]; ok {
			return h, nil
		}
		h, err := hash(ctx, path)
		if err != nil {
			return "", fmt.Errorf("failed to verify %s: %w", path, err)
		}
		digests[path] = h
		return h, nil
	}

	verified := make([]models.DeleteAction, 0, len(actions))
	for _, action := range actions {
		srcHash, err := digest(action.SourceFile.AbsolutePath)
		if err != nil {
			return nil, err
		}

		var kept []string
		for _, dup := range action.Duplicates {
			dupHash, err := digest(dup)
			if err != nil {
				return nil, err
			}
			if dupHash == srcHash {
				kept = append(kept, dup)
			}
		}

		outside := lo.ContainsBy(kept, func(p string) bool {
			_, ok := inSource[p]
			return !ok
		})
		if !outside {
			logger.Warn(ctx, "Dropping planned file whose content changed since it was cached", logging.Fields{
				"path": action.SourceFile.AbsolutePath,
			})
			continue
		}

		if len(kept) != len(action.Duplicates) {
			logger.Info(ctx, "Some duplicates no longer match", logging.Fields{
				"path":    action.SourceFile.AbsolutePath,
				"dropped": len(action.Duplicates) - len(kept),
			})
		}

		action.SourceFile.Hash = srcHash
		action.Duplicates = kept
		verified = append(verified, action)
	}

	return verified, nil
}
