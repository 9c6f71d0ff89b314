// Package dedupe decides which source files are safe to remove because their
// content already exists in a target directory.
package dedupe

import (
	"github.com/samber/lo"

	"github.com/sdejongh/dupnorris/internal/platform"
	"github.com/sdejongh/dupnorris/pkg/models"
)

// Plan returns one action per source file whose hash matches a target file
// at a different absolute path. Targets are pooled in the order given and
// output follows source order. Plan is a pure function of its inputs.
//
// Trees may overlap. Source files lying under a target root nested inside
// the source belong to that target and are never planned. When a target tree
// contains the source tree, a source file is only planned if at least one of
// its duplicates is not itself a removable source file; otherwise two copies
// inside the source would each justify removing the other.
func Plan(source *models.DirectorySnapshot, targets []*models.DirectorySnapshot) []models.DeleteAction {
	pooled := lo.FlatMap(targets, func(s *models.DirectorySnapshot, _ int) []models.FileRecord {
		return s.Files
	})
	byHash := lo.GroupBy(pooled, func(r models.FileRecord) string {
		return r.Hash
	})
	candidates := removable(source, targets)
	inSource := pathSet(candidates)

	actions := make([]models.DeleteAction, 0)
	for _, src := range candidates {
		if action, ok := planOne(src, byHash[src.Hash], inSource); ok {
			actions = append(actions, action)
		}
	}
	return actions
}

func planOne(src models.FileRecord, candidates []models.FileRecord, inSource map[string]struct{}) (models.DeleteAction, bool) {
	matches := lo.Filter(candidates, func(t models.FileRecord, _ int) bool {
		return t.AbsolutePath != src.AbsolutePath
	})
	if len(matches) == 0 {
		return models.DeleteAction{}, false
	}

	onlyInSource := lo.EveryBy(matches, func(t models.FileRecord) bool {
		_, ok := inSource[t.AbsolutePath]
		return ok
	})
	if onlyInSource {
		return models.DeleteAction{}, false
	}

	return models.DeleteAction{
		SourceFile: src,
		Duplicates: lo.Map(matches, func(t models.FileRecord, _ int) string {
			return t.AbsolutePath
		}),
	}, true
}

// removable drops the source files that sit inside a target root nested in the source
func removable(source *models.DirectorySnapshot, targets []*models.DirectorySnapshot) []models.FileRecord {
	nested := lo.FilterMap(targets, func(t *models.DirectorySnapshot, _ int) (string, bool) {
		return t.RootPath, t.RootPath != source.RootPath && platform.IsWithin(t.RootPath, source.RootPath)
	})
	if len(nested) == 0 {
		return source.Files
	}
	return lo.Reject(source.Files, func(r models.FileRecord, _ int) bool {
		return lo.ContainsBy(nested, func(root string) bool {
			return platform.IsWithin(r.AbsolutePath, root)
		})
	})
}

func pathSet(files []models.FileRecord) map[string]struct{} {
	return lo.SliceToMap(files, func(r models.FileRecord) (string, struct{}) {
		return r.AbsolutePath, struct{}{}
	})
}

// ReclaimedBytes sums the size of every planned source file
func ReclaimedBytes(actions []models.DeleteAction) int64 {
	return lo.SumBy(actions, func(a models.DeleteAction) int64 {
		return a.SourceFile.Size
	})
}
