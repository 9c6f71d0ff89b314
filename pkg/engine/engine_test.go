package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/dupnorris/pkg/cache"
	"github.com/sdejongh/dupnorris/pkg/gate"
	"github.com/sdejongh/dupnorris/pkg/models"
)

type answer bool

func (a answer) Confirm(context.Context, string) (bool, error) { return bool(a), nil }

type fixture struct {
	base   string
	source string
	target string
	report string
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := t.TempDir()
	f := &fixture{
		base:   base,
		source: filepath.Join(base, "source"),
		target: filepath.Join(base, "target"),
		report: filepath.Join(base, "delete-files.txt"),
	}
	writeFiles(t, f.source, map[string]string{
		"a.txt":                       "a",
		"sub-folder/b.txt":            "b",
		"c-different-content.txt":     "c source",
		"d-not-in-dest.txt":           "d",
		"f-duplicate-in-source.txt":   "f",
		"f-duplicate-in-source-2.txt": "f",
	})
	writeFiles(t, f.target, map[string]string{
		"a.txt":                   "a",
		"b-different-name.txt":    "b",
		"c-different-content.txt": "c target",
		"e-not-in-source.txt":     "e",
	})
	return f
}

func (f *fixture) options(mode models.ExecutionMode) Options {
	return Options{
		SourcePath:   f.source,
		TargetPaths:  []string{f.target},
		Mode:         mode,
		LoadCache:    true,
		SaveCache:    true,
		ReportFile:   f.report,
		ReportFormat: "human",
	}
}

func (f *fixture) src(rel string) string {
	return filepath.Join(f.source, filepath.FromSlash(rel))
}

func TestRunDryRun(t *testing.T) {
	f := newFixture(t)

	report, err := NewEngine(nil, nil, answer(true), nil, nil).Run(context.Background(), f.options(models.DryRun()))

	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, report.Status)
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, 6, report.Stats.SourceFiles)
	assert.Equal(t, 4, report.Stats.TargetFiles)
	assert.Equal(t, 2, report.Stats.FilesPlanned)
	assert.Zero(t, report.Stats.FilesAffected)

	for _, rel := range []string{"a.txt", "sub-folder/b.txt", "d-not-in-dest.txt"} {
		assert.FileExists(t, f.src(rel))
	}

	assert.FileExists(t, filepath.Join(f.source, cache.DefaultFileName))
	assert.FileExists(t, filepath.Join(f.target, cache.DefaultFileName))

	data, err := os.ReadFile(f.report)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Found 6 files in source directory")
	assert.Contains(t, text, "Will delete 2 duplicate files.")
	assert.Contains(t, text, "(this is a dry run -- no changes will be made)")
	assert.Contains(t, text, f.src("a.txt"))
	assert.Contains(t, text, filepath.Join(f.target, "b-different-name.txt"))
}

func TestRunDelete(t *testing.T) {
	f := newFixture(t)

	report, err := NewEngine(gate.New(3), nil, answer(true), nil, nil).Run(context.Background(), f.options(models.Delete()))

	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, report.Status)
	assert.Equal(t, 2, report.Stats.FilesAffected)
	assert.Equal(t, 1, report.Stats.DirsPruned)

	assert.NoFileExists(t, f.src("a.txt"))
	assert.NoDirExists(t, f.src("sub-folder"))
	for _, rel := range []string{
		"c-different-content.txt",
		"d-not-in-dest.txt",
		"f-duplicate-in-source.txt",
		"f-duplicate-in-source-2.txt",
	} {
		assert.FileExists(t, f.src(rel))
	}
	assert.FileExists(t, filepath.Join(f.target, "a.txt"), "targets are never touched")
}

func TestRunMove(t *testing.T) {
	f := newFixture(t)
	dest := filepath.Join(f.base, "to-delete")

	report, err := NewEngine(nil, nil, nil, nil, nil).Run(context.Background(), f.options(models.MoveTo(dest)))

	require.NoError(t, err)
	assert.Equal(t, 2, report.Stats.FilesAffected)
	assert.FileExists(t, filepath.Join(dest, "a.txt"))
	assert.FileExists(t, filepath.Join(dest, "sub-folder", "b.txt"))
	assert.NoDirExists(t, f.src("sub-folder"))
}

func TestRunMoveConflictKeepsSuccess(t *testing.T) {
	f := newFixture(t)
	dest := filepath.Join(f.base, "to-delete")
	writeFiles(t, dest, map[string]string{"a.txt": "already here"})

	report, err := NewEngine(nil, nil, nil, nil, nil).Run(context.Background(), f.options(models.MoveTo(dest)))

	require.NoError(t, err)
	assert.Equal(t, 1, report.Stats.FilesAffected)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, f.src("a.txt"), report.Errors[0].Path)
	assert.Equal(t, "move", report.Errors[0].Operation)
	assert.Equal(t, models.StatusSuccess, report.Status)
	assert.Equal(t, 0, report.Status.ExitCode())

	assert.FileExists(t, f.src("a.txt"), "a conflicting move keeps the source file")
	data, err := os.ReadFile(filepath.Join(dest, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "already here", string(data))
	assert.FileExists(t, filepath.Join(dest, "sub-folder", "b.txt"))
}

func TestRunCancelled(t *testing.T) {
	f := newFixture(t)

	report, err := NewEngine(nil, nil, answer(false), nil, nil).Run(context.Background(), f.options(models.Delete()))

	assert.ErrorIs(t, err, models.ErrCancelled)
	require.NotNil(t, report)
	assert.Equal(t, models.StatusCancelled, report.Status)
	assert.Equal(t, 3, report.Status.ExitCode())
	assert.FileExists(t, f.src("a.txt"))
	assert.DirExists(t, f.src("sub-folder"))
	assert.FileExists(t, filepath.Join(f.source, cache.DefaultFileName), "caches are saved before the prompt")
}

func TestRunReusesCache(t *testing.T) {
	f := newFixture(t)
	e := NewEngine(nil, nil, nil, nil, nil)
	ctx := context.Background()

	first, err := e.Run(ctx, f.options(models.DryRun()))
	require.NoError(t, err)
	assert.Equal(t, 10, first.Stats.FilesHashed)

	second, err := e.Run(ctx, f.options(models.DryRun()))
	require.NoError(t, err)
	assert.Equal(t, 10, second.Stats.CacheHits)
	assert.Zero(t, second.Stats.FilesHashed)
	assert.Equal(t, first.Actions, second.Actions)

	t.Run("NoCacheRehashesButSaves", func(t *testing.T) {
		opts := f.options(models.DryRun())
		opts.LoadCache = false

		third, err := e.Run(ctx, opts)
		require.NoError(t, err)
		assert.Zero(t, third.Stats.CacheHits)
		assert.Equal(t, 10, third.Stats.FilesHashed)
		assert.FileExists(t, filepath.Join(f.source, cache.DefaultFileName))
	})
}

func TestRunRehashVerify(t *testing.T) {
	f := newFixture(t)
	e := NewEngine(nil, nil, nil, nil, nil)
	ctx := context.Background()

	_, err := e.Run(ctx, f.options(models.DryRun()))
	require.NoError(t, err)

	// Same size, same mtime, different content: invisible to the cache
	info, err := os.Stat(f.src("a.txt"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(f.src("a.txt"), []byte("z"), 0644))
	require.NoError(t, os.Chtimes(f.src("a.txt"), info.ModTime(), info.ModTime()))

	trusting, err := e.Run(ctx, f.options(models.DryRun()))
	require.NoError(t, err)
	assert.Len(t, trusting.Actions, 2)

	opts := f.options(models.DryRun())
	opts.RehashVerify = true
	verified, err := e.Run(ctx, opts)
	require.NoError(t, err)
	require.Len(t, verified.Actions, 1)
	assert.Equal(t, "sub-folder/b.txt", verified.Actions[0].SourceFile.RelativePath)
}

func TestRunTargetContainsSource(t *testing.T) {
	f := newFixture(t)
	opts := f.options(models.Delete())
	opts.TargetPaths = []string{f.base}

	report, err := NewEngine(nil, nil, nil, nil, nil).Run(context.Background(), opts)

	require.NoError(t, err)
	assert.FileExists(t, f.src("f-duplicate-in-source.txt"))
	assert.FileExists(t, f.src("f-duplicate-in-source-2.txt"))
	assert.NoFileExists(t, f.src("a.txt"))
	for _, action := range report.Actions {
		assert.NotContains(t, action.Duplicates, action.SourceFile.AbsolutePath)
	}
}

func TestRunTargetInsideSource(t *testing.T) {
	f := newFixture(t)
	writeFiles(t, f.source, map[string]string{"backup/a.txt": "a"})
	opts := f.options(models.Delete())
	opts.TargetPaths = []string{f.src("backup")}

	report, err := NewEngine(nil, nil, nil, nil, nil).Run(context.Background(), opts)

	require.NoError(t, err)
	require.Len(t, report.Actions, 1)
	assert.Equal(t, "a.txt", report.Actions[0].SourceFile.RelativePath)
	assert.Equal(t, []string{f.src("backup/a.txt")}, report.Actions[0].Duplicates)
	assert.NoFileExists(t, f.src("a.txt"))
	assert.FileExists(t, f.src("backup/a.txt"), "files inside a target are never removed")
	assert.FileExists(t, f.src("f-duplicate-in-source.txt"))
}

func TestRunReportInsideSource(t *testing.T) {
	f := newFixture(t)
	opts := f.options(models.DryRun())
	opts.ReportFile = f.src("delete-files.txt")
	e := NewEngine(nil, nil, nil, nil, nil)

	first, err := e.Run(context.Background(), opts)
	require.NoError(t, err)
	require.FileExists(t, opts.ReportFile)

	second, err := e.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, first.Stats.SourceFiles, second.Stats.SourceFiles, "the report is never enumerated")
	for _, action := range second.Actions {
		assert.NotEqual(t, opts.ReportFile, action.SourceFile.AbsolutePath)
	}
}

func TestRunValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(o *Options)
	}{
		{"MissingSource", func(o *Options) { o.SourcePath = filepath.Join(f.base, "nope") }},
		{"NoTargets", func(o *Options) { o.TargetPaths = nil }},
		{"MissingTarget", func(o *Options) { o.TargetPaths = []string{filepath.Join(f.base, "nope")} }},
		{"TargetIsSource", func(o *Options) { o.TargetPaths = []string{f.source} }},
		{"SourceIsFile", func(o *Options) { o.SourcePath = f.src("a.txt") }},
		{"MoveInsideSource", func(o *Options) { o.Mode = models.MoveTo(f.src("trash")) }},
		{"BadExclude", func(o *Options) { o.Excludes = []string{"[unclosed"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := f.options(models.Delete())
			tt.mutate(&opts)

			report, err := NewEngine(nil, nil, nil, nil, nil).Run(context.Background(), opts)

			var ve *models.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, models.StatusFailed, report.Status)
			assert.FileExists(t, f.src("a.txt"))
		})
	}
}

func TestScan(t *testing.T) {
	f := newFixture(t)
	e := NewEngine(nil, nil, nil, nil, nil)
	opts := Options{SaveCache: true, LoadCache: true}

	result, err := e.Scan(context.Background(), f.target, opts)
	require.NoError(t, err)
	assert.Len(t, result.Snapshot.Files, 4)
	assert.FileExists(t, filepath.Join(f.target, cache.DefaultFileName))

	again, err := e.Scan(context.Background(), f.target, opts)
	require.NoError(t, err)
	assert.Equal(t, 4, again.CacheHits)
}
