// Package engine runs a complete deduplication: enumerate, fingerprint,
// persist caches, plan, report, confirm, execute and prune.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sdejongh/dupnorris/pkg/cache"
	"github.com/sdejongh/dupnorris/pkg/dedupe"
	"github.com/sdejongh/dupnorris/pkg/executor"
	"github.com/sdejongh/dupnorris/pkg/fingerprint"
	"github.com/sdejongh/dupnorris/pkg/gate"
	"github.com/sdejongh/dupnorris/pkg/logging"
	"github.com/sdejongh/dupnorris/pkg/models"
	"github.com/sdejongh/dupnorris/pkg/output"
	"github.com/sdejongh/dupnorris/pkg/prune"
	"github.com/sdejongh/dupnorris/pkg/storage"
)

// Engine orchestrates a run
type Engine struct {
	gate      *gate.Gate
	hasher    *fingerprint.Hasher
	confirmer executor.Confirmer
	observer  output.Observer
	logger    logging.Logger
}

// NewEngine creates a new engine. Every collaborator may be nil:
// a nil confirmer never prompts, nil observer and logger are silent.
func NewEngine(
	g *gate.Gate,
	hasher *fingerprint.Hasher,
	confirmer executor.Confirmer,
	observer output.Observer,
	logger logging.Logger,
) *Engine {
	if g == nil {
		g = gate.New(gate.DefaultLimit)
	}
	if hasher == nil {
		hasher = fingerprint.NewHasher(fingerprint.DefaultBufferSize, nil)
	}
	return &Engine{
		gate:      g,
		hasher:    hasher,
		confirmer: confirmer,
		observer:  output.OrNull(observer),
		logger:    logging.OrNull(logger),
	}
}

// Run executes the run described by opts. The report is returned even on
// failure. A declined confirmation returns models.ErrCancelled with a
// cancelled report; nothing is mutated or pruned in that case.
func (e *Engine) Run(ctx context.Context, opts Options) (*models.RunReport, error) {
	report := &models.RunReport{
		ID:          uuid.New().String(),
		SourcePath:  opts.SourcePath,
		TargetPaths: opts.TargetPaths,
		Mode:        opts.Mode,
		StartTime:   time.Now(),
		Status:      models.StatusSuccess,
	}
	logger := e.logger.WithFields(logging.Fields{"run_id": report.ID})

	defer func() {
		report.EndTime = time.Now()
		report.Duration = report.EndTime.Sub(report.StartTime)
	}()

	fail := func(err error) (*models.RunReport, error) {
		report.Status = models.StatusFailed
		logger.Error(ctx, "Run failed", err, nil)
		return report, err
	}

	if err := opts.Validate(); err != nil {
		return fail(err)
	}
	report.SourcePath = opts.SourcePath
	report.TargetPaths = opts.TargetPaths
	report.Mode = opts.Mode

	logger.Info(ctx, "Starting run", logging.Fields{
		"source":  opts.SourcePath,
		"targets": opts.TargetPaths,
		"mode":    opts.Mode.String(),
	})

	store := cache.NewStore(opts.CacheFileName, logger)
	fp := fingerprint.New(e.hasher, e.gate, e.observer, logger)

	source, sourceResult, err := e.snapshot(ctx, fp, store, opts, opts.SourcePath)
	if err != nil {
		return fail(err)
	}
	defer source.Close()
	report.Stats.SourceFiles = len(sourceResult.Snapshot.Files)
	report.Stats.CacheHits += sourceResult.CacheHits
	report.Stats.FilesHashed += sourceResult.Hashed

	targets := make([]*models.DirectorySnapshot, 0, len(opts.TargetPaths))
	for _, root := range opts.TargetPaths {
		backend, result, err := e.snapshot(ctx, fp, store, opts, root)
		if err != nil {
			return fail(err)
		}
		backend.Close()
		targets = append(targets, result.Snapshot)
		report.Stats.TargetFiles += len(result.Snapshot.Files)
		report.Stats.CacheHits += result.CacheHits
		report.Stats.FilesHashed += result.Hashed
	}

	actions := dedupe.Plan(sourceResult.Snapshot, targets)
	if opts.RehashVerify && len(actions) > 0 {
		actions, err = dedupe.Verify(ctx, sourceResult.Snapshot, targets, actions, e.gatedHash, logger)
		if err != nil {
			return fail(err)
		}
	}
	report.Actions = actions
	report.Stats.FilesPlanned = len(actions)
	report.Stats.BytesReclaimed = dedupe.ReclaimedBytes(actions)

	logger.Info(ctx, "Plan ready", logging.Fields{
		"source_files": report.Stats.SourceFiles,
		"target_files": report.Stats.TargetFiles,
		"duplicates":   len(actions),
	})

	if opts.ReportFile != "" {
		if err := output.WriteReport(report, opts.ReportFile, opts.ReportFormat); err != nil {
			return fail(err)
		}
	}

	exec := executor.New(e.gate, e.confirmer, e.observer, logger)
	result, err := exec.Execute(ctx, source, actions, opts.Mode)
	if errors.Is(err, models.ErrCancelled) {
		report.Status = models.StatusCancelled
		return report, err
	}
	if err != nil {
		return fail(err)
	}

	report.Stats.FilesAffected = result.Affected
	for _, fe := range result.Errors {
		report.AddError(fe)
	}

	if opts.Mode.Mutates() && len(actions) > 0 {
		pruned, err := prune.New(logger).Prune(ctx, source)
		if err != nil {
			logger.Error(ctx, "Pruning aborted", err, nil)
		} else {
			report.Stats.DirsPruned = len(pruned.Removed)
			// Prune failures are reported but do not downgrade the run
			for _, fe := range pruned.Errors {
				report.Errors = append(report.Errors, models.RunError{
					Path:      fe.Path,
					Operation: fe.Op,
					Error:     fe.Err.Error(),
					Timestamp: time.Now(),
				})
			}
		}
	}

	logger.Info(ctx, "Run completed", logging.Fields{
		"status":      report.Status,
		"affected":    report.Stats.FilesAffected,
		"errors":      len(report.Errors),
		"dirs_pruned": report.Stats.DirsPruned,
	})

	return report, nil
}

// Scan fingerprints a single directory and persists its cache
func (e *Engine) Scan(ctx context.Context, root string, opts Options) (*fingerprint.Result, error) {
	normalized, err := existingDir("directory", root)
	if err != nil {
		return nil, err
	}

	logger := e.logger.WithFields(logging.Fields{"run_id": uuid.New().String()})
	store := cache.NewStore(opts.CacheFileName, logger)
	fp := fingerprint.New(e.hasher, e.gate, e.observer, logger)

	backend, result, err := e.snapshot(ctx, fp, store, opts, normalized)
	if err != nil {
		return nil, err
	}
	backend.Close()
	return result, nil
}

// snapshot enumerates and fingerprints one root, then saves its cache
func (e *Engine) snapshot(ctx context.Context, fp *fingerprint.Fingerprinter, store *cache.Store, opts Options, root string) (*storage.Local, *fingerprint.Result, error) {
	backend, err := storage.NewLocal(root)
	if err != nil {
		return nil, nil, err
	}
	backend.Reserve(store.FileNames()...)
	if opts.ReportFile != "" {
		backend.Ignore(opts.ReportFile)
	}
	if err := backend.SetExcludes(opts.Excludes); err != nil {
		return nil, nil, &models.ValidationError{Field: "exclude", Message: err.Error()}
	}

	paths, err := backend.ListFiles(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to enumerate %s: %w", root, err)
	}

	var entries cache.Entries
	if opts.LoadCache {
		entries = store.Load(ctx, root)
	}

	e.logger.Debug(ctx, "Fingerprinting directory", logging.Fields{
		"root":           root,
		"files":          len(paths),
		"cached_entries": len(entries),
	})

	result, err := fp.Fingerprint(ctx, backend, paths, entries)
	if err != nil {
		return nil, nil, err
	}

	if opts.SaveCache {
		if err := store.Save(ctx, result.Snapshot); err != nil {
			e.logger.Warn(ctx, "Failed to save fingerprint cache", logging.Fields{
				"root":  root,
				"error": err.Error(),
			})
		}
	}

	return backend, result, nil
}

func (e *Engine) gatedHash(ctx context.Context, path string) (string, error) {
	var hash string
	err := e.gate.Do(ctx, func(ctx context.Context) error {
		var err error
		hash, err = e.hasher.HashFile(ctx, path)
		return err
	})
	return hash, err
}
