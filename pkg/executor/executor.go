// Package executor applies a deletion plan to the source tree.
package executor

import (
	"context"
	"fmt"

	"github.com/sdejongh/dupnorris/pkg/gate"
	"github.com/sdejongh/dupnorris/pkg/logging"
	"github.com/sdejongh/dupnorris/pkg/models"
	"github.com/sdejongh/dupnorris/pkg/output"
	"github.com/sdejongh/dupnorris/pkg/storage"
)

// Confirmer asks the user to approve a mutation
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Result summarizes an execution
type Result struct {
	// Affected counts files actually deleted or moved
	Affected int
	// Errors holds one entry per file that could not be processed
	Errors []*models.FileError
}

// Executor deletes or moves planned source files
type Executor struct {
	gate      *gate.Gate
	observer  output.Observer
	logger    logging.Logger
	confirmer Confirmer // nil means no prompt
}

// New creates an executor. A nil confirmer skips the confirmation prompt.
func New(g *gate.Gate, confirmer Confirmer, observer output.Observer, logger logging.Logger) *Executor {
	if g == nil {
		g = gate.New(gate.DefaultLimit)
	}
	return &Executor{
		gate:      g,
		observer:  output.OrNull(observer),
		logger:    logging.OrNull(logger),
		confirmer: confirmer,
	}
}

// Execute applies mode to every action's source file inside source.
// Dry runs never touch the filesystem. When the confirmer declines,
// models.ErrCancelled is returned and nothing is changed. Per-file
// failures are collected in the result and do not stop other files.
func (e *Executor) Execute(ctx context.Context, source storage.Backend, actions []models.DeleteAction, mode models.ExecutionMode) (*Result, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}

	result := &Result{}
	if !mode.Mutates() || len(actions) == 0 {
		return result, nil
	}

	if e.confirmer != nil {
		prompt := fmt.Sprintf("Delete %d duplicate files from %s?", len(actions), source.Root())
		if mode.Kind == models.ModeMove {
			prompt = fmt.Sprintf("Move %d duplicate files from %s to %s?", len(actions), source.Root(), mode.Destination)
		}
		ok, err := e.confirmer.Confirm(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			e.logger.Info(ctx, "Execution declined", logging.Fields{"files": len(actions)})
			return nil, models.ErrCancelled
		}
	}

	e.observer.Start(output.PhaseExecute, len(actions))
	defer e.observer.Finish(output.PhaseExecute)

	errs := e.gate.Each(ctx, len(actions), func(ctx context.Context, i int) error {
		rel := actions[i].SourceFile.RelativePath
		defer e.observer.Tick(output.PhaseExecute, rel)
		return e.apply(ctx, source, rel, mode)
	})

	for i, err := range errs {
		path := actions[i].SourceFile.AbsolutePath
		if err == nil {
			result.Affected++
			e.logger.Debug(ctx, "File processed", logging.Fields{"path": path, "mode": string(mode.Kind)})
			continue
		}
		fe := &models.FileError{Path: path, Op: mode.Verb(), Err: err}
		result.Errors = append(result.Errors, fe)
		e.logger.Warn(ctx, "Failed to process file", logging.Fields{
			"path":  path,
			"op":    fe.Op,
			"error": err.Error(),
		})
	}

	return result, nil
}

func (e *Executor) apply(ctx context.Context, source storage.Backend, rel string, mode models.ExecutionMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch mode.Kind {
	case models.ModeMove:
		return source.MoveTo(ctx, rel, mode.Destination)
	default:
		return source.Remove(ctx, rel)
	}
}
