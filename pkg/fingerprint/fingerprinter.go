// Package fingerprint turns enumerated relative paths into a fully hashed
// directory snapshot, reusing cached digests for files whose size and
// modification time are unchanged.
package fingerprint

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/sdejongh/dupnorris/pkg/cache"
	"github.com/sdejongh/dupnorris/pkg/gate"
	"github.com/sdejongh/dupnorris/pkg/logging"
	"github.com/sdejongh/dupnorris/pkg/models"
	"github.com/sdejongh/dupnorris/pkg/output"
	"github.com/sdejongh/dupnorris/pkg/storage"
)

// Result is a snapshot plus how it was obtained
type Result struct {
	Snapshot  *models.DirectorySnapshot
	CacheHits int
	Hashed    int
}

// Fingerprinter computes snapshots through a shared concurrency gate
type Fingerprinter struct {
	hasher   *Hasher
	gate     *gate.Gate
	observer output.Observer
	logger   logging.Logger
}

// New creates a fingerprinter. observer and logger may be nil.
func New(hasher *Hasher, g *gate.Gate, observer output.Observer, logger logging.Logger) *Fingerprinter {
	if hasher == nil {
		hasher = NewHasher(DefaultBufferSize, nil)
	}
	if g == nil {
		g = gate.New(gate.DefaultLimit)
	}
	return &Fingerprinter{
		hasher:   hasher,
		gate:     g,
		observer: output.OrNull(observer),
		logger:   logging.OrNull(logger),
	}
}

// Fingerprint stats and hashes every path in relPaths beneath backend's root.
// entries may be nil. Any stat or read failure fails the whole directory.
// Files in the returned snapshot keep the order of relPaths.
func (f *Fingerprinter) Fingerprint(ctx context.Context, backend storage.Backend, relPaths []string, entries cache.Entries) (*Result, error) {
	root := backend.Root()
	records := make([]models.FileRecord, len(relPaths))
	var hits, hashed atomic.Int64

	f.observer.Start(output.PhaseFingerprint, len(relPaths))
	defer f.observer.Finish(output.PhaseFingerprint)

	g, gctx := errgroup.WithContext(ctx)

	for i, rel := range relPaths {
		if err := f.gate.Acquire(gctx); err != nil {
			break
		}

		g.Go(func() error {
			defer f.gate.Release()

			rec, fromCache, err := f.fingerprintOne(gctx, backend, root, rel, entries)
			if err != nil {
				return err
			}
			records[i] = rec
			if fromCache {
				hits.Add(1)
			} else {
				hashed.Add(1)
			}
			f.observer.Tick(output.PhaseFingerprint, rel)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fingerprint %s: %w", root, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to fingerprint %s: %w", root, err)
	}

	result := &Result{
		Snapshot:  &models.DirectorySnapshot{RootPath: root, Files: records},
		CacheHits: int(hits.Load()),
		Hashed:    int(hashed.Load()),
	}

	f.logger.Debug(ctx, "Directory fingerprinted", logging.Fields{
		"root":       root,
		"files":      len(records),
		"cache_hits": result.CacheHits,
		"hashed":     result.Hashed,
	})

	return result, nil
}

func (f *Fingerprinter) fingerprintOne(ctx context.Context, backend storage.Backend, root, rel string, entries cache.Entries) (models.FileRecord, bool, error) {
	rec := models.NewFileRecord(root, rel)

	info, err := backend.Stat(ctx, rel)
	if err != nil {
		return rec, false, fmt.Errorf("failed to stat %s: %w", rel, err)
	}
	rec.Size = info.Size
	rec.ModifiedTimeMillis = models.ToMillis(info.ModTime)

	if entry, ok := entries[rec.RelativePath]; ok && entry.Matches(rec.Size, rec.ModifiedTimeMillis) {
		rec.Hash = entry.Hash
		return rec, true, nil
	}

	hash, err := f.hasher.Hash(ctx, backend, rel)
	if err != nil {
		return rec, false, fmt.Errorf("failed to hash %s: %w", rel, err)
	}
	rec.Hash = hash
	return rec, false, nil
}
