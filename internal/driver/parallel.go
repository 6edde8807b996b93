package driver

import (
	"context"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"ilpatch/internal/diag"
	"ilpatch/internal/il"
	"ilpatch/internal/ilbin"
	"ilpatch/internal/pipeline"
	"ilpatch/internal/plug"
)

// loadModules reads module files in parallel, preserving input order in the
// result slice.
func loadModules(ctx context.Context, paths []string, jobs int, sink pipeline.ProgressSink) ([]*il.Module, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]*il.Module, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		i, path := i, path
		// Progress events identify modules by file base name, matching the
		// names the UI builds from the manifest.
		name := filepath.Base(path)
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			start := time.Now()
			sink.OnEvent(pipeline.Event{Module: name, Stage: pipeline.StageRead, Status: pipeline.StatusWorking})
			m, err := ilbin.ReadFile(path)
			if err != nil {
				sink.OnEvent(pipeline.Event{Module: name, Stage: pipeline.StageRead, Status: pipeline.StatusError, Err: err})
				return err
			}
			sink.OnEvent(pipeline.Event{Module: name, Stage: pipeline.StageRead, Status: pipeline.StatusDone, Elapsed: time.Since(start)})
			results[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// scanParallel scans replacement modules concurrently. Every module is
// scanned into a private partial registry with a private bag; partials are
// then merged under a single writer in manifest order, which keeps
// DuplicateSubstitution outcomes deterministic regardless of scan order.
func scanParallel(ctx context.Context, plugs []*il.Module, paths []string, res *plug.Resolver, rep diag.Reporter, jobs int, sink pipeline.ProgressSink) *plug.Registry {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	type partial struct {
		reg *plug.Registry
		bag *diag.Bag
	}
	partials := make([]partial, len(plugs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(plugs), 1)))
	for i, pm := range plugs {
		i, pm := i, pm
		name := pm.Name
		if i < len(paths) {
			name = filepath.Base(paths[i])
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			start := time.Now()
			sink.OnEvent(pipeline.Event{Module: name, Stage: pipeline.StageScan, Status: pipeline.StatusWorking})
			bag := diag.NewBag(256)
			reg := plug.ScanModule(pm, res, diag.BagReporter{Bag: bag})
			partials[i] = partial{reg: reg, bag: bag}
			sink.OnEvent(pipeline.Event{Module: name, Stage: pipeline.StageScan, Status: pipeline.StatusDone, Elapsed: time.Since(start)})
			return nil
		})
	}
	// Scanning never fails; the only group error is cancellation, in which
	// case the merged registry is simply incomplete.
	_ = g.Wait()

	merged := plug.NewRegistry()
	for _, p := range partials {
		if p.reg == nil {
			continue
		}
		for _, d := range p.bag.Items() {
			rep.Report(d)
		}
		merged.Merge(p.reg, rep)
	}
	return merged
}
