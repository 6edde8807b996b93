// Package driver orchestrates a patch run: read modules, scan plugs, apply
// the registry to the target, write the output. Phases execute strictly
// sequentially; only the read and scan of independent replacement modules
// is parallel.
package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"ilpatch/internal/diag"
	"ilpatch/internal/il"
	"ilpatch/internal/ilbin"
	"ilpatch/internal/observ"
	"ilpatch/internal/patch"
	"ilpatch/internal/pipeline"
	"ilpatch/internal/plug"
	"ilpatch/internal/project"
	"ilpatch/internal/validate"
)

// Options tunes a run.
type Options struct {
	// MaxDiagnostics caps the fault bag.
	MaxDiagnostics int
	// Jobs limits read/scan parallelism; <=0 means GOMAXPROCS.
	Jobs int
	// Verbose enables structured logging to stderr.
	Verbose bool
	// Sink receives progress events; nil means none.
	Sink pipeline.ProgressSink
	// SkipWrite stops after patching without writing the output module
	// (used by the scan command and dry runs).
	SkipWrite bool
}

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return 100
	}
	return o.MaxDiagnostics
}

func (o Options) sink() pipeline.ProgressSink {
	if o.Sink == nil {
		return pipeline.NopSink{}
	}
	return o.Sink
}

func (o Options) logger() *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false, Prefix: "ilpatch"})
	if o.Verbose {
		l.SetLevel(log.DebugLevel)
	} else {
		l.SetLevel(log.WarnLevel)
	}
	return l
}

// Result carries everything a run produced. Bag holds every accumulated
// fault; the caller decides fatality (HasFatal) and exit codes.
type Result struct {
	Target   *il.Module
	Registry *plug.Registry
	Bag      *diag.Bag
	Timing   observ.Report
}

// Run executes the full pipeline described by the manifest.
func Run(ctx context.Context, m project.Manifest, opts Options) (*Result, error) {
	logger := opts.logger()
	sink := opts.sink()
	timer := observ.NewTimer()
	bag := diag.NewBag(opts.maxDiagnostics())
	rep := diag.BagReporter{Bag: bag}

	// Read phase: the target, the resolution catalog and every replacement
	// module. Replacement modules are independent, so they load in
	// parallel.
	phase := timer.Begin("read")
	start := time.Now()
	sink.OnEvent(pipeline.Event{Stage: pipeline.StageRead, Status: pipeline.StatusWorking})

	target, err := ilbin.ReadFile(m.TargetPath())
	if err != nil {
		sink.OnEvent(pipeline.Event{Stage: pipeline.StageRead, Status: pipeline.StatusError, Err: err})
		return nil, fmt.Errorf("target: %w", err)
	}
	logger.Debug("target loaded", "module", target.Name, "types", len(target.Types))

	catalog, err := loadModules(ctx, m.ResolvePaths(), opts.Jobs, sink)
	if err != nil {
		return nil, err
	}
	plugs, err := loadModules(ctx, m.PlugPaths(), opts.Jobs, sink)
	if err != nil {
		return nil, err
	}
	timer.End(phase, fmt.Sprintf("%d modules", 1+len(catalog)+len(plugs)))
	sink.OnEvent(pipeline.Event{Stage: pipeline.StageRead, Status: pipeline.StatusDone, Elapsed: time.Since(start)})

	// Scan phase.
	phase = timer.Begin("scan")
	start = time.Now()
	sink.OnEvent(pipeline.Event{Stage: pipeline.StageScan, Status: pipeline.StatusWorking})
	res := plug.NewResolver(target)
	for _, c := range catalog {
		res.AddModule(c)
	}
	registry := scanParallel(ctx, plugs, m.PlugPaths(), res, rep, opts.Jobs, sink)
	logger.Debug("scan complete", "substitutions", registry.Len(), "faults", bag.Len())
	timer.End(phase, fmt.Sprintf("%d substitutions", registry.Len()))
	sink.OnEvent(pipeline.Event{Stage: pipeline.StageScan, Status: pipeline.StatusDone, Elapsed: time.Since(start)})

	// Patch phase.
	targetName := filepath.Base(m.TargetPath())
	phase = timer.Begin("patch")
	start = time.Now()
	sink.OnEvent(pipeline.Event{Module: targetName, Stage: pipeline.StagePatch, Status: pipeline.StatusWorking})
	patch.Apply(target, registry, rep)
	timer.End(phase, "")
	sink.OnEvent(pipeline.Event{Module: targetName, Stage: pipeline.StagePatch, Status: pipeline.StatusDone, Elapsed: time.Since(start)})
	logger.Debug("patch complete", "faults", bag.Len())

	// Write phase. A partially patched module is still written unless the
	// caller asked otherwise; fatality policy lives above the driver.
	if !opts.SkipWrite {
		phase = timer.Begin("write")
		start = time.Now()
		sink.OnEvent(pipeline.Event{Module: targetName, Stage: pipeline.StageWrite, Status: pipeline.StatusWorking})
		if err := ilbin.WriteFile(m.OutputPath(), target); err != nil {
			sink.OnEvent(pipeline.Event{Module: targetName, Stage: pipeline.StageWrite, Status: pipeline.StatusError, Err: err})
			return nil, fmt.Errorf("output: %w", err)
		}
		timer.End(phase, m.OutputPath())
		sink.OnEvent(pipeline.Event{Module: targetName, Stage: pipeline.StageWrite, Status: pipeline.StatusDone, Elapsed: time.Since(start)})
		logger.Debug("output written", "path", m.OutputPath())
	}

	bag.Sort()
	return &Result{
		Target:   target,
		Registry: registry,
		Bag:      bag,
		Timing:   timer.Report(),
	}, nil
}

// ScanOnly loads modules and builds the registry without patching.
func ScanOnly(ctx context.Context, m project.Manifest, opts Options) (*Result, error) {
	bag := diag.NewBag(opts.maxDiagnostics())
	rep := diag.BagReporter{Bag: bag}
	timer := observ.NewTimer()
	sink := opts.sink()

	phase := timer.Begin("read")
	target, err := ilbin.ReadFile(m.TargetPath())
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	catalog, err := loadModules(ctx, m.ResolvePaths(), opts.Jobs, sink)
	if err != nil {
		return nil, err
	}
	plugs, err := loadModules(ctx, m.PlugPaths(), opts.Jobs, sink)
	if err != nil {
		return nil, err
	}
	timer.End(phase, "")

	phase = timer.Begin("scan")
	res := plug.NewResolver(target)
	for _, c := range catalog {
		res.AddModule(c)
	}
	registry := scanParallel(ctx, plugs, m.PlugPaths(), res, rep, opts.Jobs, sink)
	timer.End(phase, fmt.Sprintf("%d substitutions", registry.Len()))

	bag.Sort()
	return &Result{Target: target, Registry: registry, Bag: bag, Timing: timer.Report()}, nil
}

// ValidateOnly runs the build-time validator over every declaration visible
// through the manifest: the replacement modules, the resolution catalog and
// the target when it already exists on disk (validation is meant to run
// before the target is produced, so a missing target is not an error).
func ValidateOnly(ctx context.Context, m project.Manifest, opts Options) (*Result, error) {
	bag := diag.NewBag(opts.maxDiagnostics())
	rep := diag.BagReporter{Bag: bag}

	var mods []*il.Module
	if t, err := ilbin.ReadFile(m.TargetPath()); err == nil {
		mods = append(mods, t)
	}
	catalog, err := loadModules(ctx, m.ResolvePaths(), opts.Jobs, opts.sink())
	if err != nil {
		return nil, err
	}
	mods = append(mods, catalog...)
	plugs, err := loadModules(ctx, m.PlugPaths(), opts.Jobs, opts.sink())
	if err != nil {
		return nil, err
	}
	mods = append(mods, plugs...)

	res := plug.NewResolver(mods...)
	var decls []*il.TypeDecl
	for _, mod := range mods {
		decls = append(decls, mod.Types...)
	}
	validate.Check(decls, res, rep)

	bag.Sort()
	return &Result{Bag: bag}, nil
}
