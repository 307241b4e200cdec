// Package engine orchestrates components A-P into the single analysis
// run of §5: discover files, parse each concurrently through a bounded
// worker pool, extract metrics/risk/identity/suppression per function,
// and assemble a deterministic report regardless of completion order.
// Grounded on the teacher's framework.Runner worker-pool shape, scaled
// down to sourcegraph/conc's ResultContextPool rather than the
// teacher's hand-rolled channel coordinator, since conc is already a
// pack dependency and gives the same bounded-concurrency-plus-first-
// error-wins semantics with far less code.
package engine

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"github.com/hotspots-dev/hotspots/internal/config"
	"github.com/hotspots-dev/hotspots/internal/frontend"
	"github.com/hotspots-dev/hotspots/internal/herrors"
	"github.com/hotspots-dev/hotspots/internal/identity"
	"github.com/hotspots-dev/hotspots/internal/langdispatch"
	"github.com/hotspots-dev/hotspots/internal/metrics"
	"github.com/hotspots-dev/hotspots/internal/report"
	"github.com/hotspots-dev/hotspots/internal/risk"
	"github.com/hotspots-dev/hotspots/internal/suppression"
)

// Observer receives per-file progress signals; all methods may be
// called concurrently from worker goroutines. A nil Observer is valid.
type Observer interface {
	FileAnalyzed(relPath string)
	ParseFailed(relPath string, err error)
}

// Options configures one analysis run.
type Options struct {
	Workers    int // 0 means runtime.NumCPU()
	Weights    risk.Weights
	Thresholds risk.Thresholds
	Filters    langdispatch.Filters
	Observer   Observer
}

// Result is the unfiltered, canonically-sorted function list for one
// commit, plus the files that were discovered and parsed.
type Result struct {
	Functions []report.FunctionRecord
	Files     []string
}

// Run discovers every recognized source file under root, parses and
// measures it, and returns the aggregated, canonically-sorted result.
// A single file's parse failure aborts the whole run (§7: fail-fast
// propagation) after in-flight workers finish their current file.
func Run(ctx context.Context, root string, registry *langdispatch.Registry, opts Options) (*Result, error) {
	files, err := langdispatch.Discover(root, registry, opts.Filters)
	if err != nil {
		return nil, &herrors.IOError{Path: root, Operation: "discover", Err: err}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	p := pool.NewWithResults[[]report.FunctionRecord]().
		WithContext(ctx).
		WithCancelOnError().
		WithMaxGoroutines(workers)

	for _, rel := range files {
		rel := rel
		p.Go(func(ctx context.Context) ([]report.FunctionRecord, error) {
			return analyzeFile(root, rel, registry, opts)
		})
	}

	perFile, err := p.Wait()
	if err != nil {
		return nil, err
	}

	var all []report.FunctionRecord
	for _, fns := range perFile {
		all = append(all, fns...)
	}

	report.SortCanonical(all)

	return &Result{Functions: all, Files: files}, nil
}

// ApplyConfig folds a loaded configuration's weights/thresholds/filters
// into engine Options, config values taking the place of the defaults
// a caller would otherwise need to wire by hand.
func ApplyConfig(base Options, cfg config.Config) Options {
	base.Weights = cfg.Weights
	base.Thresholds = cfg.Thresholds
	base.Filters = langdispatch.Filters{Include: cfg.Include, Exclude: cfg.Exclude}

	return base
}

func analyzeFile(root, relPath string, registry *langdispatch.Registry, opts Options) ([]report.FunctionRecord, error) {
	fe, ok := registry.Resolve(relPath)
	if !ok {
		return nil, nil
	}

	src, err := langdispatch.ReadFile(root, relPath)
	if err != nil {
		return nil, &herrors.IOError{Path: relPath, Operation: "read", Err: err}
	}

	module, err := fe.Parse(relPath, src)
	if err != nil {
		if opts.Observer != nil {
			opts.Observer.ParseFailed(relPath, err)
		}
		return nil, fmt.Errorf("%s: %w", relPath, err)
	}

	records := make([]report.FunctionRecord, 0, len(module.Functions))
	seen := identity.NewSet()

	for _, fv := range module.Functions {
		records = append(records, buildRecord(module, fv, fe, seen, opts))
	}

	if opts.Observer != nil {
		opts.Observer.FileAnalyzed(relPath)
	}

	return records, nil
}

func buildRecord(module *frontend.ParsedModule, fv frontend.FunctionView, fe frontend.Frontend, seen *identity.Set, opts Options) report.FunctionRecord {
	functionID := identity.FunctionID(module.RelativePath, fv.Symbol)
	if !seen.AddIfAbsent(functionID) {
		functionID = identity.Anonymous(module.RelativePath, fv.DeclarationLine)
	}

	m := metrics.Extract(fv.CFG, metrics.Inputs{
		NestingDepth:   fv.MaxNestingDepth,
		FanOut:         len(fv.DistinctCallees),
		NonStructExits: fv.NonStructuredExits,
		CCIncrement:    fv.CCIncrement,
	})

	result := risk.Evaluate(m, opts.Weights, opts.Thresholds)

	var suppressionReason *string
	if reason, ok := suppression.Scan(module.Lines, fv.DeclarationLine, fe.CommentMarkers()); ok {
		suppressionReason = &reason
	}

	return report.FromRisk(functionID, module.RelativePath, fv.DeclarationLine, m, result, suppressionReason)
}
