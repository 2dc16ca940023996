package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"rolecomp/internal/trace"
)

// RunFiles runs the pipeline over every path in parallel. Modules are
// independent: each run gets its own graph and mutation context. Results keep
// the order of paths. The first I/O error cancels the remaining runs.
func RunFiles(ctx context.Context, paths []string, opts Options) ([]*ModuleResult, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "run", trace.CurrentSpan(ctx)).
		WithExtra("mode", opts.Mode.String())
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]*ModuleResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res, err := RunFile(gctx, path, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
