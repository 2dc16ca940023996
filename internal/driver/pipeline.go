package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rolecomp/internal/compose"
	"rolecomp/internal/diag"
	"rolecomp/internal/loader"
	"rolecomp/internal/meta"
	"rolecomp/internal/morph"
	"rolecomp/internal/mutate"
	"rolecomp/internal/observ"
	"rolecomp/internal/source"
	"rolecomp/internal/trace"
)

// ModuleResult is the outcome of one module run.
type ModuleResult struct {
	Path      string
	Module    *meta.Module
	RunID     uuid.UUID
	Result    *diag.Result
	Bag       *diag.Bag
	Dropped   int
	Actions   int
	Committed bool
	Timing    *observ.Report
}

// Success reports whether every pass of the run succeeded.
func (r *ModuleResult) Success() bool {
	return r != nil && r.Result.Success()
}

type run struct {
	ctx    context.Context
	opts   Options
	tracer trace.Tracer
	parent uint64
	timer  *observ.Timer
	out    *ModuleResult
}

// RunFile loads the module description at path and runs the pipeline over it.
// Only I/O and decode failures are returned as errors.
func RunFile(ctx context.Context, path string, opts Options) (*ModuleResult, error) {
	r := newRun(ctx, opts, path)
	span := trace.Begin(r.tracer, trace.ScopeDriver, "module", r.parent).WithExtra("path", path)
	r.parent = span.ID()

	var (
		mod     *meta.Module
		loadRes *diag.Result
		err     error
	)
	r.phase("load", func() string {
		mod, loadRes, err = loader.LoadFile(path)
		if err != nil {
			return "failed"
		}
		return fmt.Sprintf("%d types", len(mod.Types()))
	})
	if err != nil {
		span.End("load failed")
		return nil, err
	}
	r.out.Module = mod
	r.out.Result.AddChild(loadRes)
	if loadRes.Success() {
		r.pipeline(mod)
	}
	r.finish()
	span.WithExtra("success", fmt.Sprint(r.out.Success())).End(mod.Name)
	return r.out, nil
}

// RunModule runs the pipeline over an already built module.
func RunModule(ctx context.Context, mod *meta.Module, opts Options) *ModuleResult {
	r := newRun(ctx, opts, mod.Name)
	span := trace.Begin(r.tracer, trace.ScopeDriver, "module", r.parent).WithExtra("module", mod.Name)
	r.parent = span.ID()
	r.out.Module = mod
	r.pipeline(mod)
	r.finish()
	span.WithExtra("success", fmt.Sprint(r.out.Success())).End(mod.Name)
	return r.out
}

func newRun(ctx context.Context, opts Options, path string) *run {
	r := &run{
		ctx:    ctx,
		opts:   opts,
		tracer: trace.FromContext(ctx),
		parent: trace.CurrentSpan(ctx),
		out:    &ModuleResult{Path: path, Result: diag.NewResult()},
	}
	if opts.EnableTimings {
		r.timer = observ.NewTimer()
	}
	return r
}

func (r *run) phase(name string, fn func() string) {
	module := r.out.Path
	if r.opts.PhaseObserver != nil {
		r.opts.PhaseObserver(PhaseEvent{Module: module, Name: name, Status: PhaseStart})
	}
	span := trace.Begin(r.tracer, trace.ScopePass, name, r.parent)
	idx := r.timer.Begin(name)
	start := time.Now()
	note := fn()
	r.timer.End(idx, note)
	span.End(note)
	if r.opts.PhaseObserver != nil {
		r.opts.PhaseObserver(PhaseEvent{Module: module, Name: name, Status: PhaseEnd, Elapsed: time.Since(start)})
	}
}

func (r *run) pipeline(mod *meta.Module) {
	mctx := mutate.NewContext(mod,
		mutate.WithTracer(r.tracer),
		mutate.WithSelfTypeParam(r.opts.SelfTypeParam),
	)
	r.out.RunID = mctx.RunID
	res := r.out.Result

	r.phase("morph", func() string {
		morpher := morph.NewMutator(mctx)
		roles := 0
		for _, id := range mod.Types() {
			if !mod.Type(id).IsRole() {
				continue
			}
			roles++
			res.AddChild(morpher.Mutate(id))
		}
		return fmt.Sprintf("%d roles", roles)
	})

	if r.opts.Mode != ModeMorph {
		r.phase("compose", func() string {
			composer := compose.NewMutator(mctx)
			targets := 0
			for _, id := range mod.Types() {
				if r.ctx.Err() != nil {
					res.Add(diag.Errorf(diag.InternalError, source.NoLocation, "run cancelled: %v", r.ctx.Err()))
					break
				}
				if !mod.Type(id).ComposesRoles() {
					continue
				}
				targets++
				sub, err := composer.Mutate(id)
				if err != nil {
					res.Add(diag.Errorf(diag.InternalError, mod.Type(id).Location, "%v", err))
					continue
				}
				res.AddChild(sub)
			}
			return fmt.Sprintf("%d targets", targets)
		})
		r.phase("usage", func() string {
			usage := compose.CheckRoleUsage(mod)
			res.AddChild(usage)
			return fmt.Sprintf("%d findings", usage.Len())
		})
	}

	r.out.Actions = mctx.Len()
	if !res.Success() || r.opts.Mode == ModeCheck {
		return
	}
	r.phase("commit", func() string {
		n, err := mctx.Commit()
		if err != nil && !errors.Is(err, mutate.ErrAlreadyCommitted) {
			res.Add(diag.Errorf(diag.InternalError, source.NoLocation, "commit: %v", err))
			return "failed"
		}
		r.out.Committed = true
		return fmt.Sprintf("%d actions", n)
	})
}

func (r *run) finish() {
	if r.timer != nil {
		report := r.timer.Report()
		r.out.Timing = &report
	}
	bag := diag.NewBag(r.opts.MaxDiagnostics)
	r.out.Dropped = bag.AddAll(r.out.Result.Diagnostics())
	bag.Dedup()
	if r.out.Timing != nil {
		appendTimingDiagnostic(bag, timingPayload{Kind: r.opts.Mode.String(), Path: r.out.Path, TotalMS: r.out.Timing.TotalMS, Phases: r.out.Timing.Phases})
	}
	r.out.Bag = bag
	if r.out.Result.Has(diag.InternalError) {
		dumpRing(r.tracer, r.opts.CrashDump)
	}
}
