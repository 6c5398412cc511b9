// Package pipeline remodels the normalized e-commerce source collections
// into the four denormalized target collections. Every write is an
// idempotent upsert by the target's unique key, so a run can be repeated
// from scratch at any time.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/storelake/remodel-cli/internal/config"
	"github.com/storelake/remodel-cli/internal/model"
	"github.com/storelake/remodel-cli/internal/store"
)

const (
	stageComplete = "complete"
	stageFailed   = "failed"
)

// Pipeline orchestrates the build stages against a Store.
type Pipeline struct {
	cfg   *config.Config
	store store.Store
}

// New creates a Pipeline.
func New(cfg *config.Config, st store.Store) *Pipeline {
	return &Pipeline{cfg: cfg, store: st}
}

// Run executes the full build: orders, products and sellers concurrently
// (they are independent), then the lead base pass, then the lead
// enrichment, which must observe the fully committed orders. A failing
// stage is recorded on the run and does not undo the other stages.
func (p *Pipeline) Run(ctx context.Context) (*model.Run, error) {
	log := zap.L()

	if err := p.store.EnsureIndexes(ctx); err != nil {
		return nil, eris.Wrap(err, "pipeline: ensure indexes")
	}

	run, err := p.store.CreateRun(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}

	var stagesMu sync.Mutex
	track := func(name string, fn func() (int, error)) error {
		start := time.Now()
		docs, stageErr := fn()
		result := model.StageResult{
			Name:       name,
			Status:     stageComplete,
			Docs:       docs,
			DurationMS: time.Since(start).Milliseconds(),
		}
		if stageErr != nil {
			result.Status = stageFailed
			result.Error = stageErr.Error()
			log.Error("pipeline: stage failed",
				zap.String("stage", name),
				zap.Int64("duration_ms", result.DurationMS),
				zap.Error(stageErr),
			)
		} else {
			log.Info("pipeline: stage complete",
				zap.String("stage", name),
				zap.Int("docs", docs),
				zap.Int64("duration_ms", result.DurationMS),
			)
		}
		stagesMu.Lock()
		run.Stages = append(run.Stages, result)
		stagesMu.Unlock()
		return stageErr
	}

	// Independent builds. A plain Group (no shared cancellation) so one
	// stage failing does not abort the others mid-write.
	var g errgroup.Group
	var ordersErr error
	g.Go(func() error {
		ordersErr = track("orders", func() (int, error) { return p.BuildOrders(ctx) })
		return ordersErr
	})
	g.Go(func() error {
		return track("products", func() (int, error) { return p.BuildProducts(ctx) })
	})
	g.Go(func() error {
		return track("sellers", func() (int, error) { return p.BuildSellers(ctx) })
	})
	buildErr := g.Wait()

	leadsErr := track("leads", func() (int, error) { return p.BuildLeads(ctx) })

	// The estimator queries committed orders; skip it when either input
	// pass failed rather than merging income fields computed from a
	// half-built collection.
	var enrichErr error
	if ordersErr == nil && leadsErr == nil {
		enrichErr = track("leads_enrich", func() (int, error) { return p.EnrichLeads(ctx) })
	} else {
		log.Warn("pipeline: skipping lead enrichment", zap.Bool("orders_ok", ordersErr == nil), zap.Bool("leads_ok", leadsErr == nil))
	}

	now := time.Now().UTC()
	run.FinishedAt = &now
	run.Status = model.RunStatusComplete
	firstErr := firstError(buildErr, leadsErr, enrichErr)
	if firstErr != nil {
		run.Status = model.RunStatusFailed
	}
	if err := p.store.SaveRun(ctx, run); err != nil {
		log.Warn("pipeline: failed to save run record", zap.Error(err))
	}

	p.logRecap(ctx, log)
	return run, firstErr
}

// logRecap logs per-collection counts plus the number of orders with no
// resolvable customer state.
func (p *Pipeline) logRecap(ctx context.Context, log *zap.Logger) {
	counts, err := p.store.Counts(ctx)
	if err != nil {
		log.Warn("pipeline: recap counts failed", zap.Error(err))
		return
	}
	fields := make([]zap.Field, 0, len(counts)+1)
	for coll, n := range counts {
		fields = append(fields, zap.Int64(coll, n))
	}
	if missing, err := p.store.OrdersMissingState(ctx); err == nil {
		fields = append(fields, zap.Int64("orders_missing_state", missing))
	}
	log.Info("pipeline: recap", fields...)
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
