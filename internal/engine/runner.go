// Package engine runs population-wide comparison computations: every
// household scored under standard and context-adjusted weights, reduced to
// per-cell and population aggregates, persisted and announced over NATS.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dylanlt/poverty-explorer/internal/cell"
	"github.com/dylanlt/poverty-explorer/internal/config"
	"github.com/dylanlt/poverty-explorer/internal/events"
	"github.com/dylanlt/poverty-explorer/internal/scoring"
	"github.com/dylanlt/poverty-explorer/internal/store"
)

type Runner struct {
	store  store.Store
	events events.Client
	cfg    *config.Config
	logger *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func New(s store.Store, ev events.Client, cfg *config.Config, logger *slog.Logger) *Runner {
	return &Runner{
		store:  s,
		events: ev,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Start launches the periodic recompute loop. A zero interval disables it;
// runs can still be triggered explicitly through Execute.
func (r *Runner) Start(ctx context.Context) {
	if r.cfg.RecomputeInterval() <= 0 {
		return
	}
	r.wg.Add(1)
	go r.recomputeLoop(ctx)
}

func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	r.wg.Wait()
}

func (r *Runner) recomputeLoop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.cfg.RecomputeInterval())
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			run := &store.Run{
				Status:   store.RunStatusPending,
				Cutoff:   r.cfg.Engine.Cutoff,
				Enhanced: r.cfg.Engine.Enhanced,
			}
			if err := r.store.CreateRun(ctx, run); err != nil {
				r.logger.Error("failed to create scheduled run", "error", err)
				continue
			}
			if err := r.Execute(ctx, run); err != nil {
				r.logger.Error("scheduled run failed", "run_id", run.ID, "error", err)
			}
		}
	}
}

// cellResult carries one cell's scored households back from the worker pool.
type cellResult struct {
	cellID      string
	signal      *cell.ContextSignal
	comparisons []scoring.Comparison
	skipped     bool
	err         error
}

// Execute performs one full comparison run over all stored cells and
// households. The run record must already exist; Execute moves it through
// running to completed or failed.
func (r *Runner) Execute(ctx context.Context, run *store.Run) error {
	start := time.Now()
	run.Status = store.RunStatusRunning
	if err := r.store.UpdateRun(ctx, run); err != nil {
		return r.fail(ctx, run, fmt.Errorf("mark run running: %w", err))
	}
	r.publish(ctx, events.SubjectRunStarted(run.ID.String()), events.RunStartedEvent{
		RunID:    run.ID.String(),
		Cutoff:   run.Cutoff,
		Enhanced: run.Enhanced,
	})

	cells, err := r.store.ListCells(ctx, 0, 0)
	if err != nil {
		return r.fail(ctx, run, fmt.Errorf("list cells: %w", err))
	}

	results, err := r.scoreCells(ctx, run, cells)
	if err != nil {
		return r.fail(ctx, run, err)
	}

	var all []scoring.Comparison
	numCells := 0
	for _, res := range results {
		if res.skipped {
			continue
		}
		numCells++
		all = append(all, res.comparisons...)

		summary := scoring.AggregateComparisons(res.comparisons)
		classificationFlips.Add(float64(summary.Flips))
		if err := r.store.CreateCellSummary(ctx, &store.CellSummary{
			RunID:        run.ID,
			CellID:       res.cellID,
			Harshness:    res.signal.Harshness,
			Urbanization: res.signal.Urbanization,
			Comparison:   summary,
		}); err != nil {
			return r.fail(ctx, run, fmt.Errorf("persist cell summary: %w", err))
		}
		r.publish(ctx, events.SubjectCellScored(res.cellID), events.CellScoredEvent{
			RunID:        run.ID.String(),
			CellID:       res.cellID,
			Harshness:    res.signal.Harshness,
			Urbanization: res.signal.Urbanization,
			StandardMPI:  summary.Standard.MPI,
			AdjustedMPI:  summary.Adjusted.MPI,
			Flips:        summary.Flips,
		})
		if summary.Flips > 0 {
			r.publish(ctx, events.SubjectCellFlipped(res.cellID), events.CellFlippedEvent{
				RunID:              run.ID.String(),
				CellID:             res.cellID,
				ReclassifiedToPoor: summary.ReclassifiedToPoor,
				ReclassifiedFrom:   summary.ReclassifiedFromPoor,
			})
		}
	}

	comparison := scoring.AggregateComparisons(all)
	now := time.Now().UTC()
	run.Status = store.RunStatusCompleted
	run.Comparison = &comparison
	run.NumCells = numCells
	run.NumHouseholds = len(all)
	run.CompletedAt = &now
	if err := r.store.UpdateRun(ctx, run); err != nil {
		return fmt.Errorf("mark run completed: %w", err)
	}

	householdsScored.Add(float64(len(all)))
	runsTotal.WithLabelValues("completed").Inc()
	runDuration.Observe(time.Since(start).Seconds())

	r.publish(ctx, events.SubjectRunCompleted(run.ID.String()), events.RunCompletedEvent{
		RunID:         run.ID.String(),
		NumCells:      numCells,
		NumHouseholds: len(all),
		StandardMPI:   comparison.Standard.MPI,
		AdjustedMPI:   comparison.Adjusted.MPI,
		Flips:         comparison.Flips,
		DurationMs:    time.Since(start).Milliseconds(),
	})
	r.logger.Info("run completed",
		"run_id", run.ID,
		"cells", numCells,
		"households", len(all),
		"flips", comparison.Flips,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// scoreCells fans cells out to a worker pool. Cells without climate data are
// skipped rather than scored under a defaulted harshness.
func (r *Runner) scoreCells(ctx context.Context, run *store.Run, cells []*store.CellRecord) ([]*cellResult, error) {
	workers := r.cfg.Engine.Workers
	if workers <= 0 {
		workers = 1
	}

	jobs := make(chan *store.CellRecord)
	out := make(chan *cellResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				out <- r.scoreCell(ctx, run, rec)
			}
		}()
	}
	go func() {
		defer close(jobs)
		for _, rec := range cells {
			select {
			case jobs <- rec:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(out)
	}()

	// Drain fully even on error so no worker is left blocked on send.
	var results []*cellResult
	var firstErr error
	for res := range out {
		if res.err != nil && firstErr == nil {
			firstErr = res.err
			continue
		}
		results = append(results, res)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

func (r *Runner) scoreCell(ctx context.Context, run *store.Run, rec *store.CellRecord) *cellResult {
	geo := &cell.Cell{ID: rec.ID, Lat: rec.Lat, Lon: rec.Lon, Climate: rec.Climate, Context: rec.Context}
	sig, err := geo.Signal()
	if err != nil {
		r.logger.Warn("skipping cell without climate data", "cell_id", rec.ID)
		return &cellResult{cellID: rec.ID, skipped: true}
	}

	households, err := r.store.GetHouseholdsForCell(ctx, rec.ID)
	if err != nil {
		return &cellResult{cellID: rec.ID, err: fmt.Errorf("cell %s households: %w", rec.ID, err)}
	}
	if len(households) == 0 {
		return &cellResult{cellID: rec.ID, skipped: true}
	}

	comparisons := make([]scoring.Comparison, 0, len(households))
	if run.Enhanced {
		adjusted, err := scoring.ContextAdjustedWeights(sig)
		if err != nil {
			return &cellResult{cellID: rec.ID, err: err}
		}
		subWeights := scoring.HousingSubWeights(sig.Harshness, sig.RentalTightnessOrDefault())
		base := scoring.EnhancedBaseWeights()
		for _, h := range households {
			if h.Enhanced == nil {
				continue
			}
			comparisons = append(comparisons,
				scoring.CompareEnhanced(*h.Enhanced, base, adjusted, &subWeights, run.Cutoff))
		}
	} else {
		adjusted, err := scoring.ClimateAdjustedWeights(sig)
		if err != nil {
			return &cellResult{cellID: rec.ID, err: err}
		}
		standard := scoring.StandardWeights()
		for _, h := range households {
			comparisons = append(comparisons,
				scoring.Compare(h.Deprivations, standard, adjusted, run.Cutoff))
		}
	}
	if len(comparisons) == 0 {
		return &cellResult{cellID: rec.ID, skipped: true}
	}
	return &cellResult{cellID: rec.ID, signal: sig, comparisons: comparisons}
}

func (r *Runner) fail(ctx context.Context, run *store.Run, cause error) error {
	now := time.Now().UTC()
	run.Status = store.RunStatusFailed
	run.Error = cause.Error()
	run.CompletedAt = &now
	if err := r.store.UpdateRun(ctx, run); err != nil {
		r.logger.Error("failed to mark run failed", "run_id", run.ID, "error", err)
	}
	runsTotal.WithLabelValues("failed").Inc()
	r.publish(ctx, events.SubjectRunFailed(run.ID.String()), events.RunFailedEvent{
		RunID: run.ID.String(),
		Error: cause.Error(),
	})
	return cause
}

func (r *Runner) publish(ctx context.Context, subject string, payload interface{}) {
	if r.events == nil {
		return
	}
	if err := r.events.Publish(ctx, subject, payload); err != nil {
		r.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}
