// Package pipeline orchestrates one update run: every enabled series is
// fetched, normalized, merged with its stored snapshot and persisted,
// concurrently and without shared mutable state. A failing series never
// blocks or corrupts another's output; its error surfaces after all
// pipelines finish.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	appLog "motorsportcal/internal/log"
	"motorsportcal/internal/merge"
	"motorsportcal/internal/model"
	"motorsportcal/internal/series"
	"motorsportcal/internal/store"
)

// Result is the outcome of one series' pipeline.
type Result struct {
	Series  model.Series
	Updated bool
	Err     error
}

// Pipeline runs series providers against a store.
type Pipeline struct {
	store    *store.Store
	strategy merge.Strategy
	now      func() time.Time
}

// New creates a pipeline writing through st with the given merge strategy.
func New(st *store.Store, strategy merge.Strategy) *Pipeline {
	return &Pipeline{store: st, strategy: strategy, now: time.Now}
}

// Run executes every provider for the target year in parallel, persists
// changed snapshots, stamps the update ledger and returns the per-series
// results. The returned error joins all series failures.
func (p *Pipeline) Run(ctx context.Context, providers []series.Provider, year int) ([]Result, error) {
	results := make([]Result, len(providers))

	// Deliberately no shared cancellation: one series failing must not
	// abort the others mid-flight.
	var g errgroup.Group
	for i, provider := range providers {
		g.Go(func() error {
			updated, err := p.runSeries(ctx, provider, year)
			results[i] = Result{Series: provider.Series(), Updated: updated, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	now := p.now()
	anyUpdated := false
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Series, r.Err))
		}
		if r.Updated {
			anyUpdated = true
		}
	}

	if anyUpdated {
		ledger := p.store.ReadLedger(now)
		for _, r := range results {
			if r.Updated {
				ledger.Touch(r.Series, year, now)
			}
		}
		if err := p.store.WriteLedger(ledger); err != nil {
			errs = append(errs, fmt.Errorf("ledger: %w", err))
		}
	}

	return results, errors.Join(errs...)
}

func (p *Pipeline) runSeries(ctx context.Context, provider series.Provider, year int) (bool, error) {
	name := provider.Series()
	appLog.Info("updating calendar", "series", name, "year", year)

	events, err := provider.Events(ctx, year)
	if err != nil {
		appLog.Error("series update failed", err, "series", name)
		return false, err
	}

	for i := range events {
		if err := events[i].Validate(); err != nil {
			return false, err
		}
	}

	previous, previousRaw, err := p.store.ReadSnapshot(name, year)
	if err != nil {
		return false, err
	}

	merged := merge.Merge(previous, events, p.strategy, p.now())

	changed, data, err := merge.Changed(previousRaw, merged)
	if err != nil {
		return false, err
	}
	if !changed {
		appLog.Info("calendar unchanged", "series", name, "year", year)
		return false, nil
	}

	// Persist only after the whole series pipeline succeeded.
	if err := p.store.WriteSnapshot(name, year, data); err != nil {
		return false, err
	}
	appLog.Info("calendar updated", "series", name, "year", year, "events", len(merged))
	return true, nil
}
