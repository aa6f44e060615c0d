// Package pipeline orchestrates a single extraction run: paginated ID
// collection, per-ID detail fetch, and normalization into the fixed
// output schema.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bgiacomelli/meli-compliance-monitoring/internal/metrics"
	"github.com/bgiacomelli/meli-compliance-monitoring/internal/models"
	"github.com/bgiacomelli/meli-compliance-monitoring/internal/normalize"
	"github.com/bgiacomelli/meli-compliance-monitoring/internal/source"
)

// Options configures one extraction run.
type Options struct {
	Status        string // alert status to scan (default: open)
	Limit         int    // target number of alerts
	PageSize      int    // IDs per listing page
	MinRows       int    // minimum collected IDs before fetching (0 disables)
	ProgressEvery int    // progress log interval in processed IDs
}

// DefaultOptions returns the standard extraction settings.
func DefaultOptions() Options {
	return Options{
		Status:        "open",
		Limit:         150,
		PageSize:      50,
		MinRows:       100,
		ProgressEvery: 25,
	}
}

// Runner drives the extraction. It owns the accumulating buffers; the
// source holds no alert data between calls.
type Runner struct {
	src      source.Source
	throttle *source.Throttle
	opts     Options
}

// NewRunner builds a runner over the given source. The throttle is
// applied after every page fetch and after every detail fetch.
func NewRunner(src source.Source, throttle *source.Throttle, opts Options) *Runner {
	if opts.Status == "" {
		opts.Status = "open"
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = 25
	}
	return &Runner{src: src, throttle: throttle, opts: opts}
}

// Run executes one extraction pass and returns the normalized rows.
// Individual detail-fetch failures are logged and skipped; a listing
// failure aborts the run.
func (r *Runner) Run(ctx context.Context) ([]models.NormalizedRow, error) {
	ids, err := r.collectIDs(ctx)
	if err != nil {
		return nil, err
	}
	if r.opts.MinRows > 0 && len(ids) < r.opts.MinRows {
		return nil, fmt.Errorf("need at least %d alert IDs, collected %d", r.opts.MinRows, len(ids))
	}

	details, err := r.fetchDetails(ctx, ids)
	if err != nil {
		return nil, err
	}

	rows := make([]models.NormalizedRow, 0, len(details))
	for _, d := range details {
		rows = append(rows, normalize.Alert(d))
	}
	metrics.RowsNormalized.Add(float64(len(rows)))

	return rows, nil
}

// collectIDs pages through the ID listing until the target limit is
// reached or the upstream is exhausted, then truncates to the limit.
func (r *Runner) collectIDs(ctx context.Context) ([]string, error) {
	var collected []string
	offset := 0

	for len(collected) < r.opts.Limit {
		page, err := r.src.ListIDs(ctx, r.opts.Status, r.opts.PageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("list alert IDs at offset %d: %w", offset, err)
		}
		metrics.PagesFetched.Inc()
		if len(page) == 0 {
			break
		}
		collected = append(collected, page...)
		offset += r.opts.PageSize

		if err := r.throttle.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if len(collected) > r.opts.Limit {
		collected = collected[:r.opts.Limit]
	}
	metrics.IDsCollected.Add(float64(len(collected)))
	log.Printf("collected %d alert IDs (status=%s)", len(collected), r.opts.Status)

	return collected, nil
}

// fetchDetails fetches each alert's payload in order. Not-found results
// are skipped silently; exhausted fetches are logged and skipped. The
// throttle runs once per ID regardless of outcome.
func (r *Runner) fetchDetails(ctx context.Context, ids []string) ([]models.RawAlert, error) {
	details := make([]models.RawAlert, 0, len(ids))

	for i, id := range ids {
		d, err := r.src.Detail(ctx, id)
		switch {
		case err != nil:
			var fe *source.FetchError
			if !errors.As(err, &fe) && ctx.Err() != nil {
				return nil, err
			}
			metrics.DetailFetches.WithLabelValues("failed").Inc()
			log.Printf("[WARN] failed alert_id=%s: %v", id, err)
		case d.IsNotFound():
			metrics.DetailFetches.WithLabelValues("not_found").Inc()
		default:
			metrics.DetailFetches.WithLabelValues("ok").Inc()
			details = append(details, d)
		}

		if (i+1)%r.opts.ProgressEvery == 0 {
			log.Printf("progress: %d/%d", i+1, len(ids))
		}

		if err := r.throttle.Wait(ctx); err != nil {
			return nil, err
		}
	}

	return details, nil
}
