// Package source fetches compliance alerts from an upstream API, either
// a real HTTP service or a deterministic local simulator. It owns the
// resilience policy: request timeouts, retry with exponential backoff,
// and classification of upstream failures.
package source

import (
	"context"
	"fmt"

	"github.com/bgiacomelli/meli-compliance-monitoring/internal/models"
)

// Source lists alert IDs page by page and fetches per-ID detail.
type Source interface {
	// ListIDs returns one page of alert IDs for the given status. The
	// page may be shorter than limit (upstream exhausted) or empty.
	ListIDs(ctx context.Context, status string, limit, offset int) ([]string, error)

	// Detail returns the raw payload for one alert. A 404-equivalent
	// result is an empty RawAlert, not an error.
	Detail(ctx context.Context, id string) (models.RawAlert, error)
}

// UpstreamError is a systemic upstream failure (429 or 5xx) during ID
// listing. It is fatal to a run: once the upstream signals overload or
// breakage, no partial ID set is trustworthy.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error %d: %s", e.Status, e.Body)
}

// FetchError is a per-alert detail fetch that failed after all retry
// attempts. Callers tolerate it: one bad ID never aborts a batch.
type FetchError struct {
	ID  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.ID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
