package marketdata

import (
	"time"

	"github.com/google/uuid"
)

// CycleResult is the outcome of one ingestion cycle: either the number of
// trades accepted into the store or the reason nothing was updated.
type CycleResult struct {
	ID        uuid.UUID     `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Accepted  int           `json:"accepted"`
	Fetched   int           `json:"fetched"`
	Stored    int           `json:"stored"`
	Evicted   int           `json:"evicted"`
	Err       error         `json:"-"`
	Failure   string        `json:"failure,omitempty"`
}

func (r CycleResult) Succeeded() bool {
	return r.Err == nil
}

// Failed builds a failed result, keeping the error for callers and its
// text for serialisation.
func Failed(id uuid.UUID, startedAt time.Time, err error) CycleResult {
	return CycleResult{
		ID:        id,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Err:       err,
		Failure:   err.Error(),
	}
}
