package task

import "storefront/catalogsync/internal/domain"

// ChunkRetryType names the stream chunk retries are queued on.
const ChunkRetryType = "ChunkRetryTask"

// ChunkRetryTask records a background chunk that failed to load so it can be
// fetched again outside the original fill.
type ChunkRetryTask struct {
	Filters    domain.FilterState `json:"filters"`     // Query of the fill, page included
	RetryCount int                `json:"retry_count"` // Number of times this chunk has been retried
	Error      string             `json:"error"`       // Error message from the last failure
}

func (t *ChunkRetryTask) TaskType() string {
	return ChunkRetryType
}

func (t *ChunkRetryTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}

// Page is the catalog page the chunk covered.
func (t *ChunkRetryTask) Page() int {
	return t.Filters.Page
}

// Next returns the task to queue after another failed attempt.
func (t *ChunkRetryTask) Next(err error) *ChunkRetryTask {
	next := *t
	next.RetryCount++
	if err != nil {
		next.Error = err.Error()
	}
	return &next
}
