package driven

import "time"

// Metrics records pipeline counters and latencies.
// This is an optional port - services skip recording when it is nil.
type Metrics interface {
	// RecordIngest records one document's outcome.
	RecordIngest(accepted, skipped, chunkErrors int, docFailed bool)

	// RecordRetrieval records one retrieval and its latency.
	RecordRetrieval(d time.Duration, results int, err error)

	// SetCollectionSize records the current record count.
	SetCollectionSize(n int)
}
