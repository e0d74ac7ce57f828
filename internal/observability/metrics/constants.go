// Package metrics provides constants used across metric definitions.
package metrics

// Row outcomes recorded per entity.
const (
	// OutcomeInserted counts rows written to the destination.
	OutcomeInserted = "inserted"
	// OutcomeSkipped counts rows already present in the destination.
	OutcomeSkipped = "skipped"
	// OutcomeFailed counts rows recorded in the failure ledger.
	OutcomeFailed = "failed"
)

// Batch statuses.
const (
	BatchCommitted  = "committed"
	BatchRolledBack = "rolled_back"
)

// Run statuses.
const (
	RunCompleted = "completed"
	RunHalted    = "halted"
)

// Histogram bucket constants.
const (
	// BucketStart10ms is the starting bucket for 10ms histograms (10ms to ~40s range).
	BucketStart10ms = 0.01
	// BucketFactor2 is the common exponential growth factor of 2 for histogram buckets.
	BucketFactor2 = 2
	// BucketCount15 defines 15 exponential buckets.
	BucketCount15 = 15
)
