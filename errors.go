package crossfit

import "fmt"

// FoldFitError reports a nuisance model that failed to fit or predict on one
// fold. The replication carrying it is aborted; other replications are not
// affected.
type FoldFitError struct {
	Replication int   // Replication index (0-based)
	Fold        int   // Fold index within the replication (0-based)
	Err         error // Underlying fit/predict failure
}

func (e *FoldFitError) Error() string {
	return fmt.Sprintf("replication %d, fold %d: nuisance fit failed: %v",
		e.Replication, e.Fold, e.Err)
}

func (e *FoldFitError) Unwrap() error { return e.Err }

// InsufficientDataError reports a residual set too small or degenerate for the
// residual-on-residual OLS: empty, fewer than 3 pairs, or fewer than 2 distinct
// treatment residuals (slope undefined).
type InsufficientDataError struct {
	Replication int    // Replication index (0-based)
	Rows        int    // Residual pairs available
	Reason      string // What made the set degenerate
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("replication %d: insufficient data for OLS (%d residual pairs): %s",
		e.Replication, e.Rows, e.Reason)
}

// DegenerateInputError reports an aggregation attempt over fewer than 2
// successful replications. The across-replication variance is undefined with a
// single point, so the whole run is refused.
type DegenerateInputError struct {
	Successes int // Successful replications available
	Total     int // Replications attempted
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("aggregation needs at least 2 successful replications, got %d of %d",
		e.Successes, e.Total)
}
