package crossfit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Replication is one independent cross-fit pass over the dataset: a fresh
// K-fold partition, out-of-sample residuals from every fold, and one OLS on
// the pooled residuals.
//
// Either Estimate/StdErr are set or Err is; a failed replication keeps its
// slot so the caller can see exactly which replications produced the summary.
type Replication struct {
	Index    int     // Position in the run (0-based)
	Seed     int64   // Seed that produced this replication's partition
	Estimate float64 // Treatment-residual OLS slope
	StdErr   float64 // HC1-robust standard error of the slope
	Err      error   // *FoldFitError or *InsufficientDataError on failure
}

// Config controls a cross-fit run.
type Config struct {
	Replications int   // S: independent fold partitions
	Folds        int   // K: folds per partition
	Seed         int64 // Master seed; every partition derives from it
	Workers      int   // Parallel replications (0 = GOMAXPROCS)

	// Logger receives per-replication progress at Debug and the run summary
	// at Info. Nil falls back to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults: 30 replications of 5-fold
// cross-fitting.
func DefaultConfig() Config {
	return Config{
		Replications: 30,
		Folds:        5,
		Seed:         1,
		Workers:      0,
	}
}

// Run executes S independent cross-fit replications over the dataset and
// returns them in index order.
//
// Replications share nothing mutable: each reads the immutable dataset and
// writes only its own result slot, so they run on parallel workers with no
// synchronization beyond the final collect. Sub-seeds are drawn from
// Config.Seed before any worker starts, which makes the output deterministic
// regardless of worker count or completion order.
//
// A replication that fails records the error in its slot; the others are
// unaffected. Run itself only errors on invalid configuration or context
// cancellation.
func Run(ctx context.Context, ds *Dataset, learner Learner, cfg Config) ([]Replication, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}
	if learner == nil {
		return nil, fmt.Errorf("learner is nil")
	}
	if cfg.Replications < 1 {
		return nil, fmt.Errorf("need at least 1 replication, got %d", cfg.Replications)
	}
	if cfg.Folds < 2 {
		return nil, fmt.Errorf("need at least 2 folds, got %d", cfg.Folds)
	}
	if cfg.Folds > ds.Len() {
		return nil, fmt.Errorf("cannot split %d rows into %d folds", ds.Len(), cfg.Folds)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// All randomness up front: the partition seeds must not depend on which
	// worker runs first.
	seedSrc := rand.New(rand.NewSource(cfg.Seed))
	seeds := make([]int64, cfg.Replications)
	for i := range seeds {
		seeds[i] = seedSrc.Int63()
	}

	results := make([]Replication, cfg.Replications)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < cfg.Replications; i++ {
		i := i
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			results[i] = runReplication(ds, learner, i, seeds[i], cfg.Folds)

			if results[i].Err != nil {
				logger.Debug("replication failed",
					"replication", i, "err", results[i].Err)
			} else {
				logger.Debug("replication done",
					"replication", i,
					"estimate", results[i].Estimate,
					"stderr", results[i].StdErr)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for i := range results {
		if results[i].Err != nil {
			failed++
		}
	}
	logger.Info("cross-fit run complete",
		"replications", cfg.Replications, "folds", cfg.Folds, "failed", failed)

	return results, nil
}

// runReplication draws one K-fold partition, residualizes every fold, and
// fits the pooled residual OLS.
func runReplication(ds *Dataset, learner Learner, index int, seed int64, k int) Replication {
	rep := Replication{Index: index, Seed: seed}

	rng := rand.New(rand.NewSource(seed))
	folds, err := KFold(ds.Len(), k, rng)
	if err != nil {
		rep.Err = &FoldFitError{Replication: index, Fold: -1, Err: err}
		return rep
	}

	pairs := make([]ResidualPair, 0, ds.Len())
	for fi, f := range folds {
		foldPairs, err := residualizeFold(ds, learner, f)
		if err != nil {
			rep.Err = &FoldFitError{Replication: index, Fold: fi, Err: err}
			return rep
		}
		pairs = append(pairs, foldPairs...)
	}

	est, se, err := EstimateResidualEffect(pairs)
	if err != nil {
		var ie *InsufficientDataError
		if errors.As(err, &ie) {
			ie.Replication = index
		}
		rep.Err = err
		return rep
	}

	rep.Estimate = est
	rep.StdErr = se
	return rep
}
