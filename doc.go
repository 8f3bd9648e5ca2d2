// Package crossfit estimates treatment effects with repeated cross-fit residualization.
//
// # Overview
//
// crossfit implements the double/debiased machine learning recipe: partial out
// the covariates from both the outcome and the treatment using out-of-sample
// nuisance predictions, then regress residual on residual. Repeating the fold
// partition S times and combining the replications quantifies how sensitive the
// estimate is to any particular random split.
//
// # Architecture
//
// The package components:
//
//   - dataset.go    - Column-oriented Dataset (outcome, treatment, covariates)
//   - folds.go      - Seeded K-fold partitioner
//   - learner.go    - Pluggable Learner/Predictor nuisance interface
//   - lasso.go      - Default learner: cross-validated lasso
//   - residual.go   - Per-fold residualization
//   - ols.go        - Residual-on-residual OLS with robust standard errors
//   - crossfit.go   - Repeated-replication orchestration (parallel)
//   - aggregate.go  - Mean/median combination across replications
//   - assertions.go - Test helpers for partition and recovery properties
//
// # Quick Start
//
// Estimate the effect of a treatment on an outcome, controlling for covariates:
//
//	ds, err := crossfit.NewDataset(outcome, treatment, covariates)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	reps, err := crossfit.Run(ctx, ds, crossfit.DefaultLassoCV(), crossfit.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	summary, err := crossfit.Aggregate(reps)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("effect: %.4f ± %.4f\n", summary.MeanEstimate, summary.MeanStdErr)
//
// # The Procedure
//
// One replication runs K-fold cross-fitting:
//
//  1. Partition rows into K disjoint folds with a seeded shuffle.
//  2. For each fold, fit two nuisance models on the OTHER folds:
//     treatment ~ covariates and outcome ~ covariates.
//  3. Predict on the held-out fold and keep the residuals
//     (observed minus prediction). No row is ever predicted by a model
//     that saw it during training.
//  4. Pool the residual pairs from all K folds and fit OLS of
//     outcome-residual on treatment-residual (with intercept). The slope
//     is the replication's estimate; its heteroskedasticity-robust (HC1)
//     standard error is the replication's uncertainty.
//
// S replications re-draw the partition independently. The aggregate combines
// them:
//
//	mean estimate  = avg(θ_s)
//	mean variance  = avg(se_s²) + avg((θ_s - avg θ)²)
//
// The second term charges the estimate for split sensitivity: if the S
// replications disagree, the reported uncertainty grows.
//
// The median variants combine per replication before taking the median:
//
//	median variance = median(se_s² + (θ_s - median θ)²)
//
// # Determinism
//
// Every random draw flows from Config.Seed. Replication sub-seeds are derived
// up front, so results are identical regardless of worker count or completion
// order. Same seed, same data, same answer.
//
// # Failure Model
//
// Errors never vanish into a fallback:
//
//   - FoldFitError: a nuisance model failed on one fold; that replication is
//     aborted and the error recorded in its result slot with replication and
//     fold indices.
//   - InsufficientDataError: a replication's residual set is empty or has
//     fewer than 2 distinct treatment residuals; OLS is undefined.
//   - DegenerateInputError: fewer than 2 replications succeeded; the
//     across-replication variance is undefined and aggregation refuses.
//
// Failed replications stay in the result slice, so callers can tell
// "0 valid replications" apart from "S valid replications with a small effect".
//
// # Testing
//
// Use assertions to validate the core properties:
//
//	func TestMyPartition(t *testing.T) {
//	    rng := rand.New(rand.NewSource(42))
//	    folds, _ := crossfit.KFold(100, 5, rng)
//
//	    // Folds are pairwise disjoint and cover every row exactly once
//	    crossfit.AssertPartition(t, folds, 100)
//	}
//
// # See Also
//
//   - examples/synthetic - recover a known effect from simulated data
//   - examples/abortion  - run the estimator over a Stata panel-data file
package crossfit
