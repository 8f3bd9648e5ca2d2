package crossfit

import "gonum.org/v1/gonum/mat"

// Predictor is a fitted nuisance model.
type Predictor interface {
	// Predict returns one prediction per row of X.
	Predict(X mat.Matrix) ([]float64, error)
}

// Learner fits a nuisance model of a target on covariates.
//
// The learner's job is only to soak up covariate-driven signal; its
// coefficients are never interpreted. Any regressor works — the default is
// LassoCV. Implementations must be safe for concurrent use: replications fit
// in parallel.
type Learner interface {
	Fit(X mat.Matrix, y []float64) (Predictor, error)
}
