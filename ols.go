package crossfit

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// EstimateResidualEffect fits OLS of outcome residual on treatment residual
// (with intercept) over the pooled residual pairs of one replication.
//
// Returns the slope and its heteroskedasticity-robust standard error (HC1):
//
//	Var(β̂) = (n/(n-2)) · Σ (x_i - x̄)² e_i² / (Σ (x_i - x̄)²)²
//
// The plain OLS variance assumes every residual has the same spread; the
// sandwich form above stays valid when it doesn't, which is the norm for
// panel-data residuals.
//
// Fails with *InsufficientDataError when the pair set has fewer than 3 rows or
// fewer than 2 distinct treatment residuals (slope undefined). The caller
// fills in the replication index.
func EstimateResidualEffect(pairs []ResidualPair) (estimate, stderr float64, err error) {
	n := len(pairs)
	if n < 3 {
		return 0, 0, &InsufficientDataError{
			Rows:   n,
			Reason: "need at least 3 residual pairs",
		}
	}

	x := make([]float64, n)
	y := make([]float64, n)
	for i, p := range pairs {
		x[i] = p.Treatment
		y[i] = p.Outcome
	}

	distinct := 1
	for i := 1; i < n; i++ {
		if x[i] != x[0] {
			distinct = 2
			break
		}
	}
	if distinct < 2 {
		return 0, 0, &InsufficientDataError{
			Rows:   n,
			Reason: "fewer than 2 distinct treatment residuals",
		}
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)

	xbar := stat.Mean(x, nil)
	var sxx, meat float64
	for i := 0; i < n; i++ {
		dx := x[i] - xbar
		e := y[i] - alpha - beta*x[i]
		sxx += dx * dx
		meat += dx * dx * e * e
	}

	variance := meat / (sxx * sxx) * float64(n) / float64(n-2)

	return beta, math.Sqrt(variance), nil
}
