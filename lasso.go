package crossfit

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// LassoCV is the default nuisance learner: an L1-penalized linear regression
// with the penalty strength chosen by internal cross-validation.
//
// The objective at a given penalty λ is:
//
//	(1/2n) Σ (y_i - β₀ - x_i·β)² + λ Σ |β_j|
//
// solved by cyclic coordinate descent on standardized columns, walking a
// geometric λ path from λ_max (where every coefficient is zero) downward with
// warm starts. The λ with the lowest cross-validated prediction error wins.
//
// Zero-variance covariate columns are dropped before fitting. A design where
// EVERY column is zero-variance cannot be fit and returns an error.
type LassoCV struct {
	NumLambdas     int     // Points on the λ path
	LambdaMinRatio float64 // λ_min = λ_max * this ratio
	CVFolds        int     // Folds for internal penalty selection
	MaxIter        int     // Coordinate-descent sweeps per λ
	Tol            float64 // Convergence: max coefficient change per sweep
	Seed           int64   // Seed for the internal CV partition
}

// DefaultLassoCV returns glmnet-style defaults.
func DefaultLassoCV() *LassoCV {
	return &LassoCV{
		NumLambdas:     100,
		LambdaMinRatio: 1e-3,
		CVFolds:        5,
		MaxIter:        1000,
		Tol:            1e-7,
		Seed:           1,
	}
}

// Fit trains the lasso on X and y and returns a Predictor on the original
// (unstandardized) covariate scale.
func (l *LassoCV) Fit(X mat.Matrix, y []float64) (Predictor, error) {
	n, p := X.Dims()
	if n != len(y) {
		return nil, fmt.Errorf("X has %d rows, y has %d", n, len(y))
	}
	if n < 2 {
		return nil, fmt.Errorf("need at least 2 rows to fit, got %d", n)
	}

	// Drop zero-variance columns; they carry no signal and break standardization.
	var keep []int
	var means, sds []float64
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		mat.Col(col, j, X)
		m, sd := stat.MeanStdDev(col, nil)
		if sd > 0 {
			keep = append(keep, j)
			means = append(means, m)
			sds = append(sds, sd)
		}
	}
	if len(keep) == 0 {
		return nil, fmt.Errorf("degenerate design: all %d covariate columns have zero variance", p)
	}
	q := len(keep)

	// Standardized design and centered response.
	Z := mat.NewDense(n, q, nil)
	for jj, j := range keep {
		mat.Col(col, j, X)
		for i := 0; i < n; i++ {
			Z.Set(i, jj, (col[i]-means[jj])/sds[jj])
		}
	}
	ymean := stat.Mean(y, nil)
	yc := make([]float64, n)
	for i := range y {
		yc[i] = y[i] - ymean
	}

	lambdas := l.lambdaPath(Z, yc)

	best, err := l.selectLambda(Z, yc, lambdas)
	if err != nil {
		return nil, err
	}

	// Refit on every row, warm-starting down the path to the winner.
	betas := lassoPath(Z, yc, lambdas[:best+1], l.MaxIter, l.Tol)
	beta := betas[best]

	// Fold the standardization back into original-scale coefficients.
	coef := make([]float64, q)
	intercept := ymean
	for jj := range keep {
		coef[jj] = beta[jj] / sds[jj]
		intercept -= coef[jj] * means[jj]
	}

	return &lassoModel{p: p, keep: keep, coef: coef, intercept: intercept}, nil
}

// selectLambda cross-validates the λ path and returns the index with the
// lowest out-of-fold squared error.
func (l *LassoCV) selectLambda(Z *mat.Dense, yc []float64, lambdas []float64) (int, error) {
	n, _ := Z.Dims()

	rng := rand.New(rand.NewSource(l.Seed))
	folds, err := KFold(n, l.CVFolds, rng)
	if err != nil {
		return 0, fmt.Errorf("lasso cross-validation: %w", err)
	}

	mse := make([]float64, len(lambdas))
	for _, f := range folds {
		Ztr, yctr := subsetRows(Z, yc, f.Train)
		betas := lassoPath(Ztr, yctr, lambdas, l.MaxIter, l.Tol)

		for li, beta := range betas {
			for _, row := range f.Test {
				d := yc[row] - floats.Dot(beta, Z.RawRowView(row))
				mse[li] += d * d
			}
		}
	}

	best := 0
	for li := range mse {
		if mse[li] < mse[best] {
			best = li
		}
	}
	return best, nil
}

// lambdaPath builds a geometric grid from λ_max down to λ_max*LambdaMinRatio.
// λ_max = max_j |z_j·y| / n is the smallest penalty that zeroes every
// coefficient.
func (l *LassoCV) lambdaPath(Z *mat.Dense, yc []float64) []float64 {
	n, q := Z.Dims()

	lambdaMax := 0.0
	col := make([]float64, n)
	for j := 0; j < q; j++ {
		mat.Col(col, j, Z)
		if v := math.Abs(floats.Dot(col, yc)) / float64(n); v > lambdaMax {
			lambdaMax = v
		}
	}
	if lambdaMax == 0 {
		// Response is orthogonal to every column; any λ gives the null model.
		lambdaMax = 1
	}

	if l.NumLambdas < 2 {
		return []float64{lambdaMax * l.LambdaMinRatio}
	}

	lambdas := make([]float64, l.NumLambdas)
	step := math.Log(l.LambdaMinRatio) / float64(l.NumLambdas-1)
	for i := range lambdas {
		lambdas[i] = lambdaMax * math.Exp(step*float64(i))
	}
	return lambdas
}

// lassoPath runs cyclic coordinate descent along a decreasing λ path with warm
// starts, returning one coefficient vector (standardized scale) per λ.
func lassoPath(Z *mat.Dense, yc []float64, lambdas []float64, maxIter int, tol float64) [][]float64 {
	n, q := Z.Dims()

	cols := make([][]float64, q)
	norm := make([]float64, q)
	for j := 0; j < q; j++ {
		cols[j] = mat.Col(nil, j, Z)
		norm[j] = floats.Dot(cols[j], cols[j]) / float64(n)
	}

	beta := make([]float64, q)
	resid := append([]float64(nil), yc...)
	out := make([][]float64, len(lambdas))

	for li, lambda := range lambdas {
		for iter := 0; iter < maxIter; iter++ {
			maxDelta := 0.0
			for j := 0; j < q; j++ {
				if norm[j] == 0 {
					continue
				}
				old := beta[j]
				rho := floats.Dot(cols[j], resid)/float64(n) + norm[j]*old
				beta[j] = softThreshold(rho, lambda) / norm[j]

				if d := beta[j] - old; d != 0 {
					floats.AddScaled(resid, -d, cols[j])
					if math.Abs(d) > maxDelta {
						maxDelta = math.Abs(d)
					}
				}
			}
			if maxDelta < tol {
				break
			}
		}
		out[li] = append([]float64(nil), beta...)
	}

	return out
}

// softThreshold is the lasso shrinkage operator: sign(z)·max(|z|-γ, 0).
func softThreshold(z, gamma float64) float64 {
	switch {
	case z > gamma:
		return z - gamma
	case z < -gamma:
		return z + gamma
	default:
		return 0
	}
}

// subsetRows copies the selected rows of Z and y into fresh storage.
func subsetRows(Z *mat.Dense, y []float64, idx []int) (*mat.Dense, []float64) {
	_, q := Z.Dims()
	sub := mat.NewDense(len(idx), q, nil)
	suby := make([]float64, len(idx))
	for i, row := range idx {
		sub.SetRow(i, Z.RawRowView(row))
		suby[i] = y[row]
	}
	return sub, suby
}

// lassoModel is a fitted LassoCV on the original covariate scale.
type lassoModel struct {
	p         int   // Columns the model was trained on
	keep      []int // Non-degenerate column indices
	coef      []float64
	intercept float64
}

func (m *lassoModel) Predict(X mat.Matrix) ([]float64, error) {
	n, p := X.Dims()
	if p != m.p {
		return nil, fmt.Errorf("model trained on %d columns, got %d", m.p, p)
	}

	preds := make([]float64, n)
	for i := 0; i < n; i++ {
		s := m.intercept
		for jj, j := range m.keep {
			s += m.coef[jj] * X.At(i, j)
		}
		preds[i] = s
	}
	return preds, nil
}
