package crossfit

import "fmt"

// ResidualPair holds one test row's out-of-sample residuals: observed value
// minus a prediction from a model that never saw the row.
type ResidualPair struct {
	Outcome   float64
	Treatment float64
}

// residualizeFold fits the two nuisance models on the fold's training rows and
// residualizes its test rows.
//
// Any fit or predict failure is returned as-is; the caller tags it with
// replication and fold indices. Nothing is swallowed — a degenerate training
// design must surface, not produce silent zeros.
func residualizeFold(ds *Dataset, learner Learner, f Fold) ([]ResidualPair, error) {
	ytr, ttr, Xtr := ds.rows(f.Train)
	yte, tte, Xte := ds.rows(f.Test)

	treatModel, err := learner.Fit(Xtr, ttr)
	if err != nil {
		return nil, fmt.Errorf("treatment model: %w", err)
	}
	outModel, err := learner.Fit(Xtr, ytr)
	if err != nil {
		return nil, fmt.Errorf("outcome model: %w", err)
	}

	treatPred, err := treatModel.Predict(Xte)
	if err != nil {
		return nil, fmt.Errorf("treatment prediction: %w", err)
	}
	outPred, err := outModel.Predict(Xte)
	if err != nil {
		return nil, fmt.Errorf("outcome prediction: %w", err)
	}

	pairs := make([]ResidualPair, len(f.Test))
	for i := range f.Test {
		pairs[i] = ResidualPair{
			Outcome:   yte[i] - outPred[i],
			Treatment: tte[i] - treatPred[i],
		}
	}
	return pairs, nil
}
