package crossfit

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Dataset is a column-oriented table of observations: one outcome value, one
// treatment value, and a row of covariates per observation.
//
// Rows are exchangeable for splitting purposes. The Dataset is read-only once
// built; replications share it without synchronization.
type Dataset struct {
	outcome    []float64
	treatment  []float64
	covariates *mat.Dense // n x p
}

// NewDataset builds a Dataset from an outcome vector, a treatment vector, and
// an n x p covariate matrix. All three must agree on n.
func NewDataset(outcome, treatment []float64, covariates *mat.Dense) (*Dataset, error) {
	n := len(outcome)
	if n == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}
	if len(treatment) != n {
		return nil, fmt.Errorf("treatment has %d rows, outcome has %d", len(treatment), n)
	}
	r, _ := covariates.Dims()
	if r != n {
		return nil, fmt.Errorf("covariates have %d rows, outcome has %d", r, n)
	}

	return &Dataset{
		outcome:    outcome,
		treatment:  treatment,
		covariates: covariates,
	}, nil
}

// FromTable builds a Dataset from named columns. The outcome and treatment
// columns are selected by name (plain string values, resolved here and nowhere
// else); every remaining column becomes a covariate, in the order given.
func FromTable(names []string, columns [][]float64, outcome, treatment string) (*Dataset, error) {
	if len(names) != len(columns) {
		return nil, fmt.Errorf("%d names for %d columns", len(names), len(columns))
	}

	var y, d []float64
	var covNames []string
	var covCols [][]float64

	for i, name := range names {
		switch name {
		case outcome:
			y = columns[i]
		case treatment:
			d = columns[i]
		default:
			covNames = append(covNames, name)
			covCols = append(covCols, columns[i])
		}
	}

	if y == nil {
		return nil, fmt.Errorf("outcome column %q not found", outcome)
	}
	if d == nil {
		return nil, fmt.Errorf("treatment column %q not found", treatment)
	}
	if len(covCols) == 0 {
		return nil, fmt.Errorf("no covariate columns left after selecting %q and %q", outcome, treatment)
	}

	n := len(y)
	X := mat.NewDense(n, len(covCols), nil)
	for j, col := range covCols {
		if len(col) != n {
			return nil, fmt.Errorf("column %q has %d rows, outcome has %d", covNames[j], len(col), n)
		}
		X.SetCol(j, col)
	}

	return NewDataset(y, d, X)
}

// Len returns the number of observations.
func (d *Dataset) Len() int { return len(d.outcome) }

// NumCovariates returns the number of covariate columns.
func (d *Dataset) NumCovariates() int {
	_, p := d.covariates.Dims()
	return p
}

// rows extracts the outcome, treatment, and covariate values for the given row
// indices into fresh storage.
func (d *Dataset) rows(idx []int) (y, t []float64, X *mat.Dense) {
	_, p := d.covariates.Dims()
	y = make([]float64, len(idx))
	t = make([]float64, len(idx))
	X = mat.NewDense(len(idx), p, nil)

	for i, row := range idx {
		y[i] = d.outcome[row]
		t[i] = d.treatment[row]
		X.SetRow(i, d.covariates.RawRowView(row))
	}

	return y, t, X
}
