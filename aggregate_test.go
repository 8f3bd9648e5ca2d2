package crossfit

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func okReps(ests, ses []float64) []Replication {
	reps := make([]Replication, len(ests))
	for i := range ests {
		reps[i] = Replication{Index: i, Estimate: ests[i], StdErr: ses[i]}
	}
	return reps
}

// TestAggregate_MeanVarianceFormula verifies the two-component mean variance:
// avg(se²) + avg((θ - mean θ)²).
func TestAggregate_MeanVarianceFormula(t *testing.T) {
	reps := okReps([]float64{1.0, 2.0, 3.0}, []float64{0.1, 0.1, 0.1})

	s, err := Aggregate(reps)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if math.Abs(s.MeanEstimate-2.0) > 1e-12 {
		t.Errorf("Mean estimate: expected 2.0, got %.6f", s.MeanEstimate)
	}

	// within = avg(0.01, 0.01, 0.01) = 0.01
	// across = avg(1, 0, 1) = 2/3
	wantVar := 0.01 + 2.0/3.0
	if got := s.MeanStdErr * s.MeanStdErr; math.Abs(got-wantVar) > 1e-12 {
		t.Errorf("Mean variance: expected %.6f, got %.6f", wantVar, got)
	}

	t.Logf("✓ Mean %.4f, variance %.4f (within 0.01 + across %.4f)",
		s.MeanEstimate, s.MeanStdErr*s.MeanStdErr, 2.0/3.0)
}

// TestAggregate_MedianFormula verifies the median estimate and the
// combine-before-median variance.
func TestAggregate_MedianFormula(t *testing.T) {
	reps := okReps([]float64{1.0, 2.0, 3.0}, []float64{0.1, 0.1, 0.1})

	s, err := Aggregate(reps)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if math.Abs(s.MedianEstimate-2.0) > 1e-12 {
		t.Errorf("Median estimate: expected 2.0, got %.6f", s.MedianEstimate)
	}

	// combined = {0.01+1, 0.01+0, 0.01+1}, median = 1.01
	wantVar := 1.01
	if got := s.MedianStdErr * s.MedianStdErr; math.Abs(got-wantVar) > 1e-12 {
		t.Errorf("Median variance: expected %.6f, got %.6f", wantVar, got)
	}
}

// TestAggregate_EvenCountMedian verifies the two-middle-values convention.
func TestAggregate_EvenCountMedian(t *testing.T) {
	reps := okReps([]float64{1.0, 2.0, 3.0, 10.0}, []float64{0.1, 0.1, 0.1, 0.1})

	s, err := Aggregate(reps)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if math.Abs(s.MedianEstimate-2.5) > 1e-12 {
		t.Errorf("Median of {1,2,3,10}: expected 2.5, got %.6f", s.MedianEstimate)
	}
}

// TestAggregate_Idempotent verifies aggregation is a pure function of its input.
func TestAggregate_Idempotent(t *testing.T) {
	reps := okReps([]float64{0.42, 0.38, 0.51, 0.47}, []float64{0.05, 0.04, 0.06, 0.05})

	a, err := Aggregate(reps)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	b, err := Aggregate(reps)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if a != b {
		t.Errorf("Two aggregations of the same input differ:\n%+v\n%+v", a, b)
	}

	t.Logf("✓ Aggregation idempotent")
}

// TestAggregate_OrderIndependent verifies permuting replications changes
// nothing beyond floating-point summation order.
func TestAggregate_OrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	ests := make([]float64, 25)
	ses := make([]float64, 25)
	for i := range ests {
		ests[i] = 0.5 + 0.1*rng.NormFloat64()
		ses[i] = 0.04 + 0.01*rng.Float64()
	}

	a, err := Aggregate(okReps(ests, ses))
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	shuffled := okReps(ests, ses)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	b, err := Aggregate(shuffled)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	const tol = 1e-12
	if math.Abs(a.MeanEstimate-b.MeanEstimate) > tol ||
		math.Abs(a.MeanStdErr-b.MeanStdErr) > tol ||
		math.Abs(a.MedianEstimate-b.MedianEstimate) > tol ||
		math.Abs(a.MedianStdErr-b.MedianStdErr) > tol {
		t.Errorf("Permuted input changed the aggregate:\n%+v\n%+v", a, b)
	}

	t.Logf("✓ Aggregate invariant under replication order")
}

// TestAggregate_SingleReplication verifies S=1 is degenerate: the
// across-replication variance needs at least 2 points.
func TestAggregate_SingleReplication(t *testing.T) {
	reps := okReps([]float64{2.0}, []float64{0.1})

	_, err := Aggregate(reps)

	var de *DegenerateInputError
	if !errors.As(err, &de) {
		t.Fatalf("Expected DegenerateInputError, got %v", err)
	}
	if de.Successes != 1 || de.Total != 1 {
		t.Errorf("Expected 1 of 1 in error, got %d of %d", de.Successes, de.Total)
	}
}

// TestAggregate_FailedReplications verifies failures are counted, not averaged.
func TestAggregate_FailedReplications(t *testing.T) {
	reps := okReps([]float64{1.0, 2.0, 3.0}, []float64{0.1, 0.1, 0.1})
	reps = append(reps,
		Replication{Index: 3, Err: &FoldFitError{Replication: 3, Fold: 1, Err: errors.New("singular design")}},
		Replication{Index: 4, Err: &InsufficientDataError{Replication: 4, Rows: 2, Reason: "fewer than 2 distinct treatment residuals"}},
	)

	s, err := Aggregate(reps)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if s.Replications != 3 || s.Failed != 2 {
		t.Errorf("Expected 3 successes and 2 failures, got %d and %d", s.Replications, s.Failed)
	}
	if math.Abs(s.MeanEstimate-2.0) > 1e-12 {
		t.Errorf("Failed replications leaked into the mean: got %.6f", s.MeanEstimate)
	}

	// All failed: degenerate, and distinguishable from "small effect"
	var allFailed []Replication
	for i := 0; i < 5; i++ {
		allFailed = append(allFailed, Replication{Index: i, Err: errors.New("fit failed")})
	}
	_, err = Aggregate(allFailed)

	var de *DegenerateInputError
	if !errors.As(err, &de) {
		t.Fatalf("Expected DegenerateInputError for all-failed run, got %v", err)
	}
	if de.Successes != 0 || de.Total != 5 {
		t.Errorf("Expected 0 of 5 in error, got %d of %d", de.Successes, de.Total)
	}

	t.Logf("✓ Failures reported, never silently dropped")
}
