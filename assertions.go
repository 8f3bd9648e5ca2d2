package crossfit

import "testing"

// AssertionConfig contains thresholds for estimator properties.
type AssertionConfig struct {
	// Maximum absolute distance between the aggregate estimate and the
	// known true effect.
	Tolerance float64

	// Maximum fraction of replications allowed to fail.
	MaxFailedFraction float64
}

// DefaultAssertionConfig returns conservative thresholds.
func DefaultAssertionConfig() AssertionConfig {
	return AssertionConfig{
		Tolerance:         0.1,
		MaxFailedFraction: 0.0,
	}
}

// AssertPartition verifies the folds form a valid partition of n rows:
// pairwise-disjoint test sets whose union is exactly the full index range.
func AssertPartition(t *testing.T, folds []Fold, n int) {
	t.Helper()

	seen := make(map[int]int, n)
	for fi, f := range folds {
		for _, row := range f.Test {
			if prev, ok := seen[row]; ok {
				t.Errorf("row %d in test sets of folds %d and %d (must be disjoint)", row, prev, fi)
			}
			seen[row] = fi
			if row < 0 || row >= n {
				t.Errorf("fold %d: test row %d out of range [0,%d)", fi, row, n)
			}
		}

		if len(f.Train)+len(f.Test) != n {
			t.Errorf("fold %d: train(%d) + test(%d) != %d rows",
				fi, len(f.Train), len(f.Test), n)
		}
	}

	if len(seen) != n {
		t.Errorf("test sets cover %d of %d rows (must be exhaustive)", len(seen), n)
	} else {
		t.Logf("✓ Partition valid: %d folds cover %d rows exactly once", len(folds), n)
	}
}

// AssertRecovers verifies the aggregate lands within tolerance of a known
// true effect — the end-to-end sanity check for simulated data.
func AssertRecovers(t *testing.T, s Summary, want float64, cfg AssertionConfig) {
	t.Helper()

	if diff := s.MeanEstimate - want; diff > cfg.Tolerance || diff < -cfg.Tolerance {
		t.Errorf("Mean estimate %.4f misses true effect %.4f (tolerance %.4f)",
			s.MeanEstimate, want, cfg.Tolerance)
	} else {
		t.Logf("✓ Mean estimate %.4f recovers true effect %.4f (±%.4f)",
			s.MeanEstimate, want, cfg.Tolerance)
	}

	if diff := s.MedianEstimate - want; diff > cfg.Tolerance || diff < -cfg.Tolerance {
		t.Errorf("Median estimate %.4f misses true effect %.4f (tolerance %.4f)",
			s.MedianEstimate, want, cfg.Tolerance)
	}

	total := s.Replications + s.Failed
	if total > 0 {
		frac := float64(s.Failed) / float64(total)
		if frac > cfg.MaxFailedFraction {
			t.Errorf("%d of %d replications failed (max fraction %.2f)",
				s.Failed, total, cfg.MaxFailedFraction)
		}
	}
}
