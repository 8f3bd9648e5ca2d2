package crossfit

import (
	"fmt"
	"math/rand"
)

// Fold is one train/test split of the row indices. Within a replication the K
// test sets are pairwise disjoint and cover every row exactly once.
type Fold struct {
	Train []int // Rows the nuisance models may see
	Test  []int // Rows they must predict blind
}

// KFold partitions n rows into k folds using the given random source.
//
// The source is the ONLY entry point for randomness: a fixed seed produces a
// fixed partition, which is what makes replications reproducible. Callers that
// want independent replications draw each partition from an independently
// seeded source.
func KFold(n, k int, rng *rand.Rand) ([]Fold, error) {
	if k < 2 {
		return nil, fmt.Errorf("need at least 2 folds, got %d", k)
	}
	if k > n {
		return nil, fmt.Errorf("cannot split %d rows into %d folds", n, k)
	}

	perm := rng.Perm(n)

	// First n%k folds take one extra row so the partition is exhaustive.
	folds := make([]Fold, k)
	base := n / k
	rem := n % k

	start := 0
	for i := 0; i < k; i++ {
		size := base
		if i < rem {
			size++
		}

		test := perm[start : start+size]
		train := make([]int, 0, n-size)
		train = append(train, perm[:start]...)
		train = append(train, perm[start+size:]...)

		folds[i] = Fold{Train: train, Test: test}
		start += size
	}

	return folds, nil
}
