package crossfit

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary combines the successful replications of one run.
//
// Both variance forms carry two components: the within-replication sampling
// variance (the squared standard errors) and the across-replication split
// variance (how much the estimates move when the partition is re-drawn).
// Reporting only the first understates uncertainty whenever the splits
// disagree.
type Summary struct {
	Replications int // Successful replications aggregated
	Failed       int // Replications that carried an error

	// Mean aggregate: avg(θ_s) with
	// variance = avg(se_s²) + avg((θ_s - avg θ)²).
	MeanEstimate float64
	MeanStdErr   float64

	// Median aggregate: median(θ_s) with
	// variance = median(se_s² + (θ_s - median θ)²),
	// combined per replication BEFORE the median is taken.
	MedianEstimate float64
	MedianStdErr   float64
}

// Aggregate reduces a run's replications to a Summary.
//
// Failed replications are counted, never silently dropped into the averages.
// Deterministic: the same input slice always produces the same Summary, and
// reordering the replications changes nothing beyond floating-point summation
// order.
//
// Fails with *DegenerateInputError when fewer than 2 replications succeeded —
// a single point has no across-replication variance.
func Aggregate(reps []Replication) (Summary, error) {
	var ests, ses []float64
	for _, r := range reps {
		if r.Err != nil {
			continue
		}
		ests = append(ests, r.Estimate)
		ses = append(ses, r.StdErr)
	}

	s := len(ests)
	if s < 2 {
		return Summary{}, &DegenerateInputError{Successes: s, Total: len(reps)}
	}

	meanEst := stat.Mean(ests, nil)

	var within, across float64
	for i := 0; i < s; i++ {
		within += ses[i] * ses[i]
		d := ests[i] - meanEst
		across += d * d
	}
	within /= float64(s)
	across /= float64(s)

	medEst := median(ests)

	combined := make([]float64, s)
	for i := 0; i < s; i++ {
		d := ests[i] - medEst
		combined[i] = ses[i]*ses[i] + d*d
	}

	return Summary{
		Replications:   s,
		Failed:         len(reps) - s,
		MeanEstimate:   meanEst,
		MeanStdErr:     math.Sqrt(within + across),
		MedianEstimate: medEst,
		MedianStdErr:   math.Sqrt(median(combined)),
	}, nil
}

// median returns the conventional sample median: the middle order statistic,
// or the average of the two middle ones for even counts.
func median(x []float64) float64 {
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
