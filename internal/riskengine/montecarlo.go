package riskengine

import (
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat"
)

const (
	defaultDailyDrift      = 0.0002
	defaultDailyVolatility = 0.015
	histogramBuckets       = 30
	representativePaths    = 5
)

// SimulationParams configures MonteCarlo.
type SimulationParams struct {
	InitialValue float64
	Returns      []float64 // historical daily returns; fewer than two uses the defaults
	Simulations  int
	Days         int
	Seed         uint64
}

// Bucket is one bar of the end-value histogram.
type Bucket struct {
	Value float64
	Count int
}

// Simulation summarises the simulated end values.
type Simulation struct {
	ExpectedValue float64
	WorstCase5    float64
	WorstCase1    float64
	BestCase95    float64
	Paths         [][]float64
	Distribution  []Bucket
}

// MonteCarlo simulates geometric Brownian motion paths calibrated on the
// given returns. Params must be validated by the caller.
func MonteCarlo(p SimulationParams) Simulation {
	mu, sigma := defaultDailyDrift, defaultDailyVolatility
	if len(p.Returns) >= 2 {
		mu, sigma = stat.MeanStdDev(p.Returns, nil)
	}
	rng := rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15))
	drift := mu - sigma*sigma/2

	ends := make([]float64, 0, p.Simulations)
	var paths [][]float64
	for i := 0; i < p.Simulations; i++ {
		value := p.InitialValue
		var path []float64
		if i < representativePaths {
			path = make([]float64, 0, p.Days+1)
			path = append(path, value)
		}
		for d := 0; d < p.Days; d++ {
			value *= math.Exp(drift + sigma*rng.NormFloat64())
			if path != nil {
				path = append(path, value)
			}
		}
		ends = append(ends, value)
		if path != nil {
			paths = append(paths, path)
		}
	}
	slices.Sort(ends)

	return Simulation{
		ExpectedValue: stat.Mean(ends, nil),
		WorstCase5:    percentile(ends, 0.05),
		WorstCase1:    percentile(ends, 0.01),
		BestCase95:    percentile(ends, 0.95),
		Paths:         paths,
		Distribution:  histogram(ends, histogramBuckets),
	}
}

// percentile reads the p-quantile of sorted by floor index.
func percentile(sorted []float64, p float64) float64 {
	idx := int(math.Floor(p * float64(len(sorted))))
	return sorted[min(idx, len(sorted)-1)]
}

func histogram(sorted []float64, buckets int) []Bucket {
	lo, hi := sorted[0], sorted[len(sorted)-1]
	step := (hi - lo) / float64(buckets)

	out := make([]Bucket, buckets)
	for i := range out {
		out[i].Value = math.Round(lo + float64(i)*step)
	}
	for _, v := range sorted {
		idx := 0
		if step > 0 {
			idx = min(int((v-lo)/step), buckets-1)
		}
		out[idx].Count++
	}
	return out
}

// Scenario applies a market drop of dropPercent to value, scaled by beta.
func Scenario(value, dropPercent, beta float64) (impactValue, loss float64) {
	impactValue = value * (1 - beta*dropPercent/100)
	return impactValue, value - impactValue
}
