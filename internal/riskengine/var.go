package riskengine

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// HistoricalVaR returns the return at the (1-confidence) quantile of the
// observed returns. Losses are negative.
func HistoricalVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sorted := slices.Clone(returns)
	slices.Sort(sorted)
	idx := int(math.Floor((1 - confidence) * float64(len(sorted))))
	return sorted[min(max(idx, 0), len(sorted)-1)]
}

// ParametricVaR assumes normally distributed returns: mean - z*sigma.
func ParametricVaR(returns []float64, confidence float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean, std := stat.MeanStdDev(returns, nil)
	return mean - distuv.UnitNormal.Quantile(confidence)*std
}
