package riskengine

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Correlation is the Pearson correlation of two equal-length series, or 0
// when either is constant.
func Correlation(a, b []float64) float64 {
	if len(a) < 2 || len(a) != len(b) {
		return 0
	}
	c := stat.Correlation(a, b, nil)
	if math.IsNaN(c) {
		return 0
	}
	return c
}

// CorrelationMatrix returns the pairwise correlation of the series, indexed
// like series.
func CorrelationMatrix(series [][]float64) [][]float64 {
	n := len(series)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			c := Correlation(series[i], series[j])
			if i == j && c != 0 {
				c = 1
			}
			m[i][j], m[j][i] = c, c
		}
	}
	return m
}
