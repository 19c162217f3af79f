package riskengine

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// SharpeRatio annualizes daily returns and subtracts riskFreeRate.
func SharpeRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean, std := stat.MeanStdDev(returns, nil)
	if std == 0 {
		return 0
	}
	annualReturn := mean * TradingDays
	annualStd := std * math.Sqrt(TradingDays)
	return (annualReturn - riskFreeRate) / annualStd
}

// Beta is cov(asset, benchmark) / var(benchmark). Mismatched or degenerate
// series give the market beta of 1.
func Beta(returns, benchmark []float64) float64 {
	if len(returns) < 2 || len(returns) != len(benchmark) {
		return 1
	}
	variance := stat.Variance(benchmark, nil)
	if variance == 0 {
		return 1
	}
	return stat.Covariance(returns, benchmark, nil) / variance
}
