package riskengine

import (
	"hash/fnv"
	"math"
	"math/rand/v2"
)

const (
	mockStartPrice = 100.0
	mockDrift      = 0.0004 // about 10% a year
	mockVolatility = 0.015
)

// MockPrices generates days+1 daily closes for ticker as a drifting random
// walk. The series depends only on seed and ticker.
func MockPrices(seed uint64, ticker string, days int) []float64 {
	h := fnv.New64a()
	h.Write([]byte(ticker))
	rng := rand.New(rand.NewPCG(seed, h.Sum64()))

	prices := make([]float64, 0, days+1)
	price := mockStartPrice
	prices = append(prices, price)
	for i := 0; i < days; i++ {
		// Irwin-Hall approximation of a standard normal shock.
		var sum float64
		for j := 0; j < 6; j++ {
			sum += rng.Float64()
		}
		shock := (sum - 3) * math.Sqrt2 // sum has variance 1/2
		price *= 1 + mockDrift + mockVolatility*shock
		prices = append(prices, price)
	}
	return prices
}
