// Package riskengine computes portfolio risk statistics over daily price series.
package riskengine

// TradingDays is the number of daily observations in one year.
const TradingDays = 252

// DailyReturns converts a price series into simple period returns.
func DailyReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}
	return returns
}

// PortfolioHistory rebalances to constant weights every period and returns
// the value path (starting from 100) and the weighted period returns.
// prices holds one series per asset, all of equal length.
func PortfolioHistory(weights []float64, prices [][]float64) (values, returns []float64) {
	if len(prices) == 0 {
		return []float64{}, []float64{}
	}
	periods := len(prices[0])
	values = make([]float64, 0, periods)
	returns = make([]float64, 0, periods)

	value := 100.0
	for i := 1; i < periods; i++ {
		var r float64
		for j, w := range weights {
			prev, cur := prices[j][i-1], prices[j][i]
			if prev != 0 && cur != 0 {
				r += w * (cur - prev) / prev
			}
		}
		value *= 1 + r
		returns = append(returns, r)
		values = append(values, value)
	}
	return values, returns
}
