package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Holding is one stored position row owned by a user.
type Holding struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Ticker    string    `json:"ticker"`
	Quantity  float64   `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// HoldingInput is a position to be written by a portfolio replacement.
type HoldingInput struct {
	Ticker   string  `json:"ticker"`
	Quantity float64 `json:"quantity"`
}

// DemoHoldings is the fixed sandbox portfolio installed by a connect.
func DemoHoldings() []HoldingInput {
	return []HoldingInput{
		{Ticker: "AAPL", Quantity: 15.5},
		{Ticker: "MSFT", Quantity: 10.0},
		{Ticker: "GOOGL", Quantity: 25.0},
	}
}

// NormalizeHoldings trims and upper-cases tickers and rejects empty tickers
// and negative or non-finite quantities. Order and duplicates are preserved.
func NormalizeHoldings(in []HoldingInput) ([]HoldingInput, error) {
	out := make([]HoldingInput, 0, len(in))
	for i, h := range in {
		ticker := strings.ToUpper(strings.TrimSpace(h.Ticker))
		if ticker == "" {
			return nil, fmt.Errorf("holding %d: ticker is required", i)
		}
		if math.IsNaN(h.Quantity) || math.IsInf(h.Quantity, 0) || h.Quantity < 0 {
			return nil, fmt.Errorf("holding %d (%s): quantity must be a non-negative number", i, ticker)
		}
		out = append(out, HoldingInput{Ticker: ticker, Quantity: h.Quantity})
	}
	return out, nil
}
