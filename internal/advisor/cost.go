package advisor

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Per-1K-token prices in USD for the default model.
var (
	promptPrice     = decimal.RequireFromString("0.00015")
	completionPrice = decimal.RequireFromString("0.0006")
	thousand        = decimal.NewFromInt(1000)
)

// CostTracker accumulates token usage and estimated spend.
type CostTracker struct {
	mu               sync.Mutex
	totalTokens      int
	totalRequests    int
	estimatedCostUSD decimal.Decimal
	startTime        time.Time
}

func NewCostTracker() *CostTracker { return &CostTracker{startTime: time.Now()} }

func (c *CostTracker) AddUsage(promptTokens, completionTokens int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalTokens += promptTokens + completionTokens
	c.totalRequests++
	cost := decimal.NewFromInt(int64(promptTokens)).Mul(promptPrice).
		Add(decimal.NewFromInt(int64(completionTokens)).Mul(completionPrice)).
		Div(thousand)
	c.estimatedCostUSD = c.estimatedCostUSD.Add(cost)
}

// CostStats is a point-in-time copy of the tracker.
type CostStats struct {
	TotalTokens      int             `json:"total_tokens"`
	TotalRequests    int             `json:"total_requests"`
	EstimatedCostUSD decimal.Decimal `json:"estimated_cost_usd"`
	Since            time.Time       `json:"since"`
}

func (c *CostTracker) Stats() CostStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CostStats{
		TotalTokens:      c.totalTokens,
		TotalRequests:    c.totalRequests,
		EstimatedCostUSD: c.estimatedCostUSD,
		Since:            c.startTime,
	}
}

// Exceeded reports whether spend reached limitUSD. A non-positive limit never trips.
func (c *CostTracker) Exceeded(limitUSD float64) bool {
	if limitUSD <= 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.estimatedCostUSD.GreaterThanOrEqual(decimal.NewFromFloat(limitUSD))
}
