// Package market derives display models for FlareBet prediction markets.
// Everything here is a pure function of its inputs.
package market

import "math"

const (
	minProbability = 1
	maxProbability = 99

	minHoursLeft   = 0.01
	volPerHour     = 0.02
	maxVolatility  = 0.5
	minVolatility  = 0.01
	secondsPerHour = 3600.0
)

// EstimateProbability returns an illustrative 1..99 percent chance that the
// market resolves YES, that is the price ends at or above targetPrice.
// It is a logistic heuristic over the relative price distance, flattened as
// the time remaining grows. Once now reaches the deadline the answer is
// pinned to 99 or 1.
func EstimateProbability(currentPrice, targetPrice float64, deadline, now int64) int {
	if now >= deadline {
		if currentPrice >= targetPrice {
			return maxProbability
		}
		return minProbability
	}

	divisor := currentPrice
	if divisor == 0 {
		divisor = 1
	}
	priceDist := (targetPrice - currentPrice) / divisor

	hoursLeft := math.Max(float64(deadline-now)/secondsPerHour, minHoursLeft)
	vol := math.Min(hoursLeft*volPerHour, maxVolatility)

	z := -priceDist / math.Max(vol, minVolatility)
	prob := 1 / (1 + math.Exp(-z))

	return clampPercent(math.Round(prob * 100))
}

func clampPercent(pct float64) int {
	if math.IsNaN(pct) || pct < minProbability {
		return minProbability
	}
	if pct > maxProbability {
		return maxProbability
	}
	return int(pct)
}
