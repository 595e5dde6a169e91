// Package risk estimates how a symbol moves with the market.
package risk

import "gonum.org/v1/gonum/stat"

// Returns converts a price series into simple period returns.
// Returns[i] = (prices[i+1] - prices[i]) / prices[i], 0 when prices[i] is 0.
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}
	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}
	return returns
}

// Beta returns cov(asset, benchmark) / var(benchmark) over two return series.
//
// Series of different lengths are aligned on their most recent end. It returns 0
// when fewer than two aligned returns exist or the benchmark never moves.
func Beta(asset, benchmark []float64) float64 {
	n := min(len(asset), len(benchmark))
	if n < 2 {
		return 0
	}
	asset, benchmark = asset[len(asset)-n:], benchmark[len(benchmark)-n:]
	variance := stat.Variance(benchmark, nil)
	if variance == 0 {
		return 0
	}
	return stat.Covariance(asset, benchmark, nil) / variance
}

// PriceBeta is Beta computed from two price series.
func PriceBeta(asset, benchmark []float64) float64 {
	return Beta(Returns(asset), Returns(benchmark))
}
