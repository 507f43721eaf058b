package calculator

import (
	"fmt"
	"math"

	"MarketBrief/internal/model"
)

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("%w: period must be positive, got %d", model.ErrIndicator, period)
	}
	if len(prices) < period {
		return 0, fmt.Errorf("%w: not enough data for SMA(%d): %d values", model.ErrIndicator, period, len(prices))
	}
	return mean(prices[len(prices)-period:]), nil
}

// RollingSMA returns the mean of the window values ending at each index.
// Indices with fewer than window samples before them hold NaN.
func RollingSMA(values []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: window must be positive, got %d", model.ErrIndicator, window)
	}
	out := nanSlice(len(values))
	for i := window - 1; i < len(values); i++ {
		v, err := CalculateSMA(values[:i+1], window)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// VolumeSMA is RollingSMA over bar volumes.
func VolumeSMA(bars []model.Bar, window int) ([]float64, error) {
	vols := make([]float64, len(bars))
	for i, b := range bars {
		vols[i] = b.Volume
	}
	return RollingSMA(vols, window)
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
