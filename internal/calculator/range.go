package calculator

import (
	"errors"
	"math"

	"MarketBrief/internal/model"
)

// PriceRange scans the bars and returns the highest high and lowest low.
func PriceRange(bars []model.Bar) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range bars {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	return high, low, nil
}

// PaddedRange widens [low, high] by pad of its span on both sides.
// A flat range is padded around its level so the axis never collapses.
func PaddedRange(bars []model.Bar, pad float64) (bottom, top float64, err error) {
	high, low, err := PriceRange(bars)
	if err != nil {
		return 0, 0, err
	}
	delta := high - low
	if delta == 0 {
		delta = math.Max(math.Abs(high), 1)
	}
	return low - delta*pad, high + delta*pad, nil
}
