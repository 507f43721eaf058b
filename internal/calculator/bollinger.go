package calculator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"MarketBrief/internal/model"
)

// Bands holds Bollinger band columns aligned with the input closes.
// Ratio is (close-middle)/(upper-middle): 0 at the middle, ±1 at a band.
type Bands struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
	Ratio  []float64
}

// BollingerSeries computes bands over a rolling window using the
// population standard deviation. Ratio is NaN while warming up and
// wherever the window has no volatility.
func BollingerSeries(closes []float64, period int, k float64) (*Bands, error) {
	if period <= 0 {
		return nil, fmt.Errorf("%w: period must be positive, got %d", model.ErrIndicator, period)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: band width must be positive, got %v", model.ErrIndicator, k)
	}
	n := len(closes)
	b := &Bands{Upper: nanSlice(n), Middle: nanSlice(n), Lower: nanSlice(n), Ratio: nanSlice(n)}
	for i := period - 1; i < n; i++ {
		mid, std := stat.PopMeanStdDev(closes[i-period+1:i+1], nil)
		width := k * std
		b.Middle[i] = mid
		b.Upper[i] = mid + width
		b.Lower[i] = mid - width
		if width > 1e-12*math.Max(1, math.Abs(mid)) {
			b.Ratio[i] = (closes[i] - mid) / width
		}
	}
	return b, nil
}
