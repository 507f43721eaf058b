package strategy

import (
	"fmt"
	"math"

	"MarketBrief/internal/model"
)

// snapshot reads the latest close change, RSI and Bollinger ratio of s.
// The RSI column must be filled and defined at the last bar.
func snapshot(s *model.Series) (model.Snapshot, error) {
	n := s.Len()
	if n < model.MinBars {
		return model.Snapshot{}, &model.ValidationError{Index: -1, Reason: fmt.Sprintf("%s: %d bars", s.Symbol, n)}
	}
	if len(s.RSI) != n || math.IsNaN(s.RSI[n-1]) {
		return model.Snapshot{}, fmt.Errorf("%w: %s: rsi undefined at the last bar", model.ErrIndicator, s.Symbol)
	}

	last, prev := s.Bars[n-1].Close, s.Bars[n-2].Close
	change := math.NaN()
	if prev != 0 {
		change = (last - prev) / prev * 100
	}
	bb := math.NaN()
	if len(s.BBRatio) == n {
		bb = s.BBRatio[n-1]
	}
	return model.Snapshot{
		Symbol:    s.Symbol,
		Close:     last,
		ChangePct: change,
		RSI:       s.RSI[n-1],
		BBRatio:   bb,
	}, nil
}
