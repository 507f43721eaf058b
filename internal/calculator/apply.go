package calculator

import (
	"fmt"

	"MarketBrief/internal/model"
)

// Params selects which derived columns Apply computes.
// RSIPeriod or BBPeriod of zero leaves that column empty.
type Params struct {
	SMAWindow int
	RSIPeriod int
	BBPeriod  int
	BBStdDev  float64
}

// DefaultParams returns the indicator defaults shared by all jobs.
func DefaultParams() Params {
	return Params{SMAWindow: 10, RSIPeriod: 14, BBPeriod: 20, BBStdDev: 2}
}

// Apply writes the derived columns of s in place.
func Apply(s *model.Series, p Params) error {
	sma, err := VolumeSMA(s.Bars, p.SMAWindow)
	if err != nil {
		return fmt.Errorf("volume sma: %w", err)
	}
	s.VolumeSMA = sma

	closes := s.Closes()
	if p.RSIPeriod > 0 {
		rsi, err := RSISeries(closes, p.RSIPeriod)
		if err != nil {
			return fmt.Errorf("rsi: %w", err)
		}
		s.RSI = rsi
	}
	if p.BBPeriod > 0 {
		k := p.BBStdDev
		if k == 0 {
			k = 2
		}
		bands, err := BollingerSeries(closes, p.BBPeriod, k)
		if err != nil {
			return fmt.Errorf("bollinger: %w", err)
		}
		s.BBRatio = bands.Ratio
	}
	return nil
}
