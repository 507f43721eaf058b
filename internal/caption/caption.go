// Package caption derives the facts a job message is built from: the
// latest change of a series and the band a 0-100 score falls into.
// Markup lives in the notifier templates.
package caption

import (
	"fmt"
	"math"
	"time"

	"MarketBrief/internal/model"
)

// Direction of the latest move.
const (
	Up   = "up"
	Down = "down"
	Flat = "flat"
)

// Change is the move between the last two bars of a series.
type Change struct {
	Symbol    string
	Time      time.Time
	Value     float64
	Previous  float64
	Delta     float64
	Percent   float64 // NaN when Previous is zero
	Direction string
}

// Latest computes the change of the last close against the one before it.
func Latest(s *model.Series) (Change, error) {
	if s == nil || s.Len() < model.MinBars {
		n := 0
		if s != nil {
			n = s.Len()
		}
		return Change{}, &model.ValidationError{Index: -1, Reason: fmt.Sprintf("need %d bars for a change, got %d", model.MinBars, n)}
	}
	last := s.Bars[s.Len()-1]
	prev := s.Bars[s.Len()-2]
	return Between(s.Symbol, last.OpenTime, last.Close, prev.Close), nil
}

// Between builds a Change from two scalar observations.
func Between(symbol string, at time.Time, value, previous float64) Change {
	c := Change{
		Symbol:   symbol,
		Time:     at,
		Value:    value,
		Previous: previous,
		Delta:    value - previous,
		Percent:  math.NaN(),
	}
	if previous != 0 {
		c.Percent = c.Delta / previous * 100
	}
	switch {
	case c.Delta > 0:
		c.Direction = Up
	case c.Delta < 0:
		c.Direction = Down
	default:
		c.Direction = Flat
	}
	return c
}

// Context is the template data for a change.
func (c Change) Context() map[string]any {
	return map[string]any{
		"symbol":    c.Symbol,
		"date":      c.Time,
		"value":     c.Value,
		"previous":  c.Previous,
		"delta":     c.Delta,
		"percent":   c.Percent,
		"direction": c.Direction,
	}
}
