package model

import "math"

// MinBars is the shortest sequence that still yields a delta.
const MinBars = 2

// Validate checks that bars are non-negative, finite and strictly
// increasing in time. It does not enforce low <= open/close <= high.
func Validate(bars []Bar) error {
	if len(bars) < MinBars {
		return &ValidationError{Index: -1, Reason: "need at least 2 bars"}
	}
	for i, b := range bars {
		if reason := checkFields(b); reason != "" {
			return &ValidationError{Index: i, Reason: reason}
		}
		if i > 0 && !b.OpenTime.After(bars[i-1].OpenTime) {
			return &ValidationError{Index: i, Reason: "open time not strictly increasing"}
		}
	}
	return nil
}

func checkFields(b Bar) string {
	fields := [...]struct {
		name string
		v    float64
	}{
		{"open", b.Open}, {"high", b.High}, {"low", b.Low}, {"close", b.Close}, {"volume", b.Volume},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return f.name + " is not finite"
		}
		if f.v < 0 {
			return f.name + " is negative"
		}
	}
	return ""
}
