package model

// Snapshot holds the latest derived values of one series.
type Snapshot struct {
	Symbol    string
	Close     float64
	ChangePct float64 // last close vs the one before, in percent
	RSI       float64
	BBRatio   float64 // NaN when the bands are undefined
}
