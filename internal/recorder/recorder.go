package recorder

import (
	"errors"

	"MarketBrief/internal/model"
)

// ErrOutOfOrder is returned when a sample is older than the last one kept.
var ErrOutOfOrder = errors.New("sample out of time order")

// Recorder keeps an append-only history of scalar samples.
type Recorder interface {
	// Append adds s after the last sample. Samples must not go back in time.
	Append(s model.Sample) error
	// Last returns the most recent sample; ok is false when none exists.
	Last() (s model.Sample, ok bool, err error)
	// Samples returns the whole history, oldest first.
	Samples() ([]model.Sample, error)
	Close() error
}
