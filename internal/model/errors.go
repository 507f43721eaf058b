package model

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or insufficient bar data.
	ErrValidation = errors.New("invalid bar data")
	// ErrIndicator marks misuse of the indicator functions, e.g. a zero window.
	ErrIndicator = errors.New("indicator computation")
	// ErrRender marks a chart backend failure.
	ErrRender = errors.New("render chart")
	// ErrFetch marks a provider request that failed after any retries.
	ErrFetch = errors.New("fetch market data")
	// ErrParse marks a provider payload that does not match its schema.
	ErrParse = errors.New("parse market data")
)

// ValidationError describes the first offending bar in a sequence.
// Index is -1 when the failure concerns the sequence as a whole.
type ValidationError struct {
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%v: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%v: bar %d: %s", ErrValidation, e.Index, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
