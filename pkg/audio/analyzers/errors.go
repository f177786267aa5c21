package analyzers

import "errors"

var (
	// ErrEmptySignal is returned when a transform receives no samples.
	ErrEmptySignal = errors.New("empty signal")
	// ErrSignalTooShort is returned when a signal holds fewer samples than one analysis window.
	ErrSignalTooShort = errors.New("signal shorter than analysis window")
)
