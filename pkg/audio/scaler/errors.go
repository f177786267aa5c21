package scaler

import "errors"

var (
	// ErrNotFitted is returned when a scaler is used before Fit.
	ErrNotFitted = errors.New("scaler not fitted")
	// ErrEmptyDataset is returned when Fit receives no rows.
	ErrEmptyDataset = errors.New("empty dataset")
	// ErrDimensionMismatch is returned when matrix widths disagree with each other or with the fitted statistics.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrUnknownKind is returned for scaler kinds outside the closed set.
	ErrUnknownKind = errors.New("unknown scaler kind")
)

// Error codes carried by ScalerError
const (
	ErrCodeNotFitted         = "NOT_FITTED"
	ErrCodeEmptyDataset      = "EMPTY_DATASET"
	ErrCodeDimensionMismatch = "DIMENSION_MISMATCH"
	ErrCodeUnknownKind       = "UNKNOWN_KIND"
	ErrCodeEncoding          = "ENCODING_FAILED"
	ErrCodeDecoding          = "DECODING_FAILED"
)

// ScalerError represents scaler fitting, transform and persistence errors
type ScalerError struct {
	Op      string `json:"op"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *ScalerError) Error() string {
	msg := e.Op + ": " + e.Message
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *ScalerError) Unwrap() error {
	return e.Cause
}

// NewScalerError creates a new scaler error
func NewScalerError(op, code, message string, cause error) *ScalerError {
	return &ScalerError{
		Op:      op,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
