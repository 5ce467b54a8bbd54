package coef

import (
	"errors"
	"fmt"
)

// ErrorCode represents categorized error codes
type ErrorCode int

const (
	ErrCodeNotCompiled       ErrorCode = 1
	ErrCodeBadComponentCount ErrorCode = 2
	ErrCodeBadSampling       ErrorCode = 3
	ErrCodeBadImageSize      ErrorCode = 4
	ErrCodeBadScaledSize     ErrorCode = 5
	ErrCodeBadMCUSize        ErrorCode = 6
	ErrCodeBadScan           ErrorCode = 7
	ErrCodeBadProgression    ErrorCode = 8
	ErrCodeNoQuantTable      ErrorCode = 9
	ErrCodeBadVirtualAccess  ErrorCode = 10
	ErrCodeBackingStore      ErrorCode = 11
	ErrCodeBadState          ErrorCode = 12
	ErrCodeBadOutputBuffer   ErrorCode = 13

	// Warnings. These are reported through Options.Logger and never returned.
	ErrCodeBogusProgression ErrorCode = 100
)

func (e ErrorCode) String() string {
	switch e {
	case ErrCodeNotCompiled:
		return "NotCompiled"
	case ErrCodeBadComponentCount:
		return "BadComponentCount"
	case ErrCodeBadSampling:
		return "BadSampling"
	case ErrCodeBadImageSize:
		return "BadImageSize"
	case ErrCodeBadScaledSize:
		return "BadScaledSize"
	case ErrCodeBadMCUSize:
		return "BadMCUSize"
	case ErrCodeBadScan:
		return "BadScan"
	case ErrCodeBadProgression:
		return "BadProgression"
	case ErrCodeNoQuantTable:
		return "NoQuantTable"
	case ErrCodeBadVirtualAccess:
		return "BadVirtualAccess"
	case ErrCodeBackingStore:
		return "BackingStore"
	case ErrCodeBadState:
		return "BadState"
	case ErrCodeBadOutputBuffer:
		return "BadOutputBuffer"
	case ErrCodeBogusProgression:
		return "BogusProgression"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int(e))
	}
}

// CoefError represents an error from the coefficient controller
type CoefError struct {
	Code    ErrorCode
	Message string
}

func (e *CoefError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewCoefError creates a new CoefError
func NewCoefError(code ErrorCode, message string) *CoefError {
	return &CoefError{Code: code, Message: message}
}

// errorf creates a CoefError with a formatted message
func errorf(code ErrorCode, format string, args ...any) error {
	return &CoefError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsCoefError checks if an error is a CoefError and returns it
func IsCoefError(err error) (*CoefError, bool) {
	var coefErr *CoefError
	if errors.As(err, &coefErr) {
		return coefErr, true
	}
	return nil, false
}

// HasCode reports whether err is a CoefError carrying code
func HasCode(err error, code ErrorCode) bool {
	if ce, ok := IsCoefError(err); ok {
		return ce.Code == code
	}
	return false
}

// Common errors
var (
	ErrNotCompiled = &CoefError{Code: ErrCodeNotCompiled, Message: "full-image buffering not compiled"}
	ErrBadState    = &CoefError{Code: ErrCodeBadState, Message: "improper call sequence"}
)
