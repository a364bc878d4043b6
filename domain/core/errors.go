package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Analysis errors
	ErrInsufficientData  = errors.New("insufficient data for analysis")
	ErrStructural        = errors.New("malformed table")
	ErrNumericDegenerate = errors.New("numerically degenerate column")

	// Table construction errors
	ErrRaggedColumns   = fmt.Errorf("%w: columns have mismatched lengths", ErrStructural)
	ErrDuplicateColumn = fmt.Errorf("%w: duplicate column name", ErrStructural)
	ErrEmptyColumnName = fmt.Errorf("%w: empty column name", ErrStructural)

	// Mode errors
	ErrUnknownMode = errors.New("unknown analysis mode")
)

// ErrorKind enumerates the failure kinds an analysis can report.
type ErrorKind string

const (
	KindInsufficientData  ErrorKind = "insufficient_data"
	KindStructural        ErrorKind = "structural_error"
	KindNumericDegenerate ErrorKind = "numeric_degenerate"
)

// AnalysisError is a failure carried as a value inside an analysis result.
// Cause, when set, is the specific sentinel behind the failure.
type AnalysisError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the cause and the kind's sentinel so errors.Is matches both.
func (e *AnalysisError) Unwrap() []error {
	var errs []error
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	if sentinel := e.Kind.sentinel(); sentinel != nil {
		errs = append(errs, sentinel)
	}
	return errs
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindInsufficientData:
		return ErrInsufficientData
	case KindStructural:
		return ErrStructural
	case KindNumericDegenerate:
		return ErrNumericDegenerate
	}
	return nil
}

// Error constructors with context
func NewInsufficientDataError(format string, args ...interface{}) *AnalysisError {
	return &AnalysisError{Kind: KindInsufficientData, Message: fmt.Sprintf(format, args...)}
}

func NewStructuralError(format string, args ...interface{}) *AnalysisError {
	return &AnalysisError{Kind: KindStructural, Message: fmt.Sprintf(format, args...)}
}

// WrapStructural builds a structural error around a specific cause such as
// ErrRaggedColumns. The cause's text ends the message.
func WrapStructural(cause error, format string, args ...interface{}) *AnalysisError {
	return &AnalysisError{
		Kind:    KindStructural,
		Message: fmt.Sprintf(format, args...) + ": " + cause.Error(),
		Cause:   cause,
	}
}

// AsAnalysisError converts any error into an AnalysisError. Errors that
// already wrap a domain sentinel keep their kind; anything else is structural.
func AsAnalysisError(err error) *AnalysisError {
	if err == nil {
		return nil
	}
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, ErrInsufficientData):
		return &AnalysisError{Kind: KindInsufficientData, Message: err.Error(), Cause: err}
	case errors.Is(err, ErrNumericDegenerate):
		return &AnalysisError{Kind: KindNumericDegenerate, Message: err.Error(), Cause: err}
	}
	return &AnalysisError{Kind: KindStructural, Message: err.Error(), Cause: err}
}

// Error checking helpers
func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

func IsStructuralError(err error) bool {
	return errors.Is(err, ErrStructural)
}
