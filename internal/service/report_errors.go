package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrRenderTimeout is matched by RenderErrors caused by the rendering budget running out.
var ErrRenderTimeout = errors.New("report rendering timed out")

// ValidationError rejects malformed criteria before any query runs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// StoreError wraps a persistence failure with the operation and scope it happened in.
type StoreError struct {
	Op    string
	Scope string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s for %s: %v", e.Op, e.Scope, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// RenderError reports a failure of the document rendering collaborator.
type RenderError struct {
	Scope   string
	Timeout bool
	Err     error
}

func (e *RenderError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("render %s: timed out", e.Scope)
	}
	return fmt.Sprintf("render %s: %v", e.Scope, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrRenderTimeout) identify budget exhaustion.
func (e *RenderError) Is(target error) bool {
	return e.Timeout && target == ErrRenderTimeout
}

// UnsupportedFormatError is returned for output formats outside json, csv and pdf.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported report format %q", e.Format)
}

func validationErrorFrom(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Field: fe.Field(), Reason: describeTag(fe)}
	}
	return &ValidationError{Reason: err.Error()}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "uuid":
		return "must be a well-formed identifier"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
