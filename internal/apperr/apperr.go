// Package apperr defines the error kinds a dietloom run can fail with.
//
// Stage errors
//
//	SourceUnavailable – the dataset could not be fetched (missing file, missing blob, network).
//	ParseError        – the fetched bytes are not a delimited table with the expected header.
//	WriteError        – the report destination could not be written.
//
// All three are fatal to a run. Bad cells inside an otherwise valid table are never
// reported through this package; the record is excluded instead.
//
// UserError covers invalid flags or configuration; the CLI prints only the message.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrParse             = errors.New("parse error")
	ErrWrite             = errors.New("write error")
)

// StageError carries the failing stage, the kind sentinel and the underlying cause.
type StageError struct {
	Stage string
	Kind  error
	Err   error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is / errors.As.
func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// SourceUnavailable wraps a fetch failure.
func SourceUnavailable(stage string, err error) error {
	return &StageError{Stage: stage, Kind: ErrSourceUnavailable, Err: err}
}

// ParseError wraps a decoding failure.
func ParseError(stage string, err error) error {
	return &StageError{Stage: stage, Kind: ErrParse, Err: err}
}

// WriteError wraps a persistence failure.
func WriteError(stage string, err error) error {
	return &StageError{Stage: stage, Kind: ErrWrite, Err: err}
}

// StageOf returns the stage label of err, or "" when err is not a *StageError.
func StageOf(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

// UserError represents an error caused by invalid or missing user input.
type UserError struct {
	Message string
}

func (e *UserError) Error() string { return e.Message }

// Userf creates a formatted UserError.
func Userf(format string, args ...any) error {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}

// IsUser reports whether err is (or wraps) a *UserError.
func IsUser(err error) bool {
	var u *UserError
	return errors.As(err, &u)
}
