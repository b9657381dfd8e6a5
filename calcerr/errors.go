// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

// Package calcerr provides structured error handling for the damage
// calculation engine. It enables clear communication of why a calculation
// could not proceed, with full context about the offending input or
// invariant.
package calcerr

import (
	"errors"
	"fmt"
)

// Code categorizes an engine error so callers can branch on failure kind
// without parsing messages.
type Code string

const (
	// CodeInvalidInput marks malformed structural input: non-finite numbers,
	// unknown slot types, or anything else the boundary codec rejects before
	// the pipeline runs.
	CodeInvalidInput Code = "invalid_input"

	// CodeTagRegistry marks a tag registry inconsistency detected at load
	// time: a parent-edge cycle or a duplicate id.
	CodeTagRegistry Code = "tag_registry"

	// CodeCalculation marks an internal invariant violation inside the
	// pipeline. It is returned rather than panicking; seeing one in
	// production is a bug report, not expected user-facing behavior.
	CodeCalculation Code = "calculation"
)

// Error is the engine's error value. It carries a Code, a human-readable
// Message, an optional wrapped Cause, and free-form Meta for the field or
// value that triggered it.
type Error struct {
	Code    Code
	Message string
	Cause   error
	Meta    map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "calcerr: nil error"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Option configures an Error at construction time.
type Option func(*Error)

// WithMeta attaches a metadata key/value pair to the error.
func WithMeta(key string, value any) Option {
	return func(e *Error) {
		if e.Meta == nil {
			e.Meta = make(map[string]any)
		}
		e.Meta[key] = value
	}
}

// New creates an Error with the given code and message.
func New(code Code, message string, opts ...Option) *Error {
	err := &Error{Code: code, Message: message}
	for _, opt := range opts {
		opt(err)
	}
	return err
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps err with additional context, preserving its code if it is
// already a *Error.
func Wrap(err error, message string, opts ...Option) *Error {
	if err == nil {
		return New(CodeCalculation, fmt.Sprintf("calcerr.Wrap called with nil: %s", message))
	}

	var inner *Error
	wrapped := &Error{Message: message, Cause: err, Code: CodeCalculation}
	if errors.As(err, &inner) {
		wrapped.Code = inner.Code
		wrapped.Meta = copyMeta(inner.Meta)
	}

	for _, opt := range opts {
		opt(wrapped)
	}
	return wrapped
}

// WrapWithCode wraps err, overriding its code.
func WrapWithCode(err error, code Code, message string, opts ...Option) *Error {
	if err == nil {
		return New(CodeCalculation, fmt.Sprintf("calcerr.WrapWithCode called with nil: %s", message))
	}

	wrapped := &Error{Code: code, Message: message, Cause: err}

	var inner *Error
	if errors.As(err, &inner) {
		wrapped.Meta = copyMeta(inner.Meta)
	}

	for _, opt := range opts {
		opt(wrapped)
	}
	return wrapped
}

func copyMeta(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}
	copied := make(map[string]any, len(meta))
	for k, v := range meta {
		copied[k] = v
	}
	return copied
}

// GetCode extracts the Code from any error, returning CodeCalculation if err
// is not a *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e.Code
	}
	return CodeCalculation
}

// GetMeta extracts the Meta map from any error, or nil.
func GetMeta(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e.Meta
	}
	return nil
}

// InvalidInput creates a CodeInvalidInput error.
func InvalidInput(format string, args ...any) *Error {
	return Newf(CodeInvalidInput, format, args...)
}

// TagRegistry creates a CodeTagRegistry error.
func TagRegistry(format string, args ...any) *Error {
	return Newf(CodeTagRegistry, format, args...)
}

// Calculation creates a CodeCalculation error.
func Calculation(format string, args ...any) *Error {
	return Newf(CodeCalculation, format, args...)
}

// IsInvalidInput reports whether err carries CodeInvalidInput.
func IsInvalidInput(err error) bool { return GetCode(err) == CodeInvalidInput }

// IsTagRegistry reports whether err carries CodeTagRegistry.
func IsTagRegistry(err error) bool { return GetCode(err) == CodeTagRegistry }

// IsCalculation reports whether err carries CodeCalculation.
func IsCalculation(err error) bool { return GetCode(err) == CodeCalculation }
