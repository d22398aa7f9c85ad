// Package errors defines the structured error taxonomy shared by every
// component of the decision core. Every error raised on the decision path
// carries a Kind so callers can increment the {component, kind} error
// counter (internal/metrics) without string matching.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an AppError for metrics and propagation-policy purposes.
type Kind string

const (
	KindInvalidRequest     Kind = "invalid_request"
	KindInvalidDocument    Kind = "invalid_document"
	KindConfigError        Kind = "config_error"
	KindRuleCompileError   Kind = "rule_compile_error"
	KindRuleEvaluationErr  Kind = "rule_evaluation_error"
	KindPatternCompileErr  Kind = "pattern_compile_error"
	KindPatternMatchErr    Kind = "pattern_match_error"
	KindInternalError      Kind = "internal_error"
	KindNotFound           Kind = "not_found"
)

// AppError is a structured application error carrying a Kind, the
// component that raised it, and an optional cause.
type AppError struct {
	Kind      Kind
	Component string
	Code      string
	Message   string
	Details   map[string]interface{}
	Cause     error
	Retryable bool
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Component, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Component, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewInvalidRequest reports a malformed or out-of-range request field
// (body too large, missing required field, value out of range).
func NewInvalidRequest(component, code, message string) *AppError {
	return &AppError{Kind: KindInvalidRequest, Component: component, Code: code, Message: message}
}

// NewInvalidDocument reports a request body that failed to parse.
func NewInvalidDocument(component, message string) *AppError {
	return &AppError{Kind: KindInvalidDocument, Component: component, Code: "INVALID_DOCUMENT", Message: message}
}

// NewConfigError reports a load/parse/validation failure on a config artifact.
func NewConfigError(component, section, field, reason string) *AppError {
	return &AppError{
		Kind:      KindConfigError,
		Component: component,
		Code:      "CONFIG_ERROR",
		Message:   reason,
		Details:   map[string]interface{}{"section": section, "field": field},
	}
}

// NewRuleCompileError reports a rule whose expression failed to compile.
// The rule is skipped; this error is recorded, never surfaced as a decision error.
func NewRuleCompileError(ruleID, reason string) *AppError {
	return &AppError{
		Kind:      KindRuleCompileError,
		Component: "rule_engine",
		Code:      "RULE_COMPILE_ERROR",
		Message:   reason,
		Details:   map[string]interface{}{"rule_id": ruleID},
	}
}

// NewRuleEvaluationError reports a rule that failed during evaluation for one request.
func NewRuleEvaluationError(ruleID, reason string) *AppError {
	return &AppError{
		Kind:      KindRuleEvaluationErr,
		Component: "rule_engine",
		Code:      "RULE_EVALUATION_ERROR",
		Message:   reason,
		Details:   map[string]interface{}{"rule_id": ruleID},
	}
}

// NewPatternCompileError reports a compile attempt that failed for one pattern.
// Fatal to that compile attempt; the previous Ready database is retained.
func NewPatternCompileError(patternID, reason string) *AppError {
	return &AppError{
		Kind:      KindPatternCompileErr,
		Component: "pattern_matcher",
		Code:      "PATTERN_COMPILE_ERROR",
		Message:   reason,
		Details:   map[string]interface{}{"pattern_id": patternID},
	}
}

// NewPatternMatchError reports a per-text matching failure, treated as no-match.
func NewPatternMatchError(reason string) *AppError {
	return &AppError{Kind: KindPatternMatchErr, Component: "pattern_matcher", Code: "PATTERN_MATCH_ERROR", Message: reason}
}

// NewInternalError reports an unexpected failure surfaced to the caller.
func NewInternalError(component, message string) *AppError {
	return &AppError{Kind: KindInternalError, Component: component, Code: "INTERNAL_ERROR", Message: message, Retryable: true}
}

// NewNotFoundError reports a missing resource (e.g. rule statistics for an unknown id).
func NewNotFoundError(component, resource string) *AppError {
	return &AppError{Kind: KindNotFound, Component: component, Code: "NOT_FOUND", Message: fmt.Sprintf("%s not found", resource)}
}

// Wrap wraps an error with a message using fmt.Errorf with %w.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// KindOf extracts the Kind from err, or "" if err is not an *AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// ComponentOf extracts the Component from err, or "" if err is not an *AppError.
func ComponentOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Component
	}
	return ""
}

// IsKind checks if an error carries a specific Kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
