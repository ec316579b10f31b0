// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrPositionNotFound  = errors.New("position not found")
	ErrAccountNotFound   = errors.New("account not found")
	ErrAmbiguousMatch    = errors.New("ambiguous match")
	ErrPriceUnavailable  = errors.New("price could not be resolved")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrUnknownTool       = errors.New("unknown tool")
	ErrStoreClosed       = errors.New("store is closed")
	ErrNoPendingAction   = errors.New("no pending action")
	ErrLLMUnavailable    = errors.New("language model endpoint unreachable")
	ErrModelNotFound     = errors.New("language model not found")
	ErrMalformedResponse = errors.New("malformed language model response")
)

// ResolutionError reports a failed or ambiguous resolution of a user-supplied
// reference (symbol, account, cash position). The message is written to be
// shown to the user directly.
type ResolutionError struct {
	Kind       string // "symbol", "account", "cash"
	Input      string
	Candidates []string
	Err        error
}

func (e *ResolutionError) Error() string {
	if len(e.Candidates) > 0 {
		return fmt.Sprintf("%s %q is ambiguous between %v", e.Kind, e.Input, e.Candidates)
	}
	if e.Err != nil {
		return fmt.Sprintf("could not resolve %s %q: %v", e.Kind, e.Input, e.Err)
	}
	return fmt.Sprintf("could not resolve %s %q", e.Kind, e.Input)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// NewResolutionError creates a new ResolutionError.
func NewResolutionError(kind, input string, candidates []string, err error) *ResolutionError {
	return &ResolutionError{Kind: kind, Input: input, Candidates: candidates, Err: err}
}

// QuoteError reports a quote-provider failure. Callers in the enrichment path
// convert these into a nil price and fall through to the next tier; QuoteError
// only surfaces when every tier is exhausted.
type QuoteError struct {
	Provider string
	Symbol   string
	Date     string
	Err      error
}

func (e *QuoteError) Error() string {
	if e.Date != "" {
		return fmt.Sprintf("quote error [%s] %s@%s: %v", e.Provider, e.Symbol, e.Date, e.Err)
	}
	return fmt.Sprintf("quote error [%s] %s: %v", e.Provider, e.Symbol, e.Err)
}

func (e *QuoteError) Unwrap() error {
	return e.Err
}

// NewQuoteError creates a new QuoteError.
func NewQuoteError(provider, symbol, date string, err error) *QuoteError {
	return &QuoteError{Provider: provider, Symbol: symbol, Date: date, Err: err}
}

// LLMError maps a language-model transport failure onto an HTTP-style status
// so the CLI/API surface can report distinct categories: 503 for an
// unreachable endpoint, 404 for an unknown model, 502 for a malformed reply.
type LLMError struct {
	Status  int
	Message string
	Err     error
}

func (e *LLMError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("llm error [%d]: %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("llm error [%d]: %s", e.Status, e.Message)
}

func (e *LLMError) Unwrap() error {
	return e.Err
}

// NewLLMError creates a new LLMError.
func NewLLMError(status int, message string, err error) *LLMError {
	return &LLMError{Status: status, Message: message, Err: err}
}

// ValidationError represents a user-input validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}
