package session

import (
	"errors"
	"fmt"
)

// Kind classifies a Result.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
)

// Result is the outcome of one record operation. Each operation replaces the
// previous result.
type Result struct {
	Kind    Kind   `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
	Payload any    `json:"payload,omitempty" yaml:"payload,omitempty"`
}

// Success builds a success result.
func Success(payload any, format string, args ...any) Result {
	return Result{Kind: KindSuccess, Message: fmt.Sprintf(format, args...), Payload: payload}
}

// Failure builds an error result. The error text is kept verbatim after the
// prefix.
func Failure(prefix string, err error) Result {
	return Result{Kind: KindError, Message: fmt.Sprintf("%s: %v", prefix, err)}
}

// Warning builds a warning result from a validation error.
func Warning(err error) Result {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return Result{Kind: KindWarning, Message: ve.Message}
	}
	return Result{Kind: KindWarning, Message: err.Error()}
}

// OK reports whether the result is a success.
func (r Result) OK() bool { return r.Kind == KindSuccess }

// Err converts a non-success result into an error.
func (r Result) Err() error {
	if r.OK() || r.Kind == "" {
		return nil
	}
	return &ResultError{Result: r}
}

// ResultError wraps a warning or error result.
type ResultError struct {
	Result Result
}

func (e *ResultError) Error() string { return e.Result.Message }
