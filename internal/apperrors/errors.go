package apperrors

import (
	"errors"
	"fmt"
)

// Error kinds. Config and connection errors abort startup; the rest are
// reported at the operation boundary and the menu keeps running.
var (
	ErrConfig     = errors.New("configuration error")
	ErrConnection = errors.New("connection error")
	ErrValidation = errors.New("validation error")
	ErrIntegrity  = errors.New("integrity constraint violated")
	ErrCommand    = errors.New("command failed")
	ErrQuery      = errors.New("query failed")
)

// Error carries an error kind, the operation that failed and the underlying cause.
type Error struct {
	Kind    error
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return fmt.Sprintf("%v: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind, msg)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Config wraps a configuration failure.
func Config(op string, err error) error {
	return &Error{Kind: ErrConfig, Op: op, Err: err}
}

// Configf builds a configuration failure from a message.
func Configf(op, format string, args ...interface{}) error {
	return &Error{Kind: ErrConfig, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Connection wraps a failure to reach or authenticate against the engine.
func Connection(op string, err error) error {
	return &Error{Kind: ErrConnection, Op: op, Err: err}
}

// Validation reports bad user input for a named field.
func Validation(field, message string) error {
	return &Error{Kind: ErrValidation, Op: field, Message: message}
}

// Integrity wraps a constraint violation reported by the engine.
func Integrity(op string, err error) error {
	return &Error{Kind: ErrIntegrity, Op: op, Err: err}
}

// Command wraps a failed write.
func Command(op string, err error) error {
	return &Error{Kind: ErrCommand, Op: op, Err: err}
}

// Query wraps a failed read.
func Query(op string, err error) error {
	return &Error{Kind: ErrQuery, Op: op, Err: err}
}

// IsFatal reports whether err must terminate the process.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfig) || errors.Is(err, ErrConnection)
}

// Message returns the human readable part of err: the validation message for
// validation errors, the full error text otherwise.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" && appErr.Err == nil {
		return appErr.Message
	}
	return err.Error()
}
