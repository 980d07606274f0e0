package submitter

import (
	"errors"
	"fmt"
)

// ErrorKind classifies iteration failures.
type ErrorKind int

const (
	// KindTransient failures leave state untouched; the next iteration retries.
	KindTransient ErrorKind = iota
	KindConfig
	KindInvalidRange
	KindInsufficientBalance
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindConfig:
		return "config"
	case KindInvalidRange:
		return "invalid_range"
	case KindInsufficientBalance:
		return "insufficient_balance"
	default:
		return "unknown"
	}
}

var ErrInsufficientBalance = errors.New("signer balance below minimum")

// Error is a classified iteration failure.
type Error struct {
	Kind    ErrorKind
	Op      string
	Err     error
	Context map[string]any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("submitter %s error in %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("submitter %s error in %s", e.Kind, e.Op)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err, Context: make(map[string]any)}
}

// WithContext attaches a key/value for logs.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// KindOf returns the kind of the first *Error in err's chain. Unclassified
// errors are transient.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransient
}

// IsTransient reports whether retrying on the next tick can succeed.
func IsTransient(err error) bool {
	return err != nil && KindOf(err) == KindTransient
}
