package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error. Every kind is recoverable at the
// API boundary and maps to a stable machine-readable code.
type ErrorKind int

const (
	KindInvalidCredentials ErrorKind = iota
	KindNotFound
	KindAlreadyExists
	KindStoreFailure
	KindEncodingFailure
	KindHashingFailure
	KindConfigFailure
)

// Code returns the wire-level error code for the kind.
func (k ErrorKind) Code() string {
	switch k {
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindStoreFailure:
		return "store_failure"
	case KindEncodingFailure:
		return "encoding_failure"
	case KindHashingFailure:
		return "hashing_failure"
	case KindConfigFailure:
		return "config_failure"
	default:
		return "unknown"
	}
}

// Error is the domain error taxonomy. Services translate rule violations
// into one of the business kinds; the repository wraps raw store errors
// into KindStoreFailure so they never reach a caller uninterpreted.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind.Code(), e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Code(), e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a domain Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}

func ErrInvalidCredentials(msg string) *Error {
	return &Error{Kind: KindInvalidCredentials, Message: msg}
}

func ErrNotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func ErrAlreadyExists(msg string) *Error {
	return &Error{Kind: KindAlreadyExists, Message: msg}
}

func ErrStoreFailure(msg string, err error) *Error {
	return &Error{Kind: KindStoreFailure, Message: msg, Err: err}
}

func ErrEncodingFailure(msg string, err error) *Error {
	return &Error{Kind: KindEncodingFailure, Message: msg, Err: err}
}

func ErrHashingFailure(msg string, err error) *Error {
	return &Error{Kind: KindHashingFailure, Message: msg, Err: err}
}

func ErrConfigFailure(msg string, err error) *Error {
	return &Error{Kind: KindConfigFailure, Message: msg, Err: err}
}
