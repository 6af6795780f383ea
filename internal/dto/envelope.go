package dto

import (
	"errors"

	"github.com/qamaits/identity-server/internal/domain"
)

// Envelope statuses. "partial" means the primary operation succeeded but
// a secondary effect (such as the verification email) did not.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusPartial = "partial"
)

// Request is the uniform action request body: every field travels inside
// the data object as a string.
type Request struct {
	Data map[string]string `json:"data"`
}

// Envelope is the uniform response body for every endpoint.
type Envelope struct {
	Status  string      `json:"status"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Success wraps a payload in a success envelope.
func Success(data interface{}) Envelope {
	return Envelope{Status: StatusSuccess, Data: data}
}

// SuccessMessage builds a success envelope carrying only a message.
func SuccessMessage(message string) Envelope {
	return Envelope{Status: StatusSuccess, Message: message}
}

// SuccessWithMessage wraps a payload and a message in a success envelope.
func SuccessWithMessage(data interface{}, message string) Envelope {
	return Envelope{Status: StatusSuccess, Message: message, Data: data}
}

// Partial wraps a payload in a partial envelope with an explanation of
// what did not complete.
func Partial(data interface{}, code, message string) Envelope {
	return Envelope{Status: StatusPartial, Code: code, Message: message, Data: data}
}

// Fail builds a failure envelope from a machine-readable code and a
// human-readable message.
func Fail(code, message string) Envelope {
	return Envelope{Status: StatusFail, Code: code, Message: message}
}

// FailFromError builds a failure envelope from a domain error; anything
// else is reported as a store failure without leaking internals.
func FailFromError(err error) Envelope {
	var derr *domain.Error
	if errors.As(err, &derr) {
		return Fail(derr.Kind.Code(), derr.Message)
	}
	return Fail(domain.KindStoreFailure.Code(), "internal error")
}
