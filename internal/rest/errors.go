package rest

import (
	"errors"
	"fmt"
)

// Kind classifies a failed client operation.
type Kind int

const (
	// KindValidation: rejected locally, no request was sent.
	KindValidation Kind = iota + 1
	// KindRejected: the server answered with an error payload.
	KindRejected
	// KindNetwork: no response was received.
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRejected:
		return "rejected"
	case KindNetwork:
		return "network"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// NetworkMessage is surfaced when the server could not be reached.
const NetworkMessage = "Unable to reach the server. Please try again."

type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == KindNetwork {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func ValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// KindOf returns the kind of err, or 0 when err is not a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Message returns the text to show the user for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// MessageOr is Message, but falls back to fallback for anything other than a
// server rejection or validation failure.
func MessageOr(err error, fallback string) string {
	switch KindOf(err) {
	case KindRejected, KindValidation:
		return Message(err)
	}
	return fallback
}
