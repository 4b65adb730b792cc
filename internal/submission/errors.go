package submission

import (
	"errors"
	"fmt"
)

// Guard errors. These are returned before any request is made and never
// produce a notification.
var (
	ErrNoFile        = errors.New("no file selected")
	ErrEmptyQuestion = errors.New("question is empty")
	ErrInFlight      = errors.New("a submission is already in flight")
)

// Kind sentinels for errors.Is matching against *Error.
var (
	ErrNetwork = errors.New("network failure")
	ErrServer  = errors.New("server failure")
)

// Kind classifies a failed submission.
type Kind int

const (
	// NetworkFailure means the request could not be sent or no response arrived.
	NetworkFailure Kind = iota
	// ServerFailure means a response arrived but its status or body indicates failure.
	ServerFailure
)

func (k Kind) String() string {
	switch k {
	case NetworkFailure:
		return "network failure"
	case ServerFailure:
		return "server failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is returned by Submit for every failed request.
type Error struct {
	Kind       Kind
	StatusCode int // zero for NetworkFailure
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets callers match on the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == NetworkFailure
	case ErrServer:
		return e.Kind == ServerFailure
	}
	return false
}

func networkError(err error) *Error {
	return &Error{Kind: NetworkFailure, Err: err}
}

func serverError(status int, err error) *Error {
	return &Error{Kind: ServerFailure, StatusCode: status, Err: err}
}
