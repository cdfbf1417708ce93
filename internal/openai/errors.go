package openai

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a completion call failed.
type ErrorKind string

const (
	KindNetwork    ErrorKind = "network"
	KindTimeout    ErrorKind = "timeout"
	KindDecode     ErrorKind = "decode"
	KindEmpty      ErrorKind = "empty result"
	KindStatus     ErrorKind = "http status"
	KindRefused    ErrorKind = "refused"
	KindCredential ErrorKind = "credential"
)

// Sentinels for errors.Is. Every *Error matches the sentinel of its Kind.
var (
	ErrNetwork     = errors.New("openai: network error")
	ErrTimeout     = errors.New("openai: timed out")
	ErrDecode      = errors.New("openai: cannot decode response")
	ErrEmptyResult = errors.New("openai: no choices in response")
	ErrHTTPStatus  = errors.New("openai: unexpected http status")
	ErrRefused     = errors.New("openai: request refused")
	ErrCredential  = errors.New("openai: credential unavailable")
)

var sentinels = map[ErrorKind]error{
	KindNetwork:    ErrNetwork,
	KindTimeout:    ErrTimeout,
	KindDecode:     ErrDecode,
	KindEmpty:      ErrEmptyResult,
	KindStatus:     ErrHTTPStatus,
	KindRefused:    ErrRefused,
	KindCredential: ErrCredential,
}

// Error is returned by every failed Complete call.
type Error struct {
	Kind ErrorKind
	// StatusCode is set for KindStatus.
	StatusCode int
	// Message carries the API error message or the refusal text, if any.
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := "openai " + string(e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" %d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// KindOf reports the failure kind of err, or "" if err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
