package email

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Error codes carried by *Error.
const (
	CodeInvalidEmail  = "INVALID_EMAIL"
	CodeSimulateError = "SIMULATE_ERROR"
	CodeIOFailure     = "IO_FAILURE"
)

// Error is a tagged send failure. Err holds the underlying cause for
// IO_FAILURE errors and is nil otherwise.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// SimulatedError builds the error a bare simulate string is coerced to.
func SimulatedError(message string) *Error {
	return &Error{Code: CodeSimulateError, Message: message}
}

// InvalidEmail reports a malformed from or to address.
func InvalidEmail(addr string) *Error {
	return &Error{Code: CodeInvalidEmail, Message: "invalid email address: " + addr}
}

// IOFailure wraps a storage error.
func IOFailure(message string, err error) *Error {
	return &Error{Code: CodeIOFailure, Message: message, Err: err}
}

// HasCode reports whether err is, or wraps, an *Error with the given code.
func HasCode(err error, code string) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}

// UnmarshalJSON accepts a bare string, coerced to SIMULATE_ERROR, or a
// {"message","code"} object passed through unchanged.
func (e *Error) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*e = *SimulatedError(s)
		return nil
	}

	var p struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	e.Code = p.Code
	e.Message = p.Message
	return nil
}
