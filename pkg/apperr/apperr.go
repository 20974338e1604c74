// Package apperr carries the error taxonomy shared by the API handlers.
// Errors are tagged with a Kind at the point they are raised, and the kind
// maps to an HTTP status and a stable machine-readable type string.
package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"runtime/debug"
)

// Kind is a stable error classification
type Kind string

const (
	KindValidation Kind = "VALIDATION_ERROR"
	KindNotFound   Kind = "NOT_FOUND"
	KindAuth       Kind = "AUTH_ERROR"
	KindPayment    Kind = "PAYMENT_ERROR"
	KindConfig     Kind = "CONFIG_ERROR"
	KindTimeout    Kind = "TIMEOUT_ERROR"
	KindServer     Kind = "SERVER_ERROR"
)

// HTTPStatus maps a kind to its response status code
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindPayment:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuth:
		return http.StatusUnauthorized
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Error is a tagged application error
type Error struct {
	Kind    Kind
	Message string
	Details string
	Err     error // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a tagged error
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap tags an underlying error
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error { return New(KindValidation, message) }
func NotFound(message string) *Error   { return New(KindNotFound, message) }
func Auth(message string) *Error       { return New(KindAuth, message) }
func Payment(message string) *Error    { return New(KindPayment, message) }
func Config(message string) *Error     { return New(KindConfig, message) }
func Timeout(message string) *Error    { return New(KindTimeout, message) }
func Server(message string) *Error     { return New(KindServer, message) }

// KindOf returns the kind of err, classifying untagged errors by message
// content as a fallback
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return classifyMessage(err.Error())
}

// responseBody is the JSON error envelope: {error, type, details?}
type responseBody struct {
	Error   string `json:"error"`
	Type    Kind   `json:"type"`
	Details string `json:"details,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// WriteJSON writes the structured error body. Stack traces are only
// included when DEV_MODE=true.
func WriteJSON(w http.ResponseWriter, err error) {
	kind := KindOf(err)
	body := responseBody{
		Error: err.Error(),
		Type:  kind,
	}

	var ae *Error
	if errors.As(err, &ae) {
		body.Error = ae.Message
		body.Details = ae.Details
		if ae.Details == "" && ae.Err != nil {
			body.Details = ae.Err.Error()
		}
	}

	if os.Getenv("DEV_MODE") == "true" {
		body.Stack = string(debug.Stack())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(kind.HTTPStatus())
	json.NewEncoder(w).Encode(body)
}
