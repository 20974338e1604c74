package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindHTTPStatus(t *testing.T) {
	tests := []struct {
		kind   Kind
		status int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindPayment, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindAuth, http.StatusUnauthorized},
		{KindTimeout, http.StatusGatewayTimeout},
		{KindConfig, http.StatusInternalServerError},
		{KindServer, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := tt.kind.HTTPStatus(); got != tt.status {
				t.Errorf("%s.HTTPStatus() = %d, expected %d", tt.kind, got, tt.status)
			}
		})
	}
}

func TestKindOf_TaggedErrors(t *testing.T) {
	// Tagged errors keep their kind regardless of message content.
	err := Validation("a message that mentions timeout and stripe")
	if got := KindOf(err); got != KindValidation {
		t.Errorf("KindOf(tagged validation) = %s, expected %s", got, KindValidation)
	}

	// Wrapped tagged errors are still recognized.
	wrapped := fmt.Errorf("handler: %w", NotFound("payment not found"))
	if got := KindOf(wrapped); got != KindNotFound {
		t.Errorf("KindOf(wrapped tagged) = %s, expected %s", got, KindNotFound)
	}
}

func TestKindOf_UntaggedFallback(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want Kind
	}{
		{"gorm record not found", "record not found", KindNotFound},
		{"network timeout", "context deadline exceeded", KindTimeout},
		{"timeout beats payment marker", "payment lookup timeout", KindTimeout},
		{"stripe decline", "stripe: your card was declined", KindPayment},
		{"missing secret", "STRIPE_SECRET_KEY environment variable is not set", KindConfig},
		{"bad input", "amount is required", KindValidation},
		{"unknown", "something odd happened", KindServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(errors.New(tt.msg)); got != tt.want {
				t.Errorf("KindOf(%q) = %s, expected %s", tt.msg, got, tt.want)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := Wrap(KindServer, "wrapper", cause)
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
	if err.Error() != "wrapper: underlying" {
		t.Errorf("Error() = %q", err.Error())
	}
}
