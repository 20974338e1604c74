package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"nlas.ph/portal/pkg/apperr"
)

func TestStripeWebhook_BadSignature(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe",
		strings.NewReader(`{"type":"payment_intent.succeeded"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	w := httptest.NewRecorder()
	StripeWebhook(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, expected 401", w.Code)
	}
	var body map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["type"] != "AUTH_ERROR" {
		t.Errorf("error type = %v, expected AUTH_ERROR", body["type"])
	}
}

func TestAckEvent(t *testing.T) {
	t.Run("success acks 200", func(t *testing.T) {
		w := httptest.NewRecorder()
		ackEvent(w, nil)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, expected 200", w.Code)
		}
		var body map[string]bool
		json.Unmarshal(w.Body.Bytes(), &body)
		if !body["received"] {
			t.Error("expected received=true")
		}
	})

	// A persistence failure must not ack, or the gateway never redelivers
	// and the settlement is lost
	t.Run("persistence failure returns 5xx", func(t *testing.T) {
		w := httptest.NewRecorder()
		ackEvent(w, apperr.Wrap(apperr.KindServer, "failed to settle payment", errors.New("connection reset")))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, expected 500", w.Code)
		}
		var body map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &body)
		if body["type"] != "SERVER_ERROR" {
			t.Errorf("error type = %v, expected SERVER_ERROR", body["type"])
		}
	})
}
