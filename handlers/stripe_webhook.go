package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
	"nlas.ph/portal/config"
	"nlas.ph/portal/models"
	"nlas.ph/portal/pkg/apperr"
	"nlas.ph/portal/pkg/realtime"
)

const webhookMaxBody = 65536

// StripeWebhook receives gateway events. Signature verification happens
// before anything is trusted; unrecognized event types are acknowledged and
// ignored so the gateway does not retry them forever.
func StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, webhookMaxBody))
	if err != nil {
		apperr.WriteJSON(w, apperr.Validation("could not read webhook body"))
		return
	}

	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if secret == "" {
		apperr.WriteJSON(w, apperr.Config("STRIPE_WEBHOOK_SECRET is not set"))
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), secret)
	if err != nil {
		apperr.WriteJSON(w, apperr.Auth("webhook signature verification failed"))
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			apperr.WriteJSON(w, apperr.Validation("malformed payment_intent payload"))
			return
		}
		ackEvent(w, handleIntentSucceeded(&pi))

	case "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			apperr.WriteJSON(w, apperr.Validation("malformed payment_intent payload"))
			return
		}
		ackEvent(w, handleIntentFailed(&pi))

	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			apperr.WriteJSON(w, apperr.Validation("malformed checkout session payload"))
			return
		}
		ackEvent(w, handleCheckoutCompleted(&sess))

	default:
		log.Printf("stripe webhook: ignoring event type %s", event.Type)
		ackEvent(w, nil)
	}
}

// ackEvent reports the handler outcome to the gateway. Persistence failures
// return 5xx so the gateway redelivers; the settle paths are idempotent, so
// redelivery of an already-applied event is a no-op.
func ackEvent(w http.ResponseWriter, err error) {
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// handleIntentSucceeded settles whichever entity the intent was opened for.
// The metadata type written at intent creation is authoritative.
func handleIntentSucceeded(pi *stripe.PaymentIntent) error {
	switch pi.Metadata["type"] {
	case "donation":
		var d models.Donation
		if err := config.DB.First(&d, "stripe_payment_intent_id = ?", pi.ID).Error; err != nil {
			log.Printf("⚠️ webhook: donation for intent %s not found", pi.ID)
			return nil
		}
		if d.Status == models.DonationStatusSucceeded {
			return nil // webhook retries are expected
		}
		if err := config.DB.Model(&d).Update("status", models.DonationStatusSucceeded).Error; err != nil {
			return apperr.Wrap(apperr.KindServer, "failed to settle donation", err)
		}
		d.Status = models.DonationStatusSucceeded
		publishChange("donations", realtime.EventUpdate, d, nil)

	case "quotation":
		var q models.Quotation
		if err := config.DB.First(&q, "stripe_payment_intent_id = ?", pi.ID).Error; err != nil {
			log.Printf("⚠️ webhook: quotation for intent %s not found", pi.ID)
			return nil
		}
		if q.State == models.QuotationStateAccepted {
			return nil
		}
		if err := config.DB.Model(&q).Update("state", models.QuotationStateAccepted).Error; err != nil {
			return apperr.Wrap(apperr.KindServer, "failed to settle quotation", err)
		}
		q.State = models.QuotationStateAccepted
		NewNotificationService().NotifyQuotationUpdated(&q)
		publishChange("quotations", realtime.EventUpdate, q, nil)

	case "payment":
		var p models.Payment
		if err := config.DB.First(&p, "stripe_payment_intent_id = ?", pi.ID).Error; err != nil {
			log.Printf("⚠️ webhook: payment for intent %s not found", pi.ID)
			return nil
		}
		if p.Status == models.PaymentStatusPaid {
			return nil
		}
		if err := config.DB.Model(&p).Update("payment_method", models.PaymentMethodCard).Error; err != nil {
			return apperr.Wrap(apperr.KindServer, "failed to record payment method", err)
		}
		p.PaymentMethod = models.PaymentMethodCard
		if err := markPaid(&p, pi.ID, ""); err != nil {
			log.Printf("❌ webhook: failed to settle payment %s: %v", p.ID, err)
			return apperr.Wrap(apperr.KindServer, "failed to settle payment", err)
		}
		NewNotificationService().NotifyPaymentStatus(&p)
		publishChange("payments", realtime.EventUpdate, p, nil)

	default:
		log.Printf("stripe webhook: intent %s has no recognized metadata type", pi.ID)
	}
	return nil
}

func handleIntentFailed(pi *stripe.PaymentIntent) error {
	switch pi.Metadata["type"] {
	case "donation":
		err := config.DB.Model(&models.Donation{}).
			Where("stripe_payment_intent_id = ? AND status = ?", pi.ID, models.DonationStatusPending).
			Update("status", models.DonationStatusFailed).Error
		if err != nil {
			return apperr.Wrap(apperr.KindServer, "failed to mark donation failed", err)
		}

	case "payment":
		var p models.Payment
		if err := config.DB.First(&p, "stripe_payment_intent_id = ?", pi.ID).Error; err != nil {
			return nil
		}
		if p.IsTerminal() {
			return nil
		}
		if err := config.DB.Model(&p).Update("status", models.PaymentStatusFailed).Error; err != nil {
			return apperr.Wrap(apperr.KindServer, "failed to mark payment failed", err)
		}
		p.Status = models.PaymentStatusFailed
		NewNotificationService().NotifyPaymentStatus(&p)
		publishChange("payments", realtime.EventUpdate, p, nil)
	}
	return nil
}

func handleCheckoutCompleted(sess *stripe.CheckoutSession) error {
	var d models.Donation
	if err := config.DB.First(&d, "stripe_checkout_session_id = ?", sess.ID).Error; err != nil {
		log.Printf("⚠️ webhook: donation for session %s not found", sess.ID)
		return nil
	}
	if d.Status == models.DonationStatusSucceeded {
		return nil
	}
	if err := config.DB.Model(&d).Update("status", models.DonationStatusSucceeded).Error; err != nil {
		return apperr.Wrap(apperr.KindServer, "failed to settle donation", err)
	}
	d.Status = models.DonationStatusSucceeded
	publishChange("donations", realtime.EventUpdate, d, nil)
	return nil
}
