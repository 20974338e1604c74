package handlers

import (
	"fmt"
	"net/http"
	"os"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"nlas.ph/portal/config"
	"nlas.ph/portal/middleware"
	"nlas.ph/portal/models"
	"nlas.ph/portal/pkg/apperr"
	"nlas.ph/portal/utils"
)

// IntentStore is the persistence surface the intent router needs. Ownership
// checks live in the query predicates, not in handler code.
type IntentStore interface {
	DonationByID(id string) (*models.Donation, error)
	QuotationByID(id string) (*models.Quotation, error)
	PaymentForUser(id, userID string) (*models.Payment, error)
	SetDonationAmount(d *models.Donation, amount float64) error
	SetDonationRefs(d *models.Donation, intentID, sessionID string) error
	SetQuotationIntent(q *models.Quotation, intentID string) error
	SetPaymentIntent(p *models.Payment, intentID string) error
}

// CheckoutParams describes a hosted checkout page request
type CheckoutParams struct {
	AmountCents   int64
	Currency      string
	Description   string
	CustomerEmail string
	Origin        string
	Metadata      map[string]string
}

// IntentGateway abstracts the card processor
type IntentGateway interface {
	CreatePaymentIntent(amountCents int64, currency string, metadata map[string]string) (id, clientSecret string, err error)
	CreateCheckoutSession(p CheckoutParams) (id, url string, err error)
}

// PaymentIntentHandler routes a single create-intent endpoint across the
// three payable entities: donations, quotations and payments
type PaymentIntentHandler struct {
	Store   IntentStore
	Gateway IntentGateway
}

// NewPaymentIntentHandler wires the production store and Stripe gateway
func NewPaymentIntentHandler() *PaymentIntentHandler {
	return &PaymentIntentHandler{
		Store:   &gormIntentStore{},
		Gateway: &stripeGateway{},
	}
}

type paymentIntentReq struct {
	DonationID  string  `json:"donation_id"`
	QuotationID string  `json:"quotation_id"`
	PaymentID   string  `json:"payment_id"`
	Amount      float64 `json:"amount"`
	UseCheckout bool    `json:"use_checkout"`
	Currency    string  `json:"currency"`
}

type paymentIntentResp struct {
	PaymentIntentID string `json:"payment_intent_id,omitempty"`
	ClientSecret    string `json:"client_secret,omitempty"`
	SessionID       string `json:"session_id,omitempty"`
	CheckoutURL     string `json:"checkout_url,omitempty"`
}

// Create resolves which entity is being paid and opens a gateway intent for
// it. Resolution order: donation, then quotation, then payment. Donations
// are open to guests; quotations and payments require authentication, and
// payments additionally require ownership.
func (h *PaymentIntentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req paymentIntentReq
	if err := decodeJSON(r, &req); err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	switch {
	case req.DonationID != "":
		h.createForDonation(w, r, &req, currency)
	case req.QuotationID != "":
		h.createForQuotation(w, r, &req, currency)
	case req.PaymentID != "":
		h.createForPayment(w, r, &req, currency)
	default:
		apperr.WriteJSON(w, apperr.Validation("one of donation_id, quotation_id or payment_id is required"))
	}
}

func (h *PaymentIntentHandler) createForDonation(w http.ResponseWriter, r *http.Request, req *paymentIntentReq, currency string) {
	donation, err := h.Store.DonationByID(req.DonationID)
	if err != nil {
		apperr.WriteJSON(w, apperr.NotFound("donation not found"))
		return
	}
	if donation.Status == models.DonationStatusSucceeded {
		apperr.WriteJSON(w, apperr.Validation("donation is already paid"))
		return
	}

	// Donors may adjust the amount at checkout time
	amount := donation.Amount
	if req.Amount != 0 {
		if req.Amount < 0 {
			apperr.WriteJSON(w, apperr.Validation("amount must be positive"))
			return
		}
		amount = req.Amount
	}

	cents := utils.ToMinorUnits(amount)
	if cents < utils.MinimumChargeCents {
		apperr.WriteJSON(w, apperr.Validation(fmt.Sprintf("donation amount must be at least $%.2f", utils.FromMinorUnits(utils.MinimumChargeCents))))
		return
	}

	if amount != donation.Amount {
		if err := h.Store.SetDonationAmount(donation, amount); err != nil {
			apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
			return
		}
		donation.Amount = amount
	}

	metadata := map[string]string{
		"type":        "donation",
		"donation_id": donation.ID.String(),
	}

	if req.UseCheckout {
		sessionID, url, err := h.Gateway.CreateCheckoutSession(CheckoutParams{
			AmountCents:   cents,
			Currency:      currency,
			Description:   "Donation",
			CustomerEmail: donation.DonorEmail,
			Origin:        r.Header.Get("Origin"),
			Metadata:      metadata,
		})
		if err != nil {
			apperr.WriteJSON(w, apperr.Wrap(apperr.KindPayment, "failed to create checkout session", err))
			return
		}
		if err := h.Store.SetDonationRefs(donation, "", sessionID); err != nil {
			apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
			return
		}
		writeJSON(w, http.StatusOK, paymentIntentResp{SessionID: sessionID, CheckoutURL: url})
		return
	}

	intentID, clientSecret, err := h.Gateway.CreatePaymentIntent(cents, currency, metadata)
	if err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindPayment, "failed to create payment intent", err))
		return
	}
	if err := h.Store.SetDonationRefs(donation, intentID, ""); err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	writeJSON(w, http.StatusOK, paymentIntentResp{PaymentIntentID: intentID, ClientSecret: clientSecret})
}

func (h *PaymentIntentHandler) createForQuotation(w http.ResponseWriter, r *http.Request, req *paymentIntentReq, currency string) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		apperr.WriteJSON(w, apperr.Auth("authentication required to pay a quotation"))
		return
	}

	quotation, err := h.Store.QuotationByID(req.QuotationID)
	if err != nil {
		apperr.WriteJSON(w, apperr.NotFound("quotation not found"))
		return
	}
	if quotation.IsExpired(timeNow()) {
		apperr.WriteJSON(w, apperr.Validation("quotation has expired"))
		return
	}

	cents := utils.ToMinorUnits(quotation.Amount)
	if cents < utils.MinimumChargeCents {
		apperr.WriteJSON(w, apperr.Validation("quotation amount is below the card minimum"))
		return
	}

	metadata := map[string]string{
		"type":         "quotation",
		"quotation_id": quotation.ID.String(),
		"user_id":      claims.UserID,
	}
	intentID, clientSecret, err := h.Gateway.CreatePaymentIntent(cents, currency, metadata)
	if err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindPayment, "failed to create payment intent", err))
		return
	}
	if err := h.Store.SetQuotationIntent(quotation, intentID); err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	writeJSON(w, http.StatusOK, paymentIntentResp{PaymentIntentID: intentID, ClientSecret: clientSecret})
}

func (h *PaymentIntentHandler) createForPayment(w http.ResponseWriter, r *http.Request, req *paymentIntentReq, currency string) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		apperr.WriteJSON(w, apperr.Auth("authentication required to pay a payment"))
		return
	}

	payment, err := h.Store.PaymentForUser(req.PaymentID, claims.UserID)
	if err != nil {
		apperr.WriteJSON(w, apperr.NotFound("payment not found"))
		return
	}
	if payment.IsTerminal() {
		apperr.WriteJSON(w, apperr.Validation("payment is already settled"))
		return
	}

	cents := utils.ToMinorUnits(payment.Amount)
	if cents < utils.MinimumChargeCents {
		apperr.WriteJSON(w, apperr.Validation("payment amount is below the card minimum"))
		return
	}

	metadata := map[string]string{
		"type":       "payment",
		"payment_id": payment.ID.String(),
		"user_id":    claims.UserID,
	}
	intentID, clientSecret, err := h.Gateway.CreatePaymentIntent(cents, currency, metadata)
	if err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindPayment, "failed to create payment intent", err))
		return
	}
	if err := h.Store.SetPaymentIntent(payment, intentID); err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	writeJSON(w, http.StatusOK, paymentIntentResp{PaymentIntentID: intentID, ClientSecret: clientSecret})
}

// gormIntentStore is the production IntentStore backed by config.DB
type gormIntentStore struct{}

func (s *gormIntentStore) DonationByID(id string) (*models.Donation, error) {
	var d models.Donation
	if err := config.DB.First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *gormIntentStore) QuotationByID(id string) (*models.Quotation, error) {
	var q models.Quotation
	if err := config.DB.First(&q, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *gormIntentStore) PaymentForUser(id, userID string) (*models.Payment, error) {
	var p models.Payment
	if err := config.DB.Where("id = ? AND user_id = ?", id, userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *gormIntentStore) SetDonationAmount(d *models.Donation, amount float64) error {
	return config.DB.Model(d).Update("amount", amount).Error
}

func (s *gormIntentStore) SetDonationRefs(d *models.Donation, intentID, sessionID string) error {
	updates := map[string]interface{}{}
	if intentID != "" {
		updates["stripe_payment_intent_id"] = intentID
	}
	if sessionID != "" {
		updates["stripe_checkout_session_id"] = sessionID
	}
	return config.DB.Model(d).Updates(updates).Error
}

func (s *gormIntentStore) SetQuotationIntent(q *models.Quotation, intentID string) error {
	return config.DB.Model(q).Update("stripe_payment_intent_id", intentID).Error
}

func (s *gormIntentStore) SetPaymentIntent(p *models.Payment, intentID string) error {
	return config.DB.Model(p).Update("stripe_payment_intent_id", intentID).Error
}

// stripeGateway is the production IntentGateway
type stripeGateway struct{}

func (g *stripeGateway) init() error {
	key := os.Getenv("STRIPE_SECRET_KEY")
	if key == "" {
		return apperr.Config("STRIPE_SECRET_KEY is not set")
	}
	stripe.Key = key
	return nil
}

func (g *stripeGateway) CreatePaymentIntent(amountCents int64, currency string, metadata map[string]string) (string, string, error) {
	if err := g.init(); err != nil {
		return "", "", err
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", "", err
	}
	return pi.ID, pi.ClientSecret, nil
}

// checkoutRedirectBase prefers FRONTEND_URL and falls back to the request
// Origin so local setups work without extra config
func checkoutRedirectBase(origin string) string {
	if frontend := os.Getenv("FRONTEND_URL"); frontend != "" {
		return frontend
	}
	return origin
}

func (g *stripeGateway) CreateCheckoutSession(p CheckoutParams) (string, string, error) {
	if err := g.init(); err != nil {
		return "", "", err
	}

	base := checkoutRedirectBase(p.Origin)
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(p.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.Description),
					},
					UnitAmount: stripe.Int64(p.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(base + "/donate/thank-you?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(base + "/donate"),
	}
	if p.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(p.CustomerEmail)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := session.New(params)
	if err != nil {
		return "", "", err
	}
	return sess.ID, sess.URL, nil
}
