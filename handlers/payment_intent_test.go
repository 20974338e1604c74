package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"nlas.ph/portal/middleware"
	"nlas.ph/portal/models"
)

// fakeIntentStore serves canned entities and records persisted refs
type fakeIntentStore struct {
	donations  map[string]*models.Donation
	quotations map[string]*models.Quotation
	payments   map[string]*models.Payment // keyed by "id|userID"

	savedDonationAmount  float64
	savedDonationIntent  string
	savedDonationSession string
	savedQuotationIntent string
	savedPaymentIntent   string
}

func (s *fakeIntentStore) DonationByID(id string) (*models.Donation, error) {
	if d, ok := s.donations[id]; ok {
		return d, nil
	}
	return nil, errors.New("record not found")
}

func (s *fakeIntentStore) QuotationByID(id string) (*models.Quotation, error) {
	if q, ok := s.quotations[id]; ok {
		return q, nil
	}
	return nil, errors.New("record not found")
}

func (s *fakeIntentStore) PaymentForUser(id, userID string) (*models.Payment, error) {
	if p, ok := s.payments[id+"|"+userID]; ok {
		return p, nil
	}
	return nil, errors.New("record not found")
}

func (s *fakeIntentStore) SetDonationAmount(d *models.Donation, amount float64) error {
	s.savedDonationAmount = amount
	return nil
}

func (s *fakeIntentStore) SetDonationRefs(d *models.Donation, intentID, sessionID string) error {
	s.savedDonationIntent = intentID
	s.savedDonationSession = sessionID
	return nil
}

func (s *fakeIntentStore) SetQuotationIntent(q *models.Quotation, intentID string) error {
	s.savedQuotationIntent = intentID
	return nil
}

func (s *fakeIntentStore) SetPaymentIntent(p *models.Payment, intentID string) error {
	s.savedPaymentIntent = intentID
	return nil
}

// fakeGateway records the charge it was asked to create
type fakeGateway struct {
	lastAmount   int64
	lastCurrency string
	lastMetadata map[string]string
	lastEmail    string
	lastOrigin   string
	intentCalls  int
	sessionCalls int
	fail         error
}

func (g *fakeGateway) CreatePaymentIntent(amountCents int64, currency string, metadata map[string]string) (string, string, error) {
	g.intentCalls++
	g.lastAmount = amountCents
	g.lastCurrency = currency
	g.lastMetadata = metadata
	if g.fail != nil {
		return "", "", g.fail
	}
	return "pi_test_123", "pi_test_123_secret", nil
}

func (g *fakeGateway) CreateCheckoutSession(p CheckoutParams) (string, string, error) {
	g.sessionCalls++
	g.lastAmount = p.AmountCents
	g.lastCurrency = p.Currency
	g.lastMetadata = p.Metadata
	g.lastEmail = p.CustomerEmail
	g.lastOrigin = p.Origin
	if g.fail != nil {
		return "", "", g.fail
	}
	return "cs_test_123", "https://checkout.example/cs_test_123", nil
}

func newIntentRequest(t *testing.T, body interface{}, claims *middleware.Claims) *http.Request {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	r := httptest.NewRequest(http.MethodPost, "/payment-intent", bytes.NewReader(buf))
	if claims != nil {
		r = middleware.WithClaims(r, claims)
	}
	return r
}

func TestCreateIntent_DonationResolvesFirst(t *testing.T) {
	donationID := uuid.New()
	store := &fakeIntentStore{
		donations: map[string]*models.Donation{
			donationID.String(): {ID: donationID, Amount: 25.00, Status: models.DonationStatusPending},
		},
	}
	gw := &fakeGateway{}
	h := &PaymentIntentHandler{Store: store, Gateway: gw}

	// donation_id wins even when other IDs are present
	req := newIntentRequest(t, map[string]interface{}{
		"donation_id":  donationID.String(),
		"quotation_id": uuid.New().String(),
		"payment_id":   uuid.New().String(),
	}, nil)
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if gw.lastAmount != 2500 {
		t.Errorf("charged %d cents, expected 2500", gw.lastAmount)
	}
	if gw.lastMetadata["type"] != "donation" {
		t.Errorf("metadata type = %q, expected donation", gw.lastMetadata["type"])
	}
	if store.savedDonationIntent != "pi_test_123" {
		t.Errorf("intent ref not persisted: %q", store.savedDonationIntent)
	}

	var resp paymentIntentResp
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.ClientSecret != "pi_test_123_secret" {
		t.Errorf("client secret = %q", resp.ClientSecret)
	}
}

func TestCreateIntent_DonationCheckoutSession(t *testing.T) {
	donationID := uuid.New()
	store := &fakeIntentStore{
		donations: map[string]*models.Donation{
			donationID.String(): {ID: donationID, Amount: 10.00, DonorEmail: "donor@example.com", Status: models.DonationStatusPending},
		},
	}
	gw := &fakeGateway{}
	h := &PaymentIntentHandler{Store: store, Gateway: gw}

	req := newIntentRequest(t, map[string]interface{}{
		"donation_id":  donationID.String(),
		"use_checkout": true,
	}, nil)
	req.Header.Set("Origin", "https://portal.example")
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if gw.sessionCalls != 1 || gw.intentCalls != 0 {
		t.Errorf("expected one checkout session, got sessions=%d intents=%d", gw.sessionCalls, gw.intentCalls)
	}
	if store.savedDonationSession != "cs_test_123" {
		t.Errorf("session ref not persisted: %q", store.savedDonationSession)
	}
	if gw.lastEmail != "donor@example.com" {
		t.Errorf("checkout email = %q, expected donor@example.com", gw.lastEmail)
	}
	if gw.lastOrigin != "https://portal.example" {
		t.Errorf("checkout origin = %q", gw.lastOrigin)
	}
}

func TestCreateIntent_DonationAmountOverride(t *testing.T) {
	donationID := uuid.New()
	store := &fakeIntentStore{
		donations: map[string]*models.Donation{
			donationID.String(): {ID: donationID, Amount: 10.00, Status: models.DonationStatusPending},
		},
	}
	gw := &fakeGateway{}
	h := &PaymentIntentHandler{Store: store, Gateway: gw}

	req := newIntentRequest(t, map[string]interface{}{
		"donation_id": donationID.String(),
		"amount":      42.50,
	}, nil)
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if gw.lastAmount != 4250 {
		t.Errorf("charged %d cents, expected 4250", gw.lastAmount)
	}
	if store.savedDonationAmount != 42.50 {
		t.Errorf("override not persisted: %v", store.savedDonationAmount)
	}
}

func TestCreateIntent_NegativeAmountRejected(t *testing.T) {
	donationID := uuid.New()
	store := &fakeIntentStore{
		donations: map[string]*models.Donation{
			donationID.String(): {ID: donationID, Amount: 10.00, Status: models.DonationStatusPending},
		},
	}
	gw := &fakeGateway{}
	h := &PaymentIntentHandler{Store: store, Gateway: gw}

	req := newIntentRequest(t, map[string]interface{}{
		"donation_id": donationID.String(),
		"amount":      -5.00,
	}, nil)
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400", w.Code)
	}
	if gw.intentCalls != 0 || gw.sessionCalls != 0 {
		t.Error("gateway must not be called for negative amounts")
	}
	var body map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["type"] != "VALIDATION_ERROR" {
		t.Errorf("error type = %v, expected VALIDATION_ERROR", body["type"])
	}
}

func TestCreateIntent_DonationBelowMinimum(t *testing.T) {
	donationID := uuid.New()
	store := &fakeIntentStore{
		donations: map[string]*models.Donation{
			donationID.String(): {ID: donationID, Amount: 0.25, Status: models.DonationStatusPending},
		},
	}
	gw := &fakeGateway{}
	h := &PaymentIntentHandler{Store: store, Gateway: gw}

	req := newIntentRequest(t, map[string]string{"donation_id": donationID.String()}, nil)
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400", w.Code)
	}
	if gw.intentCalls != 0 || gw.sessionCalls != 0 {
		t.Error("gateway must not be called for sub-minimum amounts")
	}

	var body map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["type"] != "VALIDATION_ERROR" {
		t.Errorf("error type = %v, expected VALIDATION_ERROR", body["type"])
	}
}

func TestCheckoutRedirectBase(t *testing.T) {
	t.Setenv("FRONTEND_URL", "")
	if got := checkoutRedirectBase("https://portal.example"); got != "https://portal.example" {
		t.Errorf("fallback base = %q, expected the request origin", got)
	}

	t.Setenv("FRONTEND_URL", "https://app.nlas.ph")
	if got := checkoutRedirectBase("https://portal.example"); got != "https://app.nlas.ph" {
		t.Errorf("configured base = %q, expected FRONTEND_URL", got)
	}
}

func TestCreateIntent_QuotationRequiresAuth(t *testing.T) {
	quotationID := uuid.New()
	store := &fakeIntentStore{
		quotations: map[string]*models.Quotation{
			quotationID.String(): {ID: quotationID, Amount: 500.00},
		},
	}
	gw := &fakeGateway{}
	h := &PaymentIntentHandler{Store: store, Gateway: gw}

	req := newIntentRequest(t, map[string]string{"quotation_id": quotationID.String()}, nil)
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, expected 401", w.Code)
	}
	if gw.intentCalls != 0 {
		t.Error("gateway must not be called for unauthenticated quotation payments")
	}
}

func TestCreateIntent_QuotationAuthenticated(t *testing.T) {
	quotationID := uuid.New()
	userID := uuid.New()
	store := &fakeIntentStore{
		quotations: map[string]*models.Quotation{
			quotationID.String(): {ID: quotationID, Amount: 500.00},
		},
	}
	gw := &fakeGateway{}
	h := &PaymentIntentHandler{Store: store, Gateway: gw}

	claims := &middleware.Claims{UserID: userID.String(), Role: "client"}
	req := newIntentRequest(t, map[string]string{"quotation_id": quotationID.String()}, claims)
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if gw.lastAmount != 50000 {
		t.Errorf("charged %d cents, expected 50000", gw.lastAmount)
	}
	if gw.lastMetadata["quotation_id"] != quotationID.String() {
		t.Errorf("metadata quotation_id = %q", gw.lastMetadata["quotation_id"])
	}
	if store.savedQuotationIntent != "pi_test_123" {
		t.Errorf("intent ref not persisted: %q", store.savedQuotationIntent)
	}
}

func TestCreateIntent_PaymentOwnershipEnforced(t *testing.T) {
	paymentID := uuid.New()
	owner := uuid.New()
	intruder := uuid.New()
	store := &fakeIntentStore{
		payments: map[string]*models.Payment{
			paymentID.String() + "|" + owner.String(): {
				ID: paymentID, UserID: owner, Amount: 100.00,
				PaymentType: models.PaymentTypeStep1, Status: models.PaymentStatusPending,
			},
		},
	}
	gw := &fakeGateway{}
	h := &PaymentIntentHandler{Store: store, Gateway: gw}

	// Someone else's payment looks like it doesn't exist
	claims := &middleware.Claims{UserID: intruder.String(), Role: "client"}
	req := newIntentRequest(t, map[string]string{"payment_id": paymentID.String()}, claims)
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, expected 404", w.Code)
	}
	if gw.intentCalls != 0 {
		t.Error("gateway must not be called for unowned payments")
	}

	// The owner succeeds
	claims = &middleware.Claims{UserID: owner.String(), Role: "client"}
	req = newIntentRequest(t, map[string]string{"payment_id": paymentID.String()}, claims)
	w = httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("owner status = %d, body = %s", w.Code, w.Body.String())
	}
	if store.savedPaymentIntent != "pi_test_123" {
		t.Errorf("intent ref not persisted: %q", store.savedPaymentIntent)
	}
}

func TestCreateIntent_SettledPaymentRejected(t *testing.T) {
	paymentID := uuid.New()
	owner := uuid.New()
	store := &fakeIntentStore{
		payments: map[string]*models.Payment{
			paymentID.String() + "|" + owner.String(): {
				ID: paymentID, UserID: owner, Amount: 100.00,
				PaymentType: models.PaymentTypeStep1, Status: models.PaymentStatusPaid,
			},
		},
	}
	gw := &fakeGateway{}
	h := &PaymentIntentHandler{Store: store, Gateway: gw}

	claims := &middleware.Claims{UserID: owner.String(), Role: "client"}
	req := newIntentRequest(t, map[string]string{"payment_id": paymentID.String()}, claims)
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400", w.Code)
	}
}

func TestCreateIntent_NoEntityID(t *testing.T) {
	h := &PaymentIntentHandler{Store: &fakeIntentStore{}, Gateway: &fakeGateway{}}

	req := newIntentRequest(t, map[string]string{}, nil)
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400", w.Code)
	}

	var body map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["type"] != "VALIDATION_ERROR" {
		t.Errorf("error type = %v, expected VALIDATION_ERROR", body["type"])
	}
}

func TestCreateIntent_GatewayFailureTagged(t *testing.T) {
	donationID := uuid.New()
	store := &fakeIntentStore{
		donations: map[string]*models.Donation{
			donationID.String(): {ID: donationID, Amount: 50.00, Status: models.DonationStatusPending},
		},
	}
	gw := &fakeGateway{fail: errors.New("card processor unavailable")}
	h := &PaymentIntentHandler{Store: store, Gateway: gw}

	req := newIntentRequest(t, map[string]string{"donation_id": donationID.String()}, nil)
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400", w.Code)
	}
	var body map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["type"] != "PAYMENT_ERROR" {
		t.Errorf("error type = %v, expected PAYMENT_ERROR", body["type"])
	}
}
