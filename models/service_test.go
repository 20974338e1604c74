package models

import "testing"

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestRecalculateTotals_FullPayment(t *testing.T) {
	svc := Service{
		ServiceName: "NCLEX Application - New York",
		PaymentType: QuotationPaymentFull,
		LineItems: LineItems{
			{Description: "Processing fee", Amount: 500.00},
			{Description: "Board fee", Amount: 200.00, Taxable: boolPtr(false)},
			{Description: "Courier", Amount: 50.00},
		},
	}

	svc.RecalculateTotals()

	// 550 taxable * 12% = 66; total = 750 + 66
	if svc.TotalFull != 816.00 {
		t.Errorf("TotalFull = %v, expected 816.00", svc.TotalFull)
	}
	if svc.TaxAmount == nil || *svc.TaxAmount != 66.00 {
		t.Errorf("TaxAmount = %v, expected 66.00", svc.TaxAmount)
	}
	if svc.TotalStep1 != nil || svc.TotalStep2 != nil {
		t.Error("full payment plans must not carry step totals")
	}
}

func TestRecalculateTotals_Staggered(t *testing.T) {
	svc := Service{
		ServiceName: "NCLEX Application - California",
		PaymentType: QuotationPaymentStaggered,
		LineItems: LineItems{
			{Description: "Initial processing", Amount: 300.00, Step: intPtr(1)},
			{Description: "Credential evaluation", Amount: 100.00, Step: intPtr(1), Taxable: boolPtr(false)},
			{Description: "Exam registration", Amount: 200.00, Step: intPtr(2)},
			{Description: "Handling", Amount: 25.00}, // no step: counts toward step 1
		},
	}

	svc.RecalculateTotals()

	// Step 1 taxable: 300 + 25 = 325 -> tax 39; step 1 total 425 + 39 = 464
	if svc.TotalStep1 == nil || *svc.TotalStep1 != 464.00 {
		t.Errorf("TotalStep1 = %v, expected 464.00", svc.TotalStep1)
	}
	if svc.TaxStep1 == nil || *svc.TaxStep1 != 39.00 {
		t.Errorf("TaxStep1 = %v, expected 39.00", svc.TaxStep1)
	}
	// Step 2: 200 -> tax 24; total 224
	if svc.TotalStep2 == nil || *svc.TotalStep2 != 224.00 {
		t.Errorf("TotalStep2 = %v, expected 224.00", svc.TotalStep2)
	}
	if svc.TaxStep2 == nil || *svc.TaxStep2 != 24.00 {
		t.Errorf("TaxStep2 = %v, expected 24.00", svc.TaxStep2)
	}
	// Grand total = both steps
	if svc.TotalFull != 688.00 {
		t.Errorf("TotalFull = %v, expected 688.00", svc.TotalFull)
	}
}

func TestRecalculateTotals_Idempotent(t *testing.T) {
	svc := Service{
		PaymentType: QuotationPaymentStaggered,
		LineItems: LineItems{
			{Description: "Fee", Amount: 100.00, Step: intPtr(1)},
		},
	}
	svc.RecalculateTotals()
	first := *svc.TotalStep1
	svc.RecalculateTotals()
	if *svc.TotalStep1 != first {
		t.Errorf("recalculating twice changed the total: %v -> %v", first, *svc.TotalStep1)
	}
}

func TestCanMarkPaid(t *testing.T) {
	tests := []struct {
		name        string
		paymentType PaymentType
		step1Status PaymentStatus
		want        bool
	}{
		{"full payment always allowed", PaymentTypeFull, "", true},
		{"step1 always allowed", PaymentTypeStep1, "", true},
		{"step2 blocked with no step1", PaymentTypeStep2, "", false},
		{"step2 blocked while step1 pending", PaymentTypeStep2, PaymentStatusPending, false},
		{"step2 blocked while step1 awaiting approval", PaymentTypeStep2, PaymentStatusPendingApproval, false},
		{"step2 blocked after step1 failed", PaymentTypeStep2, PaymentStatusFailed, false},
		{"step2 allowed once step1 paid", PaymentTypeStep2, PaymentStatusPaid, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanMarkPaid(tt.paymentType, tt.step1Status); got != tt.want {
				t.Errorf("CanMarkPaid(%s, %s) = %v, expected %v",
					tt.paymentType, tt.step1Status, got, tt.want)
			}
		})
	}
}
