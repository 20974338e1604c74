package handlers

import (
	"testing"

	"nlas.ph/portal/models"
)

func boolPtr(v bool) *bool { return &v }

func TestQuotationAmount(t *testing.T) {
	tests := []struct {
		name     string
		items    models.LineItems
		fallback float64
		want     float64
	}{
		{
			name:     "no line items uses provided amount",
			items:    nil,
			fallback: 250.00,
			want:     250.00,
		},
		{
			name: "taxable by default",
			items: models.LineItems{
				{Description: "Processing fee", Amount: 100.00},
			},
			want: 112.00,
		},
		{
			name: "non-taxable item carries no tax",
			items: models.LineItems{
				{Description: "Board fee", Amount: 200.00, Taxable: boolPtr(false)},
			},
			want: 200.00,
		},
		{
			name: "mixed items",
			items: models.LineItems{
				{Description: "Processing fee", Amount: 500.00},
				{Description: "Board fee", Amount: 200.00, Taxable: boolPtr(false)},
				{Description: "Courier", Amount: 50.00},
			},
			want: 816.00,
		},
		{
			name: "line items override the fallback",
			items: models.LineItems{
				{Description: "Fee", Amount: 100.00, Taxable: boolPtr(false)},
			},
			fallback: 999.00,
			want:     100.00,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := quotationAmount(tt.items, tt.fallback); got != tt.want {
				t.Errorf("quotationAmount() = %v, expected %v", got, tt.want)
			}
		})
	}
}
