package handlers

import (
	"testing"
	"time"

	"nlas.ph/portal/models"
)

func TestSettleUpdates(t *testing.T) {
	now := time.Now()

	t.Run("admin note travels with the status change", func(t *testing.T) {
		updates := settleUpdates(now, "", "verified against bank statement")

		if updates["status"] != models.PaymentStatusPaid {
			t.Errorf("status = %v, expected paid", updates["status"])
		}
		if updates["admin_note"] != "verified against bank statement" {
			t.Errorf("admin_note = %v", updates["admin_note"])
		}
	})

	t.Run("empty optionals are not written", func(t *testing.T) {
		updates := settleUpdates(now, "", "")

		if _, ok := updates["admin_note"]; ok {
			t.Error("empty admin_note must not be written")
		}
		if _, ok := updates["transaction_id"]; ok {
			t.Error("empty transaction_id must not be written")
		}
	})

	t.Run("transaction id recorded when present", func(t *testing.T) {
		updates := settleUpdates(now, "pi_abc", "")

		if updates["transaction_id"] != "pi_abc" {
			t.Errorf("transaction_id = %v", updates["transaction_id"])
		}
	})
}
