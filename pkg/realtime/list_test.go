package realtime

import (
	"reflect"
	"testing"
)

func paymentsList() []Row {
	return []Row{
		{"id": "p3", "status": "pending", "amount": 150.0, "usd_to_php_rate": 56.25},
		{"id": "p2", "status": "paid", "amount": 200.0},
		{"id": "p1", "status": "pending_approval", "amount": 100.0},
	}
}

func TestApplyChangeEvent_Insert(t *testing.T) {
	list := paymentsList()
	ev := Event{Table: "payments", Type: EventInsert, New: Row{"id": "p4", "status": "pending"}}

	out, err := ApplyChangeEvent(list, ev, "id", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(out))
	}
	if out[0]["id"] != "p4" {
		t.Errorf("inserted row should be prepended, got %v first", out[0]["id"])
	}
	if len(list) != 3 {
		t.Errorf("input list mutated: %d rows", len(list))
	}
}

func TestApplyChangeEvent_UpdateIdempotence(t *testing.T) {
	ev := Event{
		Table: "payments",
		Type:  EventUpdate,
		New:   Row{"id": "p2", "status": "failed", "admin_note": "card declined"},
		Old:   Row{"id": "p2", "status": "paid"},
	}

	once, err := ApplyChangeEvent(paymentsList(), ev, "id", nil)
	if err != nil {
		t.Fatalf("first apply: %v", err)
	}
	twice, err := ApplyChangeEvent(once, ev, "id", nil)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("applying the same UPDATE twice changed the result:\nonce:  %v\ntwice: %v", once, twice)
	}
}

func TestApplyChangeEvent_InsertThenDeleteCancelsOut(t *testing.T) {
	before := paymentsList()

	ins := Event{Table: "payments", Type: EventInsert, New: Row{"id": "px", "status": "pending"}}
	del := Event{Table: "payments", Type: EventDelete, Old: Row{"id": "px", "status": "pending"}}

	mid, err := ApplyChangeEvent(before, ins, "id", nil)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	after, err := ApplyChangeEvent(mid, del, "id", nil)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}

	if !reflect.DeepEqual(before, after) {
		t.Errorf("insert+delete did not cancel out:\nbefore: %v\nafter:  %v", before, after)
	}
}

func TestApplyChangeEvent_PreservesOmittedFields(t *testing.T) {
	preserve := []string{"usd_to_php_rate"}

	tests := []struct {
		name string
		new  Row
		want interface{}
	}{
		{
			name: "field absent from payload",
			new:  Row{"id": "p3", "status": "paid"},
			want: 56.25,
		},
		{
			name: "field explicitly null",
			new:  Row{"id": "p3", "status": "paid", "usd_to_php_rate": nil},
			want: 56.25,
		},
		{
			name: "field present overwrites",
			new:  Row{"id": "p3", "status": "paid", "usd_to_php_rate": 57.10},
			want: 57.10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Event{Table: "payments", Type: EventUpdate, New: tt.new}
			out, err := ApplyChangeEvent(paymentsList(), ev, "id", preserve)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var merged Row
			for _, row := range out {
				if row["id"] == "p3" {
					merged = row
				}
			}
			if merged == nil {
				t.Fatal("row p3 disappeared")
			}
			if merged["usd_to_php_rate"] != tt.want {
				t.Errorf("usd_to_php_rate = %v, expected %v", merged["usd_to_php_rate"], tt.want)
			}
			if merged["status"] != "paid" {
				t.Errorf("status not merged: %v", merged["status"])
			}
		})
	}
}

func TestApplyChangeEvent_UpdateUnknownRowAppends(t *testing.T) {
	ev := Event{Table: "payments", Type: EventUpdate, New: Row{"id": "p9", "status": "pending"}}

	out, err := ApplyChangeEvent(paymentsList(), ev, "id", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("expected out-of-band insert to append, got %d rows", len(out))
	}
	if out[3]["id"] != "p9" {
		t.Errorf("appended row should be last, got %v", out[3]["id"])
	}
}

func TestApplyChangeEvent_MalformedEvents(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
	}{
		{"insert without new", Event{Type: EventInsert}},
		{"update without new", Event{Type: EventUpdate, Old: Row{"id": "p1"}}},
		{"update without id", Event{Type: EventUpdate, New: Row{"status": "paid"}}},
		{"delete without id", Event{Type: EventDelete, Old: Row{"status": "paid"}}},
		{"unknown type", Event{Type: EventType("TRUNCATE"), New: Row{"id": "p1"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ApplyChangeEvent(paymentsList(), tt.ev, "id", nil); err == nil {
				t.Error("expected an error so the caller refetches, got nil")
			}
		})
	}
}

func BenchmarkApplyChangeEvent_Update(b *testing.B) {
	list := paymentsList()
	ev := Event{Type: EventUpdate, New: Row{"id": "p2", "status": "failed"}}
	for i := 0; i < b.N; i++ {
		ApplyChangeEvent(list, ev, "id", nil)
	}
}
