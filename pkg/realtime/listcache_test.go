package realtime

import (
	"errors"
	"testing"
)

func newTestCache(rows []Row) (*ListCache, *int) {
	refetches := 0
	cache := NewListCache("id", []string{"usd_to_php_rate"}, func() ([]Row, error) {
		refetches++
		out := make([]Row, len(rows))
		copy(out, rows)
		return out, nil
	})
	return cache, &refetches
}

func TestListCache_LoadsOnFirstRead(t *testing.T) {
	cache, refetches := newTestCache(paymentsList())

	rows, err := cache.Rows()
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if *refetches != 1 {
		t.Errorf("expected exactly one refetch, got %d", *refetches)
	}

	// Second read serves from cache.
	if _, err := cache.Rows(); err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if *refetches != 1 {
		t.Errorf("second read should not refetch, got %d refetches", *refetches)
	}
}

func TestListCache_ApplyMerges(t *testing.T) {
	cache, refetches := newTestCache(paymentsList())
	if _, err := cache.Rows(); err != nil {
		t.Fatal(err)
	}

	cache.Apply(Event{Table: "payments", Type: EventUpdate, New: Row{"id": "p1", "status": "paid"}})

	rows, _ := cache.Rows()
	for _, row := range rows {
		if row["id"] == "p1" && row["status"] != "paid" {
			t.Errorf("update not applied: %v", row["status"])
		}
	}
	if *refetches != 1 {
		t.Errorf("clean merge should not refetch, got %d", *refetches)
	}
}

func TestListCache_MalformedEventTriggersRefetch(t *testing.T) {
	cache, refetches := newTestCache(paymentsList())
	if _, err := cache.Rows(); err != nil {
		t.Fatal(err)
	}

	// Update without an id cannot be merged safely.
	cache.Apply(Event{Table: "payments", Type: EventUpdate, New: Row{"status": "paid"}})

	if *refetches != 2 {
		t.Errorf("expected fallback refetch, got %d refetches", *refetches)
	}
}

func TestListCache_DeleteClearsSelection(t *testing.T) {
	cache, _ := newTestCache(paymentsList())
	if _, err := cache.Rows(); err != nil {
		t.Fatal(err)
	}

	cache.Select("p2")
	if !cache.Selected("p2") {
		t.Fatal("p2 should be selected")
	}

	cache.Apply(Event{Table: "payments", Type: EventDelete, Old: Row{"id": "p2"}})

	if cache.Selected("p2") {
		t.Error("deleting a row must remove it from the selection set")
	}
	rows, _ := cache.Rows()
	for _, row := range rows {
		if row["id"] == "p2" {
			t.Error("deleted row still present")
		}
	}
}

func TestListCache_RefetchFailureKeepsRetrying(t *testing.T) {
	calls := 0
	cache := NewListCache("id", nil, func() ([]Row, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("connection refused")
		}
		return paymentsList(), nil
	})

	if _, err := cache.Rows(); err == nil {
		t.Fatal("expected first load to fail")
	}
	rows, err := cache.Rows()
	if err != nil {
		t.Fatalf("second load should succeed: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("expected 3 rows after retry, got %d", len(rows))
	}
}

func TestHub_PublishSubscribe(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("payments")
	defer cancel()

	hub.Publish(Event{Table: "payments", Type: EventInsert, New: Row{"id": "p1"}})
	hub.Publish(Event{Table: "quotations", Type: EventInsert, New: Row{"id": "q1"}})

	ev := <-ch
	if ev.Table != "payments" || ev.Type != EventInsert {
		t.Errorf("unexpected event %+v", ev)
	}
	select {
	case ev := <-ch:
		t.Errorf("received event for a table we did not subscribe to: %+v", ev)
	default:
	}
}

func TestHub_CancelClosesChannel(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("payments")
	cancel()

	if _, open := <-ch; open {
		t.Error("channel should be closed after cancel")
	}
	if hub.SubscriberCount("payments") != 0 {
		t.Error("subscriber not removed")
	}
	// Publishing after cancel must not panic.
	hub.Publish(Event{Table: "payments", Type: EventInsert, New: Row{"id": "p1"}})
}
