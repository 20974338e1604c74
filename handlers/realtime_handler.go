package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"nlas.ph/portal/pkg/apperr"
	"nlas.ph/portal/pkg/realtime"
)

// hub is the process-wide change feed. Handlers publish after every
// mutation; admin dashboards subscribe per table over websocket.
var hub = realtime.NewHub()

// tables exposed on the change feed
var streamableTables = []string{"payments", "quotations", "donations", "user_documents", "messages"}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from the portal frontend; CORS is enforced
	// at the HTTP layer before the upgrade.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// publishChange emits a change event for one row. newRow/oldRow follow the
// event contract: INSERT and UPDATE carry the new row, DELETE carries the
// old one.
func publishChange(table string, evType realtime.EventType, newRow, oldRow interface{}) {
	ev := realtime.Event{Table: table, Type: evType}
	if newRow != nil {
		ev.New = toRow(newRow)
	}
	if oldRow != nil {
		ev.Old = toRow(oldRow)
	}
	hub.Publish(ev)
}

// toRow flattens a model into the map shape events carry on the wire
func toRow(v interface{}) realtime.Row {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var row realtime.Row
	if err := json.Unmarshal(data, &row); err != nil {
		return nil
	}
	return row
}

// StreamChanges upgrades to a websocket and forwards change events for the
// requested table until the client disconnects
func StreamChanges(w http.ResponseWriter, r *http.Request) {
	table := r.URL.Query().Get("table")
	if !slices.Contains(streamableTables, table) {
		apperr.WriteJSON(w, apperr.Validation("unknown table for change stream"))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events, cancel := hub.Subscribe(table)
	defer cancel()

	// Reader goroutine detects client disconnect
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
