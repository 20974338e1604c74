// Package realtime keeps admin table state consistent with row-level
// change events. A Hub fans events out to websocket subscribers and to
// in-memory ListCaches; the merge logic itself lives in ApplyChangeEvent
// so every table shares one tested reducer.
package realtime

import "fmt"

// EventType is the kind of row-level change
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Row is a JSON-shaped row snapshot
type Row map[string]interface{}

// Event is a row-level change notification. New carries the row after the
// change (INSERT/UPDATE); Old carries the row before it (UPDATE/DELETE).
type Event struct {
	Table string    `json:"table"`
	Type  EventType `json:"eventType"`
	New   Row       `json:"new,omitempty"`
	Old   Row       `json:"old,omitempty"`
}

// RowID extracts the row identifier the event refers to, preferring the
// new snapshot. Returns "" when neither snapshot carries the key.
func (e Event) RowID(idKey string) string {
	if v, ok := e.New[idKey]; ok && v != nil {
		return fmt.Sprint(v)
	}
	if v, ok := e.Old[idKey]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}
