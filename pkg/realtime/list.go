package realtime

import (
	"fmt"
)

// ApplyChangeEvent merges one change event into an ordered list of rows and
// returns the new list. It never mutates the input slice's rows.
//
// Semantics, per event type:
//
//   - INSERT: prepend the new row (newest-first ordering, matching the
//     admin tables).
//   - UPDATE: locate the row by idKey and shallow-merge the new fields over
//     it. Fields listed in preserve are kept from the existing row when the
//     incoming payload omits them or carries null - derived values such as
//     a cached exchange rate must survive partial updates. A row that is
//     not found is treated as an out-of-band insert and appended.
//   - DELETE: remove the row by idKey.
//
// Any malformed event (missing snapshot, missing id) returns an error; the
// caller is expected to fall back to a full refetch rather than drop the
// event.
func ApplyChangeEvent(list []Row, ev Event, idKey string, preserve []string) ([]Row, error) {
	switch ev.Type {
	case EventInsert:
		if ev.New == nil {
			return nil, fmt.Errorf("insert event without new row")
		}
		out := make([]Row, 0, len(list)+1)
		out = append(out, copyRow(ev.New))
		out = append(out, list...)
		return out, nil

	case EventUpdate:
		if ev.New == nil {
			return nil, fmt.Errorf("update event without new row")
		}
		id := ev.RowID(idKey)
		if id == "" {
			return nil, fmt.Errorf("update event without %s", idKey)
		}

		out := make([]Row, len(list))
		found := false
		for i, row := range list {
			if rowID(row, idKey) != id {
				out[i] = row
				continue
			}
			found = true
			out[i] = mergeRow(row, ev.New, preserve)
		}
		if !found {
			// Out-of-band insert: a row we never saw arrive. Keep it
			// rather than dropping the event.
			out = append(out, copyRow(ev.New))
		}
		return out, nil

	case EventDelete:
		id := ev.RowID(idKey)
		if id == "" {
			return nil, fmt.Errorf("delete event without %s", idKey)
		}
		out := make([]Row, 0, len(list))
		for _, row := range list {
			if rowID(row, idKey) != id {
				out = append(out, row)
			}
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unknown event type %q", ev.Type)
	}
}

func rowID(row Row, idKey string) string {
	if v, ok := row[idKey]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

func copyRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// mergeRow shallow-merges incoming over existing. Preserved fields keep
// their existing value when the incoming payload omits them or sends null.
func mergeRow(existing, incoming Row, preserve []string) Row {
	out := copyRow(existing)
	for k, v := range incoming {
		if v == nil && isPreserved(k, preserve) {
			continue
		}
		out[k] = v
	}
	return out
}

func isPreserved(key string, preserve []string) bool {
	for _, p := range preserve {
		if p == key {
			return true
		}
	}
	return false
}
