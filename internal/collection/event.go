package collection

import "encoding/json"

// MutationEvent announces a committed mutation of one record so that other
// sessions of the same owner can patch their cached collections.
// Record holds the canonical post-mutation record; for deletes it holds the
// removed record.
type MutationEvent struct {
	Collection string          `json:"collection"`
	Op         Op              `json:"op"`
	ID         string          `json:"id"`
	Record     json.RawMessage `json:"record,omitempty"`
}

// NewMutationEvent encodes record into an event.
func NewMutationEvent(collection string, op Op, id string, record any) (MutationEvent, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return MutationEvent{}, err
	}
	return MutationEvent{Collection: collection, Op: op, ID: id, Record: raw}, nil
}

// Decode unmarshals the event's record into T.
func Decode[T any](ev MutationEvent) (T, error) {
	var rec T
	err := json.Unmarshal(ev.Record, &rec)
	return rec, err
}
