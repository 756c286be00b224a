package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Event types written by the classification service.
const (
	EventClassification = "classification"
	EventReviewDecision = "review_decision"
)

// TimestampFormat is the layout used in event timestamps.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// Event is one line in the hash-chained JSONL audit log.
// EventHash is the digest of the event serialized without EventHash;
// PreviousHash is the EventHash of the line before it ("" for the first line).
type Event struct {
	EventType    string          `json:"event_type"`
	CreatedAt    string          `json:"created_at_utc"`
	PreviousHash string          `json:"previous_hash"`
	Payload      json.RawMessage `json:"payload"`
	EventHash    string          `json:"event_hash"`
}

// unsignedEvent is the hashed form of Event. Field order is fixed by the
// struct, so json.Marshal output is reproducible.
type unsignedEvent struct {
	EventType    string          `json:"event_type"`
	CreatedAt    string          `json:"created_at_utc"`
	PreviousHash string          `json:"previous_hash"`
	Payload      json.RawMessage `json:"payload"`
}

// ComputeHash digests the event's content, excluding EventHash itself.
func (e Event) ComputeHash() (string, error) {
	payload := e.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	data, err := json.Marshal(unsignedEvent{
		EventType:    e.EventType,
		CreatedAt:    e.CreatedAt,
		PreviousHash: e.PreviousHash,
		Payload:      payload,
	})
	if err != nil {
		return "", fmt.Errorf("audit: marshal event: %w", err)
	}
	return HashBytes(data), nil
}

// HashBytes returns "sha256:<hex>" of the given bytes.
func HashBytes(b []byte) string {
	h := sha256.Sum256(b)
	return "sha256:" + hex.EncodeToString(h[:])
}

// DecodePayload unmarshals the event payload into v.
func (e Event) DecodePayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}
