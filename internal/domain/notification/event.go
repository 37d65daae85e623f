package notification

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the type of a notification event
type Kind string

const (
	// KindNewOrder is emitted when a customer places an order
	KindNewOrder Kind = "new_order"
)

// Wire event names used by the event source
const (
	EventNewOrder = "new:order"
)

// KindForEvent maps an event source message name to an inbox kind.
// Unrecognized names are kept verbatim so they can be shown as unknown events.
func KindForEvent(name string) Kind {
	switch name {
	case EventNewOrder:
		return KindNewOrder
	default:
		return Kind(name)
	}
}

// Payload is the typed body of a notification event.
// The concrete types are NewOrderPayload and UnknownPayload.
type Payload interface {
	Kind() Kind
	// Summary is the one-line text shown in the inbox
	Summary() string
}

// NewOrderPayload is the body of a new order event
type NewOrderPayload struct {
	Message     string
	OrderNumber string
	// Extra holds any fields the event carried beyond message and orderNumber
	Extra map[string]json.RawMessage
}

// Kind implements Payload
func (p NewOrderPayload) Kind() Kind { return KindNewOrder }

// Summary implements Payload
func (p NewOrderPayload) Summary() string {
	if p.Message != "" {
		return p.Message
	}
	if p.OrderNumber != "" {
		return fmt.Sprintf("New order #%s", p.OrderNumber)
	}
	return "New order"
}

// MarshalJSON flattens Extra back next to the known fields
func (p NewOrderPayload) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+2)
	for k, v := range p.Extra {
		out[k] = v
	}
	if p.Message != "" {
		out["message"] = p.Message
	}
	if p.OrderNumber != "" {
		out["orderNumber"] = p.OrderNumber
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads message and orderNumber and keeps the rest in Extra
func (p *NewOrderPayload) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*p = NewOrderPayload{}
	if raw, ok := fields["message"]; ok {
		if err := json.Unmarshal(raw, &p.Message); err != nil {
			return fmt.Errorf("message: %w", err)
		}
		delete(fields, "message")
	}
	if raw, ok := fields["orderNumber"]; ok {
		number, err := decodeOrderNumber(raw)
		if err != nil {
			return fmt.Errorf("orderNumber: %w", err)
		}
		p.OrderNumber = number
		delete(fields, "orderNumber")
	}
	if len(fields) > 0 {
		p.Extra = fields
	}
	return nil
}

// decodeOrderNumber accepts the order number as a string or a bare JSON number
func decodeOrderNumber(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// UnknownPayload keeps the raw body of an event kind the console does not model
type UnknownPayload struct {
	Type Kind
	Raw  json.RawMessage
}

// Kind implements Payload
func (p UnknownPayload) Kind() Kind { return p.Type }

// Summary implements Payload
func (p UnknownPayload) Summary() string {
	return fmt.Sprintf("Unrecognized event %q", string(p.Type))
}

// DecodePayload builds the typed payload for a kind.
// Malformed bodies of a known kind fall back to UnknownPayload.
func DecodePayload(kind Kind, data json.RawMessage) Payload {
	switch kind {
	case KindNewOrder:
		var p NewOrderPayload
		if err := json.Unmarshal(data, &p); err == nil {
			return p
		}
	}
	return UnknownPayload{Type: kind, Raw: cloneRaw(data)}
}

func cloneRaw(data json.RawMessage) json.RawMessage {
	if len(data) == 0 {
		return json.RawMessage("null")
	}
	out := make(json.RawMessage, len(data))
	copy(out, data)
	return out
}

// Event is one received notification
type Event struct {
	ID         uuid.UUID
	Seq        uint64
	Type       Kind
	Payload    Payload
	ReceivedAt time.Time
}

// NewEvent creates an event with a fresh identity
func NewEvent(seq uint64, kind Kind, data json.RawMessage, receivedAt time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Seq:        seq,
		Type:       kind,
		Payload:    DecodePayload(kind, data),
		ReceivedAt: receivedAt,
	}
}

// Known reports whether the payload decoded into its typed form.
// A known kind with a malformed body is not known.
func (e Event) Known() bool {
	if e.Payload == nil {
		return false
	}
	_, unknown := e.Payload.(UnknownPayload)
	return !unknown
}

// Summary returns the payload summary
func (e Event) Summary() string {
	if e.Payload == nil {
		return string(e.Type)
	}
	return e.Payload.Summary()
}

// Data returns the payload as raw JSON
func (e Event) Data() (json.RawMessage, error) {
	switch p := e.Payload.(type) {
	case nil:
		return json.RawMessage("null"), nil
	case UnknownPayload:
		return cloneRaw(p.Raw), nil
	default:
		return json.Marshal(p)
	}
}

// record is the persisted layout of one event
type record struct {
	ID   uuid.UUID       `json:"id"`
	Seq  uint64          `json:"seq"`
	Type Kind            `json:"type"`
	Data json.RawMessage `json:"data"`
	Time time.Time       `json:"time"`
}

// MarshalJSON writes {id, seq, type, data, time}
func (e Event) MarshalJSON() ([]byte, error) {
	data, err := e.Data()
	if err != nil {
		return nil, err
	}
	return json.Marshal(record{
		ID:   e.ID,
		Seq:  e.Seq,
		Type: e.Type,
		Data: data,
		Time: e.ReceivedAt,
	})
}

// UnmarshalJSON reads {id, seq, type, data, time}
func (e *Event) UnmarshalJSON(b []byte) error {
	var r record
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	if r.Type == "" {
		return fmt.Errorf("notification event without type")
	}
	if r.Time.IsZero() {
		return fmt.Errorf("notification event without time")
	}
	*e = Event{
		ID:         r.ID,
		Seq:        r.Seq,
		Type:       r.Type,
		Payload:    DecodePayload(r.Type, r.Data),
		ReceivedAt: r.Time,
	}
	return nil
}
