package wire

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Message is the envelope for every frame exchanged with the swarm server.
// A received Message is immutable; whichever component is processing it owns
// it transiently and must not retain the Body slice past dispatch.
type Message struct {
	Type Type            `json:"type"`
	CID  string          `json:"cid,omitempty"`
	Body json.RawMessage `json:"body,omitempty"`
}

// NewCommand builds an outbound command envelope with a fresh correlation id.
// The body is marshalled eagerly so a malformed payload fails at the caller,
// not inside the transport.
func NewCommand(t Type, body any) (*Message, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s body: %w", t, err)
	}
	return &Message{Type: t, CID: NewCorrelationID(), Body: raw}, nil
}

// NewNotification builds an envelope without a correlation id.
func NewNotification(t Type, body any) (*Message, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s body: %w", t, err)
	}
	return &Message{Type: t, Body: raw}, nil
}

// IsNotification reports whether the message carries no correlation id and is
// therefore unsolicited.
func (m *Message) IsNotification() bool {
	return m.CID == ""
}

// DecodeBody unmarshals the body into v. An absent body decodes into the zero
// value rather than failing, since several tags (HRT-BEA among them) carry
// none.
func (m *Message) DecodeBody(v any) error {
	if len(m.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(m.Body, v); err != nil {
		return fmt.Errorf("decode %s body: %w", m.Type, err)
	}
	return nil
}

func (m *Message) String() string {
	return fmt.Sprintf("Message{Type: %s, CID: %s, Body: %d bytes}", m.Type, m.CID, len(m.Body))
}

// NewCorrelationID returns a fresh, time-ordered correlation id.
func NewCorrelationID() string {
	return uuid.Must(uuid.NewV7()).String()
}
