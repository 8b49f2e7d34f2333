package amqp

import (
	"encoding/json"
	"time"

	"outreach/internal/store"
)

// ChangeMessage announces a write to one collection. It carries no
// record data; receivers reload the collection from the shared backend.
type ChangeMessage struct {
	Collection string    `json:"collection"`
	Op         string    `json:"op"`
	ID         string    `json:"id,omitempty"`
	Origin     string    `json:"origin"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewChangeMessage(c store.Change) *ChangeMessage {
	return &ChangeMessage{
		Collection: c.Collection,
		Op:         c.Op,
		ID:         c.ID,
		Origin:     c.Origin,
		Timestamp:  time.Now(),
	}
}

// Change converts the message back to the store event.
func (m *ChangeMessage) Change() store.Change {
	return store.Change{Collection: m.Collection, Op: m.Op, ID: m.ID, Origin: m.Origin}
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
