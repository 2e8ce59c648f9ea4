package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"budgetplanner/internal/core"
)

// NotificationMessage is the envelope published for every outbound email.
// The notification fields are inlined in the JSON body.
type NotificationMessage struct {
	ID string `json:"id"`
	core.Notification
	Timestamp time.Time `json:"timestamp"`
}

// NewNotificationMessage wraps n with a fresh message id.
func NewNotificationMessage(n core.Notification) *NotificationMessage {
	return &NotificationMessage{
		ID:           uuid.NewString(),
		Notification: n,
		Timestamp:    time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// NotificationMessageFromJSON decodes and sanity-checks a delivery body.
func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Kind.Valid() {
		return nil, fmt.Errorf("unknown notification kind %q", msg.Kind)
	}
	if msg.To == "" {
		return nil, fmt.Errorf("notification %s has no recipient", msg.ID)
	}
	return &msg, nil
}
