// Package notify delivers stored notifications to live websocket clients and to a message broker.
package notify

import (
	"time"

	"github.com/and161185/inkwell/internal/model"
)

// Payload is the wire form of a notification.
type Payload struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func payloadOf(n model.Notification) Payload {
	return Payload{ID: n.ID, UserID: n.UserID, Message: n.Message, CreatedAt: n.CreatedAt.UTC()}
}
