package events

import (
	"time"

	"github.com/rentnest/rentnest-server/internal/models"
)

// MessageSent is published for every appended message and fans the message
// out to websocket subscribers on every instance.
type MessageSent struct {
	Message models.Message `json:"message"`
}

// PropertyViewed is published fire-and-forget from the property detail path.
type PropertyViewed struct {
	PropertyID string    `json:"property_id"`
	UserID     string    `json:"user_id,omitempty"`
	SessionID  string    `json:"session_id,omitempty"`
	ViewedAt   time.Time `json:"viewed_at"`
}
