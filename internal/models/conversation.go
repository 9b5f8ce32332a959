package models

import "time"

// Conversation pairs one tenant, one landlord and one property. At most one
// exists per (property, tenant, landlord) triple; the unique index on those
// three fields enforces it, not application logic.
type Conversation struct {
	ID         string    `bson:"_id" json:"id"`
	PropertyID string    `bson:"property_id" json:"property_id"`
	TenantID   string    `bson:"tenant_id" json:"tenant_id"`
	LandlordID string    `bson:"landlord_id" json:"landlord_id"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// HasParticipant reports whether userID is the tenant or the landlord.
func (c *Conversation) HasParticipant(userID string) bool {
	return userID == c.TenantID || userID == c.LandlordID
}

// Counterpart returns the other participant's ID, or "" if userID is not a
// participant.
func (c *Conversation) Counterpart(userID string) string {
	switch userID {
	case c.TenantID:
		return c.LandlordID
	case c.LandlordID:
		return c.TenantID
	}
	return ""
}

type Message struct {
	ID             string    `bson:"_id" json:"id"`
	ConversationID string    `bson:"conversation_id" json:"conversation_id"`
	SenderID       string    `bson:"sender_id" json:"sender_id"`
	Content        string    `bson:"content" json:"content"`
	Read           bool      `bson:"read" json:"read"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}
