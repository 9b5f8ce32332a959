package models

import "time"

const (
	RoleTenant   = "tenant"
	RoleLandlord = "landlord"
)

const (
	SubscriptionNone   = "none"
	SubscriptionActive = "active"
)

type Profile struct {
	ID                 string    `bson:"_id" json:"id"`
	Email              string    `bson:"email" json:"email"`
	PasswordHash       string    `bson:"password_hash" json:"-"`
	FullName           string    `bson:"full_name" json:"full_name"`
	Phone              string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Role               string    `bson:"role" json:"role"`
	SubscriptionPlan   string    `bson:"subscription_plan,omitempty" json:"subscription_plan,omitempty"`
	SubscriptionStatus string    `bson:"subscription_status" json:"subscription_status"`
	CreatedAt          time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time `bson:"updated_at" json:"updated_at"`
}

// ProfileSummary is what other users are allowed to see.
type ProfileSummary struct {
	ID       string `bson:"_id" json:"id"`
	FullName string `bson:"full_name" json:"full_name"`
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`
	Role     string `bson:"role" json:"role"`
}

func (p *Profile) Summary() ProfileSummary {
	return ProfileSummary{ID: p.ID, FullName: p.FullName, Phone: p.Phone, Role: p.Role}
}
