package models

import "time"

type Subscription struct {
	ID            string    `bson:"_id" json:"id"`
	UserID        string    `bson:"user_id" json:"user_id"`
	PlanID        string    `bson:"plan_id" json:"plan_id"`
	PaymentMethod string    `bson:"payment_method" json:"payment_method"`
	AmountUSD     float64   `bson:"amount_usd" json:"amount_usd"`
	PaymentRef    string    `bson:"payment_ref,omitempty" json:"payment_ref,omitempty"`
	Status        string    `bson:"status" json:"status"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}
