package models

import "time"

type Property struct {
	ID           string    `bson:"_id" json:"id"`
	LandlordID   string    `bson:"landlord_id" json:"landlord_id"`
	Title        string    `bson:"title" json:"title"`
	Description  string    `bson:"description,omitempty" json:"description,omitempty"`
	PropertyType string    `bson:"property_type" json:"property_type"`
	Address      string    `bson:"address" json:"address"`
	City         string    `bson:"city" json:"city"`
	State        string    `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode      string    `bson:"zip_code,omitempty" json:"zip_code,omitempty"`
	Price        float64   `bson:"price" json:"price"`
	Bedrooms     int       `bson:"bedrooms,omitempty" json:"bedrooms,omitempty"`
	Bathrooms    int       `bson:"bathrooms,omitempty" json:"bathrooms,omitempty"`
	SquareFeet   int       `bson:"square_feet,omitempty" json:"square_feet,omitempty"`
	Amenities    []string  `bson:"amenities,omitempty" json:"amenities,omitempty"`
	Images       []string  `bson:"images,omitempty" json:"images,omitempty"`
	Available    bool      `bson:"available" json:"available"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// PropertyFilter narrows listing queries. Zero values mean "no constraint".
type PropertyFilter struct {
	City          string
	PropertyType  string
	MinPrice      float64
	MaxPrice      float64
	AvailableOnly bool
	LandlordID    string
}

type PropertyInterest struct {
	ID            string    `bson:"_id" json:"id"`
	PropertyID    string    `bson:"property_id" json:"property_id"`
	UserID        string    `bson:"user_id" json:"user_id"`
	ContactMethod string    `bson:"contact_method,omitempty" json:"contact_method,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}

type PropertyView struct {
	ID         string    `bson:"_id" json:"id"`
	PropertyID string    `bson:"property_id" json:"property_id"`
	UserID     string    `bson:"user_id,omitempty" json:"user_id,omitempty"`
	SessionID  string    `bson:"session_id,omitempty" json:"session_id,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}
