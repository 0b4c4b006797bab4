package user

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Email         string           `json:"email"`
	PasswordHash  string           `json:"-"`
	Role          string           `json:"role"`
	Address       *ShippingAddress `json:"address,omitempty"`
	PaymentMethod string           `json:"payment_method,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

type ShippingAddress struct {
	FullName      string   `json:"fullName" binding:"required,min=3"`
	StreetAddress string   `json:"streetAddress" binding:"required,min=3"`
	City          string   `json:"city" binding:"required,min=3"`
	PostalCode    string   `json:"postalCode" binding:"required,min=3"`
	Country       string   `json:"country" binding:"required,min=3"`
	Lat           *float64 `json:"lat,omitempty"`
	Lng           *float64 `json:"lng,omitempty"`
}
