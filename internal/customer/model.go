package customer

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("customer not found")
	ErrAddressNotFound = errors.New("address not found")
	ErrValidation      = errors.New("invalid customer data")
)

type Customer struct {
	ID          string    `json:"id" bson:"_id"`
	DisplayName string    `json:"displayName" bson:"displayName"`
	Email       string    `json:"email" bson:"email"`
	Phone       string    `json:"phone" bson:"phone"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

type ProfileUpdate struct {
	DisplayName string `json:"displayName" validate:"omitempty,min=2,max=80"`
	Phone       string `json:"phone" validate:"omitempty,max=32"`
}

type Address struct {
	ID         string    `json:"id" bson:"_id"`
	CustomerID string    `json:"-" bson:"customerId"`
	Label      string    `json:"label" bson:"label" validate:"max=40"`
	FullName   string    `json:"fullName" bson:"fullName" validate:"required"`
	Street     string    `json:"street" bson:"street" validate:"required"`
	City       string    `json:"city" bson:"city" validate:"required"`
	PostalCode string    `json:"postalCode" bson:"postalCode" validate:"required"`
	Country    string    `json:"country" bson:"country" validate:"required"`
	Phone      string    `json:"phone" bson:"phone"`
	IsDefault  bool      `json:"isDefault" bson:"isDefault"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}
