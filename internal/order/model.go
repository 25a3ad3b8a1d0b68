package order

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vasiliy-maslov/technova/internal/cart"
	"github.com/vasiliy-maslov/technova/internal/catalog"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusPaid      Status = "Paid"
	StatusShipped   Status = "Shipped"
	StatusCompleted Status = "Completed"
)

func (s Status) String() string {
	return string(s)
}

type PaymentMethod string

const (
	PaymentStripe PaymentMethod = "Stripe"
	PaymentPayPal PaymentMethod = "PayPal"
)

func (p PaymentMethod) Valid() bool {
	return p == PaymentStripe || p == PaymentPayPal
}

var (
	ErrNotFound                = errors.New("order not found")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrEmptyOrder              = errors.New("order must contain at least one item")
	ErrNoFreeID                = errors.New("no free order id")
)

var idPattern = regexp.MustCompile(`^ORD-\d{6}$`)

type Order struct {
	ID              string            `json:"id" bson:"orderId"`
	CustomerID      string            `json:"customerId,omitempty" bson:"customerId,omitempty"`
	CustomerName    string            `json:"customerName" bson:"customerName"`
	CustomerEmail   string            `json:"customerEmail" bson:"customerEmail"`
	CustomerPhone   string            `json:"customerPhone" bson:"customerPhone"`
	ShippingAddress string            `json:"shippingAddress" bson:"shippingAddress"`
	Items           []catalog.Product `json:"items" bson:"items"`
	Total           float64           `json:"total" bson:"total"`
	Status          Status            `json:"status" bson:"status"`
	PaymentMethod   PaymentMethod     `json:"paymentMethod" bson:"paymentMethod"`
	Date            string            `json:"date" bson:"date"`
}

// NewID returns an order id of the form ORD-NNNNNN.
func NewID() string {
	return fmt.Sprintf("ORD-%06d", 100000+rand.IntN(900000))
}

func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// Flatten expands every line into one product entry per unit.
func Flatten(items []cart.LineItem) []catalog.Product {
	flat := make([]catalog.Product, 0)
	for _, item := range items {
		for range item.Quantity {
			flat = append(flat, item.Product)
		}
	}
	return flat
}

// TotalOf sums the prices of flattened products.
func TotalOf(products []catalog.Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(decimal.NewFromFloat(p.Price))
	}
	return total
}

type Contact struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// New builds a pending order for the given cart lines.
func New(contact Contact, items []cart.LineItem, method PaymentMethod, customerID string, now time.Time) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	flat := Flatten(items)

	return &Order{
		ID:              NewID(),
		CustomerID:      customerID,
		CustomerName:    contact.Name,
		CustomerEmail:   contact.Email,
		CustomerPhone:   contact.Phone,
		ShippingAddress: contact.Address,
		Items:           flat,
		Total:           TotalOf(flat).Round(2).InexactFloat64(),
		Status:          StatusPending,
		PaymentMethod:   method,
		Date:            now.UTC().Format(time.RFC3339),
	}, nil
}
