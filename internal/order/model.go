package order

import (
	"time"

	"github.com/gofrs/uuid"

	"github.com/BTC001B/store/internal/catalog"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusShipped   Status = "Shipped"
	StatusDelivered Status = "Delivered"
	StatusCancelled Status = "Cancelled"
)

func (s Status) String() string {
	return string(s)
}

var knownStatuses = map[Status]bool{
	StatusPending:   true,
	StatusShipped:   true,
	StatusDelivered: true,
	StatusCancelled: true,
}

// ValidStatus reports whether s is one of the known order statuses. Status
// updates are an administrative overwrite, but unknown strings are still
// rejected.
func ValidStatus(s Status) bool {
	return knownStatuses[s]
}

// Item is one product+quantity line within an order. Price is captured at
// order time: later product price changes must not alter historical orders.
type Item struct {
	ID         uuid.UUID        `json:"id"`
	OrderID    uuid.UUID        `json:"orderId"`
	ProductID  uuid.UUID        `json:"productId"`
	Quantity   int              `json:"quantity"`
	Price      float64          `json:"price"`
	TotalPrice float64          `json:"totalPrice"`
	Product    *catalog.Product `json:"product,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

type Order struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"userId"`
	TotalAmount     float64   `json:"totalAmount"`
	Discount        float64   `json:"discount"`
	FinalAmount     float64   `json:"finalAmount"`
	PaymentMethod   string    `json:"paymentMethod"`
	ShippingAddress string    `json:"shippingAddress"`
	Status          Status    `json:"status"`
	Items           []Item    `json:"items"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
