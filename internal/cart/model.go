package cart

import (
	"time"

	"github.com/gofrs/uuid"
)

// Line is one product selection in a user's cart. A user holds at most one
// line per product; adding the same product again accumulates quantity.
type Line struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Joined from products on read. Prices here are live, not locked at
	// add-to-cart time.
	ProductName  string  `json:"productName,omitempty"`
	UnitPrice    float64 `json:"unitPrice,omitempty"`
	ProductStock int     `json:"productStock,omitempty"`
}

// Total sums quantity times the live unit price over the given lines.
func Total(lines []Line) float64 {
	total := 0.0
	for _, line := range lines {
		total += float64(line.Quantity) * line.UnitPrice
	}
	return total
}
