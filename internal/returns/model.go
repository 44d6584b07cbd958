package returns

import (
	"time"

	"github.com/gofrs/uuid"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusCompleted Status = "Completed"
)

func (s Status) String() string {
	return string(s)
}

var knownStatuses = map[Status]bool{
	StatusPending:   true,
	StatusApproved:  true,
	StatusRejected:  true,
	StatusCompleted: true,
}

func ValidStatus(s Status) bool {
	return knownStatuses[s]
}

// Return is a request to reverse exactly one order line. Its status machine
// is independent of the order's own status.
type Return struct {
	ID          uuid.UUID `json:"id"`
	OrderID     uuid.UUID `json:"orderId"`
	OrderItemID uuid.UUID `json:"orderItemId"`
	UserID      uuid.UUID `json:"userId"`
	Reason      string    `json:"reason"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Item is the per-line child record of a return, carrying its own sub-status
// so lines can be approved or rejected individually.
type Item struct {
	ID          uuid.UUID `json:"id"`
	ReturnID    uuid.UUID `json:"returnId"`
	OrderItemID uuid.UUID `json:"orderItemId"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
