// Package inventory owns the per-product stock count. All mutations go
// through conditional updates so stock can never be driven below zero, even
// under concurrent checkouts.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"

	"github.com/BTC001B/store/internal/db"
)

var ErrOutOfStock = errors.New("not enough stock available")

// Ledger applies and reverses stock reservations. It operates on a db.Querier
// so callers can run it inside their own transaction.
type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Reserve decrements stock by qty. The decrement is a single conditional
// update; zero affected rows means the product is missing or exhausted, which
// both surface as ErrOutOfStock. Never read-then-write here: two concurrent
// reservations against the last unit must not both succeed.
func (l *Ledger) Reserve(ctx context.Context, q db.Querier, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("inventory: reserve quantity must be positive, got %d", qty)
	}

	query := `
		UPDATE products
		SET stock = stock - $1, updated_at = now()
		WHERE id = $2 AND stock >= $1
	`

	cmdTag, err := q.Exec(ctx, query, qty, productID)
	if err != nil {
		return fmt.Errorf("inventory: failed to reserve %d of product %s: %w", qty, productID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrOutOfStock
	}

	return nil
}

// Release returns qty units to stock, used when a cancelled order gives its
// reservation back.
func (l *Ledger) Release(ctx context.Context, q db.Querier, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("inventory: release quantity must be positive, got %d", qty)
	}

	query := `
		UPDATE products
		SET stock = stock + $1, updated_at = now()
		WHERE id = $2
	`

	cmdTag, err := q.Exec(ctx, query, qty, productID)
	if err != nil {
		return fmt.Errorf("inventory: failed to release %d of product %s: %w", qty, productID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("inventory: product %s not found for release", productID)
	}

	return nil
}
