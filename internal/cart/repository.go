package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"

	"github.com/BTC001B/store/internal/db"
)

var ErrLineNotFound = errors.New("cart line not found")

type Repository interface {
	Add(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	Snapshot(ctx context.Context, userID uuid.UUID) ([]Line, error)
	// Clear deletes every line of the user. It takes an explicit Querier so
	// checkout can run it inside the order transaction.
	Clear(ctx context.Context, q db.Querier, userID uuid.UUID) error
}

type postgresRepository struct {
	db db.Querier
}

func NewRepository(q db.Querier) Repository {
	return &postgresRepository{db: q}
}

func (r *postgresRepository) Add(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	lineID, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("repository: failed to generate cart line ID: %w", err)
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO cart_items (id, user_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.Exec(ctx, query, lineID, userID, productID, quantity, now)
	if err != nil {
		return fmt.Errorf("repository: failed to add product %s to cart of user %s: %w", productID, userID, err)
	}

	return nil
}

func (r *postgresRepository) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	query := `
		UPDATE cart_items
		SET quantity = $1, updated_at = now()
		WHERE user_id = $2 AND product_id = $3
	`

	cmdTag, err := r.db.Exec(ctx, query, quantity, userID, productID)
	if err != nil {
		return fmt.Errorf("repository: failed to update cart line for user %s: %w", userID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrLineNotFound
	}

	return nil
}

func (r *postgresRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	query := `
		DELETE FROM cart_items
		WHERE user_id = $1 AND product_id = $2
	`

	cmdTag, err := r.db.Exec(ctx, query, userID, productID)
	if err != nil {
		return fmt.Errorf("repository: failed to remove cart line for user %s: %w", userID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrLineNotFound
	}

	return nil
}

func (r *postgresRepository) Snapshot(ctx context.Context, userID uuid.UUID) ([]Line, error) {
	query := `
		SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at,
		       p.name, p.price, p.stock
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query cart lines for user %s: %w", userID, err)
	}
	defer rows.Close()

	lines := make([]Line, 0)
	for rows.Next() {
		var line Line
		err := rows.Scan(
			&line.ID,
			&line.UserID,
			&line.ProductID,
			&line.Quantity,
			&line.CreatedAt,
			&line.UpdatedAt,
			&line.ProductName,
			&line.UnitPrice,
			&line.ProductStock,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan cart line for user %s: %w", userID, err)
		}
		lines = append(lines, line)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating cart lines for user %s: %w", userID, err)
	}

	return lines, nil
}

func (r *postgresRepository) Clear(ctx context.Context, q db.Querier, userID uuid.UUID) error {
	query := `
		DELETE FROM cart_items
		WHERE user_id = $1
	`

	if _, err := q.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("repository: failed to clear cart for user %s: %w", userID, err)
	}

	return nil
}
