package returns

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var ErrReturnNotFound = errors.New("return request not found")

type Repository interface {
	// CreateReturn persists the return request and its child line record in
	// one transaction.
	CreateReturn(ctx context.Context, ret *Return) (*Return, *Item, error)
	GetReturnByID(ctx context.Context, id uuid.UUID) (*Return, error)
	// ListReturns returns every request, or only one user's when userID is
	// non-nil.
	ListReturns(ctx context.Context, userID *uuid.UUID) ([]Return, error)
	UpdateReturnStatus(ctx context.Context, returnID uuid.UUID, newStatus Status) (*Return, error)
	// HasOpenReturn reports whether the order line already has a return that
	// is not Rejected.
	HasOpenReturn(ctx context.Context, orderItemID uuid.UUID) (bool, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{db: pool}
}

func (r *postgresRepository) CreateReturn(ctx context.Context, ret *Return) (createdRet *Return, createdItem *Item, err error) {
	returnID, genErr := uuid.NewV4()
	if genErr != nil {
		return nil, nil, fmt.Errorf("repository: failed to generate return ID: %w", genErr)
	}
	itemID, genErr := uuid.NewV4()
	if genErr != nil {
		return nil, nil, fmt.Errorf("repository: failed to generate return item ID: %w", genErr)
	}

	tx, beginErr := r.db.Begin(ctx)
	if beginErr != nil {
		return nil, nil, fmt.Errorf("repository: failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("return_id", returnID).Msg("Failed to rollback transaction after panic")
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("return_id", returnID).Msg("Failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				log.Error().Err(commitErr).Stringer("return_id", returnID).Msg("Failed to commit transaction")
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	now := time.Now().UTC()

	ret.ID = returnID
	ret.Status = StatusPending
	ret.CreatedAt = now
	ret.UpdatedAt = now

	queryReturn := `
		INSERT INTO returns (id, order_id, order_item_id, user_id, reason, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`
	_, err = tx.Exec(ctx, queryReturn,
		ret.ID,
		ret.OrderID,
		ret.OrderItemID,
		ret.UserID,
		ret.Reason,
		string(ret.Status),
		now,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("repository: failed to insert return: %w", err)
	}

	item := &Item{
		ID:          itemID,
		ReturnID:    returnID,
		OrderItemID: ret.OrderItemID,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	queryItem := `
		INSERT INTO return_items (id, return_id, order_item_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`
	_, err = tx.Exec(ctx, queryItem,
		item.ID,
		item.ReturnID,
		item.OrderItemID,
		string(item.Status),
		now,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("repository: failed to insert return item for return %s: %w", returnID, err)
	}

	return ret, item, nil
}

func (r *postgresRepository) GetReturnByID(ctx context.Context, id uuid.UUID) (*Return, error) {
	query := `
		SELECT id, order_id, order_item_id, user_id, reason, status, created_at, updated_at
		FROM returns
		WHERE id = $1
	`

	var ret Return
	err := r.db.QueryRow(ctx, query, id).Scan(
		&ret.ID,
		&ret.OrderID,
		&ret.OrderItemID,
		&ret.UserID,
		&ret.Reason,
		&ret.Status,
		&ret.CreatedAt,
		&ret.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReturnNotFound
		}

		return nil, fmt.Errorf("repository: failed to select return by id %s: %w", id, err)
	}

	return &ret, nil
}

func (r *postgresRepository) ListReturns(ctx context.Context, userID *uuid.UUID) ([]Return, error) {
	query := `
		SELECT id, order_id, order_item_id, user_id, reason, status, created_at, updated_at
		FROM returns
	`
	var args []any
	if userID != nil {
		query += ` WHERE user_id = $1`
		args = append(args, *userID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query returns: %w", err)
	}
	defer rows.Close()

	result := make([]Return, 0)
	for rows.Next() {
		var ret Return
		err := rows.Scan(
			&ret.ID,
			&ret.OrderID,
			&ret.OrderItemID,
			&ret.UserID,
			&ret.Reason,
			&ret.Status,
			&ret.CreatedAt,
			&ret.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan return: %w", err)
		}
		result = append(result, ret)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating returns: %w", err)
	}

	return result, nil
}

func (r *postgresRepository) UpdateReturnStatus(ctx context.Context, returnID uuid.UUID, newStatus Status) (*Return, error) {
	query := `
		UPDATE returns
		SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING id, order_id, order_item_id, user_id, reason, status, created_at, updated_at
	`

	var ret Return
	err := r.db.QueryRow(ctx, query, string(newStatus), time.Now().UTC(), returnID).Scan(
		&ret.ID,
		&ret.OrderID,
		&ret.OrderItemID,
		&ret.UserID,
		&ret.Reason,
		&ret.Status,
		&ret.CreatedAt,
		&ret.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Warn().Stringer("return_id", returnID).Str("new_status", string(newStatus)).Msg("repository: return not found for status update")
			return nil, ErrReturnNotFound
		}

		return nil, fmt.Errorf("repository: failed to update return status %s: %w", returnID, err)
	}

	return &ret, nil
}

func (r *postgresRepository) HasOpenReturn(ctx context.Context, orderItemID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM returns
			WHERE order_item_id = $1 AND status <> 'Rejected'
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, orderItemID).Scan(&exists); err != nil {
		return false, fmt.Errorf("repository: failed to check open returns for order item %s: %w", orderItemID, err)
	}

	return exists, nil
}
