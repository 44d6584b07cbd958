package returns

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/BTC001B/store/internal/order"
)

var (
	ErrNotOrderOwner  = errors.New("order does not belong to this user")
	ErrItemNotInOrder = errors.New("order item does not belong to this order")
	ErrAlreadyOpen    = errors.New("order item already has an open return")
	ErrInvalidStatus  = errors.New("unknown return status")
)

// OrderReader resolves the order and order line a return references.
type OrderReader interface {
	GetOrderByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
	GetOrderItemByID(ctx context.Context, id uuid.UUID) (*order.Item, error)
}

type Service interface {
	CreateReturn(ctx context.Context, orderID, userID, orderItemID uuid.UUID, reason string) (*Return, *Item, error)
	ListReturns(ctx context.Context, userID *uuid.UUID) ([]Return, error)
	UpdateReturnStatus(ctx context.Context, returnID uuid.UUID, newStatus Status) (*Return, error)
}

type service struct {
	repo   Repository
	orders OrderReader
}

func NewService(repo Repository, orders OrderReader) Service {
	return &service{
		repo:   repo,
		orders: orders,
	}
}

// CreateReturn opens a return for one order line. The line must belong to the
// stated order and the order to the requesting user, and the line must not
// already have an open return.
func (s *service) CreateReturn(ctx context.Context, orderID, userID, orderItemID uuid.UUID, reason string) (*Return, *Item, error) {
	o, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return nil, nil, order.ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to load order for return")
		return nil, nil, fmt.Errorf("service: failed to load order for return: %w", err)
	}

	if o.UserID != userID {
		log.Warn().Stringer("order_id", orderID).Stringer("user_id", userID).Msg("service: return attempted on another user's order")
		return nil, nil, ErrNotOrderOwner
	}

	item, err := s.orders.GetOrderItemByID(ctx, orderItemID)
	if err != nil {
		if errors.Is(err, order.ErrOrderItemNotFound) {
			return nil, nil, order.ErrOrderItemNotFound
		}
		log.Error().Err(err).Stringer("order_item_id", orderItemID).Msg("service: failed to load order item for return")
		return nil, nil, fmt.Errorf("service: failed to load order item for return: %w", err)
	}

	if item.OrderID != orderID {
		log.Warn().Stringer("order_id", orderID).Stringer("order_item_id", orderItemID).Msg("service: return references an item from another order")
		return nil, nil, ErrItemNotInOrder
	}

	open, err := s.repo.HasOpenReturn(ctx, orderItemID)
	if err != nil {
		return nil, nil, fmt.Errorf("service: failed to check existing returns: %w", err)
	}
	if open {
		return nil, nil, ErrAlreadyOpen
	}

	ret := &Return{
		OrderID:     orderID,
		OrderItemID: orderItemID,
		UserID:      userID,
		Reason:      reason,
	}

	createdRet, createdItem, err := s.repo.CreateReturn(ctx, ret)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to create return in repository")
		return nil, nil, fmt.Errorf("service: failed to create return: %w", err)
	}

	log.Info().Stringer("return_id", createdRet.ID).Stringer("order_id", orderID).Stringer("user_id", userID).Msg("service: return request created")

	return createdRet, createdItem, nil
}

func (s *service) ListReturns(ctx context.Context, userID *uuid.UUID) ([]Return, error) {
	result, err := s.repo.ListReturns(ctx, userID)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to fetch returns in repository")
		return nil, fmt.Errorf("service: failed to fetch returns: %w", err)
	}

	return result, nil
}

// UpdateReturnStatus overwrites the return status. Like order status updates
// the transition itself is unconstrained, only the value set is checked.
func (s *service) UpdateReturnStatus(ctx context.Context, returnID uuid.UUID, newStatus Status) (*Return, error) {
	if !ValidStatus(newStatus) {
		return nil, ErrInvalidStatus
	}

	ret, err := s.repo.UpdateReturnStatus(ctx, returnID, newStatus)
	if err != nil {
		if errors.Is(err, ErrReturnNotFound) {
			return nil, ErrReturnNotFound
		}
		log.Error().Err(err).Stringer("return_id", returnID).Msg("service: failed to update return status in repository")
		return nil, fmt.Errorf("service: failed to update return status: %w", err)
	}

	log.Info().Stringer("return_id", returnID).Stringer("new_status", newStatus).Msg("service: return status updated")

	return ret, nil
}
