package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/BTC001B/store/internal/catalog"
	"github.com/BTC001B/store/internal/db"
)

type Service interface {
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	ListItems(ctx context.Context, userID uuid.UUID) ([]Line, error)
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) error
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	lines    Repository
	products catalog.Repository
	db       db.Querier
}

func NewService(lines Repository, products catalog.Repository, q db.Querier) Service {
	return &service{
		lines:    lines,
		products: products,
		db:       q,
	}
}

func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("service: cart quantity must be greater than zero, got %d", quantity)
	}

	_, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return catalog.ErrProductNotFound
		}
		return fmt.Errorf("service: failed to look up product for cart add: %w", err)
	}

	if err := s.lines.Add(ctx, userID, productID, quantity); err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Stringer("product_id", productID).Msg("service: failed to add cart line")
		return fmt.Errorf("service: failed to add cart line: %w", err)
	}

	return nil
}

func (s *service) ListItems(ctx context.Context, userID uuid.UUID) ([]Line, error) {
	lines, err := s.lines.Snapshot(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch cart lines")
		return nil, fmt.Errorf("service: failed to fetch cart lines: %w", err)
	}

	return lines, nil
}

func (s *service) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("service: cart quantity must be greater than zero, got %d", quantity)
	}

	err := s.lines.UpdateQuantity(ctx, userID, productID, quantity)
	if err != nil {
		if errors.Is(err, ErrLineNotFound) {
			return ErrLineNotFound
		}
		return fmt.Errorf("service: failed to update cart line: %w", err)
	}

	return nil
}

func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	err := s.lines.Remove(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, ErrLineNotFound) {
			return ErrLineNotFound
		}
		return fmt.Errorf("service: failed to remove cart line: %w", err)
	}

	return nil
}

func (s *service) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if err := s.lines.Clear(ctx, s.db, userID); err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to clear cart")
		return fmt.Errorf("service: failed to clear cart: %w", err)
	}

	return nil
}
