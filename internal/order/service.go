package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/BTC001B/store/internal/cart"
	"github.com/BTC001B/store/internal/catalog"
	"github.com/BTC001B/store/internal/inventory"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrInvalidStatus = errors.New("unknown order status")
)

// CartReader provides the cart snapshot checkout is built from.
type CartReader interface {
	Snapshot(ctx context.Context, userID uuid.UUID) ([]cart.Line, error)
}

// ProductGetter resolves products for buy-now orders.
type ProductGetter interface {
	GetProductByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID, paymentMethod, shippingAddress string) (*Order, error)
	BuyNow(ctx context.Context, userID, productID uuid.UUID, quantity int, paymentMethod, shippingAddress string) (*Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error)
	GetAllOrders(ctx context.Context) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus Status) error
	CancelOrder(ctx context.Context, orderID uuid.UUID) error
}

type service struct {
	orders   Repository
	carts    CartReader
	products ProductGetter
}

func NewService(orders Repository, carts CartReader, products ProductGetter) Service {
	return &service{
		orders:   orders,
		carts:    carts,
		products: products,
	}
}

// Checkout converts the user's cart into an order. Totals are computed from
// the live product price at checkout time. The repository commits the order,
// its items, the stock reservations and the cart clear as one unit, so a
// failed line leaves neither a partial order nor a half-emptied cart.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID, paymentMethod, shippingAddress string) (*Order, error) {
	lines, err := s.carts.Snapshot(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to load cart for checkout")
		return nil, fmt.Errorf("service: failed to load cart for checkout: %w", err)
	}

	if len(lines) == 0 {
		log.Warn().Stringer("user_id", userID).Msg("service: checkout attempted with empty cart")
		return nil, ErrEmptyCart
	}

	totalAmount := cart.Total(lines)
	discount := 0.0 // no coupon engine yet
	finalAmount := totalAmount - discount

	o := &Order{
		UserID:          userID,
		TotalAmount:     totalAmount,
		Discount:        discount,
		FinalAmount:     finalAmount,
		PaymentMethod:   paymentMethod,
		ShippingAddress: shippingAddress,
		Status:          StatusPending,
		Items:           make([]Item, 0, len(lines)),
	}

	for _, line := range lines {
		o.Items = append(o.Items, Item{
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			Price:      line.UnitPrice,
			TotalPrice: float64(line.Quantity) * line.UnitPrice,
		})
	}

	_, err = s.orders.PlaceOrder(ctx, o, true)
	if err != nil {
		if errors.Is(err, inventory.ErrOutOfStock) {
			log.Warn().Stringer("user_id", userID).Msg("service: checkout failed on stock reservation")
			return nil, err
		}
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to place checkout order")
		return nil, fmt.Errorf("service: failed to place checkout order: %w", err)
	}

	log.Info().Stringer("order_id", o.ID).Stringer("user_id", userID).Float64("final_amount", o.FinalAmount).Msg("service: checkout order placed")

	return o, nil
}

// BuyNow places a single-line order bypassing the cart.
func (s *service) BuyNow(ctx context.Context, userID, productID uuid.UUID, quantity int, paymentMethod, shippingAddress string) (*Order, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("service: order quantity must be greater than zero, got %d", quantity)
	}

	product, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			log.Warn().Stringer("product_id", productID).Msg("service: buy-now for unknown product")
			return nil, catalog.ErrProductNotFound
		}
		log.Error().Err(err).Stringer("product_id", productID).Msg("service: failed to load product for buy-now")
		return nil, fmt.Errorf("service: failed to load product for buy-now: %w", err)
	}

	// Early read-only check for a friendly error. The reservation inside
	// PlaceOrder is the actual guard against concurrent exhaustion.
	if product.Stock < quantity {
		return nil, inventory.ErrOutOfStock
	}

	totalAmount := product.Price * float64(quantity)
	discount := 0.0
	finalAmount := totalAmount - discount

	o := &Order{
		UserID:          userID,
		TotalAmount:     totalAmount,
		Discount:        discount,
		FinalAmount:     finalAmount,
		PaymentMethod:   paymentMethod,
		ShippingAddress: shippingAddress,
		Status:          StatusPending,
		Items: []Item{
			{
				ProductID:  productID,
				Quantity:   quantity,
				Price:      product.Price,
				TotalPrice: totalAmount,
			},
		},
	}

	_, err = s.orders.PlaceOrder(ctx, o, false)
	if err != nil {
		if errors.Is(err, inventory.ErrOutOfStock) {
			return nil, err
		}
		log.Error().Err(err).Stringer("user_id", userID).Stringer("product_id", productID).Msg("service: failed to place buy-now order")
		return nil, fmt.Errorf("service: failed to place buy-now order: %w", err)
	}

	log.Info().Stringer("order_id", o.ID).Stringer("user_id", userID).Stringer("product_id", productID).Msg("service: buy-now order placed")

	return o, nil
}

func (s *service) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.orders.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Err(err).Stringer("order_id", id).Msg("service: order not found by id")
			return nil, ErrOrderNotFound
		}

		log.Error().Err(err).Msg("service: failed to fetch order by id in repository")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}

	return o, nil
}

func (s *service) GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orders, err := s.orders.GetOrdersByUserID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch user orders in repository")
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}

	return orders, nil
}

func (s *service) GetAllOrders(ctx context.Context) ([]Order, error) {
	orders, err := s.orders.GetAllOrders(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to fetch all orders in repository")
		return nil, fmt.Errorf("service: failed to fetch all orders: %w", err)
	}

	return orders, nil
}

// UpdateOrderStatus overwrites the order status. Transitions are not
// constrained beyond membership in the known status set; cancellation is the
// only guarded path and lives in CancelOrder.
func (s *service) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus Status) error {
	if !ValidStatus(newStatus) {
		return ErrInvalidStatus
	}

	err := s.orders.UpdateOrderStatus(ctx, orderID, newStatus)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Err(err).Stringer("order_id", orderID).Stringer("new_status", newStatus).Msg("service: order not found, cannot update status")
			return ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Stringer("new_status", newStatus).Msg("service: failed to update order status in repository")
		return fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().Stringer("order_id", orderID).Stringer("new_status", newStatus).Msg("service: order status updated")
	return nil
}

func (s *service) CancelOrder(ctx context.Context, orderID uuid.UUID) error {
	err := s.orders.CancelOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrCannotCancel) {
			return err
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to cancel order in repository")
		return fmt.Errorf("service: failed to cancel order: %w", err)
	}

	log.Info().Stringer("order_id", orderID).Msg("service: order cancelled")
	return nil
}
