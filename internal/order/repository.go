package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/BTC001B/store/internal/catalog"
	"github.com/BTC001B/store/internal/db"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderItemNotFound = errors.New("order item not found")
	ErrCannotCancel      = errors.New("order cannot be cancelled")
)

// StockLedger applies and reverses stock reservations inside the order
// transaction.
type StockLedger interface {
	Reserve(ctx context.Context, q db.Querier, productID uuid.UUID, qty int) error
	Release(ctx context.Context, q db.Querier, productID uuid.UUID, qty int) error
}

// CartClearer deletes a user's cart lines, used to empty the cart in the same
// transaction that commits the order.
type CartClearer interface {
	Clear(ctx context.Context, q db.Querier, userID uuid.UUID) error
}

type Repository interface {
	// PlaceOrder persists the order and its items, reserves stock per item
	// and optionally clears the user's cart, all in one transaction. Any
	// failure rolls the whole order back.
	PlaceOrder(ctx context.Context, o *Order, clearCart bool) (uuid.UUID, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrderItemByID(ctx context.Context, id uuid.UUID) (*Item, error)
	GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error)
	GetAllOrders(ctx context.Context) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus Status) error
	// CancelOrder sets the order to Cancelled and releases its stock
	// reservations, unless the order is already Shipped or Delivered.
	CancelOrder(ctx context.Context, orderID uuid.UUID) error
}

type postgresRepository struct {
	db     *pgxpool.Pool
	ledger StockLedger
	carts  CartClearer
}

func NewRepository(pool *pgxpool.Pool, ledger StockLedger, carts CartClearer) Repository {
	return &postgresRepository{
		db:     pool,
		ledger: ledger,
		carts:  carts,
	}
}

func (r *postgresRepository) PlaceOrder(ctx context.Context, o *Order, clearCart bool) (orderID uuid.UUID, err error) {
	finalOrderID := o.ID
	if finalOrderID == uuid.Nil {
		genID, genErr := uuid.NewV4()
		if genErr != nil {
			return uuid.Nil, fmt.Errorf("repository: failed to generate order ID: %w", genErr)
		}
		finalOrderID = genID
	}
	o.ID = finalOrderID

	tx, beginErr := r.db.Begin(ctx)
	if beginErr != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic_value", p).Stringer("order_id_attempted", finalOrderID).Msg("Panic recovered during PlaceOrder, rolling back")
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id_attempted", finalOrderID).Msg("Failed to rollback transaction after panic")
			}
			panic(p)
		} else if err != nil {
			log.Warn().Err(err).Stringer("order_id_attempted", finalOrderID).Msg("Transaction for PlaceOrder failed, rolling back")
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id_attempted", finalOrderID).Msg("Failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				log.Error().Err(commitErr).Stringer("order_id", finalOrderID).Msg("Failed to commit transaction")
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	now := time.Now().UTC()

	queryOrder := `
		INSERT INTO orders (id, user_id, total_amount, discount, final_amount, payment_method, shipping_address, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	`
	_, err = tx.Exec(ctx, queryOrder,
		finalOrderID,
		o.UserID,
		o.TotalAmount,
		o.Discount,
		o.FinalAmount,
		o.PaymentMethod,
		o.ShippingAddress,
		string(o.Status),
		now,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to insert order: %w", err)
	}
	o.CreatedAt = now
	o.UpdatedAt = now

	queryItem := `
		INSERT INTO order_items (id, order_id, product_id, quantity, price, total_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`
	for i := range o.Items {
		item := &o.Items[i]

		itemID, genErr := uuid.NewV4()
		if genErr != nil {
			err = fmt.Errorf("repository: failed to generate order item ID: %w", genErr)
			return uuid.Nil, err
		}
		item.ID = itemID
		item.OrderID = finalOrderID

		_, err = tx.Exec(ctx, queryItem,
			item.ID,
			finalOrderID,
			item.ProductID,
			item.Quantity,
			item.Price,
			item.TotalPrice,
			now,
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("repository: failed to insert order item for order %s: %w", finalOrderID, err)
		}
		item.CreatedAt = now
		item.UpdatedAt = now

		if err = r.ledger.Reserve(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return uuid.Nil, err
		}
	}

	if clearCart {
		if err = r.carts.Clear(ctx, tx, o.UserID); err != nil {
			return uuid.Nil, err
		}
	}

	return finalOrderID, nil
}

func (r *postgresRepository) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	queryOrder := `
		SELECT id, user_id, total_amount, discount, final_amount, payment_method, shipping_address, status, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var o Order
	err := r.db.QueryRow(ctx, queryOrder, orderID).Scan(
		&o.ID,
		&o.UserID,
		&o.TotalAmount,
		&o.Discount,
		&o.FinalAmount,
		&o.PaymentMethod,
		&o.ShippingAddress,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}

		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", orderID, err)
	}

	items, err := r.queryItemsWithProduct(ctx, `oi.order_id = $1`, orderID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to load items for order %s: %w", orderID, err)
	}
	o.Items = items

	return &o, nil
}

func (r *postgresRepository) GetOrderItemByID(ctx context.Context, itemID uuid.UUID) (*Item, error) {
	query := `
		SELECT id, order_id, product_id, quantity, price, total_price, created_at, updated_at
		FROM order_items
		WHERE id = $1
	`

	var item Item
	err := r.db.QueryRow(ctx, query, itemID).Scan(
		&item.ID,
		&item.OrderID,
		&item.ProductID,
		&item.Quantity,
		&item.Price,
		&item.TotalPrice,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderItemNotFound
		}

		return nil, fmt.Errorf("repository: failed to select order item by id %s: %w", itemID, err)
	}

	return &item, nil
}

func (r *postgresRepository) GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	userOrdersQuery := `
		SELECT id, user_id, total_amount, discount, final_amount, payment_method, shipping_address, status, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	orderRows, err := r.db.Query(ctx, userOrdersQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders for user id %s: %w", userID, err)
	}
	defer orderRows.Close()

	ordersMap := make(map[uuid.UUID]*Order)
	var orderIDs []uuid.UUID

	for orderRows.Next() {
		var o Order
		err := orderRows.Scan(
			&o.ID,
			&o.UserID,
			&o.TotalAmount,
			&o.Discount,
			&o.FinalAmount,
			&o.PaymentMethod,
			&o.ShippingAddress,
			&o.Status,
			&o.CreatedAt,
			&o.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order for user id %s: %w", userID, err)
		}
		o.Items = make([]Item, 0)
		ordersMap[o.ID] = &o
		orderIDs = append(orderIDs, o.ID)
	}

	if err = orderRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders for user id %s: %w", userID, err)
	}

	if len(orderIDs) == 0 {
		return []Order{}, nil
	}

	items, err := r.queryItemsWithProduct(ctx, `oi.order_id = ANY($1)`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to load items for user id %s: %w", userID, err)
	}

	for i := range items {
		if o, ok := ordersMap[items[i].OrderID]; ok {
			o.Items = append(o.Items, items[i])
		}
	}

	resultOrders := make([]Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		if o, ok := ordersMap[id]; ok {
			resultOrders = append(resultOrders, *o)
		}
	}

	return resultOrders, nil
}

func (r *postgresRepository) GetAllOrders(ctx context.Context) ([]Order, error) {
	query := `
		SELECT id, user_id, total_amount, discount, final_amount, payment_method, shipping_address, status, created_at, updated_at
		FROM orders
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query all orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		var o Order
		err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.TotalAmount,
			&o.Discount,
			&o.FinalAmount,
			&o.PaymentMethod,
			&o.ShippingAddress,
			&o.Status,
			&o.CreatedAt,
			&o.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating all orders: %w", err)
	}

	return orders, nil
}

func (r *postgresRepository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus Status) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	cmdTag, err := r.db.Exec(ctx, query,
		string(newStatus),
		time.Now().UTC(),
		orderID,
	)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Str("new_status", string(newStatus)).Msg("repository: failed to update order status")
		return fmt.Errorf("repository: failed to update order status %s: %w", orderID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		log.Warn().Stringer("order_id", orderID).Str("new_status", string(newStatus)).Msg("repository: order not found for status update")
		return ErrOrderNotFound
	}

	return nil
}

func (r *postgresRepository) CancelOrder(ctx context.Context, orderID uuid.UUID) (err error) {
	tx, beginErr := r.db.Begin(ctx)
	if beginErr != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", orderID).Msg("Failed to rollback transaction after panic")
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", orderID).Msg("Failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				log.Error().Err(commitErr).Stringer("order_id", orderID).Msg("Failed to commit transaction")
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	// Lock the row so concurrent cancels or status updates serialize here.
	var current Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrOrderNotFound
		} else {
			err = fmt.Errorf("repository: failed to select order %s for cancel: %w", orderID, err)
		}
		return err
	}

	if current == StatusShipped || current == StatusDelivered {
		err = ErrCannotCancel
		return err
	}

	// Cancelling twice must not release stock twice.
	if current == StatusCancelled {
		return nil
	}

	itemRows, queryErr := tx.Query(ctx, `SELECT product_id, quantity FROM order_items WHERE order_id = $1`, orderID)
	if queryErr != nil {
		err = fmt.Errorf("repository: failed to query items of order %s for cancel: %w", orderID, queryErr)
		return err
	}

	type reservation struct {
		productID uuid.UUID
		quantity  int
	}
	var reservations []reservation
	for itemRows.Next() {
		var res reservation
		if scanErr := itemRows.Scan(&res.productID, &res.quantity); scanErr != nil {
			itemRows.Close()
			err = fmt.Errorf("repository: failed to scan item of order %s for cancel: %w", orderID, scanErr)
			return err
		}
		reservations = append(reservations, res)
	}
	itemRows.Close()
	if rowsErr := itemRows.Err(); rowsErr != nil {
		err = fmt.Errorf("repository: error iterating items of order %s for cancel: %w", orderID, rowsErr)
		return err
	}

	for _, res := range reservations {
		if err = r.ledger.Release(ctx, tx, res.productID, res.quantity); err != nil {
			return err
		}
	}

	_, err = tx.Exec(ctx, `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		string(StatusCancelled), time.Now().UTC(), orderID)
	if err != nil {
		err = fmt.Errorf("repository: failed to mark order %s cancelled: %w", orderID, err)
		return err
	}

	return nil
}

func (r *postgresRepository) queryItemsWithProduct(ctx context.Context, where string, arg any) ([]Item, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price, oi.total_price, oi.created_at, oi.updated_at,
		       p.id, p.name, p.price, p.stock, p.seller_id, p.created_at, p.updated_at
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE ` + where

	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var item Item
		var product catalog.Product
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.Price,
			&item.TotalPrice,
			&item.CreatedAt,
			&item.UpdatedAt,
			&product.ID,
			&product.Name,
			&product.Price,
			&product.Stock,
			&product.SellerID,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		item.Product = &product
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}
