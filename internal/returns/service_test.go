package returns_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/BTC001B/store/internal/order"
	"github.com/BTC001B/store/internal/returns"
)

type mockReturnRepository struct {
	createReturnFunc       func(ctx context.Context, ret *returns.Return) (*returns.Return, *returns.Item, error)
	getReturnByIDFunc      func(ctx context.Context, id uuid.UUID) (*returns.Return, error)
	listReturnsFunc        func(ctx context.Context, userID *uuid.UUID) ([]returns.Return, error)
	updateReturnStatusFunc func(ctx context.Context, returnID uuid.UUID, newStatus returns.Status) (*returns.Return, error)
	hasOpenReturnFunc      func(ctx context.Context, orderItemID uuid.UUID) (bool, error)
}

func (m *mockReturnRepository) CreateReturn(ctx context.Context, ret *returns.Return) (*returns.Return, *returns.Item, error) {
	return m.createReturnFunc(ctx, ret)
}

func (m *mockReturnRepository) GetReturnByID(ctx context.Context, id uuid.UUID) (*returns.Return, error) {
	return m.getReturnByIDFunc(ctx, id)
}

func (m *mockReturnRepository) ListReturns(ctx context.Context, userID *uuid.UUID) ([]returns.Return, error) {
	return m.listReturnsFunc(ctx, userID)
}

func (m *mockReturnRepository) UpdateReturnStatus(ctx context.Context, returnID uuid.UUID, newStatus returns.Status) (*returns.Return, error) {
	return m.updateReturnStatusFunc(ctx, returnID, newStatus)
}

func (m *mockReturnRepository) HasOpenReturn(ctx context.Context, orderItemID uuid.UUID) (bool, error) {
	return m.hasOpenReturnFunc(ctx, orderItemID)
}

type mockOrderReader struct {
	getOrderByIDFunc     func(ctx context.Context, id uuid.UUID) (*order.Order, error)
	getOrderItemByIDFunc func(ctx context.Context, id uuid.UUID) (*order.Item, error)
}

func (m *mockOrderReader) GetOrderByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return m.getOrderByIDFunc(ctx, id)
}

func (m *mockOrderReader) GetOrderItemByID(ctx context.Context, id uuid.UUID) (*order.Item, error) {
	return m.getOrderItemByIDFunc(ctx, id)
}

func TestReturnService_CreateReturn(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())
	userID := uuid.Must(uuid.NewV4())
	otherUserID := uuid.Must(uuid.NewV4())
	orderItemID := uuid.Must(uuid.NewV4())
	otherOrderID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name         string
		getOrder     func(ctx context.Context, id uuid.UUID) (*order.Order, error)
		getOrderItem func(ctx context.Context, id uuid.UUID) (*order.Item, error)
		hasOpen      func(ctx context.Context, orderItemID uuid.UUID) (bool, error)
		wantErrIs    error
	}{
		{
			name: "order_not_found",
			getOrder: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				return nil, order.ErrOrderNotFound
			},
			wantErrIs: order.ErrOrderNotFound,
		},
		{
			name: "order_belongs_to_someone_else",
			getOrder: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				return &order.Order{ID: id, UserID: otherUserID}, nil
			},
			wantErrIs: returns.ErrNotOrderOwner,
		},
		{
			name: "order_item_not_found",
			getOrder: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				return &order.Order{ID: id, UserID: userID}, nil
			},
			getOrderItem: func(ctx context.Context, id uuid.UUID) (*order.Item, error) {
				return nil, order.ErrOrderItemNotFound
			},
			wantErrIs: order.ErrOrderItemNotFound,
		},
		{
			name: "item_from_another_order",
			getOrder: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				return &order.Order{ID: id, UserID: userID}, nil
			},
			getOrderItem: func(ctx context.Context, id uuid.UUID) (*order.Item, error) {
				return &order.Item{ID: id, OrderID: otherOrderID}, nil
			},
			wantErrIs: returns.ErrItemNotInOrder,
		},
		{
			name: "already_has_open_return",
			getOrder: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				return &order.Order{ID: id, UserID: userID}, nil
			},
			getOrderItem: func(ctx context.Context, id uuid.UUID) (*order.Item, error) {
				return &order.Item{ID: id, OrderID: orderID}, nil
			},
			hasOpen: func(ctx context.Context, orderItemID uuid.UUID) (bool, error) {
				return true, nil
			},
			wantErrIs: returns.ErrAlreadyOpen,
		},
		{
			name: "success",
			getOrder: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				return &order.Order{ID: id, UserID: userID}, nil
			},
			getOrderItem: func(ctx context.Context, id uuid.UUID) (*order.Item, error) {
				return &order.Item{ID: id, OrderID: orderID}, nil
			},
			hasOpen: func(ctx context.Context, orderItemID uuid.UUID) (bool, error) {
				return false, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockReturnRepository{
				hasOpenReturnFunc: tt.hasOpen,
				createReturnFunc: func(ctx context.Context, ret *returns.Return) (*returns.Return, *returns.Item, error) {
					ret.ID = uuid.Must(uuid.NewV4())
					ret.Status = returns.StatusPending
					item := &returns.Item{
						ID:          uuid.Must(uuid.NewV4()),
						ReturnID:    ret.ID,
						OrderItemID: ret.OrderItemID,
						Status:      returns.StatusPending,
					}
					return ret, item, nil
				},
			}
			svc := returns.NewService(repo, &mockOrderReader{
				getOrderByIDFunc:     tt.getOrder,
				getOrderItemByIDFunc: tt.getOrderItem,
			})

			ret, item, err := svc.CreateReturn(context.Background(), orderID, userID, orderItemID, "wrong size")
			if tt.wantErrIs != nil {
				assert.True(t, errors.Is(err, tt.wantErrIs))
				assert.Nil(t, ret)
				assert.Nil(t, item)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, returns.StatusPending, ret.Status)
				assert.Equal(t, returns.StatusPending, item.Status)
				assert.Equal(t, orderItemID, ret.OrderItemID)
				assert.Equal(t, ret.ID, item.ReturnID)
			}
		})
	}
}

func TestReturnService_UpdateReturnStatus(t *testing.T) {
	returnID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name       string
		newStatus  returns.Status
		updateFunc func(ctx context.Context, returnID uuid.UUID, newStatus returns.Status) (*returns.Return, error)
		wantErrIs  error
	}{
		{
			name:      "unknown_status",
			newStatus: returns.Status("Lost"),
			updateFunc: func(ctx context.Context, returnID uuid.UUID, newStatus returns.Status) (*returns.Return, error) {
				t.Fatal("repository must not be called for an unknown status")
				return nil, nil
			},
			wantErrIs: returns.ErrInvalidStatus,
		},
		{
			name:      "not_found",
			newStatus: returns.StatusApproved,
			updateFunc: func(ctx context.Context, returnID uuid.UUID, newStatus returns.Status) (*returns.Return, error) {
				return nil, returns.ErrReturnNotFound
			},
			wantErrIs: returns.ErrReturnNotFound,
		},
		{
			name:      "overwrite_allowed_backwards",
			newStatus: returns.StatusPending,
			updateFunc: func(ctx context.Context, returnID uuid.UUID, newStatus returns.Status) (*returns.Return, error) {
				return &returns.Return{ID: returnID, Status: newStatus}, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := returns.NewService(&mockReturnRepository{updateReturnStatusFunc: tt.updateFunc}, &mockOrderReader{})

			ret, err := svc.UpdateReturnStatus(context.Background(), returnID, tt.newStatus)
			if tt.wantErrIs != nil {
				assert.True(t, errors.Is(err, tt.wantErrIs))
				assert.Nil(t, ret)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.newStatus, ret.Status)
			}
		})
	}
}

func TestReturnService_ListReturns(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())

	repo := &mockReturnRepository{
		listReturnsFunc: func(ctx context.Context, filter *uuid.UUID) ([]returns.Return, error) {
			if filter == nil {
				return []returns.Return{{}, {}, {}}, nil
			}
			assert.Equal(t, userID, *filter)
			return []returns.Return{{UserID: userID}}, nil
		},
	}
	svc := returns.NewService(repo, &mockOrderReader{})

	all, err := svc.ListReturns(context.Background(), nil)
	assert.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := svc.ListReturns(context.Background(), &userID)
	assert.NoError(t, err)
	assert.Len(t, mine, 1)
}
