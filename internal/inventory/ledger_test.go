package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/BTC001B/store/internal/inventory"
)

type fakeQuerier struct {
	execFunc func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (f *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return f.execFunc(ctx, sql, args...)
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}

func (f *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}

func TestLedger_Reserve(t *testing.T) {
	productID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name      string
		qty       int
		execFunc  func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
		wantErr   bool
		wantErrIs error
	}{
		{
			name: "success",
			qty:  3,
			execFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
				return pgconn.NewCommandTag("UPDATE 1"), nil
			},
		},
		{
			name: "out_of_stock",
			qty:  3,
			execFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
				return pgconn.NewCommandTag("UPDATE 0"), nil
			},
			wantErr:   true,
			wantErrIs: inventory.ErrOutOfStock,
		},
		{
			name: "non_positive_quantity",
			qty:  0,
			execFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
				t.Fatal("exec must not be called for non-positive quantity")
				return pgconn.CommandTag{}, nil
			},
			wantErr: true,
		},
		{
			name: "db_error",
			qty:  1,
			execFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
				return pgconn.CommandTag{}, errors.New("connection reset")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := inventory.NewLedger()
			err := ledger.Reserve(context.Background(), &fakeQuerier{execFunc: tt.execFunc}, productID, tt.qty)
			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantErrIs != nil {
					assert.True(t, errors.Is(err, tt.wantErrIs))
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLedger_Release(t *testing.T) {
	productID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name     string
		qty      int
		execFunc func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
		wantErr  bool
	}{
		{
			name: "success",
			qty:  2,
			execFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
				return pgconn.NewCommandTag("UPDATE 1"), nil
			},
		},
		{
			name: "missing_product",
			qty:  2,
			execFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
				return pgconn.NewCommandTag("UPDATE 0"), nil
			},
			wantErr: true,
		},
		{
			name: "non_positive_quantity",
			qty:  -1,
			execFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
				t.Fatal("exec must not be called for non-positive quantity")
				return pgconn.CommandTag{}, nil
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := inventory.NewLedger()
			err := ledger.Release(context.Background(), &fakeQuerier{execFunc: tt.execFunc}, productID, tt.qty)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
