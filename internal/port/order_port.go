package port

import (
	"context"

	"github.com/agrohub/marketplace/internal/domain"
)

type OrderRepository interface {
	GetOrder(ctx context.Context, orderID int64) (domain.Order, error)

	// ListOrders returns matching orders newest-first, items included.
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)

	// InsertOrder persists the order and its items and returns the stored
	// order with generated id, order number and timestamps filled in.
	InsertOrder(ctx context.Context, order domain.Order) (domain.Order, error)

	UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (domain.Order, error)
}
