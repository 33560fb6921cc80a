package port

import (
	"context"

	"github.com/agrohub/marketplace/internal/domain"
)

type ProductRepository interface {
	GetProduct(ctx context.Context, productID int64) (domain.Product, error)

	GetProducts(ctx context.Context, productIDs []int64) ([]domain.Product, error)

	// LockProducts reads the rows with SELECT ... FOR UPDATE, ordered by id
	// so concurrent checkouts acquire locks in the same order. Only valid
	// inside a transaction.
	LockProducts(ctx context.Context, productIDs []int64) ([]domain.Product, error)

	// DecrementStock reduces stock_quantity and re-derives the product
	// status. The update is guarded by stock_quantity >= quantity.
	DecrementStock(ctx context.Context, productID int64, quantity int) error
}
