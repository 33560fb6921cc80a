package port

import "context"

// TxManager runs fn against order and product repositories bound to one
// database transaction. fn returning an error rolls everything back.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(orders OrderRepository, products ProductRepository) error) error
}
