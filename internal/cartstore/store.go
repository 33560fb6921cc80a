package cartstore

import (
	"context"
	"errors"
	"time"

	"github.com/agrohub/marketplace/internal/domain"
)

// Store keeps a buyer's pending selections as one value per user, expiring
// after DefaultTTL of inactivity. Reads soft-fail to an empty cart; writes
// fail loudly with ErrCartUnavailable.
//
// Add and Remove are read-modify-write over the whole cart; two concurrent
// writers for the same user can lose an update (last write wins). Known
// limitation for a single-buyer cart, left as is.
type Store interface {
	Get(ctx context.Context, userID int64) (domain.Cart, error)
	Set(ctx context.Context, cart domain.Cart) error
	Clear(ctx context.Context, userID int64) error

	Add(ctx context.Context, userID int64, line domain.CartLine) error
	Remove(ctx context.Context, userID int64, productID int64) error
}

var ErrCartUnavailable = errors.New("cart store unavailable")

const DefaultTTL = 7 * 24 * time.Hour
