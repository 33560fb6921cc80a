package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/samber/lo"

	"github.com/agrohub/marketplace/internal/cartstore"
	"github.com/agrohub/marketplace/internal/domain"
	"github.com/agrohub/marketplace/internal/port"
)

const (
	maxDeliveryAddressLen = 512
	maxCommentLen         = 1024
)

// CheckoutService converts a cart into one order per vendor inside a
// single database transaction. It is the only component allowed to clear
// a cart and to decrement product stock.
type CheckoutService struct {
	carts  cartstore.Store
	tx     port.TxManager
	audit  port.AuditSink
	logger *slog.Logger
}

func NewCheckout(carts cartstore.Store, tx port.TxManager, audit port.AuditSink, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{
		carts:  carts,
		tx:     tx,
		audit:  audit,
		logger: logger,
	}
}

// Checkout validates the whole cart against locked product rows, then per
// vendor group inserts an order with price snapshots and decrements stock.
// Validation is all-or-nothing: one bad line aborts the entire checkout
// with no orders created and no stock touched.
//
// The cart is cleared only after the transaction commits. If the clear
// fails the orders already exist; the error is surfaced as
// cartstore.ErrCartUnavailable and the stale cart expires via TTL or is
// overwritten by the next write. Residual gap, documented in DESIGN.md.
func (s *CheckoutService) Checkout(ctx context.Context, userID int64, deliveryAddress, comment string) ([]int64, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("carts.Get: %w", err)
	}

	if len(cart.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	deliveryAddress = sanitizeText(deliveryAddress, maxDeliveryAddressLen)
	comment = sanitizeText(comment, maxCommentLen)

	var orderIDs []int64

	err = s.tx.WithinTx(ctx, func(orders port.OrderRepository, products port.ProductRepository) error {
		productIDs := lo.Uniq(lo.Map(cart.Lines, func(line domain.CartLine, _ int) int64 {
			return line.ProductID
		}))

		// Row locks close the check-then-decrement race between concurrent
		// checkouts touching the same products.
		locked, err := products.LockProducts(ctx, productIDs)
		if err != nil {
			return fmt.Errorf("products.LockProducts: %w", err)
		}

		byID := lo.SliceToMap(locked, func(p domain.Product) (int64, domain.Product) {
			return p.ID, p
		})

		// Validation pass, all-or-nothing.
		for _, line := range cart.Lines {
			p, ok := byID[line.ProductID]
			if !ok {
				return ProductNotFoundError{ProductID: line.ProductID}
			}

			if line.Quantity > p.StockQuantity {
				return InsufficientStockError{
					ProductID:     p.ID,
					Name:          p.Name,
					ArticleNumber: p.ArticleNumber,
					Requested:     line.Quantity,
					Available:     p.StockQuantity,
				}
			}
		}

		// Partition pass: group by the product's current vendor, keeping
		// first-seen vendor order for deterministic order creation.
		var vendorIDs []int64
		groups := make(map[int64][]domain.CartLine)

		for _, line := range cart.Lines {
			vendorID := byID[line.ProductID].VendorID
			if _, ok := groups[vendorID]; !ok {
				vendorIDs = append(vendorIDs, vendorID)
			}
			groups[vendorID] = append(groups[vendorID], line)
		}

		// Creation pass, one order per vendor. Totals and price snapshots
		// use the current product price, not anything cached in the cart.
		for _, vendorID := range vendorIDs {
			lines := groups[vendorID]

			total := domain.Money{Currency: domain.DefaultCurrency}
			items := make([]domain.OrderItem, 0, len(lines))

			for i, line := range lines {
				p := byID[line.ProductID]

				if i == 0 {
					total.Currency = p.Price.Currency
				}

				total, err = total.Add(p.Price.MulQty(line.Quantity))
				if err != nil {
					return fmt.Errorf("total.Add: %w", err)
				}

				items = append(items, domain.OrderItem{
					ProductID:    line.ProductID,
					Quantity:     line.Quantity,
					PriceAtOrder: p.Price,
				})
			}

			created, err := orders.InsertOrder(ctx, domain.Order{
				UserID:          userID,
				VendorID:        vendorID,
				TotalAmount:     total,
				Status:          domain.OrderStatusNew,
				DeliveryAddress: deliveryAddress,
				Comment:         comment,
				Items:           items,
			})
			if err != nil {
				return fmt.Errorf("orders.InsertOrder: %w", err)
			}

			for _, line := range lines {
				if err := products.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
					return fmt.Errorf("products.DecrementStock: %w", err)
				}
			}

			orderIDs = append(orderIDs, created.ID)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("tx.WithinTx: %w", err)
	}

	// Orders are committed at this point. A failing clear leaves them in
	// place and the caller sees a retryable storage error.
	if err := s.carts.Clear(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "cart clear failed after committed checkout",
			"user_id", userID, "order_ids", orderIDs, "error", err)
		return nil, fmt.Errorf("carts.Clear: %w", err)
	}

	for _, orderID := range orderIDs {
		if err := s.audit.Record(ctx, domain.AuditEntry{
			UserID:     userID,
			Action:     "order.created",
			EntityType: "order",
			EntityID:   orderID,
		}); err != nil {
			s.logger.WarnContext(ctx, "audit record failed", "order_id", orderID, "error", err)
		}
	}

	return orderIDs, nil
}

// sanitizeText trims whitespace, drops control characters and caps the
// length in runes.
func sanitizeText(s string, maxLen int) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' {
			return -1
		}
		return r
	}, s)

	s = strings.TrimSpace(s)

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen])
	}

	return s
}
