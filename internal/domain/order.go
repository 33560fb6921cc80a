package domain

import (
	"fmt"
	"time"
)

type Order struct {
	ID              int64
	OrderNumber     string
	UserID          int64
	VendorID        int64
	TotalAmount     Money
	Status          OrderStatus
	DeliveryAddress string
	Comment         string
	Items           []OrderItem

	CreatedAt time.Time
}

// OrderItem snapshots the product price at checkout time. PriceAtOrder is
// immutable afterwards: later catalog price changes never touch it.
type OrderItem struct {
	ID           int64
	OrderID      int64
	ProductID    int64
	Quantity     int
	PriceAtOrder Money
}

// BuildOrderNumber derives the human-readable order number from the
// creation year and the generated row id, e.g. ORD-2025-000042. It is only
// computable after the order row exists.
func BuildOrderNumber(orderID int64, createdAt time.Time) string {
	return fmt.Sprintf("ORD-%d-%06d", createdAt.UTC().Year(), orderID)
}

// ItemsTotal sums quantity * price_at_order over the order's items.
func (o Order) ItemsTotal() (Money, error) {
	total := Money{Currency: DefaultCurrency}
	if len(o.Items) > 0 {
		total.Currency = o.Items[0].PriceAtOrder.Currency
	}

	for _, item := range o.Items {
		var err error
		total, err = total.Add(item.PriceAtOrder.MulQty(item.Quantity))
		if err != nil {
			return Money{}, fmt.Errorf("total.Add: %w", err)
		}
	}

	return total, nil
}
