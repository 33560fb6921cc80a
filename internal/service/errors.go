package service

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrForbidden     = errors.New("forbidden")
	ErrOrderNotFound = errors.New("order not found")
)

// ProductNotFoundError names the cart line whose product no longer exists.
type ProductNotFoundError struct {
	ProductID int64
}

func (e ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InsufficientStockError names the product and both quantities so the
// buyer can act on it.
type InsufficientStockError struct {
	ProductID     int64
	Name          string
	ArticleNumber string
	Requested     int
	Available     int
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (art. %s): available %d, requested %d",
		e.Name, e.ArticleNumber, e.Available, e.Requested)
}
