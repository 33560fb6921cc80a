package domain

import "time"

type ProductStatus string

const (
	ProductStatusInStock ProductStatus = "In_Stock"
	ProductStatusOnOrder ProductStatus = "On_Order"
)

// ProductStatusFor derives the catalog status from the remaining stock.
func ProductStatusFor(stockQuantity int) ProductStatus {
	if stockQuantity > 0 {
		return ProductStatusInStock
	}
	return ProductStatusOnOrder
}

// Product is owned by the catalog subsystem. The order engine reads it and
// decrements StockQuantity at checkout, nothing else.
type Product struct {
	ID            int64
	VendorID      int64
	Name          string
	ArticleNumber string
	Price         Money
	StockQuantity int
	Status        ProductStatus
	CreatedAt     time.Time
}
