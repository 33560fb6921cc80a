package domain

// CartLine is one pending selection in a buyer's cart. VendorID is a
// denormalized copy of the product's owner at add time; it is re-resolved
// from the product row at checkout, which is the authoritative validation
// point.
type CartLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	VendorID  int64 `json:"vendor_id"`
}

type Cart struct {
	UserID int64
	Lines  []CartLine
}

// Upsert merges a line into the cart: quantity is incremented if the
// product is already present, otherwise the line is appended.
func (c *Cart) Upsert(line CartLine) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == line.ProductID {
			c.Lines[i].Quantity += line.Quantity
			return
		}
	}

	c.Lines = append(c.Lines, line)
}

// Remove drops the line for the given product, if present.
func (c *Cart) Remove(productID int64) {
	filtered := c.Lines[:0]
	for _, line := range c.Lines {
		if line.ProductID != productID {
			filtered = append(filtered, line)
		}
	}
	c.Lines = filtered
}

// CartItemView is a cart line joined with live product state, served by
// GET /cart. Price reflects the current catalog price, not an add-time
// snapshot.
type CartItemView struct {
	ProductID     int64
	Quantity      int
	VendorID      int64
	Price         Money
	Name          string
	ArticleNumber string
}
