package validation

// AddCartItemRequest is the body of POST /cart/items.
type AddCartItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gte=1,lte=999"`
}

// CheckoutRequest is the body of POST /checkout. Both fields are optional;
// they are sanitized and length-capped by the checkout service.
type CheckoutRequest struct {
	DeliveryAddress string `json:"delivery_address"`
	Comment         string `json:"comment"`
}

// UpdateOrderStatusRequest is the body of PATCH /orders/{id}/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
