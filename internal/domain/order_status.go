package domain

import "errors"

type OrderStatus string

// remember to add new statuses to the validOrderStatuses map
const (
	OrderStatusNew       OrderStatus = "New"
	OrderStatusPaid      OrderStatus = "Paid"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
)

var validOrderStatuses = map[OrderStatus]struct{}{
	OrderStatusNew:       {},
	OrderStatusPaid:      {},
	OrderStatusShipped:   {},
	OrderStatusDelivered: {},
}

func ToOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := validOrderStatuses[status]; ok {
		return status, nil
	}

	return "", errors.New("invalid order status")
}

func OrderStatuses() []OrderStatus {
	result := make([]OrderStatus, 0, len(validOrderStatuses))
	for status := range validOrderStatuses {
		result = append(result, status)
	}
	return result
}

// NotifiesBuyer reports whether a transition to this status triggers an
// SMS to the buyer.
func (s OrderStatus) NotifiesBuyer() bool {
	return s == OrderStatusShipped || s == OrderStatusDelivered
}
