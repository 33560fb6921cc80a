package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agrohub/marketplace/internal/cartstore"
	"github.com/agrohub/marketplace/internal/domain"
	"github.com/agrohub/marketplace/internal/service"
)

const cartUnavailableMsg = "Cart is temporarily unavailable. Try again later."

type cartItemResponse struct {
	ProductID     int64  `json:"product_id"`
	Quantity      int    `json:"quantity"`
	VendorID      int64  `json:"vendor_id"`
	Price         string `json:"price"`
	Name          string `json:"name"`
	ArticleNumber string `json:"article_number"`
}

type orderItemResponse struct {
	ID           int64  `json:"id"`
	ProductID    int64  `json:"product_id"`
	Quantity     int    `json:"quantity"`
	PriceAtOrder string `json:"price_at_order"`
}

type orderResponse struct {
	ID              int64               `json:"id"`
	OrderNumber     string              `json:"order_number"`
	UserID          int64               `json:"user_id"`
	VendorID        int64               `json:"vendor_id"`
	TotalAmount     string              `json:"total_amount"`
	Currency        string              `json:"currency"`
	Status          string              `json:"status"`
	DeliveryAddress string              `json:"delivery_address"`
	Comment         string              `json:"comment"`
	CreatedAt       time.Time           `json:"created_at"`
	Items           []orderItemResponse `json:"items"`
}

func toCartItemResponse(view domain.CartItemView) cartItemResponse {
	return cartItemResponse{
		ProductID:     view.ProductID,
		Quantity:      view.Quantity,
		VendorID:      view.VendorID,
		Price:         view.Price.Amount.StringFixed(2),
		Name:          view.Name,
		ArticleNumber: view.ArticleNumber,
	}
}

func toOrderResponse(order domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:           item.ID,
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			PriceAtOrder: item.PriceAtOrder.Amount.StringFixed(2),
		})
	}

	return orderResponse{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		UserID:          order.UserID,
		VendorID:        order.VendorID,
		TotalAmount:     order.TotalAmount.Amount.StringFixed(2),
		Currency:        order.TotalAmount.Currency.String(),
		Status:          string(order.Status),
		DeliveryAddress: order.DeliveryAddress,
		Comment:         order.Comment,
		CreatedAt:       order.CreatedAt,
		Items:           items,
	}
}

// writeServiceError maps service failures to status codes: validation
// errors are the client's mistake (400), backend-unavailable errors are
// retryable (503).
func writeServiceError(c *gin.Context, err error) {
	var (
		productNotFound   service.ProductNotFoundError
		insufficientStock service.InsufficientStockError
	)

	switch {
	case errors.Is(err, service.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cart_is_empty", "msg": "Cart is empty"})

	case errors.As(err, &productNotFound):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "product_not_found",
			"product_id": productNotFound.ProductID,
			"msg":        productNotFound.Error(),
		})

	case errors.As(err, &insufficientStock):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "insufficient_stock",
			"product_id": insufficientStock.ProductID,
			"requested":  insufficientStock.Requested,
			"available":  insufficientStock.Available,
			"msg":        insufficientStock.Error(),
		})

	case errors.Is(err, cartstore.ErrCartUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cart_unavailable", "msg": cartUnavailableMsg})

	case errors.Is(err, service.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found", "msg": "Order not found"})

	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "msg": "Forbidden"})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
