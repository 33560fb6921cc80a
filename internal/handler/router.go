package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agrohub/marketplace/internal/domain"
	"github.com/agrohub/marketplace/internal/validation"
)

// CartAPI, CheckoutAPI and OrderAPI are the slices of the service layer
// the HTTP handlers need; tests substitute fakes.
type CartAPI interface {
	List(ctx context.Context, userID int64) ([]domain.CartItemView, error)
	Add(ctx context.Context, userID int64, productID int64, quantity int) error
	Remove(ctx context.Context, userID int64, productID int64) error
}

type CheckoutAPI interface {
	Checkout(ctx context.Context, userID int64, deliveryAddress, comment string) ([]int64, error)
}

type OrderAPI interface {
	Get(ctx context.Context, actor domain.Actor, orderID int64) (domain.Order, error)
	List(ctx context.Context, actor domain.Actor) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, actor domain.Actor, orderID int64, status domain.OrderStatus) (domain.Order, error)
}

// Config groups dependencies for the HTTP surface.
type Config struct {
	Carts    CartAPI
	Checkout CheckoutAPI
	Orders   OrderAPI
	Logger   *slog.Logger
}

func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v := validation.New()

	authed := r.Group("/", RequireActor())
	registerCartRoutes(authed, cfg, v)
	registerCheckoutRoutes(authed, cfg)
	registerOrderRoutes(authed, cfg, v)

	return r
}
