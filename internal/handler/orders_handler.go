package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/agrohub/marketplace/internal/domain"
	"github.com/agrohub/marketplace/internal/validation"
)

func registerOrderRoutes(rg *gin.RouterGroup, cfg Config, v *validatorv10.Validate) {
	rg.GET("/orders", func(c *gin.Context) {
		actor := actorFrom(c)

		orders, err := cfg.Orders.List(c.Request.Context(), actor)
		if err != nil {
			cfg.Logger.ErrorContext(c.Request.Context(), "order list failed",
				"user_id", actor.UserID, "error", err)
			writeServiceError(c, err)
			return
		}

		out := make([]orderResponse, 0, len(orders))
		for _, order := range orders {
			out = append(out, toOrderResponse(order))
		}

		c.JSON(http.StatusOK, out)
	})

	rg.GET("/orders/:orderID", func(c *gin.Context) {
		actor := actorFrom(c)

		orderID, ok := orderIDParam(c)
		if !ok {
			return
		}

		order, err := cfg.Orders.Get(c.Request.Context(), actor, orderID)
		if err != nil {
			writeServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, toOrderResponse(order))
	})

	rg.PATCH("/orders/:orderID/status", func(c *gin.Context) {
		actor := actorFrom(c)

		orderID, ok := orderIDParam(c)
		if !ok {
			return
		}

		var req validation.UpdateOrderStatusRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		status, err := domain.ToOrderStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_status", "msg": err.Error()})
			return
		}

		order, err := cfg.Orders.UpdateStatus(c.Request.Context(), actor, orderID, status)
		if err != nil {
			writeServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, toOrderResponse(order))
	})
}

func orderIDParam(c *gin.Context) (int64, bool) {
	orderID, err := strconv.ParseInt(c.Param("orderID"), 10, 64)
	if err != nil || orderID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_order_id"})
		return 0, false
	}
	return orderID, true
}
