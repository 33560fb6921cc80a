package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agrohub/marketplace/internal/validation"
)

func registerCheckoutRoutes(rg *gin.RouterGroup, cfg Config) {
	rg.POST("/checkout", func(c *gin.Context) {
		actor := actorFrom(c)

		// Both fields are optional, so an empty body is fine.
		var req validation.CheckoutRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body", "msg": err.Error()})
				return
			}
		}

		orderIDs, err := cfg.Checkout.Checkout(c.Request.Context(), actor.UserID, req.DeliveryAddress, req.Comment)
		if err != nil {
			cfg.Logger.WarnContext(c.Request.Context(), "checkout failed",
				"user_id", actor.UserID, "error", err)
			writeServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"order_ids": orderIDs,
			"message":   "Orders created",
		})
	})
}
