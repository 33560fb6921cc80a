package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/agrohub/marketplace/internal/service"
	"github.com/agrohub/marketplace/internal/validation"
)

func registerCartRoutes(rg *gin.RouterGroup, cfg Config, v *validatorv10.Validate) {
	rg.GET("/cart", func(c *gin.Context) {
		actor := actorFrom(c)

		views, err := cfg.Carts.List(c.Request.Context(), actor.UserID)
		if err != nil {
			cfg.Logger.ErrorContext(c.Request.Context(), "cart list failed",
				"user_id", actor.UserID, "error", err)
			writeServiceError(c, err)
			return
		}

		out := make([]cartItemResponse, 0, len(views))
		for _, view := range views {
			out = append(out, toCartItemResponse(view))
		}

		c.JSON(http.StatusOK, out)
	})

	rg.POST("/cart/items", func(c *gin.Context) {
		actor := actorFrom(c)

		var req validation.AddCartItemRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		err := cfg.Carts.Add(c.Request.Context(), actor.UserID, req.ProductID, req.Quantity)
		if err != nil {
			// Unknown product is a 404 here, unlike checkout where a
			// vanished product is a 400 on the whole cart.
			var productNotFound service.ProductNotFoundError
			if errors.As(err, &productNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found", "msg": "Product not found"})
				return
			}

			writeServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Added"})
	})

	rg.DELETE("/cart/items/:productID", func(c *gin.Context) {
		actor := actorFrom(c)

		productID, err := strconv.ParseInt(c.Param("productID"), 10, 64)
		if err != nil || productID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_product_id"})
			return
		}

		if err := cfg.Carts.Remove(c.Request.Context(), actor.UserID, productID); err != nil {
			writeServiceError(c, err)
			return
		}

		c.Status(http.StatusNoContent)
	})
}
