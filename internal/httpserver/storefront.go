package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wc-unleashed-sync/internal/domain"
	"wc-unleashed-sync/internal/logger"
	"wc-unleashed-sync/internal/service/checkout"
)

func (h *handlers) productPrice(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var customerID int64
	if raw := c.Query("customer_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			writeError(c, http.StatusBadRequest, "invalid customer_id")
			return
		}
		customerID = parsed
	}

	quote, err := h.deps.Products.Quote(c.Request.Context(), id, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(c, http.StatusNotFound, "product not found")
			return
		}
		logger.FromGin(c).Error("quote product", zap.Int64("product_id", id), zap.Error(err))
		writeError(c, http.StatusInternalServerError, "could not price product")
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *handlers) deliveryMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"delivery_methods": h.deps.Checkout.DeliveryMethods()})
}

func (h *handlers) validateCheckout(c *gin.Context) {
	var fields checkout.Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		writeError(c, http.StatusBadRequest, "invalid checkout payload")
		return
	}
	if notices := h.deps.Checkout.Validate(fields); len(notices) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"valid": false, "notices": notices})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// customerLogin runs after a storefront sign-in and makes sure the account knows
// its Unleashed customer code.
func (h *handlers) customerLogin(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	code, err := h.deps.CustomerCodes.EnsureCustomerCode(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(c, http.StatusNotFound, "customer not found")
			return
		}
		logger.FromGin(c).Warn("resolve customer code", zap.Int64("customer_id", id), zap.Error(err))
		writeError(c, http.StatusBadGateway, "unleashed lookup failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer_id": id, "customer_code": code})
}
