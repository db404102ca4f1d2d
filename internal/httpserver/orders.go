package httpserver

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wc-unleashed-sync/internal/domain"
	"wc-unleashed-sync/internal/logger"
)

const (
	webhookSignatureHeader = "X-WC-Webhook-Signature"
	maxWebhookBody         = 2 << 20
)

// orderWebhook stores the order snapshot sent by the storefront and registers it
// in Unleashed once it is completed.
func (h *handlers) orderWebhook(c *gin.Context) {
	log := logger.FromGin(c)

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, http.StatusRequestEntityTooLarge, "body too large")
			return
		}
		log.Warn("read webhook body", zap.Error(err))
		writeError(c, http.StatusBadRequest, "could not read body")
		return
	}
	if !validSignature(h.deps.WebhookSecret, body, c.GetHeader(webhookSignatureHeader)) {
		log.Warn("webhook signature mismatch")
		writeError(c, http.StatusUnauthorized, "invalid signature")
		return
	}
	// WooCommerce pings a new webhook with a form body before sending orders.
	if bytes.HasPrefix(body, []byte("webhook_id=")) {
		c.JSON(http.StatusOK, gin.H{"status": "pong"})
		return
	}

	var payload wooOrder
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(c, http.StatusBadRequest, "invalid order payload")
		return
	}
	if err := payload.validate(); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	order := payload.toDomain()
	log = log.With(zap.Int64("order_id", order.ID), zap.String("order_status", order.Status))

	if order.CustomerID != 0 && h.deps.Customers != nil {
		_, err := h.deps.Customers.Upsert(ctx, domain.Customer{
			ID:        order.CustomerID,
			Email:     order.Email(),
			FirstName: order.Billing.FirstName,
			LastName:  order.Billing.LastName,
		})
		if err != nil {
			log.Warn("store customer account", zap.Int64("customer_id", order.CustomerID), zap.Error(err))
		}
	}

	if err := h.deps.Orders.Save(ctx, order); err != nil {
		log.Error("save order", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "could not store order")
		return
	}
	if err := h.deps.Checkout.Apply(ctx, order.ID, payload.checkoutFields()); err != nil {
		log.Error("apply checkout fields", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "could not store checkout fields")
		return
	}

	if order.Status != domain.OrderStatusCompleted {
		c.JSON(http.StatusAccepted, gin.H{"order_id": order.ID, "status": "stored"})
		return
	}

	outcome, err := h.deps.Registration.Register(ctx, order.ID)
	if err != nil {
		log.Error("register order", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "registration failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": order.ID, "registration": outcome})
}

// validSignature checks the base64 HMAC-SHA256 of body. An empty secret accepts
// every request.
func validSignature(secret string, body []byte, signature string) bool {
	if secret == "" {
		return true
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (h *handlers) registerOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	outcome, err := h.deps.Registration.Register(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(c, http.StatusNotFound, "order not found")
			return
		}
		logger.FromGin(c).Error("register order", zap.Int64("order_id", id), zap.Error(err))
		writeError(c, http.StatusInternalServerError, "registration failed")
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (h *handlers) registrationStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	st, err := h.deps.Registration.Status(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(c, http.StatusNotFound, "order not found")
			return
		}
		logger.FromGin(c).Error("registration status", zap.Int64("order_id", id), zap.Error(err))
		writeError(c, http.StatusInternalServerError, "could not read registration")
		return
	}
	c.JSON(http.StatusOK, st)
}
