package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wc-unleashed-sync/internal/domain"
	"wc-unleashed-sync/internal/logger"
	"wc-unleashed-sync/internal/service/checkout"
	productsvc "wc-unleashed-sync/internal/service/product"
	"wc-unleashed-sync/internal/service/registration"
)

// OrderStore keeps storefront order snapshots.
type OrderStore interface {
	Save(ctx context.Context, order domain.Order) error
}

// CustomerStore keeps storefront customer accounts.
type CustomerStore interface {
	Upsert(ctx context.Context, c domain.Customer) (*domain.Customer, error)
}

// Registrar runs and reports order registration.
type Registrar interface {
	Register(ctx context.Context, orderID int64) (registration.Outcome, error)
	Status(ctx context.Context, orderID int64) (registration.Registration, error)
}

// Checkout validates and stores checkout fields.
type Checkout interface {
	Validate(f checkout.Fields) []string
	Apply(ctx context.Context, orderID int64, f checkout.Fields) error
	DeliveryMethods() []string
}

// Quoter prices products per customer.
type Quoter interface {
	Quote(ctx context.Context, productID, customerID int64) (productsvc.Quote, error)
}

// CustomerCodes resolves Unleashed customer codes for storefront accounts.
type CustomerCodes interface {
	EnsureCustomerCode(ctx context.Context, customerID int64) (string, error)
}

// Deps are the services behind the routes.
type Deps struct {
	Orders        OrderStore
	Customers     CustomerStore
	Registration  Registrar
	Checkout      Checkout
	Products      Quoter
	CustomerCodes CustomerCodes

	// WebhookSecret enables X-WC-Webhook-Signature checks when set.
	WebhookSecret    string
	CORSAllowOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(log *zap.Logger, db Pinger, deps Deps) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(logger.GinMiddleware(log), logger.Recovery(log))
	router.Use(cors.New(corsConfig(deps.CORSAllowOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps}
	router.POST("/webhooks/orders", h.orderWebhook)

	orders := router.Group("/orders/:id")
	orders.POST("/register", h.registerOrder)
	orders.GET("/registration", h.registrationStatus)

	router.GET("/products/:id/price", h.productPrice)
	router.GET("/checkout/delivery-methods", h.deliveryMethods)
	router.POST("/checkout/validate", h.validateCheckout)
	router.POST("/customers/:id/login", h.customerLogin)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", logger.RequestIDHeader},
		ExposeHeaders: []string{logger.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

type handlers struct {
	deps Deps
}

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// idParam parses a positive numeric path parameter.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
