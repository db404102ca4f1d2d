package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wc-unleashed-sync/internal/config"
	"wc-unleashed-sync/internal/unleashed"
)

func validConfig() *config.Config {
	return &config.Config{
		DBConnString: "postgres://unused",
		Unleashed: config.UnleashedConfig{
			APIID:   "id",
			APIKey:  "key",
			TaxCode: "GST",
		},
		Webhook:  config.WebhookConfig{Secret: "s"},
		Checkout: config.CheckoutConfig{DeliveryMethods: []string{"Courier"}},
	}
}

func TestNew_WiresServices(t *testing.T) {
	cfg := validConfig()
	a, err := New(cfg, nil, nil)
	require.NoError(t, err)

	assert.NotNil(t, a.Registration)
	assert.NotNil(t, a.Products)
	assert.Equal(t, []string{"Courier"}, a.Checkout.DeliveryMethods())

	deps := a.HTTPDeps(cfg)
	assert.Equal(t, "s", deps.WebhookSecret)
	assert.NotNil(t, deps.CustomerCodes)
}

func TestNew_MissingCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Unleashed.APIKey = ""
	_, err := New(cfg, nil, nil)
	assert.ErrorIs(t, err, unleashed.ErrMissingAPIKey)
}

func TestNew_BadRegionsFile(t *testing.T) {
	cfg := validConfig()
	cfg.RegionsFile = "/nonexistent/regions.yaml"
	_, err := New(cfg, nil, nil)
	assert.Error(t, err)
}
