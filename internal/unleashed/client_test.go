package unleashed

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(Config{
		BaseURL:    srv.URL,
		Production: Credentials{ID: "prod-id", Secret: "prod-secret"},
	}, nil)
	require.NoError(t, err)
	return client
}

func expectedSignature(secret, query string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(query))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestClient_SignatureRawDecodesQuery(t *testing.T) {
	client, err := New(Config{Production: Credentials{ID: "prod-id", Secret: "prod-secret"}}, nil)
	require.NoError(t, err)

	assert.Equal(t, expectedSignature("prod-secret", "customerName=Ana+Lee"), client.Signature("customerName=Ana+Lee"))
	assert.Equal(t, expectedSignature("prod-secret", "customerName=Ana Lee"), client.Signature("customerName=Ana%20Lee"))
	assert.Equal(t, expectedSignature("prod-secret", "contactEmail=a+b@example.com"), client.Signature("contactEmail=a%2Bb%40example.com"))
	assert.Equal(t, expectedSignature("prod-secret", "bad=%zz"), client.Signature("bad=%zz"))
}

func TestConfig_Validate(t *testing.T) {
	t.Run("production pair selected", func(t *testing.T) {
		cfg := Config{Production: Credentials{ID: "id", Secret: "key"}}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
		assert.Equal(t, DefaultClientType, cfg.ClientType)
		assert.Equal(t, "id", cfg.Active().ID)
	})

	t.Run("sandbox requires test pair", func(t *testing.T) {
		cfg := Config{Sandbox: true, Production: Credentials{ID: "id", Secret: "key"}}
		assert.ErrorIs(t, cfg.Validate(), ErrMissingAPIID)
	})

	t.Run("missing key", func(t *testing.T) {
		cfg := Config{Production: Credentials{ID: "id"}}
		assert.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)
	})
}

func TestClient_SignsRequests(t *testing.T) {
	var got *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"Items":[]}`))
	})

	_, err := client.FindCustomersByEmail(context.Background(), "a+b@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "/Customers", got.URL.Path)
	assert.Equal(t, "a+b@example.com", got.URL.Query().Get("contactEmail"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Equal(t, "prod-id", got.Header.Get("api-auth-id"))
	assert.Equal(t, DefaultClientType, got.Header.Get("client-type"))
	assert.Equal(t, expectedSignature("prod-secret", "contactEmail=a+b@example.com"), got.Header.Get("api-auth-signature"))
}

func TestClient_PostSignsEmptyQuery(t *testing.T) {
	var signature string
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		signature = r.Header.Get("api-auth-signature")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.WriteHeader(http.StatusCreated)
	})

	err := client.CreateCustomer(context.Background(), Customer{Guid: "G1", CustomerCode: "WC-7"})
	require.NoError(t, err)
	assert.Equal(t, expectedSignature("prod-secret", ""), signature)
	assert.Equal(t, "WC-7", body["CustomerCode"])
	assert.Contains(t, body, "Notes")
	assert.Nil(t, body["Notes"])
}

func TestClient_SandboxCredentials(t *testing.T) {
	var id string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id = r.Header.Get("api-auth-id")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := New(Config{
		BaseURL:    srv.URL,
		Sandbox:    true,
		Production: Credentials{ID: "prod-id", Secret: "prod-secret"},
		Test:       Credentials{ID: "test-id", Secret: "test-secret"},
	}, nil)
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "Customers", nil)
	require.NoError(t, err)
	assert.Equal(t, "test-id", id)
}

func TestClient_CreateSalesOrder(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		var path, query string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			query = r.URL.RawQuery
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"OrderNumber":"SO-00000042","Guid":"G2"}`))
		})

		resp, err := client.CreateSalesOrder(context.Background(), SalesOrder{Guid: "G2"})
		require.NoError(t, err)
		assert.Equal(t, "SO-00000042", resp.OrderNumber)
		assert.Equal(t, "/SalesOrders/G2", path)
		assert.Equal(t, "taxInclusive=true", query)
	})

	t.Run("rejected", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"Description":"bad product"}`))
		})

		_, err := client.CreateSalesOrder(context.Background(), SalesOrder{Guid: "G3"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRemoteRejected)
		assert.Equal(t, http.StatusBadRequest, StatusCode(err))
		assert.Contains(t, ResponseBody(err), "bad product")
	})

	t.Run("created without order number", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"Guid":"G4"}`))
		})

		_, err := client.CreateSalesOrder(context.Background(), SalesOrder{Guid: "G4"})
		assert.ErrorIs(t, err, ErrRemoteRejected)
		assert.Equal(t, http.StatusCreated, StatusCode(err))
	})
}

func TestClient_FindCustomersByEmail_Shape(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
		wantLen int
	}{
		{name: "match", status: http.StatusOK, body: `{"Items":[{"Guid":"G","CustomerCode":"C"}]}`, wantLen: 1},
		{name: "no match", status: http.StatusOK, body: `{"Items":[]}`},
		{name: "missing items", status: http.StatusOK, body: `{"Pagination":{}}`, wantErr: true},
		{name: "item without guid", status: http.StatusOK, body: `{"Items":[{"CustomerCode":"C"}]}`, wantErr: true},
		{name: "not json", status: http.StatusOK, body: `<html>`, wantErr: true},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			resp, err := client.FindCustomersByEmail(context.Background(), "x@example.com")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrRemoteRejected)
				return
			}
			require.NoError(t, err)
			assert.Len(t, resp.Items, tt.wantLen)
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, err := New(Config{BaseURL: url, Production: Credentials{ID: "id", Secret: "key"}}, nil)
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "Customers", nil)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.Equal(t, 0, StatusCode(err))
}

func TestNewGUID(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9A-F]{8}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{12}$`)
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		g := NewGUID()
		assert.Len(t, g, 36)
		assert.Regexp(t, pattern, g)
		_, dup := seen[g]
		assert.False(t, dup)
		seen[g] = struct{}{}
	}
}
