// Package unleashed is a small client for the Unleashed inventory REST API covering
// the calls the order sync needs: customer lookup, customer creation and sales order
// creation.
package unleashed

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// maxResponseSize caps how much of a response body is read (10MB).
const maxResponseSize = 10 * 1024 * 1024

// Response is a raw API answer.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client signs and executes Unleashed API requests.
type Client struct {
	baseURL    string
	apiID      string
	apiSecret  []byte
	clientType string
	httpClient *http.Client
	logger     *zap.Logger
}

// New builds a Client for the credential pair selected by cfg.Sandbox.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	creds := cfg.Active()
	base := cfg.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &Client{
		baseURL:    base,
		apiID:      creds.ID,
		apiSecret:  []byte(creds.Secret),
		clientType: cfg.ClientType,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named("unleashed"),
	}, nil
}

// Signature returns the base64 HMAC-SHA256 of the raw url-decoded query string.
// Percent escapes are decoded; a literal plus sign is kept.
func (c *Client) Signature(query string) string {
	if decoded, err := url.PathUnescape(query); err == nil {
		query = decoded
	}
	mac := hmac.New(sha256.New, c.apiSecret)
	mac.Write([]byte(query))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Get performs a signed GET of path with query.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

// Post performs a signed POST of body encoded as JSON. The signature covers the
// query string even when it is empty.
func (c *Client) Post(ctx context.Context, path string, query url.Values, body any) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("unleashed: encode body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, query, payload)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload []byte) (*Response, error) {
	rawQuery := query.Encode()
	endpoint := c.baseURL + strings.TrimPrefix(path, "/")
	if rawQuery != "" {
		endpoint += "?" + rawQuery
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("unleashed: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-auth-id", c.apiID)
	req.Header.Set("api-auth-signature", c.Signature(rawQuery))
	req.Header.Set("client-type", c.clientType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	c.logger.Debug("api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)
	return &Response{StatusCode: resp.StatusCode, Body: respBody}, nil
}

// FindCustomersByEmail looks customers up by contact email.
func (c *Client) FindCustomersByEmail(ctx context.Context, email string) (*CustomerLookupResponse, error) {
	resp, err := c.Get(ctx, "Customers", url.Values{"contactEmail": []string{email}})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &RejectedError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	var out CustomerLookupResponse
	if err := decode(resp, &out, out.validate); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCustomer creates customer under its own Guid.
func (c *Client) CreateCustomer(ctx context.Context, customer Customer) error {
	resp, err := c.Post(ctx, "Customers/"+customer.Guid, nil, customer)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated {
		return &RejectedError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	return nil
}

// CreateSalesOrder submits order with tax-inclusive prices and returns the
// Unleashed order number.
func (c *Client) CreateSalesOrder(ctx context.Context, order SalesOrder) (*OrderCreateResponse, error) {
	query := url.Values{"taxInclusive": []string{"true"}}
	resp, err := c.Post(ctx, "SalesOrders/"+order.Guid, query, order)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, &RejectedError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	var out OrderCreateResponse
	if err := decode(resp, &out, out.validate); err != nil {
		return nil, err
	}
	return &out, nil
}

// decode parses resp into out and runs check; any mismatch counts as a rejection.
func decode(resp *Response, out any, check func() error) error {
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &RejectedError{StatusCode: resp.StatusCode, Body: string(resp.Body), Reason: "invalid json: " + err.Error()}
	}
	if err := check(); err != nil {
		return &RejectedError{StatusCode: resp.StatusCode, Body: string(resp.Body), Reason: err.Error()}
	}
	return nil
}
