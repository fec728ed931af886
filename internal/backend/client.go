// Package backend is the HTTP client of the remote order and payment API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/vikram583135/platepal2.o-sub000/internal/domain"
	"github.com/vikram583135/platepal2.o-sub000/internal/metrics"
)

const IdempotencyKeyHeader = "Idempotency-Key"

// DefaultTimeout bounds each backend call when Config.Timeout is zero.
const DefaultTimeout = 15 * time.Second

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreateOrder posts a new order. idempotencyKey is sent as a header so the
// backend can collapse retried attempts.
func (c *Client) CreateOrder(ctx context.Context, req domain.OrderRequest, idempotencyKey string) (*domain.OrderResponse, error) {
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers[IdempotencyKeyHeader] = idempotencyKey
	}

	body, err := c.do(ctx, "create_order", http.MethodPost, "/orders/", req, headers)
	if err != nil {
		return nil, err
	}

	doc := gjson.ParseBytes(body)
	id := scalar(doc.Get("id"))
	if id == "" {
		return nil, fmt.Errorf("failed to create order: response has no order id")
	}

	resp := &domain.OrderResponse{ID: id}
	if total := scalar(doc.Get("total_amount")); total != "" {
		if d, err := decimal.NewFromString(total); err == nil {
			resp.TotalAmount = d
		}
	}
	return resp, nil
}

func (c *Client) CreatePaymentIntent(ctx context.Context, req domain.PaymentIntentRequest) (*domain.PaymentIntentResponse, error) {
	body, err := c.do(ctx, "create_payment_intent", http.MethodPost, "/payments/create-intent/", req, nil)
	if err != nil {
		return nil, err
	}

	doc := gjson.ParseBytes(body)
	id := scalar(doc.Get("id"))
	if id == "" {
		id = scalar(doc.Get("payment_intent_id"))
	}
	if id == "" {
		return nil, fmt.Errorf("failed to create payment intent: response has no intent id")
	}
	return &domain.PaymentIntentResponse{ID: id}, nil
}

func (c *Client) ConfirmPayment(ctx context.Context, req domain.PaymentConfirmRequest) (*domain.PaymentConfirmResponse, error) {
	body, err := c.do(ctx, "confirm_payment", http.MethodPost, "/payments/confirm/", req, nil)
	if err != nil {
		return nil, err
	}

	status := strings.ToLower(strings.TrimSpace(gjson.GetBytes(body, "status").String()))
	return &domain.PaymentConfirmResponse{Status: status}, nil
}

// GetOrder returns the raw order document. A 404 is reported as
// domain.ErrNotFound.
func (c *Client) GetOrder(ctx context.Context, orderID string) ([]byte, error) {
	body, err := c.do(ctx, "get_order", http.MethodGet, "/orders/"+url.PathEscape(orderID)+"/", nil, nil)
	if err != nil {
		if apiErr, ok := AsAPIError(err); ok && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
		}
		return nil, err
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, payload any, headers map[string]string) ([]byte, error) {
	start := time.Now()
	defer func() {
		metrics.ObserveBackendCall(op, time.Since(start).Seconds())
	}()

	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send %s request: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Operation: op, StatusCode: resp.StatusCode, Body: body}
	}
	return body, nil
}

func scalar(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return strings.TrimSpace(v.Str)
	case gjson.Number:
		return v.Raw
	}
	return ""
}
