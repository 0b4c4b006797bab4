package paypal

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

	"storefront/internal/cache"
)

const (
	StatusCompleted = "COMPLETED"
	currencyUSD     = "USD"
)

type Config struct {
	BaseURL  string
	ClientID string
	Secret   string
}

type Client struct {
	cfg   Config
	http  *http.Client
	cache cache.Cache
}

func NewClient(cfg Config, c cache.Cache) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: 15 * time.Second},
		cache: c,
	}
}

// APIError is returned for any non-2xx response from PayPal.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paypal: status %d: %s", e.Status, e.Body)
}

type Order struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type Amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type Capture struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	Payer         Payer          `json:"payer"`
	PurchaseUnits []PurchaseUnit `json:"purchase_units"`
}

type Payer struct {
	EmailAddress string `json:"email_address"`
}

type PurchaseUnit struct {
	Payments struct {
		Captures []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
			Amount Amount `json:"amount"`
		} `json:"captures"`
	} `json:"payments"`
}

// AmountPaid returns the value of the first capture of the first purchase unit.
func (c *Capture) AmountPaid() string {
	if len(c.PurchaseUnits) == 0 || len(c.PurchaseUnits[0].Payments.Captures) == 0 {
		return ""
	}
	return c.PurchaseUnits[0].Payments.Captures[0].Amount.Value
}

type createOrderReq struct {
	Intent        string           `json:"intent"`
	PurchaseUnits []purchaseUnitIn `json:"purchase_units"`
}

type purchaseUnitIn struct {
	Amount Amount `json:"amount"`
}

func (c *Client) CreateOrder(ctx context.Context, price decimal.Decimal) (*Order, error) {
	body := createOrderReq{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnitIn{{
			Amount: Amount{CurrencyCode: currencyUSD, Value: price.StringFixed(2)},
		}},
	}
	var out Order
	if err := c.do(ctx, http.MethodPost, "/v2/checkout/orders", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CapturePayment(ctx context.Context, orderID string) (*Capture, error) {
	var out Capture
	path := "/v2/checkout/orders/" + url.PathEscape(orderID) + "/capture"
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("paypal: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &APIError{Status: res.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
