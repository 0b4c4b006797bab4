package paypal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"storefront/internal/cache"
)

type fakePayPal struct {
	tokenCalls atomic.Int32
	lastAmount string
}

func (f *fakePayPal) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		id, secret, ok := r.BasicAuth()
		if !ok || id != "client" || secret != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-1", "expires_in": 3600})
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req createOrderReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode create order: %v", err)
		}
		if req.Intent != "CAPTURE" || len(req.PurchaseUnits) != 1 {
			t.Errorf("unexpected create order body: %+v", req)
		} else {
			f.lastAmount = req.PurchaseUnits[0].Amount.Value
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"PP-1","status":"CREATED"}`))
	})
	mux.HandleFunc("/v2/checkout/orders/PP-1/capture", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"id": "PP-1",
			"status": "COMPLETED",
			"payer": {"email_address": "buyer@example.com"},
			"purchase_units": [{"payments": {"captures": [{"id": "CAP-1", "status": "COMPLETED", "amount": {"currency_code": "USD", "value": "45.50"}}]}}]
		}`))
	})
	mux.HandleFunc("/v2/checkout/orders/BAD/capture", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"name":"UNPROCESSABLE_ENTITY"}`))
	})
	return mux
}

func newTestClient(t *testing.T) (*Client, *fakePayPal) {
	t.Helper()
	f := &fakePayPal{}
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	c := NewClient(Config{BaseURL: srv.URL + "/", ClientID: "client", Secret: "secret"}, cache.NewMemoryCache("test"))
	return c, f
}

func TestCreateOrderAndCapture(t *testing.T) {
	c, f := newTestClient(t)
	ctx := context.Background()

	o, err := c.CreateOrder(ctx, decimal.RequireFromString("45.5"))
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}
	if o.ID != "PP-1" {
		t.Fatalf("order id = %q, want PP-1", o.ID)
	}
	if f.lastAmount != "45.50" {
		t.Fatalf("amount sent = %q, want 45.50", f.lastAmount)
	}

	capture, err := c.CapturePayment(ctx, "PP-1")
	if err != nil {
		t.Fatalf("CapturePayment returned error: %v", err)
	}
	if capture.Status != StatusCompleted {
		t.Fatalf("status = %q", capture.Status)
	}
	if capture.Payer.EmailAddress != "buyer@example.com" {
		t.Fatalf("payer email = %q", capture.Payer.EmailAddress)
	}
	if capture.AmountPaid() != "45.50" {
		t.Fatalf("AmountPaid = %q", capture.AmountPaid())
	}

	if n := f.tokenCalls.Load(); n != 1 {
		t.Fatalf("token endpoint called %d times, want 1 (cached)", n)
	}
}

func TestCaptureAPIError(t *testing.T) {
	c, _ := newTestClient(t)
	_, err := c.CapturePayment(context.Background(), "BAD")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", apiErr.Status)
	}
}

func TestBadCredentials(t *testing.T) {
	f := &fakePayPal{}
	srv := httptest.NewServer(f.handler(t))
	defer srv.Close()
	c := NewClient(Config{BaseURL: srv.URL, ClientID: "client", Secret: "wrong"}, cache.NewMemoryCache("test"))

	_, err := c.CreateOrder(context.Background(), decimal.NewFromInt(1))
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
}

func TestAmountPaidEmpty(t *testing.T) {
	var c Capture
	if c.AmountPaid() != "" {
		t.Fatal("expected empty amount")
	}
}
