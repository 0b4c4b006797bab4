package cart

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront/internal/session"
)

func newCartRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(session.CtxCartIDKey, "sess-1")
		c.Next()
	})
	r.GET("/cart", h.GetMyCart)
	r.POST("/cart/items", h.AddItem)
	r.PATCH("/cart/items", h.UpdateQty)
	r.DELETE("/cart/items/:productId", h.RemoveItem)
	return r
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	return sendJSON(r, http.MethodPost, path, body)
}

func sendJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCartHandlers(t *testing.T) {
	svc, _, p := newTestService(1)
	r := newCartRouter(svc)

	w := postJSON(r, "/cart/items", map[string]any{"product_id": p.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("add: status = %d, body %s", w.Code, w.Body.String())
	}

	w = postJSON(r, "/cart/items", map[string]any{"product_id": p.ID})
	if w.Code != http.StatusConflict {
		t.Fatalf("over stock: status = %d", w.Code)
	}

	w = postJSON(r, "/cart/items", map[string]any{"product_id": uuid.New()})
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown product: status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))
	var got struct {
		Items []struct {
			Qty int `json:"qty"`
		} `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil || len(got.Items) != 1 {
		t.Fatalf("cart = %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/cart/items/nope", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/cart/items/"+p.ID.String(), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("remove: status = %d", w.Code)
	}
}

func TestUpdateQtyHandler(t *testing.T) {
	svc, _, p := newTestService(2)
	r := newCartRouter(svc)

	if w := postJSON(r, "/cart/items", map[string]any{"product_id": p.ID}); w.Code != http.StatusOK {
		t.Fatalf("add: status = %d", w.Code)
	}
	if w := sendJSON(r, http.MethodPatch, "/cart/items", map[string]any{"product_id": p.ID, "qty": 2}); w.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body %s", w.Code, w.Body.String())
	}
	if w := sendJSON(r, http.MethodPatch, "/cart/items", map[string]any{"product_id": p.ID, "qty": 3}); w.Code != http.StatusConflict {
		t.Fatalf("over stock: status = %d", w.Code)
	}
	if w := sendJSON(r, http.MethodPatch, "/cart/items", map[string]any{"product_id": uuid.New(), "qty": 1}); w.Code != http.StatusNotFound {
		t.Fatalf("missing item: status = %d", w.Code)
	}
	if w := sendJSON(r, http.MethodPatch, "/cart/items", map[string]any{"product_id": p.ID, "qty": 0}); w.Code != http.StatusBadRequest {
		t.Fatalf("zero qty: status = %d", w.Code)
	}
}
