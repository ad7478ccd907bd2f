package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/seu-repo/pdv-varejo/internal/adapter/cache"
	"github.com/seu-repo/pdv-varejo/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/pdv-varejo/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/pdv-varejo/internal/adapter/storage/postgres"
	"github.com/seu-repo/pdv-varejo/internal/domain"
	"github.com/seu-repo/pdv-varejo/internal/mocks"
	"github.com/seu-repo/pdv-varejo/internal/service/cart"
	"github.com/seu-repo/pdv-varejo/internal/service/catalog"
	"github.com/seu-repo/pdv-varejo/internal/service/checkout"
	"github.com/seu-repo/pdv-varejo/internal/service/customer"
	"github.com/seu-repo/pdv-varejo/internal/service/receipt"
	"github.com/seu-repo/pdv-varejo/internal/service/voucher"
)

// newTestApp assembles the HTTP surface the way cmd/server does, backed by
// the containerized database with the card gateway and broker mocked.
func newTestApp(t *testing.T, env *TestEnv) *fiber.App {
	t.Helper()

	carts := cart.NewManager(cart.DefaultSessionTTL, cart.DefaultCleanupInterval, env.Logger)
	t.Cleanup(func() { carts.Close() })

	localCache := cache.NewLocalCache(time.Minute, env.Logger)
	t.Cleanup(func() { localCache.Close() })

	productRepo := postgres.NewProductRepository(env.Gorm, env.Logger)
	voucherRepo := postgres.NewVoucherRepository(env.Gorm, env.Logger)
	customerRepo := postgres.NewCustomerRepository(env.Gorm, env.Logger)
	txManager := postgres.NewTxManager(env.Gorm, env.Logger)

	catalogService := catalog.NewService(productRepo, localCache, 5*time.Minute, env.Logger)
	voucherService := voucher.NewService(voucherRepo, env.Logger)
	customerService := customer.NewService(customerRepo, env.Logger)
	checkoutService := checkout.NewService(
		carts, txManager, &mocks.MockPaymentGateway{}, mocks.NewMockMessageQueue(), "brl", env.Logger)
	receiptService := receipt.NewFormatter(domain.ReceiptHeader{
		StoreName: "Mercado Teste",
		Address:   "Rua de Teste 1",
		Phone:     "(11) 0000-0000",
		TaxID:     "00.000.000/0001-00",
	})

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(env.Logger),
	})
	app.Use(recover.New())

	v1 := app.Group("/api/v1")

	sessionHandler := handlers.NewSessionHandler(carts, catalogService, voucherService, env.Logger)
	v1.Post("/sessions", sessionHandler.Create)
	v1.Get("/sessions/:id", sessionHandler.Get)
	v1.Post("/sessions/:id/lines", sessionHandler.AddLine)
	v1.Patch("/sessions/:id/lines/:productId", sessionHandler.UpdateLine)
	v1.Delete("/sessions/:id/lines/:productId", sessionHandler.RemoveLine)
	v1.Delete("/sessions/:id", sessionHandler.Destroy)

	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, receiptService, env.Logger)
	v1.Post("/transactions", checkoutHandler.Submit)
	v1.Get("/transactions/:id/receipt", checkoutHandler.Receipt)
	v1.Get("/transactions/:id", checkoutHandler.Get)
	v1.Get("/transactions", checkoutHandler.List)

	voucherHandler := handlers.NewVoucherHandler(voucherService, env.Logger)
	v1.Get("/vouchers/:code", voucherHandler.Get)
	v1.Post("/vouchers", voucherHandler.Issue)

	catalogHandler := handlers.NewCatalogHandler(catalogService, env.Logger)
	v1.Get("/products", catalogHandler.List)
	v1.Get("/products/:id", catalogHandler.Get)
	v1.Post("/products", catalogHandler.Create)
	v1.Patch("/products/:id/stock", catalogHandler.AdjustStock)

	customerHandler := handlers.NewCustomerHandler(customerService, env.Logger)
	v1.Get("/customers", customerHandler.Find)
	v1.Post("/customers", customerHandler.Register)

	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path string, payload interface{}) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, 30000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, raw
}

func TestAPI_FullSaleFlow(t *testing.T) {
	env := SetupTestEnvironment(t)
	CleanDatabase(t, env.DB)
	app := newTestApp(t, env)

	// Create a product.
	status, body := doRequest(t, app, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name":             "Café Premium 500g",
		"unit_price_cents": 3490,
		"stock_qty":        10,
	})
	if status != http.StatusCreated {
		t.Fatalf("create product = %d: %s", status, body)
	}
	var product struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &product); err != nil {
		t.Fatalf("unmarshal product: %v", err)
	}

	// Issue a voucher.
	status, body = doRequest(t, app, http.MethodPost, "/api/v1/vouchers", map[string]interface{}{
		"face_value_cents": 1000,
		"valid_days":       30,
	})
	if status != http.StatusCreated {
		t.Fatalf("issue voucher = %d: %s", status, body)
	}
	var issued struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(body, &issued); err != nil {
		t.Fatalf("unmarshal voucher: %v", err)
	}

	// Open a session and scan two units.
	status, body = doRequest(t, app, http.MethodPost, "/api/v1/sessions", nil)
	if status != http.StatusCreated {
		t.Fatalf("create session = %d: %s", status, body)
	}
	var session struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(body, &session); err != nil {
		t.Fatalf("unmarshal session: %v", err)
	}

	status, body = doRequest(t, app, http.MethodPost, "/api/v1/sessions/"+session.SessionID+"/lines", map[string]interface{}{
		"product_id": product.ID,
		"quantity":   2,
	})
	if status != http.StatusOK {
		t.Fatalf("add line = %d: %s", status, body)
	}

	// Preview totals with the voucher applied.
	status, body = doRequest(t, app, http.MethodGet,
		"/api/v1/sessions/"+session.SessionID+"?voucher="+issued.Code, nil)
	if status != http.StatusOK {
		t.Fatalf("preview = %d: %s", status, body)
	}
	var preview struct {
		Totals struct {
			Subtotal int64 `json:"subtotal_cents"`
			NetTotal int64 `json:"net_total_cents"`
		} `json:"totals"`
	}
	if err := json.Unmarshal(body, &preview); err != nil {
		t.Fatalf("unmarshal preview: %v", err)
	}
	if preview.Totals.Subtotal != 6980 || preview.Totals.NetTotal != 5980 {
		t.Fatalf("preview totals = %+v, want 6980/5980", preview.Totals)
	}

	// Pay and commit.
	status, body = doRequest(t, app, http.MethodPost, "/api/v1/transactions", map[string]interface{}{
		"session_id":   session.SessionID,
		"voucher_code": issued.Code,
		"cash_cents":   6000,
	})
	if status != http.StatusCreated {
		t.Fatalf("submit = %d: %s", status, body)
	}
	var sale struct {
		TransactionID string `json:"transaction_id"`
		NetTotal      int64  `json:"net_total_cents"`
		ChangeDue     int64  `json:"change_due_cents"`
	}
	if err := json.Unmarshal(body, &sale); err != nil {
		t.Fatalf("unmarshal sale: %v", err)
	}
	if sale.NetTotal != 5980 || sale.ChangeDue != 20 {
		t.Fatalf("sale = %+v, want net 5980 change 20", sale)
	}

	// The stored transaction and its receipt are retrievable.
	status, body = doRequest(t, app, http.MethodGet, "/api/v1/transactions/"+sale.TransactionID, nil)
	if status != http.StatusOK {
		t.Fatalf("get transaction = %d: %s", status, body)
	}

	status, body = doRequest(t, app, http.MethodGet, "/api/v1/transactions/"+sale.TransactionID+"/receipt", nil)
	if status != http.StatusOK {
		t.Fatalf("get receipt = %d: %s", status, body)
	}
	text := string(body)
	for _, want := range []string{"CUPOM", "Mercado Teste", "Café Premium 500g", "TROCO"} {
		if !strings.Contains(text, want) {
			t.Fatalf("receipt missing %q:\n%s", want, text)
		}
	}

	// Stock reflects the sale.
	status, body = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", product.ID), nil)
	if status != http.StatusOK {
		t.Fatalf("get product = %d: %s", status, body)
	}
	var after struct {
		StockQty int `json:"stock_qty"`
	}
	if err := json.Unmarshal(body, &after); err != nil {
		t.Fatalf("unmarshal product: %v", err)
	}
	if after.StockQty != 8 {
		t.Fatalf("stock = %d, want 8", after.StockQty)
	}

	// The voucher can no longer be previewed as valid.
	status, body = doRequest(t, app, http.MethodGet, "/api/v1/vouchers/"+issued.Code, nil)
	if status != http.StatusConflict {
		t.Fatalf("get redeemed voucher = %d: %s", status, body)
	}
}

func TestAPI_ErrorEnvelopes(t *testing.T) {
	env := SetupTestEnvironment(t)
	CleanDatabase(t, env.DB)
	app := newTestApp(t, env)

	status, body := doRequest(t, app, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name":             "Leite Integral 1L",
		"unit_price_cents": 649,
		"stock_qty":        1,
	})
	if status != http.StatusCreated {
		t.Fatalf("create product = %d: %s", status, body)
	}
	var product struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &product); err != nil {
		t.Fatalf("unmarshal product: %v", err)
	}

	type envelope struct {
		Error struct {
			Kind   string `json:"kind"`
			Detail string `json:"detail"`
		} `json:"error"`
	}

	// Underpaying is a validation failure (400).
	status, body = doRequest(t, app, http.MethodPost, "/api/v1/transactions", map[string]interface{}{
		"lines": []map[string]interface{}{
			{"product_id": product.ID, "name": "Leite Integral 1L", "unit_price_cents": 649, "quantity": 1},
		},
		"cash_cents": 100,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("underpaid submit = %d: %s", status, body)
	}
	var env1 envelope
	if err := json.Unmarshal(body, &env1); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env1.Error.Kind != "validation" {
		t.Fatalf("kind = %q, want validation", env1.Error.Kind)
	}

	// Overselling is a conflict (409).
	status, body = doRequest(t, app, http.MethodPost, "/api/v1/transactions", map[string]interface{}{
		"lines": []map[string]interface{}{
			{"product_id": product.ID, "name": "Leite Integral 1L", "unit_price_cents": 649, "quantity": 5},
		},
		"cash_cents": 10000,
	})
	if status != http.StatusConflict {
		t.Fatalf("oversell submit = %d: %s", status, body)
	}
	var env2 envelope
	if err := json.Unmarshal(body, &env2); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env2.Error.Kind != "conflict" {
		t.Fatalf("kind = %q, want conflict", env2.Error.Kind)
	}

	// Unknown session on submit is a validation failure.
	status, body = doRequest(t, app, http.MethodPost, "/api/v1/transactions", map[string]interface{}{
		"session_id": "no-such-session",
		"cash_cents": 1000,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("unknown session = %d: %s", status, body)
	}

	// Unknown transaction is a plain 404.
	status, _ = doRequest(t, app, http.MethodGet, "/api/v1/transactions/does-not-exist", nil)
	if status != http.StatusNotFound {
		t.Fatalf("unknown transaction = %d", status)
	}
}

func TestAPI_CustomerRegistrationAndLookup(t *testing.T) {
	env := SetupTestEnvironment(t)
	CleanDatabase(t, env.DB)
	app := newTestApp(t, env)

	status, body := doRequest(t, app, http.MethodPost, "/api/v1/customers", map[string]interface{}{
		"name":  "João Souza",
		"phone": "(11) 98765-4321",
		"email": "joao@example.com",
	})
	if status != http.StatusCreated {
		t.Fatalf("register = %d: %s", status, body)
	}

	// Lookup normalizes the phone format.
	status, body = doRequest(t, app, http.MethodGet, "/api/v1/customers?phone=11987654321", nil)
	if status != http.StatusOK {
		t.Fatalf("find = %d: %s", status, body)
	}
	var found struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &found); err != nil {
		t.Fatalf("unmarshal customer: %v", err)
	}
	if found.Name != "João Souza" {
		t.Fatalf("name = %q, want João Souza", found.Name)
	}

	// Duplicate phones are rejected as conflicts.
	status, body = doRequest(t, app, http.MethodPost, "/api/v1/customers", map[string]interface{}{
		"name":  "Outro Cliente",
		"phone": "11987654321",
	})
	if status != http.StatusConflict {
		t.Fatalf("duplicate register = %d: %s", status, body)
	}
}
