package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/stock-ledger/internal/application/auth"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/stock-ledger/pkg/jwt"
)

const (
	storeA      = "store-a"
	storeB      = "store-b"
	productID   = "prod-llanta"
	adminID     = "user-admin"
	cashierID   = "user-cashier"
	cashierMail = "cajera@tienda.co"
	password    = "s3creta-larga"
)

// fakeIdempotency almacén en memoria con la misma semántica que el de Redis.
type fakeIdempotency struct {
	mu   sync.Mutex
	data map[string]cache.StoredResponse
}

func (f *fakeIdempotency) Reserve(_ context.Context, key string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = cache.StoredResponse{}
	return true, nil
}

func (f *fakeIdempotency) Load(_ context.Context, key string) (*cache.StoredResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (f *fakeIdempotency) Save(_ context.Context, key string, resp cache.StoredResponse, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = resp
	return nil
}

func (f *fakeIdempotency) Release(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

type testEnv struct {
	app     *fiber.App
	admin   string
	cashier string
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	st := memory.NewStore()
	st.PutStore(entity.Store{ID: storeA, Name: "Centro", Active: true})
	st.PutStore(entity.Store{ID: storeB, Name: "Norte", Active: true})
	st.PutProduct(entity.Product{
		ID: productID, SKU: "LL-205-55-16", Name: "Llanta 205/55 R16", BasePrice: decimal.NewFromInt(100),
		Variant: entity.TireSpec{Width: 205, AspectRatio: 55, RimDiameter: 16},
	})
	st.PutUser(entity.User{
		ID: cashierID, StoreID: storeA, Email: cashierMail, PasswordHash: string(hash),
		Name: "Cajera", Role: entity.RoleCashier, Status: entity.UserStatusActive,
	})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Coordinator:    appinv.NewCoordinator(st),
		Query:          appinv.NewQueryUseCase(st),
		Reconciliation: appinv.NewReconciliationEngine(st, 2, nil, nil),
		Replenishment:  appinv.NewReplenishmentUseCase(st),
		AuthUC: auth.NewAuthUseCase(st, auth.JWTConfig{
			Secret: testJWTSecret, ExpMinutes: 15, Issuer: testIssuer, RefreshTTL: time.Hour,
		}, nil),
		ReportPDF:      pdf.NewMovementReportGenerator(""),
		Idempotency:    &fakeIdempotency{data: map[string]cache.StoredResponse{}},
		IdempotencyTTL: time.Minute,
		JWTSecret:      testJWTSecret,
	})

	return &testEnv{
		app:     app,
		admin:   bearer(t, adminID, "", entity.RoleAdmin),
		cashier: bearer(t, cashierID, storeA, entity.RoleCashier),
	}
}

func bearer(t *testing.T, userID, storeID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, storeID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any, headers ...string) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

// open da de alta la llanta en storeA con qty unidades y devuelve el ID del registro.
func (e *testEnv) open(t *testing.T, qty int) string {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/api/inventory", e.admin, dto.OpenInventoryRequest{
		ProductID: productID, StoreID: storeA, InitialQuantity: qty,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	return decode[dto.MutationResponse](t, body).Record.ID
}

func (e *testEnv) quantity(t *testing.T, inventoryID string) int {
	t.Helper()
	resp, body := e.do(t, http.MethodGet, "/api/inventory/"+inventoryID, e.cashier, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	return decode[dto.InventoryRecordResponse](t, body).Quantity
}

func saleBody(qty int) dto.RecordSaleRequest {
	return dto.RecordSaleRequest{Items: []dto.SaleItemRequest{{ProductID: productID, Quantity: qty}}}
}

func TestHTTP_VentaDescuentaStock(t *testing.T) {
	e := newEnv(t)
	id := e.open(t, 10)

	resp, body := e.do(t, http.MethodPost, "/api/sales", e.cashier, saleBody(3))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	sale := decode[dto.SaleResponse](t, body)
	assert.Equal(t, storeA, sale.StoreID, "sin store_id se usa la tienda del cajero")
	assert.True(t, decimal.NewFromInt(300).Equal(sale.Total))
	assert.Equal(t, 7, e.quantity(t, id))

	resp, body = e.do(t, http.MethodGet, "/api/inventory/"+id+"/history", e.cashier, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	history := decode[[]dto.HistoryEntryResponse](t, body)
	require.Len(t, history, 2)
	assert.Equal(t, "SALE", history[1].ChangeType)
	assert.Equal(t, sale.ID, history[1].ReferenceID)
}

func TestHTTP_SobreventaRetorna409(t *testing.T) {
	e := newEnv(t)
	id := e.open(t, 10)

	resp, body := e.do(t, http.MethodPost, "/api/sales", e.cashier, saleBody(11))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", decode[dto.ErrorResponse](t, body).Code)
	assert.Equal(t, 10, e.quantity(t, id))
}

func TestHTTP_Autorizacion(t *testing.T) {
	e := newEnv(t)
	e.open(t, 5)

	resp, _ := e.do(t, http.MethodPost, "/api/inventory", e.cashier, dto.OpenInventoryRequest{
		ProductID: productID, StoreID: storeB, InitialQuantity: 1,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "cajero no da de alta inventario")

	req := saleBody(1)
	req.StoreID = storeB
	resp, body := e.do(t, http.MethodPost, "/api/sales", e.cashier, req)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "AUTHORIZATION_ERROR", decode[dto.ErrorResponse](t, body).Code)

	resp, _ = e.do(t, http.MethodGet, "/api/inventory/reconciliation", e.cashier, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = e.do(t, http.MethodGet, "/api/inventory", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHTTP_AnulacionRestauraStock(t *testing.T) {
	e := newEnv(t)
	id := e.open(t, 10)
	_, body := e.do(t, http.MethodPost, "/api/sales", e.cashier, saleBody(4))
	saleID := decode[dto.SaleResponse](t, body).ID

	resp, body := e.do(t, http.MethodPost, "/api/sales/"+saleID+"/void", e.cashier, dto.VoidSaleRequest{Reason: "corta"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))

	resp, body = e.do(t, http.MethodPost, "/api/sales/"+saleID+"/void", e.cashier, dto.VoidSaleRequest{Reason: "cliente devolvió la llanta"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	void := decode[dto.VoidSaleResponse](t, body)
	require.Len(t, void.RestoredItems, 1)
	assert.Equal(t, 10, void.RestoredItems[0].NewQuantity)
	assert.Equal(t, 10, e.quantity(t, id))

	resp, body = e.do(t, http.MethodPost, "/api/sales/"+saleID+"/void", e.admin, dto.VoidSaleRequest{Reason: "cliente devolvió la llanta"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ALREADY_VOIDED", decode[dto.ErrorResponse](t, body).Code)

	resp, body = e.do(t, http.MethodGet, "/api/sales/"+saleID, e.cashier, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.SaleStatusVoided, decode[dto.SaleResponse](t, body).Status)
}

func TestHTTP_Traslados(t *testing.T) {
	e := newEnv(t)
	e.open(t, 10)

	resp, body := e.do(t, http.MethodPost, "/api/transfers", e.admin, dto.TransferRequest{
		ProductID: productID, FromStoreID: storeA, ToStoreID: storeA, Quantity: 1,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "SAME_STORE", decode[dto.ErrorResponse](t, body).Code)

	resp, body = e.do(t, http.MethodPost, "/api/transfers", e.admin, dto.TransferRequest{
		ProductID: productID, FromStoreID: storeA, ToStoreID: storeB, Quantity: 4,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	tr := decode[dto.TransferResponse](t, body)
	assert.Equal(t, entity.TransferCompleted, tr.Status)

	resp, body = e.do(t, http.MethodGet, "/api/inventory?store_id="+storeB, e.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.InventoryListResponse](t, body)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 4, list.Items[0].Quantity)

	// Solicitud pendiente: el cajero la pide, no puede rechazarla.
	resp, body = e.do(t, http.MethodPost, "/api/transfers/requests", e.cashier, dto.TransferRequest{
		ProductID: productID, FromStoreID: storeA, ToStoreID: storeB, Quantity: 2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	pending := decode[dto.TransferResponse](t, body)
	assert.Equal(t, entity.TransferPending, pending.Status)

	resp, _ = e.do(t, http.MethodPost, "/api/transfers/"+pending.ID+"/reject", e.cashier, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = e.do(t, http.MethodPost, "/api/transfers/"+pending.ID+"/cancel", e.cashier, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, entity.TransferCancelled, decode[dto.TransferResponse](t, body).Status)
}

func TestHTTP_RefreshTokenUnSoloUso(t *testing.T) {
	e := newEnv(t)
	resp, body := e.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: cashierMail, Password: password})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	first := decode[dto.TokenResponse](t, body)

	resp, body = e.do(t, http.MethodPost, "/api/auth/refresh", "", dto.RefreshRequest{RefreshToken: first.RefreshToken})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	second := decode[dto.TokenResponse](t, body)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	resp, body = e.do(t, http.MethodPost, "/api/auth/refresh", "", dto.RefreshRequest{RefreshToken: first.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", decode[dto.ErrorResponse](t, body).Code)

	resp, _ = e.do(t, http.MethodPost, "/api/auth/logout", "", dto.RefreshRequest{RefreshToken: second.RefreshToken})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: cashierMail, Password: "mala"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHTTP_IdempotencyKeyRepiteRespuesta(t *testing.T) {
	e := newEnv(t)
	id := e.open(t, 10)

	resp1, body1 := e.do(t, http.MethodPost, "/api/sales", e.cashier, saleBody(2), apphttp.HeaderIdempotencyKey, "venta-001")
	require.Equal(t, http.StatusCreated, resp1.StatusCode, string(body1))

	resp2, body2 := e.do(t, http.MethodPost, "/api/sales", e.cashier, saleBody(2), apphttp.HeaderIdempotencyKey, "venta-001")
	assert.Equal(t, http.StatusCreated, resp2.StatusCode)
	assert.Equal(t, "true", resp2.Header.Get("Idempotent-Replayed"))
	assert.JSONEq(t, string(body1), string(body2))
	assert.Equal(t, 8, e.quantity(t, id), "la venta se aplicó una sola vez")

	// Una respuesta de error no se guarda: la misma clave puede reintentarse.
	resp3, _ := e.do(t, http.MethodPost, "/api/sales", e.cashier, saleBody(50), apphttp.HeaderIdempotencyKey, "venta-002")
	assert.Equal(t, http.StatusConflict, resp3.StatusCode)
	resp4, body4 := e.do(t, http.MethodPost, "/api/sales", e.cashier, saleBody(1), apphttp.HeaderIdempotencyKey, "venta-002")
	assert.Equal(t, http.StatusCreated, resp4.StatusCode, string(body4))
	assert.Empty(t, resp4.Header.Get("Idempotent-Replayed"))
}

func TestHTTP_ConciliacionYReportes(t *testing.T) {
	e := newEnv(t)
	id := e.open(t, 10)
	e.do(t, http.MethodPost, "/api/sales", e.cashier, saleBody(3))
	resp, body := e.do(t, http.MethodPost, "/api/inventory/"+id+"/adjustments", e.admin, dto.AdjustmentRequest{
		Delta: -1, ChangeType: "damage", Notes: "rin golpeado",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = e.do(t, http.MethodGet, "/api/inventory/reconciliation", e.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rec := decode[dto.ReconciliationResponse](t, body)
	assert.Equal(t, 1, rec.Checked)
	assert.Zero(t, rec.Invalid)

	resp, body = e.do(t, http.MethodGet, "/api/inventory/report?store_id="+storeA, e.cashier, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	rep := decode[dto.MovementReport](t, body)
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, 3, rep.Rows[0].Sold)
	assert.Equal(t, -1, rep.Rows[0].Adjusted)
	assert.Equal(t, 6, rep.Rows[0].ClosingStock)

	resp, body = e.do(t, http.MethodGet, "/api/inventory/report?format=pdf", e.cashier, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, "%PDF", string(body[:4]))

	resp, _ = e.do(t, http.MethodGet, "/api/inventory/report?from=ayer", e.cashier, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTP_ValidacionDeEntrada(t *testing.T) {
	e := newEnv(t)
	id := e.open(t, 10)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		code   string
	}{
		{"venta sin líneas", http.MethodPost, "/api/sales", dto.RecordSaleRequest{Items: []dto.SaleItemRequest{}}, "VALIDATION_ERROR"},
		{"línea con cantidad cero", http.MethodPost, "/api/sales", saleBody(0), "VALIDATION_ERROR"},
		{"ajuste con tipo desconocido", http.MethodPost, "/api/inventory/" + id + "/adjustments", dto.AdjustmentRequest{Delta: 1, ChangeType: "robo"}, "VALIDATION_ERROR"},
		{"ajuste sin delta", http.MethodPost, "/api/inventory/" + id + "/adjustments", dto.AdjustmentRequest{ChangeType: "DAMAGE"}, "VALIDATION_ERROR"},
		{"traslado sin producto", http.MethodPost, "/api/transfers", dto.TransferRequest{FromStoreID: storeA, ToStoreID: storeB, Quantity: 1}, "VALIDATION_ERROR"},
		{"umbral negativo", http.MethodPatch, "/api/inventory/" + id + "/thresholds", map[string]int{"reorder_level": -1}, "VALIDATION_ERROR"},
		{"login sin email válido", http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "cajera", Password: password}, "VALIDATION_ERROR"},
		{"cuerpo que no es objeto", http.MethodPost, "/api/sales", "no-json", "INVALID_BODY"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := e.do(t, tc.method, tc.path, e.admin, tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))
			assert.Equal(t, tc.code, decode[dto.ErrorResponse](t, body).Code)
		})
	}
	assert.Equal(t, 10, e.quantity(t, id), "ninguna entrada inválida toca el stock")
}

func TestHTTP_ListadoPaginado(t *testing.T) {
	e := newEnv(t)
	e.open(t, 10)
	resp, body := e.do(t, http.MethodPost, "/api/inventory", e.admin, dto.OpenInventoryRequest{
		ProductID: productID, StoreID: storeB, InitialQuantity: 2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = e.do(t, http.MethodGet, "/api/inventory?limit=1", e.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	page := decode[dto.InventoryListResponse](t, body)
	require.Len(t, page.Items, 1)
	assert.Equal(t, dto.PageResponse{Limit: 1, Offset: 0, Total: 2}, page.Page)
	assert.Equal(t, storeA, page.Items[0].StoreID)

	resp, body = e.do(t, http.MethodGet, "/api/inventory?limit=1&offset=1", e.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	page = decode[dto.InventoryListResponse](t, body)
	require.Len(t, page.Items, 1)
	assert.Equal(t, storeB, page.Items[0].StoreID)
	assert.Equal(t, 2, page.Page.Total)

	resp, body = e.do(t, http.MethodGet, "/api/inventory", e.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, dto.DefaultPageLimit, decode[dto.InventoryListResponse](t, body).Page.Limit)

	for _, q := range []string{"limit=500", "limit=-1", "offset=-3", "limit=muchos"} {
		resp, body = e.do(t, http.MethodGet, "/api/inventory?"+q, e.admin, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		assert.Equal(t, "VALIDATION_ERROR", decode[dto.ErrorResponse](t, body).Code, q)
	}
}

func TestHTTP_IDMalformadoEs404(t *testing.T) {
	e := newEnv(t)
	for path, code := range map[string]string{
		"/api/inventory/no-es-uuid": "INVENTORY_NOT_FOUND",
		"/api/sales/no-es-uuid":     "SALE_NOT_FOUND",
		"/api/transfers/no-es-uuid": "NOT_FOUND",
	} {
		resp, body := e.do(t, http.MethodGet, path, e.admin, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		assert.Equal(t, code, decode[dto.ErrorResponse](t, body).Code, path)
	}
}
