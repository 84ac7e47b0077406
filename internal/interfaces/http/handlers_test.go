package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/pedidos-api/internal/application/analytics"
	"github.com/jhoicas/pedidos-api/internal/application/auth"
	"github.com/jhoicas/pedidos-api/internal/application/orders"
	"github.com/jhoicas/pedidos-api/internal/application/transfer"
	"github.com/jhoicas/pedidos-api/internal/application/usecase"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/contact"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/pedidos-api/internal/interfaces/http"
	"github.com/jhoicas/pedidos-api/pkg/money"
)

// ──────────────────────────────────────────────────────────────────────────────
// Aplicación completa sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

type testServer struct {
	app   *fiber.App
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zerolog.Nop()
	store := memory.NewStore()
	reg := prometheus.NewRegistry()

	formatter, err := money.NewFormatter("USD", "en-US")
	require.NoError(t, err)
	verifier := contact.NewVerifier(contact.Config{DefaultRegion: "US"}, nil, log)

	orderUC := orders.NewUseCase(store, store.Orders(), store.Products(), store.Counterparties(),
		verifier, orders.NewMetrics(reg), log, orders.Config{})

	app := apphttp.NewApp(apphttp.AppConfig{
		Name:     "Pedidos",
		Log:      log,
		Metrics:  apphttp.NewHTTPMetrics(reg),
		Gatherer: reg,
	})
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:      auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}),
		UserUC:      usecase.NewUserUseCase(store.Users()),
		ProductUC:   usecase.NewProductUseCase(store.Products()),
		ClientUC:    usecase.NewCounterpartyUseCase(entity.KindClient, store.Counterparties(), verifier),
		SupplierUC:  usecase.NewCounterpartyUseCase(entity.KindSupplier, store.Counterparties(), verifier),
		OrderUC:     orderUC,
		PrintUC:     orders.NewPrintUseCase(orderUC, pdf.NewMarotoPDFGenerator(), formatter, "Pedidos"),
		TransferUC:  transfer.NewUseCase(store, store.Products(), store.Counterparties(), log),
		DashboardUC: appanalytics.NewDashboardUseCase(store.Analytics(), store.Products(), store.Counterparties(), orderUC, formatter),
		JWTSecret:   testJWTSecret,
		Log:         log,
	})

	s := &testServer{app: app}
	resp := s.do(t, http.MethodPost, "/api/auth/register", `{"email":"Ana@Example.com","password":"secreto123","name":"Ana"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = s.do(t, http.MethodPost, "/api/auth/login", `{"email":"ana@example.com","password":"secreto123"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login struct {
		Token string `json:"token"`
	}
	decode(t, resp, &login)
	require.NotEmpty(t, login.Token)
	s.token = login.Token
	return s
}

func (s *testServer) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// create hace POST y devuelve el id del recurso creado.
func (s *testServer) create(t *testing.T, path, body string) string {
	t.Helper()
	resp := s.do(t, http.MethodPost, path, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out struct {
		ID string `json:"id"`
	}
	decode(t, resp, &out)
	return out.ID
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_LoginCredencialesIncorrectas_Retorna401(t *testing.T) {
	s := newTestServer(t)
	s.token = ""

	resp := s.do(t, http.MethodPost, "/api/auth/login", `{"email":"ana@example.com","password":"otra-clave"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/auth/login", `{"email":"nadie@example.com","password":"secreto123"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_RegistroEmailDuplicado_Retorna409(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodPost, "/api/auth/register", `{"email":"ana@example.com","password":"secreto123"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAuth_Me(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/api/me", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me map[string]any
	decode(t, resp, &me)
	assert.Equal(t, "ana@example.com", me["email"])
}

func TestRutasProtegidas_SinToken_Retorna401(t *testing.T) {
	s := newTestServer(t)
	s.token = ""
	resp := s.do(t, http.MethodGet, "/api/products", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos y contrapartes
// ──────────────────────────────────────────────────────────────────────────────

func TestProducts_ValidacionYDuplicados(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/api/products", `{"name":"","price":"1"}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var verr struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	}
	decode(t, resp, &verr)
	assert.Equal(t, "VALIDATION", verr.Code)
	assert.Contains(t, verr.Fields, "name")

	s.create(t, "/api/products", `{"name":"Mesa","sku":"MES-1","price":"10.50","stock":3}`)
	resp = s.do(t, http.MethodPost, "/api/products", `{"name":"mesa","price":"1"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestProducts_NoEncontrado_Retorna404(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/api/products/no-existe", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProducts_ListYSearch(t *testing.T) {
	s := newTestServer(t)
	s.create(t, "/api/products", `{"name":"Mesa","price":"10"}`)
	s.create(t, "/api/products", `{"name":"Silla","price":"5"}`)

	resp := s.do(t, http.MethodGet, "/api/products?sort_by=name&sort_direction=desc&per_page=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Items []struct {
			Name string `json:"name"`
		} `json:"items"`
		Pagination struct {
			Total    int `json:"total"`
			LastPage int `json:"last_page"`
		} `json:"pagination"`
	}
	decode(t, resp, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Silla", list.Items[0].Name)
	assert.Equal(t, 2, list.Pagination.Total)
	assert.Equal(t, 2, list.Pagination.LastPage)

	resp = s.do(t, http.MethodGet, "/api/products/search?term=mes", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var found []map[string]any
	decode(t, resp, &found)
	require.Len(t, found, 1)
	assert.Equal(t, "Mesa", found[0]["name"])
}

func TestClients_EliminarConPedidos_Retorna409(t *testing.T) {
	s := newTestServer(t)
	clientID := s.create(t, "/api/clients", `{"name":"Ana Cliente"}`)
	productID := s.create(t, "/api/products", `{"name":"Mesa","price":"10","stock":5}`)
	s.create(t, "/api/orders", `{"client_id":"`+clientID+`","lines":[{"product_id":"`+productID+`","quantity":1}]}`)

	resp := s.do(t, http.MethodDelete, "/api/clients/"+clientID, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestProducts_EliminarConPedidos_Retorna409YConservaStock(t *testing.T) {
	s := newTestServer(t)
	clientID := s.create(t, "/api/clients", `{"name":"Ana Cliente"}`)
	productID := s.create(t, "/api/products", `{"name":"Mesa","price":"10","stock":5}`)
	orderID := s.create(t, "/api/orders", `{"client_id":"`+clientID+`","lines":[{"product_id":"`+productID+`","quantity":2}]}`)

	resp := s.do(t, http.MethodDelete, "/api/products/"+productID, "")
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var body struct {
		Code string `json:"code"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "CONFLICT", body.Code)
	assert.Equal(t, int64(3), s.stock(t, productID))

	resp = s.do(t, http.MethodGet, "/api/orders/"+orderID, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "el pedido conserva sus líneas")

	// Sin pedidos que lo referencien, el producto sí se elimina.
	require.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/orders/"+orderID, "").StatusCode)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/products/"+productID, "").StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Pedidos
// ──────────────────────────────────────────────────────────────────────────────

func (s *testServer) stock(t *testing.T, productID string) int64 {
	t.Helper()
	resp := s.do(t, http.MethodGet, "/api/products/"+productID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var p struct {
		Stock int64 `json:"stock"`
	}
	decode(t, resp, &p)
	return p.Stock
}

func TestOrders_CicloDeVidaAjustaStock(t *testing.T) {
	s := newTestServer(t)
	clientID := s.create(t, "/api/clients", `{"name":"Ana Cliente"}`)
	productID := s.create(t, "/api/products", `{"name":"Mesa","price":"10","stock":50}`)

	orderID := s.create(t, "/api/orders", `{"client_id":"`+clientID+`","lines":[{"product_id":"`+productID+`","quantity":5}]}`)
	assert.Equal(t, int64(45), s.stock(t, productID))

	resp := s.do(t, http.MethodPut, "/api/orders/"+orderID, `{"lines":[{"product_id":"`+productID+`","quantity":8}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(42), s.stock(t, productID))

	resp = s.do(t, http.MethodGet, "/api/orders?type=client", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Items []struct {
			ID        string `json:"id"`
			ItemCount int64  `json:"item_count"`
		} `json:"items"`
		Type string `json:"type"`
	}
	decode(t, resp, &list)
	assert.Equal(t, entity.KindClient, list.Type)
	require.Len(t, list.Items, 1)
	assert.Equal(t, orderID, list.Items[0].ID)
	assert.Equal(t, int64(8), list.Items[0].ItemCount)

	resp = s.do(t, http.MethodDelete, "/api/orders/"+orderID, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, int64(50), s.stock(t, productID))

	resp = s.do(t, http.MethodGet, "/api/orders/"+orderID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOrders_StockInsuficiente_Retorna422ConInput(t *testing.T) {
	s := newTestServer(t)
	clientID := s.create(t, "/api/clients", `{"name":"Ana Cliente"}`)
	productID := s.create(t, "/api/products", `{"name":"Mesa","price":"10","stock":5}`)

	resp := s.do(t, http.MethodPost, "/api/orders", `{"client_id":"`+clientID+`","lines":[{"product_id":"`+productID+`","quantity":10}]}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Input   struct {
			ClientID string `json:"client_id"`
			Lines    []struct {
				Quantity int64 `json:"quantity"`
			} `json:"lines"`
		} `json:"input"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "OPERATION_FAILED", body.Code)
	assert.True(t, strings.HasPrefix(body.Message, "no se pudo crear el pedido"), body.Message)
	assert.Equal(t, clientID, body.Input.ClientID)
	require.Len(t, body.Input.Lines, 1)
	assert.Equal(t, int64(10), body.Input.Lines[0].Quantity)

	assert.Equal(t, int64(5), s.stock(t, productID), "el stock no debe cambiar")
}

func TestOrders_SinContraparte_Retorna422(t *testing.T) {
	s := newTestServer(t)
	productID := s.create(t, "/api/products", `{"name":"Mesa","price":"10","stock":5}`)

	resp := s.do(t, http.MethodPost, "/api/orders", `{"lines":[{"product_id":"`+productID+`","quantity":1}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestOrders_CuerpoInvalido_Retorna400(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodPost, "/api/orders", `{"lines":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOrders_Print(t *testing.T) {
	s := newTestServer(t)
	supplierID := s.create(t, "/api/suppliers", `{"name":"Proveedor SA"}`)
	productID := s.create(t, "/api/products", `{"name":"Mesa","price":"10"}`)
	orderID := s.create(t, "/api/orders", `{"supplier_id":"`+supplierID+`","lines":[{"product_id":"`+productID+`","quantity":4,"unit_price":"7.5"}]}`)

	resp := s.do(t, http.MethodGet, "/api/orders/"+orderID+"/print?format=receipt", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp = s.do(t, http.MethodGet, "/api/orders/"+orderID+"/print?format=carta", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transferencia y dashboard
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfer_ImportYExport(t *testing.T) {
	s := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "productos.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("Name,SKU,Price,Stock\nMesa,MES-1,10.50,3\nSilla,,5,1\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/transfer/import/products", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Imported int      `json:"imported"`
		Failed   int      `json:"failed"`
		Errors   []string `json:"errors"`
	}
	decode(t, resp, &result)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Fila 3")

	resp = s.do(t, http.MethodGet, "/api/transfer/export/products?format=csv", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "products_export_")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "MES-1")

	resp = s.do(t, http.MethodGet, "/api/transfer/stats", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats map[string]int
	decode(t, resp, &stats)
	assert.Equal(t, 1, stats["products"])
}

func TestTransfer_ImportSinArchivo_Retorna400(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodPost, "/api/transfer/import/products", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTransfer_RecursoInvalido_Retorna422(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/api/transfer/export/facturas", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestDashboard_IngresosYGastos(t *testing.T) {
	s := newTestServer(t)
	clientID := s.create(t, "/api/clients", `{"name":"Ana Cliente"}`)
	supplierID := s.create(t, "/api/suppliers", `{"name":"Proveedor SA"}`)
	productID := s.create(t, "/api/products", `{"name":"Mesa","price":"10"}`)
	s.create(t, "/api/orders", `{"supplier_id":"`+supplierID+`","lines":[{"product_id":"`+productID+`","quantity":10,"unit_price":"6"}]}`)
	s.create(t, "/api/orders", `{"client_id":"`+clientID+`","lines":[{"product_id":"`+productID+`","quantity":4}]}`)

	resp := s.do(t, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var dash struct {
		Currency string `json:"currency"`
		Revenue  struct {
			Total string `json:"total"`
			Count int    `json:"count"`
		} `json:"revenue"`
		Expenses struct {
			Total string `json:"total"`
		} `json:"expenses"`
		Entities struct {
			Clients   int `json:"clients"`
			Suppliers int `json:"suppliers"`
			Products  int `json:"products"`
		} `json:"entities"`
		Monthly []json.RawMessage `json:"monthly"`
	}
	decode(t, resp, &dash)
	assert.Equal(t, "USD", dash.Currency)
	assert.Equal(t, "40", dash.Revenue.Total)
	assert.Equal(t, 1, dash.Revenue.Count)
	assert.Equal(t, "60", dash.Expenses.Total)
	assert.Equal(t, 1, dash.Entities.Clients)
	assert.Equal(t, 1, dash.Entities.Suppliers)
	assert.Equal(t, 1, dash.Entities.Products)
	assert.Len(t, dash.Monthly, 6)
}

// ──────────────────────────────────────────────────────────────────────────────
// Infraestructura
// ──────────────────────────────────────────────────────────────────────────────

func TestHealthYMetrics(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "http_requests_total")
	assert.Contains(t, string(body), `path="/api/auth/login"`)
}
