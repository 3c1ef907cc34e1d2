package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/ledger"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/catalog"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Inventario-ledger/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

// textDecoder trata el contenido del archivo como el texto del código leído.
type textDecoder struct{}

func (textDecoder) Decode(_ context.Context, r io.Reader) (string, bool, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", false, err
	}
	s := strings.TrimSpace(string(b))
	return s, s != "", nil
}

// memCatalog repositorio de productos en memoria.
type memCatalog struct {
	mu   sync.Mutex
	data map[string]entity.Product
}

func newMemCatalog() *memCatalog { return &memCatalog{data: map[string]entity.Product{}} }

func (m *memCatalog) Create(_ context.Context, p *entity.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[p.ProductID]; ok {
		return domain.ErrDuplicate
	}
	m.data[p.ProductID] = *p
	return nil
}

func (m *memCatalog) GetByProductID(_ context.Context, id string) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.data[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memCatalog) Update(_ context.Context, p *entity.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[p.ProductID]; !ok {
		return domain.ErrNotFound
	}
	m.data[p.ProductID] = *p
	return nil
}

func (m *memCatalog) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []*entity.Product
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		p := m.data[ids[i]]
		out = append(out, &p)
	}
	return out, nil
}

func (m *memCatalog) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.data, id)
	return nil
}

// newLedgerApp arma la app completa. withCatalog monta /api/products y la consulta de nombres.
func newLedgerApp(t *testing.T, withCatalog bool) *fiber.App {
	t.Helper()
	deps := inventory.LedgerDeps{
		Decoder: textDecoder{},
		Reports: pdf.NewMarotoReportGenerator("Inventario"),
		Logger:  zerolog.Nop(),
	}
	routerDeps := apphttp.RouterDeps{
		JWTSecret: testJWTSecret,
		JWTIssuer: testIssuer,
		Logger:    zerolog.Nop(),
	}
	if withCatalog {
		repo := newMemCatalog()
		deps.Catalog = catalog.NewLookup(repo, catalog.DefaultConfig(), zerolog.Nop())
		routerDeps.ProductUC = usecase.NewProductUseCase(repo)
	}
	routerDeps.LedgerUC = inventory.NewLedgerUseCase(ledger.New(), deps)

	app := fiber.New()
	apphttp.Router(app, routerDeps)
	return app
}

func sendJSON(t *testing.T, app *fiber.App, method, path, role string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Ledger por HTTP
// ──────────────────────────────────────────────────────────────────────────────

func TestInventoryHTTP_EscenarioCompleto(t *testing.T) {
	app := newLedgerApp(t, false)

	resp := sendJSON(t, app, http.MethodPost, "/api/inventory/receive", "bodeguero", dto.MovementRequest{SKU: "SKU001", Quantity: 50})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	first := decode[dto.MovementResponse](t, resp)
	assert.True(t, first.Created)
	assert.Equal(t, "New Product (SKU001)", first.Item.Name)
	assert.Equal(t, 50, first.Item.Quantity)

	resp = sendJSON(t, app, http.MethodPost, "/api/inventory/issue", "bodeguero", dto.MovementRequest{SKU: "SKU001", Quantity: 20})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 30, decode[dto.MovementResponse](t, resp).Item.Quantity)

	resp = sendJSON(t, app, http.MethodPost, "/api/inventory/issue", "bodeguero", dto.MovementRequest{SKU: "SKU001", Quantity: 100})
	require.Equal(t, http.StatusConflict, resp.StatusCode, "salida mayor al stock debe rechazarse")
	rejected := decode[dto.InsufficientStockResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", rejected.Code)
	assert.Equal(t, 30, rejected.Available)
	assert.Equal(t, 100, rejected.Requested)

	resp = sendJSON(t, app, http.MethodPost, "/api/inventory/receive", "admin", dto.MovementRequest{SKU: "SKU001", Quantity: 5})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	last := decode[dto.MovementResponse](t, resp)
	assert.Equal(t, 35, last.Item.Quantity)
	assert.Equal(t, "Scanned IN 5 of New Product (SKU001). Total stock: 35", last.Message)

	resp = sendJSON(t, app, http.MethodGet, "/api/inventory/movements", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	movs := decode[[]dto.StockMovementResponse](t, resp)
	require.Len(t, movs, 3)
	assert.Equal(t, entity.DirectionReceive, movs[0].Direction)
	assert.Equal(t, 5, movs[0].Quantity)
	assert.Equal(t, entity.DirectionIssue, movs[1].Direction)
	assert.Equal(t, 20, movs[1].Quantity)
	assert.Equal(t, 50, movs[2].Quantity)

	resp = sendJSON(t, app, http.MethodGet, "/api/inventory/items", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := decode[[]dto.StockItemResponse](t, resp)
	require.Len(t, items, 1)
	assert.Equal(t, 35, items[0].Quantity)
}

func TestInventoryHTTP_CantidadInvalida_Retorna400(t *testing.T) {
	app := newLedgerApp(t, false)

	for _, qty := range []int{0, -3} {
		resp := sendJSON(t, app, http.MethodPost, "/api/inventory/receive", "admin", dto.MovementRequest{SKU: "X", Quantity: qty})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decode[dto.ErrorResponse](t, resp)
		assert.Equal(t, "VALIDATION", body.Code)
		assert.Equal(t, "quantity", body.Field)
	}

	resp := sendJSON(t, app, http.MethodGet, "/api/inventory/items", "admin", nil)
	assert.Empty(t, decode[[]dto.StockItemResponse](t, resp), "no debe crearse el ítem")
}

func TestInventoryHTTP_EntradaQueDesbordaRetorna400(t *testing.T) {
	app := newLedgerApp(t, false)
	resp := sendJSON(t, app, http.MethodPost, "/api/inventory/receive", "admin", dto.MovementRequest{SKU: "X", Quantity: math.MaxInt})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = sendJSON(t, app, http.MethodPost, "/api/inventory/receive", "admin", dto.MovementRequest{SKU: "X", Quantity: 1})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "quantity", decode[dto.ErrorResponse](t, resp).Field)

	items := decode[[]dto.StockItemResponse](t, sendJSON(t, app, http.MethodGet, "/api/inventory/items", "admin", nil))
	require.Len(t, items, 1)
	assert.Equal(t, math.MaxInt, items[0].Quantity)
	movs := decode[[]dto.StockMovementResponse](t, sendJSON(t, app, http.MethodGet, "/api/inventory/movements", "admin", nil))
	assert.Len(t, movs, 1)
}

func TestInventoryHTTP_SalidaSKUDesconocido_Retorna404(t *testing.T) {
	app := newLedgerApp(t, false)
	resp := sendJSON(t, app, http.MethodPost, "/api/inventory/issue", "admin", dto.MovementRequest{SKU: "NOPE", Quantity: 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestInventoryHTTP_CuerpoInvalido_Retorna400(t *testing.T) {
	app := newLedgerApp(t, false)
	req := httptest.NewRequest(http.MethodPost, "/api/inventory/receive", strings.NewReader("{no-json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, "admin"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", decode[dto.ErrorResponse](t, resp).Code)
}

func TestInventoryHTTP_VendedorNoRegistraMovimientos(t *testing.T) {
	app := newLedgerApp(t, false)
	resp := sendJSON(t, app, http.MethodPost, "/api/inventory/receive", "vendedor", dto.MovementRequest{SKU: "A", Quantity: 1})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestInventoryHTTP_SinToken_Retorna401(t *testing.T) {
	app := newLedgerApp(t, false)
	resp := sendJSON(t, app, http.MethodGet, "/api/inventory/items", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestInventoryHTTP_Renombrar(t *testing.T) {
	app := newLedgerApp(t, false)
	sendJSON(t, app, http.MethodPost, "/api/inventory/receive", "admin", dto.MovementRequest{SKU: "A1", Quantity: 2}).Body.Close()

	resp := sendJSON(t, app, http.MethodPatch, "/api/inventory/items/A1", "bodeguero", dto.RenameItemRequest{Name: "Widget"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "solo admin renombra")
	resp.Body.Close()

	resp = sendJSON(t, app, http.MethodPatch, "/api/inventory/items/A1", "admin", dto.RenameItemRequest{Name: "Widget"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.StockItemResponse](t, resp)
	assert.Equal(t, "Widget", out.Name)
	assert.Equal(t, 2, out.Quantity)

	resp = sendJSON(t, app, http.MethodPatch, "/api/inventory/items/B9", "admin", dto.RenameItemRequest{Name: "Otro"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

// ──────────────────────────────────────────────────────────────────────────────
// Escaneo
// ──────────────────────────────────────────────────────────────────────────────

func scanRequest(t *testing.T, content, direction, quantity string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("image", "frame.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	if direction != "" {
		require.NoError(t, w.WriteField("direction", direction))
	}
	if quantity != "" {
		require.NoError(t, w.WriteField("quantity", quantity))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/inventory/scan", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", tokenForRole(t, "bodeguero"))
	return req
}

func TestInventoryHTTP_ScanSoloLectura(t *testing.T) {
	app := newLedgerApp(t, false)
	resp, err := app.Test(scanRequest(t, "7701234567890", "", ""), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[dto.ScanResponse](t, resp)
	assert.True(t, out.Decoded)
	assert.Equal(t, "7701234567890", out.SKU)
	assert.Nil(t, out.Movement)
}

func TestInventoryHTTP_ScanConEntrada(t *testing.T) {
	app := newLedgerApp(t, false)
	resp, err := app.Test(scanRequest(t, "SKU777", "receive", "4"), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	out := decode[dto.ScanResponse](t, resp)
	require.NotNil(t, out.Movement)
	assert.Equal(t, 4, out.Movement.Item.Quantity)
	assert.Equal(t, "SKU777", out.Movement.Item.SKU)
}

func TestInventoryHTTP_ScanSinCodigoEsSinEntrada(t *testing.T) {
	app := newLedgerApp(t, false)
	resp, err := app.Test(scanRequest(t, "", "receive", "1"), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "sku", decode[dto.ErrorResponse](t, resp).Field)
}

func TestInventoryHTTP_ScanDireccionInvalida(t *testing.T) {
	app := newLedgerApp(t, false)
	resp, err := app.Test(scanRequest(t, "SKU1", "transfer", ""), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

// ──────────────────────────────────────────────────────────────────────────────
// Reporte, alertas y catálogo
// ──────────────────────────────────────────────────────────────────────────────

func TestInventoryHTTP_ReportePDF(t *testing.T) {
	app := newLedgerApp(t, false)
	sendJSON(t, app, http.MethodPost, "/api/inventory/receive", "admin", dto.MovementRequest{SKU: "A1", Quantity: 3}).Body.Close()

	resp := sendJSON(t, app, http.MethodGet, "/api/inventory/report", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestInventoryHTTP_LowStockSinCatalogo_Retorna503(t *testing.T) {
	app := newLedgerApp(t, false)
	resp := sendJSON(t, app, http.MethodGet, "/api/inventory/low-stock", "admin", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	resp.Body.Close()

	resp = sendJSON(t, app, http.MethodGet, "/api/products", "admin", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "sin catálogo no se montan las rutas de productos")
	resp.Body.Close()
}

func TestInventoryHTTP_CatalogoNombraYAlerta(t *testing.T) {
	app := newLedgerApp(t, true)

	create := map[string]any{
		"productId":      "7701234567890",
		"productName":    "Café molido 500g",
		"originalPrice":  "18900",
		"stockAvailable": 40,
		"reorderLevel":   10,
	}
	resp := sendJSON(t, app, http.MethodPost, "/api/products", "bodeguero", create)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "solo admin escribe en el catálogo")
	resp.Body.Close()

	resp = sendJSON(t, app, http.MethodPost, "/api/products", "admin", create)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = sendJSON(t, app, http.MethodPost, "/api/products", "admin", create)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", decode[dto.ErrorResponse](t, resp).Code)

	resp = sendJSON(t, app, http.MethodPost, "/api/inventory/receive", "bodeguero", dto.MovementRequest{SKU: "7701234567890", Quantity: 4})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Café molido 500g", decode[dto.MovementResponse](t, resp).Item.Name, "el nombre sale del catálogo")

	resp = sendJSON(t, app, http.MethodGet, "/api/inventory/low-stock", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	type lowStockBody struct {
		Total int                    `json:"total"`
		Items []dto.LowStockResponse `json:"items"`
	}
	alerts := decode[lowStockBody](t, resp)
	require.Equal(t, 1, alerts.Total)
	assert.Equal(t, 6, alerts.Items[0].Deficit)

	resp = sendJSON(t, app, http.MethodGet, "/api/products/7701234567890", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 10, decode[dto.ProductResponse](t, resp).ReorderLevel)

	resp = sendJSON(t, app, http.MethodDelete, "/api/products/7701234567890", "admin", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = sendJSON(t, app, http.MethodGet, "/api/products/7701234567890", "admin", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestHealth(t *testing.T) {
	app := newLedgerApp(t, false)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
