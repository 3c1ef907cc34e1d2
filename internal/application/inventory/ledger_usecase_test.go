package inventory_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/ledger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba
// ──────────────────────────────────────────────────────────────────────────────

type stubCatalog struct {
	products map[string]*entity.Product
	err      error
	calls    int
}

func (s *stubCatalog) Lookup(_ context.Context, sku string) (*entity.Product, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.products[sku], nil
}

type stubDecoder struct {
	text string
	ok   bool
	err  error
}

func (s stubDecoder) Decode(_ context.Context, r io.Reader) (string, bool, error) {
	_, _ = io.ReadAll(r)
	return s.text, s.ok, s.err
}

type stubReports struct {
	items     []entity.StockItem
	movements []entity.StockMovement
	at        time.Time
}

func (s *stubReports) GenerateStockReport(_ context.Context, items []entity.StockItem, movs []entity.StockMovement, at time.Time) ([]byte, error) {
	s.items, s.movements, s.at = items, movs, at
	return []byte("%PDF-fake"), nil
}

type recordingObserver struct {
	accepted []string
	rejected []string
	tracked  int
}

func (o *recordingObserver) MovementAccepted(direction string, _ int) {
	o.accepted = append(o.accepted, direction)
}
func (o *recordingObserver) MovementRejected(direction, reason string) {
	o.rejected = append(o.rejected, direction+":"+reason)
}
func (o *recordingObserver) ItemsTracked(n int) { o.tracked = n }

func newUseCase(deps inventory.LedgerDeps) *inventory.LedgerUseCase {
	deps.Logger = zerolog.Nop()
	return inventory.NewLedgerUseCase(ledger.New(), deps)
}

// ──────────────────────────────────────────────────────────────────────────────
// Entradas / salidas
// ──────────────────────────────────────────────────────────────────────────────

func TestReceive_SinCatalogoUsaNombreProvisional(t *testing.T) {
	uc := newUseCase(inventory.LedgerDeps{})

	out, err := uc.Receive(context.Background(), dto.MovementRequest{SKU: "SKU001", Quantity: 50})
	require.NoError(t, err)
	assert.True(t, out.Created)
	assert.Equal(t, 50, out.Item.Quantity)
	assert.Equal(t, "New Product (SKU001)", out.Item.Name)
	assert.Equal(t, entity.DirectionReceive, out.Movement.Direction)
	assert.Contains(t, out.Message, "New product added.")
}

func TestReceive_SKUNuevoTomaNombreDelCatalogo(t *testing.T) {
	cat := &stubCatalog{products: map[string]*entity.Product{
		"7701": {ProductID: "7701", ProductName: "Aceite de girasol 1L"},
	}}
	uc := newUseCase(inventory.LedgerDeps{Catalog: cat})

	out, err := uc.Receive(context.Background(), dto.MovementRequest{SKU: "7701", Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, "Aceite de girasol 1L", out.Item.Name)
	assert.Equal(t, "Aceite de girasol 1L", out.Movement.ProductName)

	// SKU existente: no vuelve a consultar el catálogo.
	_, err = uc.Receive(context.Background(), dto.MovementRequest{SKU: "7701", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, cat.calls)
}

func TestReceive_CatalogoCaidoNoBloqueaEntrada(t *testing.T) {
	cat := &stubCatalog{err: errors.New("timeout")}
	uc := newUseCase(inventory.LedgerDeps{Catalog: cat})

	out, err := uc.Receive(context.Background(), dto.MovementRequest{SKU: "X9", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, "New Product (X9)", out.Item.Name)
}

func TestReceive_InvalidoNoConsultaCatalogo(t *testing.T) {
	cat := &stubCatalog{}
	obs := &recordingObserver{}
	uc := newUseCase(inventory.LedgerDeps{Catalog: cat, Observer: obs})

	_, err := uc.Receive(context.Background(), dto.MovementRequest{SKU: "A", Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, cat.calls)
	assert.Equal(t, []string{"receive:validation"}, obs.rejected)
	assert.Empty(t, uc.ListItems(context.Background()))
}

func TestIssue_EscenarioYObservador(t *testing.T) {
	obs := &recordingObserver{}
	uc := newUseCase(inventory.LedgerDeps{Observer: obs})
	ctx := context.Background()

	_, err := uc.Receive(ctx, dto.MovementRequest{SKU: "SKU001", Quantity: 50})
	require.NoError(t, err)
	out, err := uc.Issue(ctx, dto.MovementRequest{SKU: "SKU001", Quantity: 20})
	require.NoError(t, err)
	assert.Equal(t, 30, out.Item.Quantity)
	assert.Equal(t, "Scanned OUT 20 of New Product (SKU001). Remaining stock: 30", out.Message)

	_, err = uc.Issue(ctx, dto.MovementRequest{SKU: "SKU001", Quantity: 100})
	var insuf *domain.InsufficientStockError
	require.True(t, errors.As(err, &insuf))
	assert.Equal(t, 30, insuf.Available)

	_, err = uc.Issue(ctx, dto.MovementRequest{SKU: "OTRO", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, []string{"receive", "issue"}, obs.accepted)
	assert.Equal(t, []string{"issue:insufficient_stock", "issue:not_found"}, obs.rejected)
	assert.Equal(t, 1, obs.tracked)
	assert.Len(t, uc.ListMovements(ctx), 2)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestListItems_OrdenadoPorNombre(t *testing.T) {
	uc := newUseCase(inventory.LedgerDeps{})
	ctx := context.Background()
	for _, sku := range []string{"C", "A", "B"} {
		_, err := uc.Receive(ctx, dto.MovementRequest{SKU: sku, Quantity: 1})
		require.NoError(t, err)
	}
	_, err := uc.Rename(ctx, "C", dto.RenameItemRequest{Name: "Azúcar"})
	require.NoError(t, err)

	items := uc.ListItems(ctx)
	require.Len(t, items, 3)
	assert.Equal(t, "C", items[0].SKU, "Azúcar < New Product (...)")
	assert.Equal(t, "A", items[1].SKU)
	assert.Equal(t, "B", items[2].SKU)
}

func TestListMovements_MasNuevoPrimero(t *testing.T) {
	uc := newUseCase(inventory.LedgerDeps{})
	ctx := context.Background()
	_, _ = uc.Receive(ctx, dto.MovementRequest{SKU: "A", Quantity: 50})
	_, _ = uc.Issue(ctx, dto.MovementRequest{SKU: "A", Quantity: 20})
	_, _ = uc.Receive(ctx, dto.MovementRequest{SKU: "A", Quantity: 5})

	movs := uc.ListMovements(ctx)
	require.Len(t, movs, 3)
	assert.Equal(t, []int{5, 20, 50}, []int{movs[0].Quantity, movs[1].Quantity, movs[2].Quantity})
	assert.Equal(t, entity.DirectionIssue, movs[1].Direction)
}

// ──────────────────────────────────────────────────────────────────────────────
// Escaneo
// ──────────────────────────────────────────────────────────────────────────────

func TestScan_SoloDecodifica(t *testing.T) {
	uc := newUseCase(inventory.LedgerDeps{Decoder: stubDecoder{text: " 7702 ", ok: true}})

	out, err := uc.Scan(context.Background(), strings.NewReader("img"), "", 0)
	require.NoError(t, err)
	assert.Equal(t, "7702", out.SKU)
	assert.True(t, out.Decoded)
	assert.Nil(t, out.Movement)
	assert.Empty(t, uc.ListItems(context.Background()))
}

func TestScan_AplicaEntrada(t *testing.T) {
	uc := newUseCase(inventory.LedgerDeps{Decoder: stubDecoder{text: "7702", ok: true}})

	out, err := uc.Scan(context.Background(), strings.NewReader("img"), "RECEIVE", 4)
	require.NoError(t, err)
	require.NotNil(t, out.Movement)
	assert.Equal(t, 4, out.Movement.Item.Quantity)
}

func TestScan_SinCodigoEsSinEntrada(t *testing.T) {
	uc := newUseCase(inventory.LedgerDeps{Decoder: stubDecoder{ok: false}})

	_, err := uc.Scan(context.Background(), strings.NewReader("img"), "issue", 1)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "sku", verr.Field)
}

func TestScan_DireccionInvalida(t *testing.T) {
	uc := newUseCase(inventory.LedgerDeps{Decoder: stubDecoder{text: "A", ok: true}})
	_, err := uc.Scan(context.Background(), strings.NewReader("img"), "transfer", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestScan_SinDecodificador(t *testing.T) {
	uc := newUseCase(inventory.LedgerDeps{})
	_, err := uc.Scan(context.Background(), strings.NewReader("img"), "", 0)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

// ──────────────────────────────────────────────────────────────────────────────
// Alertas y reporte
// ──────────────────────────────────────────────────────────────────────────────

func TestLowStock(t *testing.T) {
	cat := &stubCatalog{products: map[string]*entity.Product{
		"A": {ProductID: "A", ProductName: "Arroz", ReorderLevel: 10},
		"B": {ProductID: "B", ProductName: "Frijol", ReorderLevel: 5},
		"C": {ProductID: "C", ProductName: "Sal", ReorderLevel: 0},
	}}
	uc := newUseCase(inventory.LedgerDeps{Catalog: cat})
	ctx := context.Background()
	_, _ = uc.Receive(ctx, dto.MovementRequest{SKU: "A", Quantity: 4})  // déficit 6
	_, _ = uc.Receive(ctx, dto.MovementRequest{SKU: "B", Quantity: 5})  // déficit 0
	_, _ = uc.Receive(ctx, dto.MovementRequest{SKU: "C", Quantity: 1})  // sin nivel
	_, _ = uc.Receive(ctx, dto.MovementRequest{SKU: "D", Quantity: 1})  // sin catálogo

	alerts, err := uc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "A", alerts[0].SKU)
	assert.Equal(t, 6, alerts[0].Deficit)
	assert.Equal(t, "Arroz", alerts[0].Name)
	assert.Equal(t, "B", alerts[1].SKU)
	assert.Equal(t, 0, alerts[1].Deficit)
}

func TestLowStock_SinCatalogo(t *testing.T) {
	uc := newUseCase(inventory.LedgerDeps{})
	_, err := uc.LowStock(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestReport_EntregaSnapshot(t *testing.T) {
	at := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	rep := &stubReports{}
	deps := inventory.LedgerDeps{Reports: rep, Now: func() time.Time { return at }, Logger: zerolog.Nop()}
	uc := inventory.NewLedgerUseCase(ledger.New(), deps)
	ctx := context.Background()
	_, _ = uc.Receive(ctx, dto.MovementRequest{SKU: "A", Quantity: 2})

	pdf, err := uc.Report(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), pdf)
	assert.Len(t, rep.items, 1)
	assert.Len(t, rep.movements, 1)
	assert.Equal(t, at, rep.at)
}
