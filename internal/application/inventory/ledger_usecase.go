package inventory

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/ledger"
)

// Razones de rechazo reportadas al observador.
const (
	RejectValidation        = "validation"
	RejectNotFound          = "not_found"
	RejectInsufficientStock = "insufficient_stock"
)

// LedgerDeps colaboradores opcionales del caso de uso. Cualquiera puede ser nil.
type LedgerDeps struct {
	Catalog  CatalogLookup
	Decoder  BarcodeDecoder
	Reports  ReportGenerator
	Observer MovementObserver
	Logger   zerolog.Logger
	Now      func() time.Time
}

// LedgerUseCase expone el ledger a la capa HTTP: entradas, salidas, consultas, escaneo,
// alertas de reorden y reporte. El ledger sigue siendo el único dueño del estado.
type LedgerUseCase struct {
	ledger   *ledger.Ledger
	catalog  CatalogLookup
	decoder  BarcodeDecoder
	reports  ReportGenerator
	observer MovementObserver
	log      zerolog.Logger
	now      func() time.Time
}

// NewLedgerUseCase construye el caso de uso sobre un ledger ya configurado.
func NewLedgerUseCase(l *ledger.Ledger, deps LedgerDeps) *LedgerUseCase {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &LedgerUseCase{
		ledger:   l,
		catalog:  deps.Catalog,
		decoder:  deps.Decoder,
		reports:  deps.Reports,
		observer: deps.Observer,
		log:      deps.Logger,
		now:      now,
	}
}

// Receive registra una entrada. Si el SKU es nuevo y hay catálogo, usa el nombre catalogado.
func (uc *LedgerUseCase) Receive(ctx context.Context, in dto.MovementRequest) (*dto.MovementResponse, error) {
	var name string
	if sku := strings.TrimSpace(in.SKU); sku != "" && in.Quantity >= 1 {
		if _, exists := uc.ledger.Item(sku); !exists {
			name = uc.catalogName(ctx, sku)
		}
	}

	res, err := uc.ledger.ReceiveAs(in.SKU, name, in.Quantity)
	if err != nil {
		uc.rejected(entity.DirectionReceive, in, err)
		return nil, err
	}
	uc.accepted(res)
	return toMovementResponse(res), nil
}

// Issue registra una salida; falla sin efectos si no hay stock suficiente.
func (uc *LedgerUseCase) Issue(_ context.Context, in dto.MovementRequest) (*dto.MovementResponse, error) {
	res, err := uc.ledger.Issue(in.SKU, in.Quantity)
	if err != nil {
		uc.rejected(entity.DirectionIssue, in, err)
		return nil, err
	}
	uc.accepted(res)
	return toMovementResponse(res), nil
}

// Rename cambia el nombre visible de un SKU.
func (uc *LedgerUseCase) Rename(_ context.Context, sku string, in dto.RenameItemRequest) (*dto.StockItemResponse, error) {
	item, err := uc.ledger.Rename(sku, in.Name)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("sku", item.SKU).Str("name", item.Name).Msg("ítem renombrado")
	out := toStockItemResponse(item)
	return &out, nil
}

// ListItems devuelve los ítems ordenados por nombre (orden de presentación).
func (uc *LedgerUseCase) ListItems(_ context.Context) []dto.StockItemResponse {
	items := uc.ledger.ListItems()
	sortByName(items)
	out := make([]dto.StockItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toStockItemResponse(it))
	}
	return out
}

// ListMovements devuelve la bitácora acotada, más nuevo primero.
func (uc *LedgerUseCase) ListMovements(_ context.Context) []dto.StockMovementResponse {
	movs := uc.ledger.ListMovements()
	out := make([]dto.StockMovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, toStockMovementResponse(m))
	}
	return out
}

// Scan decodifica la imagen y, si se indica direction (receive|issue), aplica el movimiento
// con el SKU leído. Una imagen sin código equivale a "sin entrada": el movimiento falla por sku vacío.
func (uc *LedgerUseCase) Scan(ctx context.Context, image io.Reader, direction string, quantity int) (*dto.ScanResponse, error) {
	if uc.decoder == nil {
		return nil, domain.ErrUnavailable
	}
	direction = strings.ToLower(strings.TrimSpace(direction))
	if direction != "" && !entity.IsValidDirection(direction) {
		return nil, domain.NewValidationError("direction", "debe ser receive o issue")
	}

	text, ok, err := uc.decoder.Decode(ctx, image)
	if err != nil {
		return nil, err
	}
	out := &dto.ScanResponse{SKU: strings.TrimSpace(text), Decoded: ok}
	uc.log.Debug().Bool("decoded", ok).Str("sku", out.SKU).Msg("imagen escaneada")
	if direction == "" {
		return out, nil
	}

	req := dto.MovementRequest{SKU: out.SKU, Quantity: quantity}
	var mv *dto.MovementResponse
	if direction == entity.DirectionReceive {
		mv, err = uc.Receive(ctx, req)
	} else {
		mv, err = uc.Issue(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	out.Movement = mv
	return out, nil
}

// LowStock lista los ítems cuya cantidad está en o por debajo del nivel de reorden catalogado.
// Los SKUs sin catálogo o con error de consulta se omiten.
func (uc *LedgerUseCase) LowStock(ctx context.Context) ([]dto.LowStockResponse, error) {
	if uc.catalog == nil {
		return nil, domain.ErrUnavailable
	}
	out := []dto.LowStockResponse{}
	for _, it := range uc.ledger.ListItems() {
		p, err := uc.catalog.Lookup(ctx, it.SKU)
		if err != nil {
			uc.log.Warn().Err(err).Str("sku", it.SKU).Msg("consulta de catálogo fallida, se omite en alertas")
			continue
		}
		if p == nil || p.ReorderLevel <= 0 || it.Quantity > p.ReorderLevel {
			continue
		}
		out = append(out, dto.LowStockResponse{
			SKU:          it.SKU,
			Name:         it.Name,
			Quantity:     it.Quantity,
			ReorderLevel: p.ReorderLevel,
			Deficit:      p.ReorderLevel - it.Quantity,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Deficit != out[j].Deficit {
			return out[i].Deficit > out[j].Deficit
		}
		return out[i].SKU < out[j].SKU
	})
	return out, nil
}

// Report genera el PDF de existencias actuales y movimientos recientes.
func (uc *LedgerUseCase) Report(ctx context.Context) ([]byte, error) {
	if uc.reports == nil {
		return nil, domain.ErrUnavailable
	}
	items := uc.ledger.ListItems()
	sortByName(items)
	return uc.reports.GenerateStockReport(ctx, items, uc.ledger.ListMovements(), uc.now())
}

// catalogName nombre catalogado del SKU o "" (placeholder) si no hay catálogo o falla la consulta.
func (uc *LedgerUseCase) catalogName(ctx context.Context, sku string) string {
	if uc.catalog == nil {
		return ""
	}
	p, err := uc.catalog.Lookup(ctx, sku)
	if err != nil {
		uc.log.Warn().Err(err).Str("sku", sku).Msg("catálogo no disponible, se usa nombre provisional")
		return ""
	}
	if p == nil {
		return ""
	}
	return p.ProductName
}

func (uc *LedgerUseCase) accepted(res ledger.Result) {
	uc.log.Info().
		Str("sku", res.Item.SKU).
		Str("direction", res.Movement.Direction).
		Int("quantity", res.Movement.Quantity).
		Int("total", res.Item.Quantity).
		Bool("created", res.Created).
		Msg(res.Summary)
	if uc.observer != nil {
		uc.observer.MovementAccepted(res.Movement.Direction, res.Movement.Quantity)
		uc.observer.ItemsTracked(uc.ledger.Len())
	}
}

func (uc *LedgerUseCase) rejected(direction string, in dto.MovementRequest, err error) {
	reason := RejectValidation
	var insuf *domain.InsufficientStockError
	switch {
	case errors.As(err, &insuf):
		reason = RejectInsufficientStock
		uc.log.Warn().Str("sku", insuf.SKU).Int("requested", insuf.Requested).Int("available", insuf.Available).
			Msg("salida rechazada por stock insuficiente")
	case errors.Is(err, domain.ErrNotFound):
		reason = RejectNotFound
		uc.log.Debug().Str("sku", in.SKU).Str("direction", direction).Msg("sku desconocido")
	default:
		uc.log.Debug().Err(err).Str("direction", direction).Msg("movimiento inválido")
	}
	if uc.observer != nil {
		uc.observer.MovementRejected(direction, reason)
	}
}

func sortByName(items []entity.StockItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].SKU < items[j].SKU
	})
}

func toStockItemResponse(it entity.StockItem) dto.StockItemResponse {
	return dto.StockItemResponse{SKU: it.SKU, Name: it.Name, Quantity: it.Quantity, UpdatedAt: it.UpdatedAt}
}

func toStockMovementResponse(m entity.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:          m.ID,
		Seq:         m.Seq,
		Timestamp:   m.Timestamp,
		SKU:         m.SKU,
		ProductName: m.ProductName,
		Direction:   m.Direction,
		Quantity:    m.Quantity,
	}
}

func toMovementResponse(res ledger.Result) *dto.MovementResponse {
	return &dto.MovementResponse{
		Item:     toStockItemResponse(res.Item),
		Movement: toStockMovementResponse(res.Movement),
		Created:  res.Created,
		Message:  res.Summary,
	}
}
