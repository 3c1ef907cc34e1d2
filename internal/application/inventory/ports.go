package inventory

import (
	"context"
	"io"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// CatalogLookup consulta best-effort del catálogo de productos por SKU.
// Devuelve (nil, nil) si el SKU no está catalogado.
type CatalogLookup interface {
	Lookup(ctx context.Context, sku string) (*entity.Product, error)
}

// BarcodeDecoder convierte una imagen o cuadro de cámara en el texto del código, si lo hay.
// ok=false significa "sin entrada"; err se reserva para imágenes ilegibles.
type BarcodeDecoder interface {
	Decode(ctx context.Context, image io.Reader) (text string, ok bool, err error)
}

// ReportGenerator produce el reporte de existencias y movimientos (PDF).
type ReportGenerator interface {
	GenerateStockReport(ctx context.Context, items []entity.StockItem, movements []entity.StockMovement, generatedAt time.Time) ([]byte, error)
}

// MovementObserver recibe cada movimiento aceptado o rechazado (métricas).
type MovementObserver interface {
	MovementAccepted(direction string, quantity int)
	MovementRejected(direction, reason string)
	ItemsTracked(n int)
}
