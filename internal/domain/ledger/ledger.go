// Package ledger implementa el libro de inventario en memoria: cantidad actual por SKU
// y bitácora acotada de movimientos recientes (más nuevo primero).
package ledger

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// Valores por defecto observados en el tablero de inventario.
const (
	DefaultHistoryLimit      = 15
	DefaultPlaceholderFormat = "New Product (%s)"
)

// Result salida de Receive/Issue: ítem con la cantidad resultante y el movimiento registrado.
type Result struct {
	Item     entity.StockItem
	Movement entity.StockMovement
	Created  bool   // true si el SKU se creó en esta entrada
	Summary  string // mensaje legible para el operador
}

// Option configura un Ledger.
type Option func(*Ledger)

// WithHistoryLimit fija cuántos movimientos conserva la bitácora. Valores < 1 se ignoran.
func WithHistoryLimit(n int) Option {
	return func(l *Ledger) {
		if n >= 1 {
			l.limit = n
		}
	}
}

// WithPlaceholder define el nombre que recibe un SKU creado sin nombre explícito.
func WithPlaceholder(fn func(sku string) string) Option {
	return func(l *Ledger) {
		if fn != nil {
			l.placeholder = fn
		}
	}
}

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// PlaceholderFormat construye un generador de nombres a partir de un formato con un %s.
func PlaceholderFormat(format string) func(string) string {
	if !strings.Contains(format, "%s") {
		format = DefaultPlaceholderFormat
	}
	return func(sku string) string { return fmt.Sprintf(format, sku) }
}

// Ledger es el dueño exclusivo de ítems y movimientos. Un único mutex serializa
// todas las operaciones, así el check-then-act de Issue es atómico.
type Ledger struct {
	mu          sync.Mutex
	items       map[string]*entity.StockItem
	movements   []entity.StockMovement // más nuevo primero
	seq         uint64
	limit       int
	placeholder func(string) string
	now         func() time.Time
}

// New construye un ledger vacío.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		items:       make(map[string]*entity.StockItem),
		limit:       DefaultHistoryLimit,
		placeholder: PlaceholderFormat(DefaultPlaceholderFormat),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// HistoryLimit devuelve el tamaño máximo de la bitácora.
func (l *Ledger) HistoryLimit() int { return l.limit }

// Receive suma quantity al SKU; si el SKU no existe lo crea con nombre provisional.
func (l *Ledger) Receive(sku string, quantity int) (Result, error) {
	return l.ReceiveAs(sku, "", quantity)
}

// ReceiveAs igual que Receive, pero si el SKU se crea usa name (si no está vacío)
// en lugar del nombre provisional. Para SKUs existentes name se ignora.
func (l *Ledger) ReceiveAs(sku, name string, quantity int) (Result, error) {
	sku, err := validate(sku, quantity)
	if err != nil {
		return Result{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	item, ok := l.items[sku]
	if ok && item.Quantity > math.MaxInt-quantity {
		return Result{}, domain.NewValidationError("quantity", fmt.Sprintf("la entrada excede el máximo representable (stock actual %d)", item.Quantity))
	}

	now := l.now()
	created := !ok
	if created {
		name = strings.TrimSpace(name)
		if name == "" {
			name = l.placeholder(sku)
		}
		item = &entity.StockItem{SKU: sku, Name: name, Quantity: 0}
		l.items[sku] = item
	}
	item.Quantity += quantity
	item.UpdatedAt = now

	mov := l.record(item, entity.DirectionReceive, quantity, now)

	summary := fmt.Sprintf("Scanned IN %d of %s. Total stock: %d", quantity, item.Name, item.Quantity)
	if created {
		summary = "New product added. " + summary
	}
	return Result{Item: *item, Movement: mov, Created: created, Summary: summary}, nil
}

// Issue resta quantity del SKU. Falla sin cambiar nada si el SKU no existe o si
// la cantidad disponible es menor a la solicitada.
func (l *Ledger) Issue(sku string, quantity int) (Result, error) {
	sku, err := validate(sku, quantity)
	if err != nil {
		return Result{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	item, ok := l.items[sku]
	if !ok {
		return Result{}, &domain.ValidationError{Field: "sku", Reason: "sku desconocido: " + sku, Cause: domain.ErrNotFound}
	}
	if item.Quantity < quantity {
		return Result{}, &domain.InsufficientStockError{SKU: sku, Requested: quantity, Available: item.Quantity}
	}

	now := l.now()
	item.Quantity -= quantity
	item.UpdatedAt = now
	mov := l.record(item, entity.DirectionIssue, quantity, now)

	summary := fmt.Sprintf("Scanned OUT %d of %s. Remaining stock: %d", quantity, item.Name, item.Quantity)
	return Result{Item: *item, Movement: mov, Summary: summary}, nil
}

// Rename cambia el nombre de un SKU existente. Los movimientos ya registrados conservan el nombre anterior.
func (l *Ledger) Rename(sku, name string) (entity.StockItem, error) {
	sku = strings.TrimSpace(sku)
	name = strings.TrimSpace(name)
	if sku == "" {
		return entity.StockItem{}, domain.NewValidationError("sku", "sku requerido")
	}
	if name == "" {
		return entity.StockItem{}, domain.NewValidationError("name", "nombre requerido")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	item, ok := l.items[sku]
	if !ok {
		return entity.StockItem{}, &domain.ValidationError{Field: "sku", Reason: "sku desconocido: " + sku, Cause: domain.ErrNotFound}
	}
	item.Name = name
	item.UpdatedAt = l.now()
	return *item, nil
}

// Item devuelve una copia del ítem, si existe.
func (l *Ledger) Item(sku string) (entity.StockItem, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	item, ok := l.items[strings.TrimSpace(sku)]
	if !ok {
		return entity.StockItem{}, false
	}
	return *item, true
}

// Len cantidad de SKUs conocidos.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// ListItems devuelve una copia de todos los ítems ordenada por SKU.
func (l *Ledger) ListItems() []entity.StockItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]entity.StockItem, 0, len(l.items))
	for _, it := range l.items {
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out
}

// ListMovements devuelve una copia de la bitácora, más nuevo primero.
func (l *Ledger) ListMovements() []entity.StockMovement {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]entity.StockMovement, len(l.movements))
	copy(out, l.movements)
	return out
}

// record antepone el movimiento y recorta la cola. Requiere l.mu tomado.
func (l *Ledger) record(item *entity.StockItem, direction string, quantity int, now time.Time) entity.StockMovement {
	l.seq++
	mov := entity.StockMovement{
		ID:          uuid.New().String(),
		Seq:         l.seq,
		Timestamp:   now,
		SKU:         item.SKU,
		ProductName: item.Name,
		Direction:   direction,
		Quantity:    quantity,
	}
	n := len(l.movements) + 1
	if n > l.limit {
		n = l.limit
	}
	next := make([]entity.StockMovement, 0, n)
	next = append(next, mov)
	next = append(next, l.movements[:n-1]...)
	l.movements = next
	return mov
}

func validate(sku string, quantity int) (string, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return "", domain.NewValidationError("sku", "sku requerido")
	}
	if quantity < 1 {
		return "", domain.NewValidationError("quantity", "la cantidad debe ser mayor a 0")
	}
	return sku, nil
}
