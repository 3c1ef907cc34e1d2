// Package catalog adapta el repositorio de productos como consulta best-effort para el ledger:
// cada llamada tiene timeout propio y un circuit breaker evita insistir sobre un almacén caído.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ inventory.CatalogLookup = (*Lookup)(nil)

// Config parámetros del breaker y del timeout por consulta.
type Config struct {
	Timeout          time.Duration // por consulta; 0 = sin timeout propio
	FailureThreshold uint32        // fallas consecutivas para abrir el circuito
	OpenTimeout      time.Duration // tiempo en abierto antes de pasar a semiabierto
	OnStateChange    func(name, state string)
}

// DefaultConfig valores por defecto.
func DefaultConfig() Config {
	return Config{
		Timeout:          800 * time.Millisecond,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// Lookup consulta el catálogo a través de un circuit breaker.
type Lookup struct {
	repo    repository.ProductRepository
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
}

// NewLookup construye la consulta protegida. Los cambios de estado del breaker se registran en log.
func NewLookup(repo repository.ProductRepository, cfg Config, log zerolog.Logger) *Lookup {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultConfig().FailureThreshold
	}
	settings := gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("cambio de estado del circuit breaker")
			if cfg.OnStateChange != nil {
				cfg.OnStateChange(name, to.String())
			}
		},
	}
	return &Lookup{repo: repo, cb: gobreaker.NewCircuitBreaker(settings), timeout: cfg.Timeout}
}

// Lookup devuelve el producto del SKU, (nil, nil) si no existe. Con el circuito abierto
// devuelve domain.ErrUnavailable sin tocar el repositorio. Una cancelación del llamador
// se devuelve tal cual y no cuenta como falla del breaker.
func (l *Lookup) Lookup(ctx context.Context, sku string) (*entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	var canceled error
	res, err := l.cb.Execute(func() (interface{}, error) {
		p, err := l.repo.GetByProductID(ctx, sku)
		if errors.Is(err, context.Canceled) {
			// el cliente se fue; el catálogo no falló
			canceled = err
			return nil, nil
		}
		return p, err
	})
	if canceled != nil {
		return nil, canceled
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: catálogo (%v)", domain.ErrUnavailable, err)
	}
	if err != nil {
		return nil, fmt.Errorf("consultar catálogo: %w", err)
	}
	p, _ := res.(*entity.Product)
	return p, nil
}

// State estado actual del breaker (closed, half-open, open).
func (l *Lookup) State() string {
	return l.cb.State().String()
}
