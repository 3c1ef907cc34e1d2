package entity

import "time"

// Direcciones de movimiento del ledger.
const (
	DirectionReceive = "receive" // entrada (scan-in)
	DirectionIssue   = "issue"   // salida (scan-out)
)

// StockMovement registro inmutable de una entrada o salida.
// SKU y ProductName son copia del ítem al momento del movimiento.
type StockMovement struct {
	ID          string
	Seq         uint64
	Timestamp   time.Time
	SKU         string
	ProductName string
	Direction   string // receive, issue
	Quantity    int    // siempre positivo; Direction indica el signo
}

// IsValidDirection indica si d es una dirección de movimiento conocida.
func IsValidDirection(d string) bool {
	return d == DirectionReceive || d == DirectionIssue
}
