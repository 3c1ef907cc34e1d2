package entity

import "time"

// StockItem representa la cantidad actual de un SKU dentro del ledger.
// Quantity nunca es negativa; solo cambia vía entradas (receive) y salidas (issue).
type StockItem struct {
	SKU       string
	Name      string
	Quantity  int
	UpdatedAt time.Time
}
