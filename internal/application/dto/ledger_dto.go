package dto

import "time"

// MovementRequest body para POST /api/inventory/receive y /issue.
type MovementRequest struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// RenameItemRequest body para PATCH /api/inventory/items/:sku.
type RenameItemRequest struct {
	Name string `json:"name"`
}

// StockItemResponse salida de un ítem del ledger.
type StockItemResponse struct {
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StockMovementResponse salida de un movimiento de la bitácora.
type StockMovementResponse struct {
	ID          string    `json:"id"`
	Seq         uint64    `json:"seq"`
	Timestamp   time.Time `json:"timestamp"`
	SKU         string    `json:"sku"`
	ProductName string    `json:"product_name"`
	Direction   string    `json:"direction"`
	Quantity    int       `json:"quantity"`
}

// MovementResponse resultado de una entrada o salida aceptada.
type MovementResponse struct {
	Item     StockItemResponse     `json:"item"`
	Movement StockMovementResponse `json:"movement"`
	Created  bool                  `json:"created"`
	Message  string                `json:"message"`
}

// ScanResponse resultado de POST /api/inventory/scan. Movement solo se incluye si se pidió direction.
type ScanResponse struct {
	SKU      string            `json:"sku"`
	Decoded  bool              `json:"decoded"`
	Movement *MovementResponse `json:"movement,omitempty"`
}

// LowStockResponse ítem del ledger en o por debajo de su nivel de reorden del catálogo.
type LowStockResponse struct {
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	ReorderLevel int    `json:"reorder_level"`
	Deficit      int    `json:"deficit"` // ReorderLevel - Quantity (>= 0)
}
