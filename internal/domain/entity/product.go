package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product registro del catálogo de productos (captura por código de barras).
// ProductID es único y coincide con el SKU que usa el ledger.
type Product struct {
	ProductID       string
	ProductName     string
	BrandName       string
	Category        string
	OriginalPrice   decimal.Decimal
	DiscountedPrice decimal.Decimal // si es cero se usa OriginalPrice
	ExpiryDate      *time.Time
	StockAvailable  int
	Manufacturer    string
	BatchNumber     string
	LocationInStore string
	Supplier        string
	ReorderLevel    int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EffectivePrice devuelve el precio con descuento, o el original si no hay descuento.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountedPrice.IsZero() {
		return p.OriginalPrice
	}
	return p.DiscountedPrice
}
