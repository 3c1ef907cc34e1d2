package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para registrar un producto en el catálogo.
type CreateProductRequest struct {
	ProductID       string          `json:"productId" validate:"required,min=1,max=100"`
	ProductName     string          `json:"productName" validate:"required,min=1,max=200"`
	BrandName       string          `json:"brandName" validate:"max=200"`
	Category        string          `json:"category" validate:"max=100"`
	OriginalPrice   decimal.Decimal `json:"originalPrice"`
	DiscountedPrice decimal.Decimal `json:"discountedPrice"`
	ExpiryDate      *time.Time      `json:"expiryDate"`
	StockAvailable  *int            `json:"stockAvailable" validate:"required,min=0"`
	Manufacturer    string          `json:"manufacturer" validate:"max=200"`
	BatchNumber     string          `json:"batchNumber" validate:"max=100"`
	LocationInStore string          `json:"locationInStore" validate:"max=100"`
	Supplier        string          `json:"supplier" validate:"max=200"`
	ReorderLevel    int             `json:"reorderLevel" validate:"min=0"`
}

// UpdateProductRequest entrada para actualizar un producto (campos nil no se tocan).
type UpdateProductRequest struct {
	ProductName     *string          `json:"productName" validate:"omitempty,min=1,max=200"`
	BrandName       *string          `json:"brandName" validate:"omitempty,max=200"`
	Category        *string          `json:"category" validate:"omitempty,max=100"`
	OriginalPrice   *decimal.Decimal `json:"originalPrice"`
	DiscountedPrice *decimal.Decimal `json:"discountedPrice"`
	ExpiryDate      *time.Time       `json:"expiryDate"`
	StockAvailable  *int             `json:"stockAvailable" validate:"omitempty,min=0"`
	Manufacturer    *string          `json:"manufacturer" validate:"omitempty,max=200"`
	BatchNumber     *string          `json:"batchNumber" validate:"omitempty,max=100"`
	LocationInStore *string          `json:"locationInStore" validate:"omitempty,max=100"`
	Supplier        *string          `json:"supplier" validate:"omitempty,max=200"`
	ReorderLevel    *int             `json:"reorderLevel" validate:"omitempty,min=0"`
}

// ProductResponse salida de un producto del catálogo.
type ProductResponse struct {
	ProductID       string          `json:"productId"`
	ProductName     string          `json:"productName"`
	BrandName       string          `json:"brandName"`
	Category        string          `json:"category"`
	OriginalPrice   decimal.Decimal `json:"originalPrice"`
	DiscountedPrice decimal.Decimal `json:"discountedPrice"`
	ExpiryDate      *time.Time      `json:"expiryDate,omitempty"`
	StockAvailable  int             `json:"stockAvailable"`
	Manufacturer    string          `json:"manufacturer"`
	BatchNumber     string          `json:"batchNumber"`
	LocationInStore string          `json:"locationInStore"`
	Supplier        string          `json:"supplier"`
	ReorderLevel    int             `json:"reorderLevel"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
