package usecase

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para el catálogo. El stock del ledger no se toca desde aquí.
type ProductUseCase struct {
	repo     repository.ProductRepository
	validate *validator.Validate
	now      func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	v := validator.New()
	// Mensajes con el nombre JSON del campo.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &ProductUseCase{repo: repo, validate: v, now: time.Now}
}

// Create registra un producto. Requiere productId, productName, originalPrice > 0 y stockAvailable >= 0.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.ProductID = strings.TrimSpace(in.ProductID)
	in.ProductName = strings.TrimSpace(in.ProductName)
	if err := uc.check(in); err != nil {
		return nil, err
	}
	if err := checkPrices(in.OriginalPrice, in.DiscountedPrice); err != nil {
		return nil, err
	}

	existing, err := uc.repo.GetByProductID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	now := uc.now()
	discounted := in.DiscountedPrice
	if discounted.IsZero() {
		discounted = in.OriginalPrice
	}
	p := &entity.Product{
		ProductID:       in.ProductID,
		ProductName:     in.ProductName,
		BrandName:       in.BrandName,
		Category:        in.Category,
		OriginalPrice:   in.OriginalPrice,
		DiscountedPrice: discounted,
		ExpiryDate:      in.ExpiryDate,
		StockAvailable:  *in.StockAvailable,
		Manufacturer:    in.Manufacturer,
		BatchNumber:     in.BatchNumber,
		LocationInStore: in.LocationInStore,
		Supplier:        in.Supplier,
		ReorderLevel:    in.ReorderLevel,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// GetByProductID obtiene un producto; (nil, nil) si no existe.
func (uc *ProductUseCase) GetByProductID(ctx context.Context, productID string) (*dto.ProductResponse, error) {
	p, err := uc.repo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	return toProductResponse(p), nil
}

// Update aplica los campos presentes en el request.
func (uc *ProductUseCase) Update(ctx context.Context, productID string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := uc.check(in); err != nil {
		return nil, err
	}
	p, err := uc.repo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}

	if in.ProductName != nil {
		p.ProductName = strings.TrimSpace(*in.ProductName)
	}
	if in.BrandName != nil {
		p.BrandName = *in.BrandName
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.OriginalPrice != nil {
		p.OriginalPrice = *in.OriginalPrice
	}
	if in.DiscountedPrice != nil {
		p.DiscountedPrice = *in.DiscountedPrice
	}
	if in.ExpiryDate != nil {
		p.ExpiryDate = in.ExpiryDate
	}
	if in.StockAvailable != nil {
		p.StockAvailable = *in.StockAvailable
	}
	if in.Manufacturer != nil {
		p.Manufacturer = *in.Manufacturer
	}
	if in.BatchNumber != nil {
		p.BatchNumber = *in.BatchNumber
	}
	if in.LocationInStore != nil {
		p.LocationInStore = *in.LocationInStore
	}
	if in.Supplier != nil {
		p.Supplier = *in.Supplier
	}
	if in.ReorderLevel != nil {
		p.ReorderLevel = *in.ReorderLevel
	}
	if p.ProductName == "" {
		return nil, domain.NewValidationError("productName", "requerido")
	}
	if err := checkPrices(p.OriginalPrice, p.DiscountedPrice); err != nil {
		return nil, err
	}
	p.UpdatedAt = uc.now()

	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// List lista productos paginados.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Delete elimina un producto del catálogo.
func (uc *ProductUseCase) Delete(ctx context.Context, productID string) error {
	return uc.repo.Delete(ctx, productID)
}

// check valida tags de struct y traduce el primer error a domain.ValidationError.
func (uc *ProductUseCase) check(in any) error {
	err := uc.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.NewValidationError(fe.Field(), fmt.Sprintf("no cumple %q", fe.Tag()))
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
}

func checkPrices(original, discounted decimal.Decimal) error {
	if !original.GreaterThan(decimal.Zero) {
		return domain.NewValidationError("originalPrice", "debe ser mayor a 0")
	}
	if discounted.LessThan(decimal.Zero) || discounted.GreaterThan(original) {
		return domain.NewValidationError("discountedPrice", "debe estar entre 0 y originalPrice")
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ProductID:       p.ProductID,
		ProductName:     p.ProductName,
		BrandName:       p.BrandName,
		Category:        p.Category,
		OriginalPrice:   p.OriginalPrice,
		DiscountedPrice: p.EffectivePrice(),
		ExpiryDate:      p.ExpiryDate,
		StockAvailable:  p.StockAvailable,
		Manufacturer:    p.Manufacturer,
		BatchNumber:     p.BatchNumber,
		LocationInStore: p.LocationInStore,
		Supplier:        p.Supplier,
		ReorderLevel:    p.ReorderLevel,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
