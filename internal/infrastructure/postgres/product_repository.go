package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `product_id, product_name, brand_name, category, original_price, discounted_price,
		expiry_date, stock_available, manufacturer, batch_number, location_in_store, supplier,
		reorder_level, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para el catálogo. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto del catálogo.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products_catalog (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		p.ProductID, p.ProductName, p.BrandName, p.Category, p.OriginalPrice, p.DiscountedPrice,
		p.ExpiryDate, p.StockAvailable, p.Manufacturer, p.BatchNumber, p.LocationInStore, p.Supplier,
		p.ReorderLevel, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByProductID obtiene un producto por su productId (SKU).
func (r *ProductRepo) GetByProductID(ctx context.Context, productID string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products_catalog WHERE product_id = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Update actualiza un producto existente. productId y created_at no cambian.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products_catalog SET product_name = $2, brand_name = $3, category = $4,
			original_price = $5, discounted_price = $6, expiry_date = $7, stock_available = $8,
			manufacturer = $9, batch_number = $10, location_in_store = $11, supplier = $12,
			reorder_level = $13, updated_at = $14
		WHERE product_id = $1`
	cmd, err := r.q.Exec(ctx, query,
		p.ProductID, p.ProductName, p.BrandName, p.Category, p.OriginalPrice, p.DiscountedPrice,
		p.ExpiryDate, p.StockAvailable, p.Manufacturer, p.BatchNumber, p.LocationInStore, p.Supplier,
		p.ReorderLevel, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista productos del catálogo con paginación (más recientes primero).
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products_catalog ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Delete elimina un producto por productId.
func (r *ProductRepo) Delete(ctx context.Context, productID string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products_catalog WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ProductID, &p.ProductName, &p.BrandName, &p.Category, &p.OriginalPrice, &p.DiscountedPrice,
		&p.ExpiryDate, &p.StockAvailable, &p.Manufacturer, &p.BatchNumber, &p.LocationInStore, &p.Supplier,
		&p.ReorderLevel, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
