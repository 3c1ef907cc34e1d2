package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// productDoc documento de la colección products (mismos nombres de campo que el esquema original).
type productDoc struct {
	ProductID       string               `bson:"productId"`
	ProductName     string               `bson:"productName"`
	BrandName       string               `bson:"brandName,omitempty"`
	Category        string               `bson:"category,omitempty"`
	OriginalPrice   primitive.Decimal128 `bson:"originalPrice"`
	DiscountedPrice primitive.Decimal128 `bson:"discountedPrice"`
	ExpiryDate      *time.Time           `bson:"expiryDate,omitempty"`
	StockAvailable  int                  `bson:"stockAvailable"`
	Manufacturer    string               `bson:"manufacturer,omitempty"`
	BatchNumber     string               `bson:"batchNumber,omitempty"`
	LocationInStore string               `bson:"locationInStore,omitempty"`
	Supplier        string               `bson:"supplier,omitempty"`
	ReorderLevel    int                  `bson:"reorderLevel"`
	CreatedAt       time.Time            `bson:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt"`
}

// ProductRepo implementación de ProductRepository sobre una colección MongoDB.
type ProductRepo struct {
	collection *mongo.Collection
}

// NewProductRepository construye el repositorio y asegura el índice único sobre productId.
func NewProductRepository(ctx context.Context, db *mongo.Database) (*ProductRepo, error) {
	r := &ProductRepo{collection: db.Collection("products")}
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "productId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("crear índice productId: %w", err)
	}
	return r, nil
}

// Create inserta un producto; productId duplicado devuelve domain.ErrDuplicate.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	doc, err := toDoc(p)
	if err != nil {
		return err
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByProductID busca por productId; (nil, nil) si no existe.
func (r *ProductRepo) GetByProductID(ctx context.Context, productID string) (*entity.Product, error) {
	var doc productDoc
	err := r.collection.FindOne(ctx, bson.M{"productId": productID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return fromDoc(&doc)
}

// Update reemplaza los campos editables conservando createdAt.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	doc, err := toDoc(p)
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{
		"productName":     doc.ProductName,
		"brandName":       doc.BrandName,
		"category":        doc.Category,
		"originalPrice":   doc.OriginalPrice,
		"discountedPrice": doc.DiscountedPrice,
		"expiryDate":      doc.ExpiryDate,
		"stockAvailable":  doc.StockAvailable,
		"manufacturer":    doc.Manufacturer,
		"batchNumber":     doc.BatchNumber,
		"locationInStore": doc.LocationInStore,
		"supplier":        doc.Supplier,
		"reorderLevel":    doc.ReorderLevel,
		"updatedAt":       doc.UpdatedAt,
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"productId": p.ProductID}, update)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List devuelve productos ordenados por createdAt descendente.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer cursor.Close(ctx)

	var list []*entity.Product
	for cursor.Next(ctx) {
		var doc productDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		p, err := fromDoc(&doc)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, cursor.Err()
}

// Delete elimina por productId.
func (r *ProductRepo) Delete(ctx context.Context, productID string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"productId": productID})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func toDoc(p *entity.Product) (*productDoc, error) {
	orig, err := primitive.ParseDecimal128(p.OriginalPrice.String())
	if err != nil {
		return nil, fmt.Errorf("originalPrice: %w", err)
	}
	disc, err := primitive.ParseDecimal128(p.DiscountedPrice.String())
	if err != nil {
		return nil, fmt.Errorf("discountedPrice: %w", err)
	}
	return &productDoc{
		ProductID:       p.ProductID,
		ProductName:     p.ProductName,
		BrandName:       p.BrandName,
		Category:        p.Category,
		OriginalPrice:   orig,
		DiscountedPrice: disc,
		ExpiryDate:      p.ExpiryDate,
		StockAvailable:  p.StockAvailable,
		Manufacturer:    p.Manufacturer,
		BatchNumber:     p.BatchNumber,
		LocationInStore: p.LocationInStore,
		Supplier:        p.Supplier,
		ReorderLevel:    p.ReorderLevel,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}, nil
}

func fromDoc(d *productDoc) (*entity.Product, error) {
	orig, err := decimal.NewFromString(d.OriginalPrice.String())
	if err != nil {
		return nil, fmt.Errorf("originalPrice: %w", err)
	}
	disc, err := decimal.NewFromString(d.DiscountedPrice.String())
	if err != nil {
		return nil, fmt.Errorf("discountedPrice: %w", err)
	}
	return &entity.Product{
		ProductID:       d.ProductID,
		ProductName:     d.ProductName,
		BrandName:       d.BrandName,
		Category:        d.Category,
		OriginalPrice:   orig,
		DiscountedPrice: disc,
		ExpiryDate:      d.ExpiryDate,
		StockAvailable:  d.StockAvailable,
		Manufacturer:    d.Manufacturer,
		BatchNumber:     d.BatchNumber,
		LocationInStore: d.LocationInStore,
		Supplier:        d.Supplier,
		ReorderLevel:    d.ReorderLevel,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}, nil
}
