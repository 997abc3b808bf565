package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/stocklane/inventory-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	query := `SELECT id, owner_id, sku, name, inventory_type, retail_price FROM products WHERE id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if p.HasVariants() {
		var variants []model.ProductVariant
		err = r.DB.SelectContext(ctx, &variants,
			`SELECT id, product_id, sku FROM product_variants WHERE product_id = $1 ORDER BY sku`, id)
		if err != nil {
			return nil, err
		}
		p.Variants = variants
	}

	return &p, nil
}

func (r *PGRepository) HasVariantSKU(ctx context.Context, productID, sku string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM product_variants WHERE product_id = $1 AND sku = $2)`
	err := r.DB.GetContext(ctx, &exists, query, productID, sku)
	return exists, err
}
