package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/aether-industries/storefront-api/internal/models"
)

const productColumns = `id, slug, name, category, refrigerant_type, application,
        primary_image_url, other_image_urls, legacy_images,
        short_description, long_description, application_notes,
        technical_specs, safety_information,
        price, is_purchasable, requires_certification, availability, sku,
        created_at, updated_at`

// ProductRepository handles data access for catalog products. Reads pass
// every row through models.ParseProduct; rows that fail normalization are
// dropped from the result set and logged so one corrupt document cannot take
// down the catalog page.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetAll returns every product ordered alphabetically by name, the catalog's
// default order. Filtering happens in memory downstream.
func (r *ProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products ORDER BY name`

	var raws []models.RawProduct
	if err := r.db.SelectContext(ctx, &raws, q); err != nil {
		return nil, err
	}
	return r.normalizeAll(raws), nil
}

// normalizeAll parses raw rows, dropping any that fail normalization.
func (r *ProductRepository) normalizeAll(raws []models.RawProduct) []models.Product {
	products := make([]models.Product, 0, len(raws))
	for _, raw := range raws {
		p, err := models.ParseProduct(raw)
		if err != nil {
			log.Warn().Err(err).Str("product_id", raw.ID).Msg("Dropping malformed product row")
			continue
		}
		products = append(products, p)
	}
	return products
}

// GetByID returns a single product by id.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id = $1 LIMIT 1`

	var raw models.RawProduct
	if err := r.db.GetContext(ctx, &raw, q, id); err != nil {
		return nil, err
	}
	p, err := models.ParseProduct(raw)
	if err != nil {
		return nil, fmt.Errorf("product %s failed normalization: %w", id, err)
	}
	return &p, nil
}

// GetBySlug returns a single product by its URL slug.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE slug = $1 LIMIT 1`

	var raw models.RawProduct
	if err := r.db.GetContext(ctx, &raw, q, slug); err != nil {
		return nil, err
	}
	p, err := models.ParseProduct(raw)
	if err != nil {
		return nil, fmt.Errorf("product %s failed normalization: %w", slug, err)
	}
	return &p, nil
}

// SlugExists reports whether another product already uses the slug.
// excludeID skips the product being updated; pass "" on create.
func (r *ProductRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	const q = `SELECT COUNT(1) FROM products WHERE slug = $1 AND id <> $2`
	var n int
	if err := r.db.GetContext(ctx, &n, q, slug, excludeID); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts a new product with server-assigned timestamps.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	const q = `
        INSERT INTO products (
            id, slug, name, category, refrigerant_type, application,
            primary_image_url, other_image_urls,
            short_description, long_description, application_notes,
            technical_specs, safety_information,
            price, is_purchasable, requires_certification, availability, sku
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
        RETURNING created_at, updated_at`

	other, specs, safety, err := marshalDocFields(p)
	if err != nil {
		return err
	}

	return r.db.QueryRowxContext(ctx, q,
		p.ID, p.Slug, p.Name, p.Category,
		nullIfEmpty(p.RefrigerantType), nullIfEmpty(p.Application),
		p.PrimaryImageURL, other,
		p.ShortDescription, p.LongDescription, nullIfEmpty(p.ApplicationNotes),
		specs, safety,
		p.Price, p.IsPurchasable, p.RequiresCertification, string(p.Availability), p.SKU,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

// Update performs a full-record overwrite. Last writer wins; there is no
// version check. The legacy_images column is cleared on write so migrated
// records do not carry the old shape forward.
func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	const q = `
        UPDATE products SET
            slug = $2, name = $3, category = $4, refrigerant_type = $5, application = $6,
            primary_image_url = $7, other_image_urls = $8, legacy_images = NULL,
            short_description = $9, long_description = $10, application_notes = $11,
            technical_specs = $12, safety_information = $13,
            price = $14, is_purchasable = $15, requires_certification = $16,
            availability = $17, sku = $18, updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at`

	other, specs, safety, err := marshalDocFields(p)
	if err != nil {
		return err
	}

	err = r.db.QueryRowxContext(ctx, q,
		p.ID, p.Slug, p.Name, p.Category,
		nullIfEmpty(p.RefrigerantType), nullIfEmpty(p.Application),
		p.PrimaryImageURL, other,
		p.ShortDescription, p.LongDescription, nullIfEmpty(p.ApplicationNotes),
		specs, safety,
		p.Price, p.IsPurchasable, p.RequiresCertification, string(p.Availability), p.SKU,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return sql.ErrNoRows
	}
	return err
}

// Delete removes a product by id. Hard delete; there is no soft-delete.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func marshalDocFields(p *models.Product) (other, specs, safety []byte, err error) {
	if other, err = json.Marshal(p.OtherImageURLs); err != nil {
		return nil, nil, nil, err
	}
	if specs, err = json.Marshal(p.TechnicalSpecs); err != nil {
		return nil, nil, nil, err
	}
	if safety, err = json.Marshal(p.SafetyInformation); err != nil {
		return nil, nil, nil, err
	}
	return other, specs, safety, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation, used to map duplicate slugs to a field error.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
