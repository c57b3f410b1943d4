package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/aether-industries/storefront-api/internal/models"
)

// OrderRepository handles data access for checkout submissions.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// orderRow mirrors the orders table; line items and the shipping block are
// stored as JSONB documents.
type orderRow struct {
	models.Order
	ItemsJSON    []byte `db:"items"`
	ShippingJSON []byte `db:"shipping_address"`
}

func (row *orderRow) toOrder() (*models.Order, error) {
	o := row.Order
	if err := json.Unmarshal(row.ItemsJSON, &o.Items); err != nil {
		return nil, fmt.Errorf("order %s: malformed items: %w", o.ID, err)
	}
	if len(row.ShippingJSON) > 0 {
		if err := json.Unmarshal(row.ShippingJSON, &o.Shipping); err != nil {
			return nil, fmt.Errorf("order %s: malformed shipping address: %w", o.ID, err)
		}
	}
	return &o, nil
}

// Create persists an order or quote request.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	const q = `
        INSERT INTO orders (
            id, type, owner, email, items, shipping_address,
            subtotal, shipping_cost, tax, total,
            payment_method, payment_status, quote_notes, epa_cert_number
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        RETURNING created_at`

	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	shipping, err := json.Marshal(o.Shipping)
	if err != nil {
		return err
	}

	return r.db.QueryRowxContext(ctx, q,
		o.ID, string(o.Type), o.Owner, o.Email, items, shipping,
		o.Subtotal, o.ShippingCost, o.Tax, o.Total,
		o.PaymentMethod, string(o.PaymentStatus), o.QuoteNotes, o.EPACertNumber,
	).Scan(&o.CreatedAt)
}

// GetByID returns a single order by its reference id.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	const q = `
        SELECT id, type, owner, email, items, shipping_address,
               subtotal, shipping_cost, tax, total,
               payment_method, payment_status, quote_notes, epa_cert_number, created_at
        FROM orders WHERE id = $1 LIMIT 1`

	var row orderRow
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, err
	}
	return row.toOrder()
}

// ListByOwner returns the orders submitted under an identity, newest first.
func (r *OrderRepository) ListByOwner(ctx context.Context, owner string) ([]models.Order, error) {
	const q = `
        SELECT id, type, owner, email, items, shipping_address,
               subtotal, shipping_cost, tax, total,
               payment_method, payment_status, quote_notes, epa_cert_number, created_at
        FROM orders WHERE owner = $1 ORDER BY created_at DESC`

	var rows []orderRow
	if err := r.db.SelectContext(ctx, &rows, q, owner); err != nil {
		return nil, err
	}
	return rowsToOrders(rows)
}

// List returns orders for the admin panel, optionally filtered by type,
// newest first, with a total count for pagination.
func (r *OrderRepository) List(ctx context.Context, orderType string, page, limit int) ([]models.Order, int, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	offset := (page - 1) * limit

	const baseWhere = `WHERE ($1 = '' OR type = $1)`

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(1) FROM orders `+baseWhere, orderType); err != nil {
		return nil, 0, err
	}

	q := `
        SELECT id, type, owner, email, items, shipping_address,
               subtotal, shipping_cost, tax, total,
               payment_method, payment_status, quote_notes, epa_cert_number, created_at
        FROM orders ` + baseWhere + `
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	var rows []orderRow
	if err := r.db.SelectContext(ctx, &rows, q, orderType, limit, offset); err != nil {
		return nil, 0, err
	}
	orders, err := rowsToOrders(rows)
	return orders, total, err
}

func rowsToOrders(rows []orderRow) ([]models.Order, error) {
	orders := make([]models.Order, 0, len(rows))
	for i := range rows {
		o, err := rows[i].toOrder()
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, nil
}
