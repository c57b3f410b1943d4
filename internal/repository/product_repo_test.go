package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

var productRows = []string{
	"id", "slug", "name", "category", "refrigerant_type", "application",
	"primary_image_url", "other_image_urls", "legacy_images",
	"short_description", "long_description", "application_notes",
	"technical_specs", "safety_information",
	"price", "is_purchasable", "requires_certification", "availability", "sku",
	"created_at", "updated_at",
}

func fullRow(id, slug, name string) []driverValue {
	now := time.Now()
	return []driverValue{
		id, slug, name, "Refrigerants", "HFC", "Residential AC",
		"https://img/p.png", []byte(`[]`), nil,
		"Short description", "Long description", nil,
		[]byte(`{}`), []byte(`{"precautions": []}`),
		"149.99", true, true, "In Stock", "SKU-1",
		now, now,
	}
}

type driverValue = driver.Value

func TestGetAllDropsMalformedRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	rows := sqlmock.NewRows(productRows).
		AddRow(fullRow("p1", "alpha", "Alpha")...).
		AddRow(fullRow("p2", "broken", "")...). // missing name: dropped
		AddRow(fullRow("p3", "gamma", "Gamma")...)

	mock.ExpectQuery("SELECT (.+) FROM products ORDER BY name").WillReturnRows(rows)

	products, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, "p3", products[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllPropagatesQueryError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM products ORDER BY name").
		WillReturnError(sql.ErrConnDone)

	_, err := repo.GetAll(context.Background())
	assert.Error(t, err)
}

func TestGetBySlug(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	rows := sqlmock.NewRows(productRows).AddRow(fullRow("p1", "freon-410a", "Freon 410A")...)
	mock.ExpectQuery("SELECT (.+) FROM products WHERE slug =").
		WithArgs("freon-410a").
		WillReturnRows(rows)

	p, err := repo.GetBySlug(context.Background(), "freon-410a")
	require.NoError(t, err)
	assert.Equal(t, "Freon 410A", p.Name)
	assert.True(t, p.Price.Valid)
	assert.True(t, p.Price.Decimal.Equal(decimal.NewFromFloat(149.99)))
}

func TestGetBySlugNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM products WHERE slug =").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(productRows))

	_, err := repo.GetBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSlugExists(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("taken", "").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.SlugExists(context.Background(), "taken", "")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDeleteMissingProduct(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectExec("DELETE FROM products WHERE id =").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(sql.ErrNoRows))
	assert.False(t, IsUniqueViolation(nil))
}
