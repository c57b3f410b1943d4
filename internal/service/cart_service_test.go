package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aether-industries/storefront-api/internal/models"
)

// memCartStore is an in-memory CartStore for tests.
type memCartStore struct {
	data map[string][]byte
}

func newMemCartStore() *memCartStore {
	return &memCartStore{data: make(map[string][]byte)}
}

func (s *memCartStore) Load(_ context.Context, sessionID string) ([]byte, error) {
	return s.data[sessionID], nil
}

func (s *memCartStore) Save(_ context.Context, sessionID string, data []byte) error {
	s.data[sessionID] = data
	return nil
}

func (s *memCartStore) Delete(_ context.Context, sessionID string) error {
	delete(s.data, sessionID)
	return nil
}

func priced(id string, price float64) models.CartProduct {
	return models.CartProduct{
		ProductID: id,
		Name:      "Product " + id,
		Slug:      "product-" + id,
		Price:     decimal.NewNullDecimal(decimal.NewFromFloat(price)),
	}
}

func quoteOnly(id string) models.CartProduct {
	return models.CartProduct{
		ProductID:   id,
		Name:        "Quote Product " + id,
		Slug:        "quote-product-" + id,
		IsQuoteItem: true,
	}
}

func TestAddToCartMergesQuantities(t *testing.T) {
	svc := NewCartService(newMemCartStore())
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "s1", "", priced("p1", 100), 2)
	require.NoError(t, err)
	items, err := svc.AddToCart(ctx, "s1", "", priced("p1", 100), 3)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestAddToCartAppendsDistinctProducts(t *testing.T) {
	svc := NewCartService(newMemCartStore())
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "s1", "", priced("p1", 100), 1)
	require.NoError(t, err)
	items, err := svc.AddToCart(ctx, "s1", "", priced("p2", 50), 1)
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, "p2", items[1].ProductID)
}

func TestUpdateItemQuantityToZeroRemovesLine(t *testing.T) {
	svc := NewCartService(newMemCartStore())
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "s1", "", priced("p1", 100), 2)
	require.NoError(t, err)

	items, err := svc.UpdateItemQuantity(ctx, "s1", "", "p1", 0)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = svc.AddToCart(ctx, "s1", "", priced("p2", 10), 1)
	require.NoError(t, err)
	items, err = svc.UpdateItemQuantity(ctx, "s1", "", "p2", -3)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUpdateItemQuantityOverwrites(t *testing.T) {
	svc := NewCartService(newMemCartStore())
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "s1", "", priced("p1", 100), 2)
	require.NoError(t, err)

	items, err := svc.UpdateItemQuantity(ctx, "s1", "", "p1", 7)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)
}

func TestUpdateItemQuantityMissingProductIsNoop(t *testing.T) {
	svc := NewCartService(newMemCartStore())
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "s1", "", priced("p1", 100), 2)
	require.NoError(t, err)

	items, err := svc.UpdateItemQuantity(ctx, "s1", "", "missing", 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestRemoveFromCartAbsentProductIsNoop(t *testing.T) {
	svc := NewCartService(newMemCartStore())
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "s1", "", priced("p1", 100), 1)
	require.NoError(t, err)

	items, err := svc.RemoveFromCart(ctx, "s1", "", "missing")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestIdentityChangeClearsCart(t *testing.T) {
	svc := NewCartService(newMemCartStore())
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "s1", "", priced("p1", 100), 2)
	require.NoError(t, err)

	// Same session, now authenticated: the anonymous cart must not leak in.
	items, err := svc.GetCart(ctx, "s1", "alice@example.com")
	require.NoError(t, err)
	assert.Empty(t, items)

	// And the clear is persisted: the anonymous identity does not get the
	// old cart back either.
	items, err = svc.GetCart(ctx, "s1", "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestIdentityStableAcrossOperations(t *testing.T) {
	svc := NewCartService(newMemCartStore())
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "s1", "alice@example.com", priced("p1", 100), 2)
	require.NoError(t, err)

	items, err := svc.GetCart(ctx, "s1", "alice@example.com")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestMalformedSnapshotLoadsAsEmpty(t *testing.T) {
	store := newMemCartStore()
	store.data["s1"] = []byte("{not json")
	svc := NewCartService(store)

	items, err := svc.GetCart(context.Background(), "s1", "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartRoundTrip(t *testing.T) {
	store := newMemCartStore()
	svc := NewCartService(store)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "s1", "bob@example.com", priced("p1", 19.99), 3)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, "s1", "bob@example.com", quoteOnly("p2"), 1)
	require.NoError(t, err)

	// A fresh service over the same store must see the identical cart.
	svc2 := NewCartService(store)
	items, err := svc2.GetCart(ctx, "s1", "bob@example.com")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 3, items[0].Quantity)
	assert.True(t, items[1].IsQuoteItem)
}

func TestClearCart(t *testing.T) {
	svc := NewCartService(newMemCartStore())
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "s1", "", priced("p1", 100), 1)
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(ctx, "s1", ""))

	items, err := svc.GetCart(ctx, "s1", "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartsAreIsolatedPerSession(t *testing.T) {
	svc := NewCartService(newMemCartStore())
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "s1", "", priced("p1", 100), 1)
	require.NoError(t, err)

	items, err := svc.GetCart(ctx, "s2", "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestItemCountSumsQuantities(t *testing.T) {
	items := []models.CartItem{
		{CartProduct: priced("p1", 10), Quantity: 2},
		{CartProduct: priced("p2", 20), Quantity: 3},
	}
	assert.Equal(t, 5, ItemCount(items))
	assert.Equal(t, 0, ItemCount(nil))
}

func TestCartSubtotalExcludesQuoteItems(t *testing.T) {
	quoted := quoteOnly("p3")
	// Even a quote line carrying a stale price must contribute zero.
	quoted.Price = decimal.NewNullDecimal(decimal.NewFromInt(999))

	items := []models.CartItem{
		{CartProduct: priced("p1", 19.99), Quantity: 2},
		{CartProduct: priced("p2", 5), Quantity: 1},
		{CartProduct: quoted, Quantity: 4},
	}

	assert.True(t, CartSubtotal(items).Equal(decimal.NewFromFloat(44.98)))
}

func TestCartSubtotalSkipsNullPrices(t *testing.T) {
	noPrice := models.CartProduct{ProductID: "p1", Name: "No price"}
	items := []models.CartItem{{CartProduct: noPrice, Quantity: 3}}
	assert.True(t, CartSubtotal(items).IsZero())
}

func TestIsItemInCart(t *testing.T) {
	items := []models.CartItem{{CartProduct: priced("p1", 10), Quantity: 1}}
	assert.True(t, IsItemInCart(items, "p1"))
	assert.False(t, IsItemInCart(items, "p2"))
}
