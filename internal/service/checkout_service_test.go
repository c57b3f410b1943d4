package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aether-industries/storefront-api/internal/models"
	"github.com/aether-industries/storefront-api/internal/repository"
	"github.com/aether-industries/storefront-api/internal/sse"
	"github.com/aether-industries/storefront-api/internal/utils"
)

func newCheckoutFixture(t *testing.T) (*CheckoutService, *CartService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	carts := NewCartService(newMemCartStore())
	orders := repository.NewOrderRepository(sqlx.NewDb(db, "postgres"))
	return NewCheckoutService(carts, orders, &sse.NopNotifier{}), carts, mock
}

func expectOrderInsert(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
}

func TestPlaceOrderComputesTotals(t *testing.T) {
	svc, carts, mock := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := carts.AddToCart(ctx, "s1", "", priced("p1", 100), 2)
	require.NoError(t, err)

	expectOrderInsert(mock)

	order, err := svc.PlaceOrder(ctx, "s1", "", &CheckoutRequest{
		Email:         "buyer@example.com",
		FullName:      "Pat Buyer",
		PaymentMethod: "card",
	})
	require.NoError(t, err)

	// 200 subtotal + 25 flat shipping + 16 tax (8%)
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(200)))
	assert.True(t, order.ShippingCost.Equal(decimal.NewFromInt(25)))
	assert.True(t, order.Tax.Equal(decimal.NewFromInt(16)))
	assert.True(t, order.Total.Equal(decimal.NewFromInt(241)))
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, models.OrderTypePurchase, order.Type)
	assert.True(t, strings.HasPrefix(order.ID, "AET-"))
	assert.Len(t, order.ID, len("AET-")+7)
}

func TestPlaceOrderExcludesQuoteLines(t *testing.T) {
	svc, carts, mock := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := carts.AddToCart(ctx, "s1", "", priced("p1", 50), 1)
	require.NoError(t, err)
	_, err = carts.AddToCart(ctx, "s1", "", quoteOnly("p2"), 4)
	require.NoError(t, err)

	expectOrderInsert(mock)

	order, err := svc.PlaceOrder(ctx, "s1", "", &CheckoutRequest{
		Email: "buyer@example.com", FullName: "Pat Buyer",
	})
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.Equal(t, "p1", order.Items[0].ProductID)
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(50)))
}

func TestPlaceOrderWireTransferPending(t *testing.T) {
	svc, carts, mock := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := carts.AddToCart(ctx, "s1", "", priced("p1", 10), 1)
	require.NoError(t, err)
	expectOrderInsert(mock)

	order, err := svc.PlaceOrder(ctx, "s1", "", &CheckoutRequest{
		Email: "buyer@example.com", FullName: "Pat Buyer", PaymentMethod: "Wire",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusWirePending, order.PaymentStatus)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	svc, carts, _ := newCheckoutFixture(t)
	ctx := context.Background()

	// Only a quote line: nothing purchasable to order.
	_, err := carts.AddToCart(ctx, "s1", "", quoteOnly("p1"), 2)
	require.NoError(t, err)

	_, err = svc.PlaceOrder(ctx, "s1", "", &CheckoutRequest{
		Email: "buyer@example.com", FullName: "Pat Buyer",
	})
	assert.ErrorIs(t, err, utils.ErrEmptyCart)
}

func TestPlaceOrderClearsCart(t *testing.T) {
	svc, carts, mock := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := carts.AddToCart(ctx, "s1", "", priced("p1", 10), 1)
	require.NoError(t, err)
	expectOrderInsert(mock)

	_, err = svc.PlaceOrder(ctx, "s1", "", &CheckoutRequest{
		Email: "buyer@example.com", FullName: "Pat Buyer",
	})
	require.NoError(t, err)

	items, err := carts.GetCart(ctx, "s1", "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSubmitQuoteRequestIncludesAllLines(t *testing.T) {
	svc, carts, mock := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := carts.AddToCart(ctx, "s1", "", priced("p1", 50), 1)
	require.NoError(t, err)
	_, err = carts.AddToCart(ctx, "s1", "", quoteOnly("p2"), 4)
	require.NoError(t, err)

	expectOrderInsert(mock)

	order, err := svc.SubmitQuoteRequest(ctx, "s1", "", &CheckoutRequest{
		Email:      "buyer@example.com",
		FullName:   "Pat Buyer",
		QuoteNotes: "Need 20 cylinders quarterly",
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderTypeQuote, order.Type)
	assert.Len(t, order.Items, 2)
	assert.True(t, order.Total.IsZero())
	assert.Equal(t, models.PaymentStatusNone, order.PaymentStatus)
	assert.Equal(t, "Need 20 cylinders quarterly", order.QuoteNotes)
	assert.True(t, strings.HasPrefix(order.ID, "QR-"))
}

func TestSubmitQuoteRequestEmptyCart(t *testing.T) {
	svc, _, _ := newCheckoutFixture(t)

	_, err := svc.SubmitQuoteRequest(context.Background(), "s1", "", &CheckoutRequest{
		Email: "buyer@example.com", FullName: "Pat Buyer",
	})
	assert.ErrorIs(t, err, utils.ErrEmptyCart)
}
