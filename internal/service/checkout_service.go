package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/aether-industries/storefront-api/internal/models"
	"github.com/aether-industries/storefront-api/internal/repository"
	"github.com/aether-industries/storefront-api/internal/sse"
	"github.com/aether-industries/storefront-api/internal/utils"
)

// Flat-rate shipping estimate applied whenever a direct purchase has at
// least one line; tax is a fixed-rate estimate on the subtotal.
var (
	flatShippingRate = decimal.NewFromInt(25)
	taxRate          = decimal.NewFromFloat(0.08)
)

// CheckoutRequest is the submission payload for both direct purchases and
// quote requests. Shipping fields are required for purchases only.
type CheckoutRequest struct {
	Email         string `json:"email" binding:"required,email"`
	FullName      string `json:"fullName" binding:"required"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
	Zip           string `json:"zip"`
	Country       string `json:"country"`
	PaymentMethod string `json:"paymentMethod"` // "card" or "wire"
	EPACertNumber string `json:"epaCertNumber"`
	QuoteNotes    string `json:"quoteNotes"`
}

// CheckoutService turns the current cart into a persisted order or quote
// request, clears the cart, and notifies admin dashboards.
type CheckoutService struct {
	carts    *CartService
	orders   *repository.OrderRepository
	notifier sse.OrderNotifier
}

// NewCheckoutService constructs a CheckoutService.
func NewCheckoutService(carts *CartService, orders *repository.OrderRepository, notifier sse.OrderNotifier) *CheckoutService {
	return &CheckoutService{carts: carts, orders: orders, notifier: notifier}
}

// PlaceOrder submits a direct purchase built from the cart's purchasable
// lines. Quote-only lines are left out of the order and its totals. Payment
// is mocked: "wire" records a pending wire transfer, anything else is
// treated as a captured card payment.
func (s *CheckoutService) PlaceOrder(ctx context.Context, sessionID, identity string, req *CheckoutRequest) (*models.Order, error) {
	items, err := s.carts.GetCart(ctx, sessionID, identity)
	if err != nil {
		return nil, err
	}

	lines := make([]models.OrderLine, 0, len(items))
	for _, item := range items {
		if item.IsQuoteItem {
			continue
		}
		lines = append(lines, models.OrderLine{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	if len(lines) == 0 {
		return nil, utils.ErrEmptyCart
	}

	subtotal := CartSubtotal(items)
	shipping := flatShippingRate
	tax := subtotal.Mul(taxRate).Round(2)
	total := subtotal.Add(shipping).Add(tax)

	orderID, err := utils.GeneratePurchaseOrderRef()
	if err != nil {
		return nil, err
	}

	paymentStatus := models.PaymentStatusPaid
	method := strings.ToLower(req.PaymentMethod)
	if method == "wire" {
		paymentStatus = models.PaymentStatusWirePending
	}

	order := &models.Order{
		ID:    orderID,
		Type:  models.OrderTypePurchase,
		Owner: identity,
		Email: req.Email,
		Items: lines,
		Shipping: models.ShippingAddress{
			FullName: req.FullName,
			Address:  req.Address,
			City:     req.City,
			State:    req.State,
			Zip:      req.Zip,
			Country:  req.Country,
		},
		Subtotal:      subtotal.Round(2),
		ShippingCost:  shipping,
		Tax:           tax,
		Total:         total.Round(2),
		PaymentMethod: method,
		PaymentStatus: paymentStatus,
		EPACertNumber: req.EPACertNumber,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.notifier.NotifyOrderCreated(order)

	if err := s.carts.ClearCart(ctx, sessionID, identity); err != nil {
		log.Warn().Err(err).Str("order_id", orderID).Msg("Failed to clear cart after checkout")
	}

	log.Info().Str("order_id", orderID).Str("payment_status", string(paymentStatus)).Msg("Order placed")
	return order, nil
}

// SubmitQuoteRequest submits a quote request covering every cart line.
// Quote requests carry no payment and no totals; pricing happens offline.
func (s *CheckoutService) SubmitQuoteRequest(ctx context.Context, sessionID, identity string, req *CheckoutRequest) (*models.Order, error) {
	items, err := s.carts.GetCart(ctx, sessionID, identity)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, utils.ErrEmptyCart
	}

	lines := make([]models.OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, models.OrderLine{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	quoteID, err := utils.GenerateQuoteRef()
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:    quoteID,
		Type:  models.OrderTypeQuote,
		Owner: identity,
		Email: req.Email,
		Items: lines,
		Shipping: models.ShippingAddress{
			FullName: req.FullName,
		},
		Subtotal:      decimal.Zero,
		ShippingCost:  decimal.Zero,
		Tax:           decimal.Zero,
		Total:         decimal.Zero,
		PaymentStatus: models.PaymentStatusNone,
		QuoteNotes:    req.QuoteNotes,
		EPACertNumber: req.EPACertNumber,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.notifier.NotifyOrderCreated(order)

	if err := s.carts.ClearCart(ctx, sessionID, identity); err != nil {
		log.Warn().Err(err).Str("order_id", quoteID).Msg("Failed to clear cart after quote request")
	}

	log.Info().Str("order_id", quoteID).Msg("Quote request submitted")
	return order, nil
}

// GetOrder returns an order for the confirmation page or the dashboard.
func (s *CheckoutService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// ListOrdersByOwner returns the caller's order history, newest first.
func (s *CheckoutService) ListOrdersByOwner(ctx context.Context, owner string) ([]models.Order, error) {
	return s.orders.ListByOwner(ctx, owner)
}
