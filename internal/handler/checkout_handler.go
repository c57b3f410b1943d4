package handler

import (
	"database/sql"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/aether-industries/storefront-api/internal/middleware"
	"github.com/aether-industries/storefront-api/internal/service"
	"github.com/aether-industries/storefront-api/internal/utils"
)

// CheckoutHandler serves order and quote submission endpoints.
type CheckoutHandler struct {
	checkoutService *service.CheckoutService
}

// NewCheckoutHandler constructs a CheckoutHandler.
func NewCheckoutHandler(checkoutService *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// PlaceOrder handles POST /v1/checkout/orders
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	sessionID, identity, ok := cartContext(c)
	if !ok {
		return
	}

	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	order, err := h.checkoutService.PlaceOrder(c.Request.Context(), sessionID, identity, &req)
	if err != nil {
		if errors.Is(err, utils.ErrEmptyCart) {
			utils.Error(c, 400, "EMPTY_CART", "No purchasable items in cart")
			return
		}
		log.Error().Err(err).Msg("Failed to place order")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to place order")
		return
	}

	utils.Success(c, 201, "Order placed successfully", order)
}

// SubmitQuote handles POST /v1/checkout/quotes
func (h *CheckoutHandler) SubmitQuote(c *gin.Context) {
	sessionID, identity, ok := cartContext(c)
	if !ok {
		return
	}

	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	order, err := h.checkoutService.SubmitQuoteRequest(c.Request.Context(), sessionID, identity, &req)
	if err != nil {
		if errors.Is(err, utils.ErrEmptyCart) {
			utils.Error(c, 400, "EMPTY_CART", "Cart is empty")
			return
		}
		log.Error().Err(err).Msg("Failed to submit quote request")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to submit quote request")
		return
	}

	utils.Success(c, 201, "Quote request submitted", order)
}

// GetOrder handles GET /v1/orders/:id
// Order references are unguessable, so the confirmation page can fetch by id
// without authentication.
func (h *CheckoutHandler) GetOrder(c *gin.Context) {
	order, err := h.checkoutService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.Error(c, 404, "ORDER_NOT_FOUND", "Order not found")
			return
		}
		log.Error().Err(err).Str("order_id", c.Param("id")).Msg("Failed to fetch order")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve order")
		return
	}

	utils.Success(c, 200, "Order retrieved", order)
}

// ListMyOrders handles GET /v1/orders
// Requires an authenticated identity; guests have no durable order history.
func (h *CheckoutHandler) ListMyOrders(c *gin.Context) {
	identity := c.GetString(middleware.IdentityKey)
	if identity == "" {
		utils.Error(c, 401, "UNAUTHORIZED", "Sign in to view order history")
		return
	}

	orders, err := h.checkoutService.ListOrdersByOwner(c.Request.Context(), identity)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list orders")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve orders")
		return
	}

	utils.Success(c, 200, "Orders retrieved", gin.H{
		"orders": orders,
		"total":  len(orders),
	})
}
