package handler

import (
	"database/sql"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/aether-industries/storefront-api/internal/middleware"
	"github.com/aether-industries/storefront-api/internal/models"
	"github.com/aether-industries/storefront-api/internal/service"
	"github.com/aether-industries/storefront-api/internal/utils"
)

// CartHandler serves the session cart endpoints. Every endpoint requires the
// X-Cart-Session header; identity comes from the optional bearer token.
type CartHandler struct {
	cartService    *service.CartService
	catalogService *service.CatalogService
}

// NewCartHandler constructs a CartHandler.
func NewCartHandler(cartService *service.CartService, catalogService *service.CatalogService) *CartHandler {
	return &CartHandler{cartService: cartService, catalogService: catalogService}
}

func cartContext(c *gin.Context) (sessionID, identity string, ok bool) {
	sessionID = c.GetHeader(middleware.CartSessionHeader)
	if sessionID == "" {
		utils.Error(c, 400, "CART_SESSION_MISSING", "Missing X-Cart-Session header")
		return "", "", false
	}
	return sessionID, c.GetString(middleware.IdentityKey), true
}

func (h *CartHandler) respondCart(c *gin.Context, message string, items []models.CartItem) {
	utils.Success(c, 200, message, gin.H{
		"items":     items,
		"itemCount": service.ItemCount(items),
		"subtotal":  service.CartSubtotal(items).StringFixed(2),
	})
}

// GetCart handles GET /v1/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	sessionID, identity, ok := cartContext(c)
	if !ok {
		return
	}

	items, err := h.cartService.GetCart(c.Request.Context(), sessionID, identity)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load cart")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve cart")
		return
	}

	h.respondCart(c, "Cart retrieved", items)
}

// AddItem handles POST /v1/cart/items
// The product snapshot is built server-side from the catalog so a client
// cannot invent prices.
func (h *CartHandler) AddItem(c *gin.Context) {
	sessionID, identity, ok := cartContext(c)
	if !ok {
		return
	}

	var req struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	product, err := h.catalogService.GetProductByID(c.Request.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Product not found")
			return
		}
		log.Error().Err(err).Str("product_id", req.ProductID).Msg("Failed to fetch product for cart")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to add item to cart")
		return
	}

	items, err := h.cartService.AddToCart(c.Request.Context(), sessionID, identity, models.SnapshotCartProduct(product), req.Quantity)
	if err != nil {
		log.Error().Err(err).Msg("Failed to add item to cart")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to add item to cart")
		return
	}

	h.respondCart(c, "Item added to cart", items)
}

// UpdateItem handles PUT /v1/cart/items/:productId
// A quantity of zero or less removes the line.
func (h *CartHandler) UpdateItem(c *gin.Context) {
	sessionID, identity, ok := cartContext(c)
	if !ok {
		return
	}

	var req struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	items, err := h.cartService.UpdateItemQuantity(c.Request.Context(), sessionID, identity, c.Param("productId"), *req.Quantity)
	if err != nil {
		log.Error().Err(err).Msg("Failed to update cart item")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to update cart item")
		return
	}

	h.respondCart(c, "Cart updated", items)
}

// RemoveItem handles DELETE /v1/cart/items/:productId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	sessionID, identity, ok := cartContext(c)
	if !ok {
		return
	}

	items, err := h.cartService.RemoveFromCart(c.Request.Context(), sessionID, identity, c.Param("productId"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to remove cart item")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to remove cart item")
		return
	}

	h.respondCart(c, "Item removed from cart", items)
}

// ClearCart handles DELETE /v1/cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	sessionID, identity, ok := cartContext(c)
	if !ok {
		return
	}

	if err := h.cartService.ClearCart(c.Request.Context(), sessionID, identity); err != nil {
		log.Error().Err(err).Msg("Failed to clear cart")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to clear cart")
		return
	}

	h.respondCart(c, "Cart cleared", []models.CartItem{})
}
