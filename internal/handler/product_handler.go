package handler

import (
	"database/sql"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/aether-industries/storefront-api/internal/models"
	"github.com/aether-industries/storefront-api/internal/service"
	"github.com/aether-industries/storefront-api/internal/utils"
)

// priceRangeOptions are the buckets offered by the storefront sidebar. The
// last bucket is open-ended.
var priceRangeOptions = []string{"0-99.99", "100-299.99", "300-599.99", "600-999.99", "1000-"}

// ProductHandler serves the public catalog endpoints.
type ProductHandler struct {
	catalogService *service.CatalogService
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(catalogService *service.CatalogService) *ProductHandler {
	return &ProductHandler{catalogService: catalogService}
}

// ListProducts handles GET /v1/products
// Filter dimensions arrive as repeated query parameters and are AND-combined;
// values within one parameter are OR-combined.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	selections := service.FilterSelections{
		Search:           c.Query("search"),
		Categories:       c.QueryArray("category"),
		RefrigerantTypes: c.QueryArray("refrigerantType"),
		Applications:     c.QueryArray("application"),
		Availability:     c.QueryArray("availability"),
		PriceRanges:      c.QueryArray("priceRange"),
	}

	products, err := h.catalogService.ListProducts(c.Request.Context(), selections)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve products")
		return
	}

	utils.Success(c, 200, "Products retrieved", gin.H{
		"products": products,
		"total":    len(products),
	})
}

// GetProductBySlug handles GET /v1/products/:slug
func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	product, err := h.catalogService.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Product not found")
			return
		}
		log.Error().Err(err).Str("slug", c.Param("slug")).Msg("Failed to fetch product")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve product")
		return
	}

	utils.Success(c, 200, "Product retrieved", product)
}

// GetFilterOptions handles GET /v1/products/filters
// Returns the fixed option sets the storefront renders in its sidebar.
func (h *ProductHandler) GetFilterOptions(c *gin.Context) {
	utils.Success(c, 200, "Filter options retrieved", gin.H{
		"categories":       models.Categories,
		"refrigerantTypes": models.RefrigerantTypes,
		"applications":     models.ApplicationOptions,
		"availability": []string{
			string(models.AvailabilityInStock),
			string(models.AvailabilityOutOfStock),
			string(models.AvailabilityPreOrder),
		},
		"priceRanges": priceRangeOptions,
	})
}
