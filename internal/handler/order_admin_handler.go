package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/aether-industries/storefront-api/internal/repository"
	"github.com/aether-industries/storefront-api/internal/utils"
)

// OrderAdminHandler serves the back-office order dashboard.
type OrderAdminHandler struct {
	orderRepo *repository.OrderRepository
}

// NewOrderAdminHandler constructs an OrderAdminHandler.
func NewOrderAdminHandler(orderRepo *repository.OrderRepository) *OrderAdminHandler {
	return &OrderAdminHandler{orderRepo: orderRepo}
}

// ListOrders handles GET /v1/admin/orders?type=order|quote&page=&limit=
func (h *OrderAdminHandler) ListOrders(c *gin.Context) {
	page := 1
	limit := 50
	if v := c.Query("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			page = p
		}
	}
	if v := c.Query("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil {
			limit = l
		}
	}

	orderType := c.Query("type")
	if orderType != "" && orderType != "order" && orderType != "quote" {
		utils.Error(c, 400, "INVALID_TYPE", "type must be 'order' or 'quote'")
		return
	}

	orders, total, err := h.orderRepo.List(c.Request.Context(), orderType, page, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list orders")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve orders")
		return
	}

	utils.SuccessWithPagination(c, 200, "Orders retrieved", orders, page, limit, total)
}
