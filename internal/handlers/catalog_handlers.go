package handlers

import (
	"net/http"

	"dropship-pricing-service/internal/middleware"
	"dropship-pricing-service/internal/models"
	"dropship-pricing-service/internal/services"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the seller-facing catalog. The seller id comes from SellerMiddleware.
type CatalogHandler struct {
	service         *services.CatalogService
	defaultPageSize int
	maxPageSize     int
}

func NewCatalogHandler(service *services.CatalogService, defaultPageSize, maxPageSize int) *CatalogHandler {
	return &CatalogHandler{service: service, defaultPageSize: defaultPageSize, maxPageSize: maxPageSize}
}

func catalogFilters(c *gin.Context) (models.SellerCatalogFilters, error) {
	var filters models.SellerCatalogFilters
	var err error
	if filters.CategoryID, err = queryUint(c, "categoryId"); err != nil {
		return filters, err
	}
	if filters.MinPrice, err = queryDecimal(c, "minPrice"); err != nil {
		return filters, err
	}
	if filters.MaxPrice, err = queryDecimal(c, "maxPrice"); err != nil {
		return filters, err
	}
	showSelected, err := queryBool(c, "showSelected")
	if err != nil {
		return filters, err
	}
	filters.ShowSelected = showSelected != nil && *showSelected
	filters.Brand = c.Query("brand")
	filters.Search = c.Query("search")
	return filters, nil
}

// GetCatalog returns the published products with this seller's pricing applied
func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	filters, err := catalogFilters(c)
	if err != nil {
		respondError(c, err)
		return
	}
	page, limit := pageParams(c, h.defaultPageSize, h.maxPageSize)

	result, err := h.service.GetCatalog(c.Request.Context(), middleware.GetSellerID(c), filters, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       result.Items,
		"pagination": result.Pagination,
		"warnings":   result.Warnings,
	})
}

// SelectProduct publishes or unpublishes one product in the seller's store
func (h *CatalogHandler) SelectProduct(c *gin.Context) {
	productID, ok := uintParam(c, "productId")
	if !ok {
		return
	}
	var req models.SelectProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	override, err := h.service.SelectProduct(c.Request.Context(), middleware.GetSellerID(c), productID, *req.IsSelected, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, override)
}

// UpdatePricing sets the pricing mode and optional shipping fee for one product
func (h *CatalogHandler) UpdatePricing(c *gin.Context) {
	productID, ok := uintParam(c, "productId")
	if !ok {
		return
	}
	var req models.UpdateSellerPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	override, err := h.service.UpdatePricing(c.Request.Context(), middleware.GetSellerID(c), productID, req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, override)
}

// RemoveProduct drops every customization the seller has for a product
func (h *CatalogHandler) RemoveProduct(c *gin.Context) {
	productID, ok := uintParam(c, "productId")
	if !ok {
		return
	}
	if err := h.service.RemoveProduct(c.Request.Context(), middleware.GetSellerID(c), productID, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product removed from store"})
}

func (h *CatalogHandler) respondBulk(c *gin.Context, result *models.BulkOperationResult, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(bulkStatus(result), gin.H{
		"success": result.FailedCount == 0,
		"data":    result,
	})
}

func (h *CatalogHandler) BulkAdjustMargin(c *gin.Context) {
	var req models.BulkAdjustMarginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := h.service.BulkAdjustMargin(c.Request.Context(), middleware.GetSellerID(c), req, actorFrom(c))
	h.respondBulk(c, result, err)
}

func (h *CatalogHandler) BulkSetMargin(c *gin.Context) {
	var req models.BulkSetMarginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := h.service.BulkSetMargin(c.Request.Context(), middleware.GetSellerID(c), req, actorFrom(c))
	h.respondBulk(c, result, err)
}

func (h *CatalogHandler) BulkUpdateSelection(c *gin.Context) {
	var req models.BulkUpdateSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := h.service.BulkUpdateSelection(c.Request.Context(), middleware.GetSellerID(c), req, actorFrom(c))
	h.respondBulk(c, result, err)
}
