package handlers

import (
	"net/http"

	"dropship-pricing-service/internal/models"
	"dropship-pricing-service/internal/services"

	"github.com/gin-gonic/gin"
)

// ProductHandler serves admin product CRUD
type ProductHandler struct {
	service         *services.ProductService
	defaultPageSize int
	maxPageSize     int
}

func NewProductHandler(service *services.ProductService, defaultPageSize, maxPageSize int) *ProductHandler {
	return &ProductHandler{service: service, defaultPageSize: defaultPageSize, maxPageSize: maxPageSize}
}

func productFilters(c *gin.Context) (models.ProductFilters, error) {
	var filters models.ProductFilters
	var err error
	if filters.CategoryID, err = queryUint(c, "categoryId"); err != nil {
		return filters, err
	}
	if filters.Published, err = queryBool(c, "published"); err != nil {
		return filters, err
	}
	if filters.MinPrice, err = queryDecimal(c, "minPrice"); err != nil {
		return filters, err
	}
	if filters.MaxPrice, err = queryDecimal(c, "maxPrice"); err != nil {
		return filters, err
	}
	filters.Brand = c.Query("brand")
	filters.Search = c.Query("search")
	return filters, nil
}

// ListProducts returns one page of products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	filters, err := productFilters(c)
	if err != nil {
		respondError(c, err)
		return
	}
	page, limit := pageParams(c, h.defaultPageSize, h.maxPageSize)
	filters.Limit = limit
	filters.Offset = (page - 1) * limit

	products, total, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       products,
		"pagination": models.NewPaginationInfo(page, limit, total),
	})
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	product, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, product)
}

// CreateProduct creates a product. The category, when given, must exist.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	product, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	product, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deleted successfully"})
}
