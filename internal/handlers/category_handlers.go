package handlers

import (
	"net/http"

	"dropship-pricing-service/internal/models"
	"dropship-pricing-service/internal/services"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	service *services.CategoryService
}

func NewCategoryHandler(service *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// GetCategoryList returns the flat category list ordered by sort order then name
func (h *CategoryHandler) GetCategoryList(c *gin.Context) {
	isActive, err := queryBool(c, "active")
	if err != nil {
		respondError(c, err)
		return
	}
	parentID, err := queryUint(c, "parentId")
	if err != nil {
		respondError(c, err)
		return
	}

	categories, err := h.service.List(c.Request.Context(), models.CategoryFilters{
		IsActive: isActive,
		Search:   c.Query("search"),
		ParentID: parentID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, categories)
}

// GetCategoryTree returns the category forest. active=true drops inactive categories before building.
func (h *CategoryHandler) GetCategoryTree(c *gin.Context) {
	tree, err := h.service.Tree(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, tree)
}

// GetCategory gets a category by ID
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	category, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, category)
}

func (h *CategoryHandler) GetChildren(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	children, err := h.service.Children(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, children)
}

func (h *CategoryHandler) GetDescendants(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	descendants, err := h.service.Descendants(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, descendants)
}

// GetPath returns the categories from the root down to the requested one
func (h *CategoryHandler) GetPath(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	path, err := h.service.Path(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, path)
}

// CreateCategory creates a new category
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	category, err := h.service.Create(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, category)
}

// UpdateCategory applies a partial update, rejecting reparents that would create a cycle
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	category, err := h.service.Update(c.Request.Context(), id, req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, category)
}

// DeleteCategory deletes one category. Children are left pointing at the deleted id.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Category deleted successfully"})
}

// ReorderCategories updates sort order for multiple categories
func (h *CategoryHandler) ReorderCategories(c *gin.Context) {
	var req models.ReorderCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	results := h.service.Reorder(c.Request.Context(), req.Items)
	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}

	status := http.StatusOK
	if failed > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, gin.H{
		"success":      failed == 0,
		"data":         results,
		"totalCount":   len(results),
		"successCount": len(results) - failed,
		"failedCount":  failed,
	})
}
