package handlers

import (
	"net/http"

	"dropship-pricing-service/internal/models"
	"dropship-pricing-service/internal/services"

	"github.com/gin-gonic/gin"
)

// RuleHandler serves admin pricing rule endpoints
type RuleHandler struct {
	service *services.RuleService
}

func NewRuleHandler(service *services.RuleService) *RuleHandler {
	return &RuleHandler{service: service}
}

// ListRules returns rules in creation order with warnings for rules whose target is gone
func (h *RuleHandler) ListRules(c *gin.Context) {
	isActive, err := queryBool(c, "active")
	if err != nil {
		respondError(c, err)
		return
	}
	list, err := h.service.List(c.Request.Context(), isActive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"data":     list.Rules,
		"warnings": list.Warnings,
	})
}

func (h *RuleHandler) GetRule(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	rule, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, rule)
}

func (h *RuleHandler) CreateRule(c *gin.Context) {
	var req models.CreatePricingRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	rule, err := h.service.Create(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, rule)
}

func (h *RuleHandler) UpdateRule(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdatePricingRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	rule, err := h.service.Update(c.Request.Context(), id, req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, rule)
}

// ToggleRule flips the active flag
func (h *RuleHandler) ToggleRule(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	rule, err := h.service.Toggle(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, rule)
}

func (h *RuleHandler) DeleteRule(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Pricing rule deleted successfully"})
}

// PreviewRules applies the matching active rules to a base price without storing anything
func (h *RuleHandler) PreviewRules(c *gin.Context) {
	var req models.RulePreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := h.service.Preview(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, result)
}
