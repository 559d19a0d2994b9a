package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"dropship-pricing-service/internal/catalog"
	"dropship-pricing-service/internal/events"
	"dropship-pricing-service/internal/metrics"
	"dropship-pricing-service/internal/models"
	"dropship-pricing-service/internal/pricing"
	"dropship-pricing-service/internal/repository"
	"dropship-pricing-service/internal/rules"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Bulk operation names, used in results, metrics and events
const (
	OpAdjustMargin = "adjust_margin"
	OpSetMargin    = "set_margin"
	OpSelection    = "selection"
)

// CatalogPage is one page of a seller's merged catalog
type CatalogPage struct {
	Items      []catalog.MergedProduct      `json:"items"`
	Pagination *models.PaginationInfo       `json:"pagination,omitempty"`
	Warnings   []pricing.ConsistencyWarning `json:"warnings"`
}

// CatalogService serves the seller side: catalog listing, selection, pricing overrides and bulk updates
type CatalogService struct {
	products     repository.ProductRepositoryInterface
	overrides    repository.OverrideRepositoryInterface
	categories   repository.CategoryRepositoryInterface
	rules        repository.RuleRepositoryInterface
	settings     repository.SettingsRepositoryInterface
	resolver     *rules.Resolver
	publisher    *events.Publisher
	maxBulkItems int
	logger       *logrus.Entry
}

// CatalogDeps groups the collaborators of a CatalogService
type CatalogDeps struct {
	Products     repository.ProductRepositoryInterface
	Overrides    repository.OverrideRepositoryInterface
	Categories   repository.CategoryRepositoryInterface
	Rules        repository.RuleRepositoryInterface
	Settings     repository.SettingsRepositoryInterface
	Resolver     *rules.Resolver
	Publisher    *events.Publisher
	MaxBulkItems int
}

func NewCatalogService(deps CatalogDeps, logger *logrus.Logger) *CatalogService {
	resolver := deps.Resolver
	if resolver == nil {
		resolver = rules.NewResolver(rules.OrderPrecedence)
	}
	return &CatalogService{
		products:     deps.Products,
		overrides:    deps.Overrides,
		categories:   deps.Categories,
		rules:        deps.Rules,
		settings:     deps.Settings,
		resolver:     resolver,
		publisher:    deps.Publisher,
		maxBulkItems: deps.MaxBulkItems,
		logger:       componentLogger(logger, "catalog-service"),
	}
}

// GetCatalog merges the published products matching filters with the seller's overrides.
// Pagination is applied after the merge because showSelected filters merged rows.
// A limit of 0 returns every row.
func (s *CatalogService) GetCatalog(ctx context.Context, sellerID string, filters models.SellerCatalogFilters, page, limit int) (*CatalogPage, error) {
	inputs, err := loadPricingInputs(ctx, s.settings, s.categories, s.rules)
	if err != nil {
		return nil, err
	}

	products, _, err := s.products.GetAll(ctx, filters.ProductFilters())
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	ids := make([]uint, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	overrides, err := s.overrides.ListBySellerAndProducts(ctx, sellerID, ids)
	if err != nil {
		return nil, fmt.Errorf("load seller overrides: %w", err)
	}

	timer := prometheus.NewTimer(metrics.CatalogMergeDuration)
	items, err := catalog.Merge(catalog.Input{
		Products:  products,
		Overrides: catalog.IndexOverrides(overrides),
		Settings:  inputs.settings,
		Lookup:    inputs.lookup,
		Rules:     inputs.rules,
		Resolver:  s.resolver,
	}, filters.ShowSelected)
	timer.ObserveDuration()
	if err != nil {
		return nil, err
	}

	ruleTypes := make(map[uint]models.RuleType, len(inputs.rules))
	for _, r := range inputs.rules {
		ruleTypes[r.ID] = r.Type
	}
	warnings := []pricing.ConsistencyWarning{}
	for _, item := range items {
		metrics.CalculationsTotal.WithLabelValues(string(item.PricingMode)).Inc()
		for _, id := range item.AppliedRuleIDs {
			metrics.RulesAppliedTotal.WithLabelValues(string(ruleTypes[id])).Inc()
		}
		warnings = append(warnings, item.Warnings...)
	}
	reportWarnings(s.logger.WithField("seller_id", sellerID), warnings)

	result := &CatalogPage{Items: items, Warnings: warnings}
	if limit > 0 {
		if page < 1 {
			page = 1
		}
		total := len(items)
		start, end := total, total
		// compare by division so a huge page cannot overflow the offset
		if total > 0 && page-1 <= (total-1)/limit {
			start = (page - 1) * limit
			end = start + limit
			if end > total {
				end = total
			}
		}
		result.Items = items[start:end]
		result.Pagination = models.NewPaginationInfo(page, limit, int64(total))
	}
	return result, nil
}

func (s *CatalogService) requireProduct(ctx context.Context, productID uint) error {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return notFound(err, repository.ErrProductNotFound, "product", productID)
	}
	return nil
}

func (s *CatalogService) override(ctx context.Context, sellerID string, productID uint) (*models.SellerProductOverride, error) {
	o, err := s.overrides.Get(ctx, sellerID, productID)
	if err != nil {
		return nil, notFound(err, repository.ErrOverrideNotFound, "seller product", productID)
	}
	return o, nil
}

// SelectProduct creates the override row if absent or updates isSelected. It never deletes.
func (s *CatalogService) SelectProduct(ctx context.Context, sellerID string, productID uint, isSelected bool, actor events.Actor) (*models.SellerProductOverride, error) {
	if err := s.requireProduct(ctx, productID); err != nil {
		return nil, err
	}
	o := &models.SellerProductOverride{SellerID: sellerID, ProductID: productID, IsSelected: isSelected}
	if err := s.overrides.Upsert(ctx, o, "is_selected"); err != nil {
		return nil, fmt.Errorf("select product: %w", err)
	}
	s.publishOverride(ctx, sellerID, map[string]interface{}{
		"productId":  productID,
		"isSelected": isSelected,
	}, actor)
	return s.override(ctx, sellerID, productID)
}

// UpdatePricing switches the pricing mode of one product for a seller and optionally sets
// or clears its custom shipping fee. A product without an override row gets one, unselected.
func (s *CatalogService) UpdatePricing(ctx context.Context, sellerID string, productID uint, req models.UpdateSellerPricingRequest, actor events.Actor) (*models.SellerProductOverride, error) {
	mode, err := pricing.ParseMode(req.Mode, req.Value)
	if err != nil {
		return nil, err
	}
	if req.CustomShippingFee != nil {
		if err := pricing.ValidateAmount("customShippingFee", *req.CustomShippingFee); err != nil {
			return nil, err
		}
	}

	o, err := s.overrides.Get(ctx, sellerID, productID)
	switch {
	case errors.Is(err, repository.ErrOverrideNotFound):
		if err := s.requireProduct(ctx, productID); err != nil {
			return nil, err
		}
		o = &models.SellerProductOverride{SellerID: sellerID, ProductID: productID}
	case err != nil:
		return nil, err
	}

	pricing.SetMode(o, mode)
	switch {
	case req.ClearShippingFee:
		o.CustomShippingFee = nil
	case req.CustomShippingFee != nil:
		fee := *req.CustomShippingFee
		o.CustomShippingFee = &fee
	}

	if o.ID == 0 {
		err = s.overrides.Upsert(ctx, o, "custom_margin", "custom_price", "custom_shipping_fee")
	} else {
		err = s.overrides.Save(ctx, o)
	}
	if err != nil {
		return nil, fmt.Errorf("update seller pricing: %w", err)
	}

	s.publishOverride(ctx, sellerID, map[string]interface{}{
		"productId": productID,
		"mode":      mode.Kind(),
	}, actor)
	return s.override(ctx, sellerID, productID)
}

// RemoveProduct deletes the seller's override row for a product
func (s *CatalogService) RemoveProduct(ctx context.Context, sellerID string, productID uint, actor events.Actor) error {
	if err := s.overrides.Delete(ctx, sellerID, productID); err != nil {
		return notFound(err, repository.ErrOverrideNotFound, "seller product", productID)
	}
	s.publishOverride(ctx, sellerID, map[string]interface{}{
		"productId": productID,
		"removed":   true,
	}, actor)
	return nil
}

func (s *CatalogService) bulkIDs(ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, pricing.NewValidationError("productIds", "at least one product id is required")
	}
	if s.maxBulkItems > 0 && len(ids) > s.maxBulkItems {
		return nil, pricing.NewValidationError("productIds", "at most %d product ids are allowed", s.maxBulkItems)
	}
	seen := make(map[uint]bool, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	return unique, nil
}

func newBulkResult(operation string) *models.BulkOperationResult {
	return &models.BulkOperationResult{
		OperationID: uuid.New().String(),
		Operation:   operation,
		Results:     make([]models.BulkItemResult, 0),
	}
}

func itemResult(productID uint, status models.BulkItemStatus, err error) models.BulkItemResult {
	item := models.BulkItemResult{ProductID: productID, Status: status}
	if err != nil {
		detail := ErrorDetail(err)
		item.Error = &detail
	}
	return item
}

// BulkAdjustMargin adds delta to the margin of every listed product the seller already tracks.
// Products without an override row are skipped; no row is created. A row in fixed price mode
// is switched to margin mode starting from 0.
func (s *CatalogService) BulkAdjustMargin(ctx context.Context, sellerID string, req models.BulkAdjustMarginRequest, actor events.Actor) (*models.BulkOperationResult, error) {
	ids, err := s.bulkIDs(req.ProductIDs)
	if err != nil {
		return nil, err
	}

	result := newBulkResult(OpAdjustMargin)
	for _, productID := range ids {
		o, err := s.override(ctx, sellerID, productID)
		if err != nil {
			status := models.BulkItemFailed
			if errors.Is(err, pricing.ErrNotFound) {
				status = models.BulkItemSkipped
			}
			result.Add(itemResult(productID, status, err))
			continue
		}

		current := decimal.Zero
		if o.CustomMargin != nil {
			current = *o.CustomMargin
		}
		next := current.Add(req.Delta)
		if err := pricing.ValidateMargin("customMargin", next); err != nil {
			result.Add(itemResult(productID, models.BulkItemFailed, err))
			continue
		}
		pricing.SetMode(o, pricing.Margin{Percent: next})
		if err := s.overrides.Save(ctx, o); err != nil {
			result.Add(itemResult(productID, models.BulkItemFailed, err))
			continue
		}
		result.Add(itemResult(productID, models.BulkItemOK, nil))
	}

	s.finishBulk(ctx, sellerID, result, map[string]interface{}{"delta": req.Delta.String()}, actor)
	return result, nil
}

// BulkSetMargin sets margin on every listed product that exists, creating override rows as needed
func (s *CatalogService) BulkSetMargin(ctx context.Context, sellerID string, req models.BulkSetMarginRequest, actor events.Actor) (*models.BulkOperationResult, error) {
	ids, err := s.bulkIDs(req.ProductIDs)
	if err != nil {
		return nil, err
	}
	if err := pricing.ValidateMargin("margin", req.Margin); err != nil {
		return nil, err
	}
	existing, err := s.products.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	result := newBulkResult(OpSetMargin)
	for _, productID := range ids {
		if !existing[productID] {
			result.Add(itemResult(productID, models.BulkItemFailed, pricing.NewNotFoundError("product", productID)))
			continue
		}
		o := &models.SellerProductOverride{SellerID: sellerID, ProductID: productID}
		pricing.SetMode(o, pricing.Margin{Percent: req.Margin})
		if err := s.overrides.Upsert(ctx, o, "custom_margin", "custom_price"); err != nil {
			result.Add(itemResult(productID, models.BulkItemFailed, err))
			continue
		}
		result.Add(itemResult(productID, models.BulkItemOK, nil))
	}

	s.finishBulk(ctx, sellerID, result, map[string]interface{}{"margin": req.Margin.String()}, actor)
	return result, nil
}

// BulkUpdateSelection selects or deselects every listed product that exists
func (s *CatalogService) BulkUpdateSelection(ctx context.Context, sellerID string, req models.BulkUpdateSelectionRequest, actor events.Actor) (*models.BulkOperationResult, error) {
	ids, err := s.bulkIDs(req.ProductIDs)
	if err != nil {
		return nil, err
	}
	if req.IsSelected == nil {
		return nil, pricing.NewValidationError("isSelected", "is required")
	}
	existing, err := s.products.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	result := newBulkResult(OpSelection)
	for _, productID := range ids {
		if !existing[productID] {
			result.Add(itemResult(productID, models.BulkItemFailed, pricing.NewNotFoundError("product", productID)))
			continue
		}
		o := &models.SellerProductOverride{SellerID: sellerID, ProductID: productID, IsSelected: *req.IsSelected}
		if err := s.overrides.Upsert(ctx, o, "is_selected"); err != nil {
			result.Add(itemResult(productID, models.BulkItemFailed, err))
			continue
		}
		result.Add(itemResult(productID, models.BulkItemOK, nil))
	}

	s.finishBulk(ctx, sellerID, result, map[string]interface{}{"isSelected": *req.IsSelected}, actor)
	return result, nil
}

func (s *CatalogService) finishBulk(ctx context.Context, sellerID string, result *models.BulkOperationResult, changes map[string]interface{}, actor events.Actor) {
	updated := make([]uint, 0, result.SuccessCount)
	for _, item := range result.Results {
		metrics.BulkItemsTotal.WithLabelValues(result.Operation, string(item.Status)).Inc()
		if item.Status == models.BulkItemOK {
			updated = append(updated, item.ProductID)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"seller_id":     sellerID,
		"operation":     result.Operation,
		"operation_id":  result.OperationID,
		"success_count": result.SuccessCount,
		"failed_count":  result.FailedCount,
		"skipped_count": result.SkippedCount,
	}).Info("Bulk operation completed")

	if len(updated) == 0 {
		return
	}
	changes["operation"] = result.Operation
	changes["operationId"] = result.OperationID
	changes["productIds"] = updated
	s.publishOverride(ctx, sellerID, changes, actor)
}

func (s *CatalogService) publishOverride(ctx context.Context, sellerID string, changes map[string]interface{}, actor events.Actor) {
	entityID := ""
	if id, ok := changes["productId"].(uint); ok {
		entityID = strconv.FormatUint(uint64(id), 10)
	}
	_ = s.publisher.PublishPricing(ctx, events.SellerOverrideChanged, "seller_product", entityID, sellerID, changes, actor)
}
