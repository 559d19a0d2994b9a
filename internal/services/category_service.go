package services

import (
	"context"
	"errors"
	"fmt"

	"dropship-pricing-service/internal/events"
	"dropship-pricing-service/internal/hierarchy"
	"dropship-pricing-service/internal/models"
	"dropship-pricing-service/internal/pricing"
	"dropship-pricing-service/internal/repository"

	"github.com/sirupsen/logrus"
)

// CategoryTree is the forest returned to admin clients
type CategoryTree struct {
	Roots    []*hierarchy.Node            `json:"roots"`
	Warnings []pricing.ConsistencyWarning `json:"warnings"`
}

// ReorderResult reports the outcome for one category of a reorder request
type ReorderResult struct {
	CategoryID uint          `json:"categoryId"`
	Success    bool          `json:"success"`
	Error      *models.Error `json:"error,omitempty"`
}

// CategoryService handles category administration and hierarchy queries
type CategoryService struct {
	repo         repository.CategoryRepositoryInterface
	publisher    *events.Publisher
	orphanPolicy hierarchy.OrphanPolicy
	logger       *logrus.Entry
}

func NewCategoryService(repo repository.CategoryRepositoryInterface, publisher *events.Publisher, orphanPolicy hierarchy.OrphanPolicy, logger *logrus.Logger) *CategoryService {
	return &CategoryService{
		repo:         repo,
		publisher:    publisher,
		orphanPolicy: orphanPolicy,
		logger:       componentLogger(logger, "category-service"),
	}
}

// List returns categories ordered by (sortOrder, name)
func (s *CategoryService) List(ctx context.Context, filters models.CategoryFilters) ([]models.Category, error) {
	return s.repo.GetAll(ctx, filters)
}

// LoadTree indexes every category. Filtering is left to the caller so that
// inheritance and paths see the whole hierarchy.
func (s *CategoryService) LoadTree(ctx context.Context) (*hierarchy.Tree, error) {
	categories, err := s.repo.GetAll(ctx, models.CategoryFilters{})
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	hierarchy.Sort(categories)
	return hierarchy.Build(categories, hierarchy.WithOrphanPolicy(s.orphanPolicy)), nil
}

// Tree builds the category forest. With activeOnly, inactive categories are removed first
// and their descendants become orphans handled by the orphan policy.
func (s *CategoryService) Tree(ctx context.Context, activeOnly bool) (*CategoryTree, error) {
	filters := models.CategoryFilters{}
	if activeOnly {
		active := true
		filters.IsActive = &active
	}
	categories, err := s.repo.GetAll(ctx, filters)
	if err != nil {
		return nil, err
	}
	hierarchy.Sort(categories)

	tree := hierarchy.Build(categories, hierarchy.WithOrphanPolicy(s.orphanPolicy))
	warnings := tree.Warnings()
	reportWarnings(s.logger, warnings)
	if warnings == nil {
		warnings = []pricing.ConsistencyWarning{}
	}
	roots := tree.Roots()
	if roots == nil {
		roots = []*hierarchy.Node{}
	}
	return &CategoryTree{Roots: roots, Warnings: warnings}, nil
}

// Get returns one category
func (s *CategoryService) Get(ctx context.Context, id uint) (*models.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, repository.ErrCategoryNotFound, "category", id)
	}
	return category, nil
}

// Children returns the direct children of a category
func (s *CategoryService) Children(ctx context.Context, id uint) ([]models.Category, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetChildren(ctx, id)
}

// Descendants returns every category below id in pre-order
func (s *CategoryService) Descendants(ctx context.Context, id uint) ([]models.Category, error) {
	tree, err := s.LoadTree(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := tree.Get(id); !ok {
		return nil, pricing.NewNotFoundError("category", id)
	}
	return tree.Descendants(id), nil
}

// Path returns the chain root to id
func (s *CategoryService) Path(ctx context.Context, id uint) ([]models.Category, error) {
	tree, err := s.LoadTree(ctx)
	if err != nil {
		return nil, err
	}
	path := tree.Path(id)
	if path == nil {
		return nil, pricing.NewNotFoundError("category", id)
	}
	return path, nil
}

func validateCategoryPricing(c *models.Category) error {
	if err := pricing.ValidateMargin("defaultMargin", c.DefaultMargin); err != nil {
		return err
	}
	if c.ShippingFee == nil {
		return nil
	}
	return pricing.ValidateAmount("shippingFee", *c.ShippingFee)
}

func (s *CategoryService) ensureUniqueName(ctx context.Context, name string, excludeID uint) error {
	exists, err := s.repo.NameExists(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return pricing.NewValidationError("name", "category %q already exists", name)
	}
	return nil
}

func (s *CategoryService) ensureParent(ctx context.Context, parentID uint) error {
	if _, err := s.repo.GetByID(ctx, parentID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return pricing.NewValidationError("parentId", "parent category %d does not exist", parentID)
		}
		return err
	}
	return nil
}

// Create validates and stores a new category. Without a defaultMargin the category
// inherits its pricing unless inheritsPricing is sent explicitly.
func (s *CategoryService) Create(ctx context.Context, req models.CreateCategoryRequest, actor events.Actor) (*models.Category, error) {
	name, err := requireText("name", req.Name)
	if err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:            name,
		Description:     req.Description,
		Icon:            req.Icon,
		InheritsPricing: req.DefaultMargin == nil,
		IsActive:        true,
		ParentID:        req.ParentID,
		CreatedByID:     actor.ID,
		UpdatedByID:     actor.ID,
	}
	if req.DefaultMargin != nil {
		category.DefaultMargin = *req.DefaultMargin
	}
	category.ShippingFee = req.ShippingFee
	if req.InheritsPricing != nil {
		category.InheritsPricing = *req.InheritsPricing
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}

	if err := validateCategoryPricing(category); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, name, 0); err != nil {
		return nil, err
	}
	if category.ParentID != nil {
		if err := s.ensureParent(ctx, *category.ParentID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	_ = s.publisher.PublishCategory(ctx, events.CategoryCreated, categoryPayload(category), actor)
	return category, nil
}

// Update applies a partial update. Reparenting under the category itself or one of its
// descendants is rejected.
func (s *CategoryService) Update(ctx context.Context, id uint, req models.UpdateCategoryRequest, actor events.Actor) (*models.Category, error) {
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name, err := requireText("name", *req.Name)
		if err != nil {
			return nil, err
		}
		if name != category.Name {
			if err := s.ensureUniqueName(ctx, name, id); err != nil {
				return nil, err
			}
		}
		category.Name = name
	}
	if req.Description != nil {
		category.Description = req.Description
	}
	if req.Icon != nil {
		category.Icon = req.Icon
	}
	if req.DefaultMargin != nil {
		category.DefaultMargin = *req.DefaultMargin
	}
	switch {
	case req.ClearShippingFee:
		category.ShippingFee = nil
	case req.ShippingFee != nil:
		category.ShippingFee = req.ShippingFee
	}
	if req.InheritsPricing != nil {
		category.InheritsPricing = *req.InheritsPricing
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}
	if err := validateCategoryPricing(category); err != nil {
		return nil, err
	}

	switch {
	case req.ClearParent:
		category.ParentID = nil
	case req.ParentID != nil:
		if err := s.validateReparent(ctx, id, *req.ParentID); err != nil {
			return nil, err
		}
		parentID := *req.ParentID
		category.ParentID = &parentID
	}

	category.UpdatedByID = actor.ID
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, notFound(err, repository.ErrCategoryNotFound, "category", id)
	}

	_ = s.publisher.PublishCategory(ctx, events.CategoryUpdated, categoryPayload(category), actor)
	return category, nil
}

func (s *CategoryService) validateReparent(ctx context.Context, id, parentID uint) error {
	if parentID == id {
		return pricing.NewValidationError("parentId", "category cannot be its own parent")
	}
	tree, err := s.LoadTree(ctx)
	if err != nil {
		return err
	}
	if _, ok := tree.Get(parentID); !ok {
		return pricing.NewValidationError("parentId", "parent category %d does not exist", parentID)
	}
	if tree.IsDescendant(id, parentID) {
		return pricing.NewValidationError("parentId", "category %d is a descendant of category %d", parentID, id)
	}
	return nil
}

// Delete removes a category. Children keep their parentId and are reported by the
// category subscriber when the delete event is consumed.
func (s *CategoryService) Delete(ctx context.Context, id uint, actor events.Actor) error {
	category, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err, repository.ErrCategoryNotFound, "category", id)
	}
	_ = s.publisher.PublishCategory(ctx, events.CategoryDeleted, categoryPayload(category), actor)
	return nil
}

// Reorder sets the sort order of each listed category independently
func (s *CategoryService) Reorder(ctx context.Context, items []models.ReorderCategoryItem) []ReorderResult {
	results := make([]ReorderResult, 0, len(items))
	for _, item := range items {
		result := ReorderResult{CategoryID: item.CategoryID, Success: true}
		if err := s.repo.UpdateSortOrder(ctx, item.CategoryID, item.SortOrder); err != nil {
			result.Success = false
			result.Error = &models.Error{Code: "UPDATE_FAILED", Message: err.Error()}
			if errors.Is(err, repository.ErrCategoryNotFound) {
				result.Error.Code = "CATEGORY_NOT_FOUND"
			}
		}
		results = append(results, result)
	}
	return results
}

func categoryPayload(c *models.Category) events.CategoryPayload {
	return events.CategoryPayload{
		ID:              c.ID,
		Name:            c.Name,
		ParentID:        c.ParentID,
		DefaultMargin:   c.DefaultMargin,
		ShippingFee:     c.ShippingFee,
		InheritsPricing: c.InheritsPricing,
		IsActive:        c.IsActive,
	}
}
