package services

import (
	"context"
	"fmt"

	"dropship-pricing-service/internal/models"
	"dropship-pricing-service/internal/pricing"
	"dropship-pricing-service/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ProductService handles admin product management
type ProductService struct {
	repo       repository.ProductRepositoryInterface
	categories repository.CategoryRepositoryInterface
	logger     *logrus.Entry
}

func NewProductService(repo repository.ProductRepositoryInterface, categories repository.CategoryRepositoryInterface, logger *logrus.Logger) *ProductService {
	return &ProductService{
		repo:       repo,
		categories: categories,
		logger:     componentLogger(logger, "product-service"),
	}
}

// List returns one page of products and the total match count
func (s *ProductService) List(ctx context.Context, filters models.ProductFilters) ([]models.Product, int64, error) {
	return s.repo.GetAll(ctx, filters)
}

// Get returns one product
func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, repository.ErrProductNotFound, "product", id)
	}
	return product, nil
}

func validateProduct(p *models.Product) error {
	if err := pricing.ValidateAmount("adminPrice", p.AdminPrice); err != nil {
		return err
	}
	if p.Stock < 0 {
		return pricing.NewValidationError("stock", "must not be negative")
	}
	if p.Weight != nil {
		if err := pricing.ValidateAmount("weight", *p.Weight); err != nil {
			return err
		}
	}
	return nil
}

func (s *ProductService) ensureUniqueSKU(ctx context.Context, sku string, excludeID uint) error {
	exists, err := s.repo.SKUExists(ctx, sku, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return pricing.NewValidationError("sku", "sku %q already exists", sku)
	}
	return nil
}

func (s *ProductService) category(ctx context.Context, categoryID uint) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, notFound(err, repository.ErrCategoryNotFound, "category", categoryID)
	}
	return category, nil
}

// Create validates and stores a product
func (s *ProductService) Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	sku, err := requireText("sku", req.SKU)
	if err != nil {
		return nil, err
	}
	name, err := requireText("name", req.Name)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		SKU:        sku,
		Name:       name,
		CategoryID: req.CategoryID,
		Brand:      req.Brand,
		AdminPrice: req.AdminPrice,
		Stock:      req.Stock,
		Weight:     req.Weight,
		Dimensions: req.Dimensions,
		Image:      req.Image,
	}
	if req.Published != nil {
		product.Published = *req.Published
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueSKU(ctx, sku, 0); err != nil {
		return nil, err
	}
	if product.CategoryID != nil {
		category, err := s.category(ctx, *product.CategoryID)
		if err != nil {
			return nil, err
		}
		product.LegacyCategory = category.Name
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

// Update applies a partial update
func (s *ProductService) Update(ctx context.Context, id uint, req models.UpdateProductRequest) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.SKU != nil {
		sku, err := requireText("sku", *req.SKU)
		if err != nil {
			return nil, err
		}
		if sku != product.SKU {
			if err := s.ensureUniqueSKU(ctx, sku, id); err != nil {
				return nil, err
			}
		}
		product.SKU = sku
	}
	if req.Name != nil {
		name, err := requireText("name", *req.Name)
		if err != nil {
			return nil, err
		}
		product.Name = name
	}
	switch {
	case req.ClearCategory:
		product.CategoryID = nil
		product.LegacyCategory = ""
	case req.CategoryID != nil:
		category, err := s.category(ctx, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		product.CategoryID = &category.ID
		product.LegacyCategory = category.Name
	}
	if req.Brand != nil {
		product.Brand = req.Brand
	}
	if req.AdminPrice != nil {
		product.AdminPrice = *req.AdminPrice
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Weight != nil {
		product.Weight = req.Weight
	}
	if req.Dimensions != nil {
		product.Dimensions = req.Dimensions
	}
	if req.Image != nil {
		product.Image = req.Image
	}
	if req.Published != nil {
		product.Published = *req.Published
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, notFound(err, repository.ErrProductNotFound, "product", id)
	}
	return product, nil
}

// Delete removes a product. Seller overrides for it stay until sellers remove them.
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err, repository.ErrProductNotFound, "product", id)
	}
	return nil
}

func parseDecimalField(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, pricing.NewValidationError(field, "%q is not a number", value)
	}
	return d, nil
}
