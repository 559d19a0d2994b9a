package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"dropship-pricing-service/internal/models"
	"dropship-pricing-service/internal/pricing"
)

// ImportRowError represents an error for a specific row
type ImportRowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportResult represents the result of an import operation
type ImportResult struct {
	Success      bool                         `json:"success"`
	TotalRows    int                          `json:"totalRows"`
	SuccessCount int                          `json:"successCount"`
	FailedCount  int                          `json:"failedCount"`
	SkippedCount int                          `json:"skippedCount"`
	Errors       []ImportRowError             `json:"errors,omitempty"`
	Warnings     []pricing.ConsistencyWarning `json:"warnings,omitempty"`
	CreatedIDs   []uint                       `json:"createdIds,omitempty"`
}

// ImportOptions controls how import rows are handled
type ImportOptions struct {
	ValidateOnly   bool
	SkipDuplicates bool
}

// Import creates products from parsed rows. Each row is a map of lower-cased column names
// plus "_row" holding the source line number. The free-text "category" column is resolved
// to a category id by exact name; unknown names import without a category and a warning.
func (s *ProductService) Import(ctx context.Context, rows []map[string]string, opts ImportOptions) *ImportResult {
	result := &ImportResult{
		TotalRows:  len(rows),
		Errors:     make([]ImportRowError, 0),
		CreatedIDs: make([]uint, 0),
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if name := row["category"]; name != "" {
			names = append(names, name)
		}
	}
	categories, err := s.categories.GetByNames(ctx, names)
	if err != nil {
		result.Errors = append(result.Errors, ImportRowError{Code: "CATEGORY_LOOKUP_FAILED", Message: err.Error()})
		result.FailedCount = result.TotalRows
		return result
	}

	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		rowNum, _ := strconv.Atoi(row["_row"])

		product, rowErr := productFromRow(row)
		if rowErr != nil {
			rowErr.Row = rowNum
			result.Errors = append(result.Errors, *rowErr)
			result.FailedCount++
			continue
		}

		if name := row["category"]; name != "" {
			if category, ok := categories[name]; ok {
				product.CategoryID = &category.ID
			} else {
				result.Warnings = append(result.Warnings, pricing.ConsistencyWarning{
					Kind:      pricing.WarningMissingCategory,
					Entity:    "import_row",
					ID:        strconv.Itoa(rowNum),
					Reference: name,
					Message:   "category name not found; product imported without a category",
				})
			}
		}

		duplicate := seen[product.SKU]
		if !duplicate {
			exists, err := s.repo.SKUExists(ctx, product.SKU, 0)
			if err != nil {
				result.Errors = append(result.Errors, ImportRowError{Row: rowNum, Code: "SKU_CHECK_FAILED", Message: err.Error()})
				result.FailedCount++
				continue
			}
			duplicate = exists
		}
		seen[product.SKU] = true
		if duplicate {
			if opts.SkipDuplicates {
				result.SkippedCount++
				continue
			}
			result.Errors = append(result.Errors, ImportRowError{
				Row:     rowNum,
				Column:  "sku",
				Code:    "DUPLICATE_SKU",
				Message: fmt.Sprintf("sku %q already exists", product.SKU),
			})
			result.FailedCount++
			continue
		}

		if opts.ValidateOnly {
			result.SuccessCount++
			continue
		}
		if err := s.repo.Create(ctx, product); err != nil {
			result.Errors = append(result.Errors, ImportRowError{Row: rowNum, Code: "CREATE_FAILED", Message: err.Error()})
			result.FailedCount++
			continue
		}
		result.CreatedIDs = append(result.CreatedIDs, product.ID)
		result.SuccessCount++
	}

	reportWarnings(s.logger, result.Warnings)
	result.Success = result.FailedCount == 0
	return result
}

func productFromRow(row map[string]string) (*models.Product, *ImportRowError) {
	for _, col := range []string{"sku", "name", "adminprice"} {
		if row[col] == "" {
			return nil, &ImportRowError{
				Column:  col,
				Code:    "REQUIRED_FIELD",
				Message: fmt.Sprintf("Required field '%s' is empty", col),
			}
		}
	}

	product := &models.Product{
		SKU:            row["sku"],
		Name:           row["name"],
		LegacyCategory: row["category"],
		Published:      true,
	}
	invalid := func(col string, err error) *ImportRowError {
		var verr *pricing.ValidationError
		msg := err.Error()
		if errors.As(err, &verr) {
			msg = verr.Message
		}
		return &ImportRowError{Column: col, Code: "INVALID_VALUE", Message: msg}
	}

	price, err := parseDecimalField("adminPrice", row["adminprice"])
	if err != nil {
		return nil, invalid("adminprice", err)
	}
	product.AdminPrice = price

	if v := row["stock"]; v != "" {
		stock, err := strconv.Atoi(v)
		if err != nil {
			return nil, invalid("stock", fmt.Errorf("%q is not an integer", v))
		}
		product.Stock = stock
	}
	if v := row["weight"]; v != "" {
		weight, err := parseDecimalField("weight", v)
		if err != nil {
			return nil, invalid("weight", err)
		}
		product.Weight = &weight
	}
	if v := row["brand"]; v != "" {
		product.Brand = &v
	}
	if v := row["dimensions"]; v != "" {
		product.Dimensions = &v
	}
	if v := row["image"]; v != "" {
		product.Image = &v
	}
	if v := row["published"]; v != "" {
		product.Published = strings.EqualFold(v, "true")
	}

	if err := validateProduct(product); err != nil {
		var verr *pricing.ValidationError
		col := ""
		if errors.As(err, &verr) {
			col = strings.ToLower(verr.Field)
		}
		return nil, invalid(col, err)
	}
	return product, nil
}
