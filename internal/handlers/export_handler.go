package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"dropship-pricing-service/internal/catalog"
	"dropship-pricing-service/internal/middleware"
	"dropship-pricing-service/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

var exportColumns = []string{
	"productId", "sku", "name", "categoryId", "brand", "adminPrice", "basePrice",
	"pricingMode", "effectiveMargin", "marginSource", "shippingFee", "sellerPrice", "isSelected",
}

// exportRow renders one merged product. Money is rounded to 2 decimals here and nowhere else.
func exportRow(p catalog.MergedProduct) []string {
	categoryID := ""
	if p.CategoryID != nil {
		categoryID = strconv.FormatUint(uint64(*p.CategoryID), 10)
	}
	brand := ""
	if p.Brand != nil {
		brand = *p.Brand
	}
	return []string{
		strconv.FormatUint(uint64(p.ID), 10),
		p.SKU,
		p.Name,
		categoryID,
		brand,
		p.AdminPrice.StringFixed(2),
		p.BasePrice.StringFixed(2),
		string(p.PricingMode),
		p.EffectiveMargin.StringFixed(2),
		string(p.MarginSource),
		p.ShippingFee.StringFixed(2),
		p.SellerPrice.StringFixed(2),
		strconv.FormatBool(p.IsSelected),
	}
}

// ExportCatalog downloads the seller catalog as CSV (default) or XLSX.
// It accepts the same filters as GetCatalog and always exports every matching row.
func (h *CatalogHandler) ExportCatalog(c *gin.Context) {
	filters, err := catalogFilters(c)
	if err != nil {
		respondError(c, err)
		return
	}
	format := ImportFormat(c.DefaultQuery("format", string(ImportFormatCSV)))
	if format != ImportFormatCSV && format != ImportFormatXLSX {
		respondFailure(c, http.StatusBadRequest, models.Error{
			Code:    "INVALID_FORMAT",
			Message: "Only csv and xlsx exports are supported",
			Field:   "format",
		})
		return
	}

	result, err := h.service.GetCatalog(c.Request.Context(), middleware.GetSellerID(c), filters, 1, 0)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("catalog_%s.%s", time.Now().UTC().Format("20060102"), format)
	if format == ImportFormatXLSX {
		writeCatalogXLSX(c, filename, result.Items)
		return
	}
	writeCatalogCSV(c, filename, result.Items)
}

func writeCatalogCSV(c *gin.Context, filename string, items []catalog.MergedProduct) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename="+filename)

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	_ = writer.Write(exportColumns)
	for _, item := range items {
		_ = writer.Write(exportRow(item))
	}
}

func writeCatalogXLSX(c *gin.Context, filename string, items []catalog.MergedProduct) {
	const sheet = "Catalog"

	f := excelize.NewFile()
	defer f.Close()
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := headerStyles(f)
	for i, name := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, name)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}
	for rowIdx, item := range items {
		for colIdx, value := range exportRow(item) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}
	_ = f.SetColWidth(sheet, "A", "M", 16)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	_ = f.Write(c.Writer)
}
