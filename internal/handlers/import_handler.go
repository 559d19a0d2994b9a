package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"dropship-pricing-service/internal/models"
	"dropship-pricing-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ImportFormat represents the file format for import
type ImportFormat string

const (
	ImportFormatCSV  ImportFormat = "csv"
	ImportFormatXLSX ImportFormat = "xlsx"
)

const productSheet = "Products"

// ImportTemplateColumn defines a column in the import template
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"`
	Example     string `json:"example"`
}

// ImportTemplate defines the structure of an import template
type ImportTemplate struct {
	Entity     string                 `json:"entity"`
	Version    string                 `json:"version"`
	Columns    []ImportTemplateColumn `json:"columns"`
	SampleData []map[string]string    `json:"sampleData,omitempty"`
}

type ImportHandler struct {
	products *services.ProductService
}

func NewImportHandler(products *services.ProductService) *ImportHandler {
	return &ImportHandler{products: products}
}

// ProductImportTemplate returns the template definition for products
func ProductImportTemplate() ImportTemplate {
	return ImportTemplate{
		Entity:  "products",
		Version: "1.0",
		Columns: []ImportTemplateColumn{
			{Name: "sku", Description: "Unique stock keeping unit", Required: true, Type: "string", Example: "KET-001"},
			{Name: "name", Description: "Product name", Required: true, Type: "string", Example: "Steel Kettle"},
			{Name: "adminPrice", Description: "Base price in the source currency", Required: true, Type: "decimal", Example: "12.50"},
			{Name: "category", Description: "Category name, matched exactly", Required: false, Type: "string", Example: "Kitchen"},
			{Name: "brand", Description: "Brand name", Required: false, Type: "string", Example: "Acme"},
			{Name: "stock", Description: "Units in stock", Required: false, Type: "number", Example: "40"},
			{Name: "weight", Description: "Weight in kilograms", Required: false, Type: "decimal", Example: "1.2"},
			{Name: "dimensions", Description: "Free-text dimensions", Required: false, Type: "string", Example: "20x15x25 cm"},
			{Name: "image", Description: "Image URL", Required: false, Type: "string", Example: "https://example.com/kettle.jpg"},
			{Name: "published", Description: "Visible to sellers (true/false)", Required: false, Type: "boolean", Example: "true"},
		},
		SampleData: []map[string]string{
			{
				"sku":        "KET-001",
				"name":       "Steel Kettle",
				"adminPrice": "12.50",
				"category":   "Kitchen",
				"brand":      "Acme",
				"stock":      "40",
				"weight":     "1.2",
				"dimensions": "20x15x25 cm",
				"image":      "",
				"published":  "true",
			},
			{
				"sku":        "RAKE-002",
				"name":       "Garden Rake",
				"adminPrice": "8",
				"category":   "Garden",
				"brand":      "",
				"stock":      "15",
				"weight":     "",
				"dimensions": "",
				"image":      "",
				"published":  "false",
			},
		},
	}
}

// GetImportTemplate returns the import template definition or file
// GET /api/v1/admin/products/import/template
func (h *ImportHandler) GetImportTemplate(c *gin.Context) {
	template := ProductImportTemplate()

	switch c.DefaultQuery("format", "json") {
	case "csv":
		h.generateCSVTemplate(c, template)
	case "xlsx":
		h.generateXLSXTemplate(c, template)
	default:
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"template": template,
		})
	}
}

func templateHeaders(template ImportTemplate) []string {
	headers := make([]string, len(template.Columns))
	for i, col := range template.Columns {
		headers[i] = col.Name
	}
	return headers
}

func (h *ImportHandler) generateCSVTemplate(c *gin.Context, template ImportTemplate) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=products_import_template.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	_ = writer.Write(templateHeaders(template))
	for _, sample := range template.SampleData {
		row := make([]string, len(template.Columns))
		for i, col := range template.Columns {
			row[i] = sample[col.Name]
		}
		_ = writer.Write(row)
	}
}

// headerStyles returns the regular and required header cell styles
func headerStyles(f *excelize.File) (int, int) {
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
	})
	return headerStyle, requiredStyle
}

func (h *ImportHandler) generateXLSXTemplate(c *gin.Context, template ImportTemplate) {
	f := excelize.NewFile()
	defer f.Close()

	_ = f.SetSheetName("Sheet1", productSheet)
	headerStyle, requiredStyle := headerStyles(f)

	for i, col := range template.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		headerText := col.Name
		style := headerStyle
		if col.Required {
			headerText = col.Name + " *"
			style = requiredStyle
		}
		_ = f.SetCellValue(productSheet, cell, headerText)
		_ = f.SetCellStyle(productSheet, cell, cell, style)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(productSheet, colName, colName, 18)
	}

	for rowIdx, sample := range template.SampleData {
		for colIdx, col := range template.Columns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			_ = f.SetCellValue(productSheet, cell, sample[col.Name])
		}
	}

	_, _ = f.NewSheet("Instructions")
	_ = f.SetCellValue("Instructions", "A1", "Product Import Instructions")
	_ = f.SetCellValue("Instructions", "A2", "Unknown category names import without a category and are reported as warnings.")
	_ = f.SetCellValue("Instructions", "A3", "Column Definitions:")
	for i, col := range template.Columns {
		row := i + 4
		required := "Optional"
		if col.Required {
			required = "Required"
		}
		_ = f.SetCellValue("Instructions", fmt.Sprintf("A%d", row), col.Name)
		_ = f.SetCellValue("Instructions", fmt.Sprintf("B%d", row), col.Description)
		_ = f.SetCellValue("Instructions", fmt.Sprintf("C%d", row), required)
		_ = f.SetCellValue("Instructions", fmt.Sprintf("D%d", row), col.Type)
		_ = f.SetCellValue("Instructions", fmt.Sprintf("E%d", row), col.Example)
	}
	_ = f.SetColWidth("Instructions", "A", "A", 20)
	_ = f.SetColWidth("Instructions", "B", "B", 40)
	_ = f.SetColWidth("Instructions", "C", "D", 15)
	_ = f.SetColWidth("Instructions", "E", "E", 40)

	sheetIdx, _ := f.GetSheetIndex(productSheet)
	f.SetActiveSheet(sheetIdx)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=products_import_template.xlsx")
	_ = f.Write(c.Writer)
}

// ImportProducts imports products from a CSV or Excel file
// POST /api/v1/admin/products/import
func (h *ImportHandler) ImportProducts(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondFailure(c, http.StatusBadRequest, models.Error{
			Code:    "FILE_REQUIRED",
			Message: "Please upload a CSV or Excel file",
		})
		return
	}
	defer file.Close()

	opts := services.ImportOptions{
		SkipDuplicates: c.DefaultPostForm("skipDuplicates", "false") == "true",
		ValidateOnly:   c.DefaultPostForm("validateOnly", "false") == "true",
	}

	var rows []map[string]string
	switch filename := strings.ToLower(header.Filename); {
	case strings.HasSuffix(filename, ".csv"):
		rows, err = parseCSV(file)
	case strings.HasSuffix(filename, ".xlsx"):
		rows, err = parseXLSX(file)
	default:
		respondFailure(c, http.StatusBadRequest, models.Error{
			Code:    "INVALID_FORMAT",
			Message: "Only CSV and XLSX files are supported",
		})
		return
	}
	if err != nil {
		respondFailure(c, http.StatusBadRequest, models.Error{
			Code:    "PARSE_ERROR",
			Message: err.Error(),
		})
		return
	}
	if len(rows) == 0 {
		respondFailure(c, http.StatusBadRequest, models.Error{
			Code:    "EMPTY_FILE",
			Message: "The file contains no data rows",
		})
		return
	}

	result := h.products.Import(c.Request.Context(), rows, opts)

	status := http.StatusOK
	switch {
	case result.FailedCount > 0 && result.SuccessCount > 0:
		status = http.StatusMultiStatus
	case result.FailedCount > 0:
		status = http.StatusBadRequest
	}
	c.JSON(status, result)
}

// normalizeHeaders lower-cases header names and strips the required marker
func normalizeHeaders(headers []string) []string {
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.ToLower(headers[i]))
		headers[i] = strings.TrimSuffix(headers[i], " *")
	}
	return headers
}

func recordToRow(headers, record []string, line int) map[string]string {
	row := make(map[string]string, len(headers)+1)
	for i, value := range record {
		if i < len(headers) {
			row[headers[i]] = strings.TrimSpace(value)
		}
	}
	row["_row"] = strconv.Itoa(line)
	return row
}

func parseCSV(file io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	headers = normalizeHeaders(headers)

	var rows []map[string]string
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("error reading line %d: %w", line, err)
		}
		rows = append(rows, recordToRow(headers, record, line))
	}
	return rows, nil
}

func parseXLSX(file io.Reader) ([]map[string]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}
	sheetName := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(name, productSheet) {
			sheetName = name
			break
		}
	}

	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(excelRows) < 2 {
		return nil, fmt.Errorf("file must have a header row and at least one data row")
	}

	headers := normalizeHeaders(excelRows[0])
	rows := make([]map[string]string, 0, len(excelRows)-1)
	for rowIdx, excelRow := range excelRows[1:] {
		rows = append(rows, recordToRow(headers, excelRow, rowIdx+2))
	}
	return rows, nil
}
