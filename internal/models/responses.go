package models

// PaginationInfo represents pagination information
type PaginationInfo struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

// NewPaginationInfo builds pagination metadata for a 1-based page
func NewPaginationInfo(page, limit int, total int64) *PaginationInfo {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &PaginationInfo{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     Error  `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// Error represents error details
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ============================================================================
// Bulk Operation Models
// ============================================================================

// BulkItemStatus is the outcome of one item in a bulk operation
type BulkItemStatus string

const (
	BulkItemOK      BulkItemStatus = "ok"
	BulkItemSkipped BulkItemStatus = "skipped"
	BulkItemFailed  BulkItemStatus = "failed"
)

// BulkItemResult represents the result for a single product
type BulkItemResult struct {
	ProductID uint           `json:"productId"`
	Status    BulkItemStatus `json:"status"`
	Error     *Error         `json:"error,omitempty"`
}

// BulkOperationResult summarises a bulk operation. Items are processed independently.
type BulkOperationResult struct {
	OperationID  string           `json:"operationId"`
	Operation    string           `json:"operation"`
	TotalCount   int              `json:"totalCount"`
	SuccessCount int              `json:"successCount"`
	FailedCount  int              `json:"failedCount"`
	SkippedCount int              `json:"skippedCount"`
	Results      []BulkItemResult `json:"results"`
}

// Add records one item result and updates the counters
func (r *BulkOperationResult) Add(item BulkItemResult) {
	r.Results = append(r.Results, item)
	r.TotalCount++
	switch item.Status {
	case BulkItemOK:
		r.SuccessCount++
	case BulkItemSkipped:
		r.SkippedCount++
	case BulkItemFailed:
		r.FailedCount++
	}
}
