package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"dropship-pricing-service/internal/events"
	"dropship-pricing-service/internal/middleware"
	"dropship-pricing-service/internal/models"
	"dropship-pricing-service/internal/pricing"
	"dropship-pricing-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	gosharedmw "github.com/Tesseract-Nexus/go-shared/middleware"
)

func respondSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondFailure(c *gin.Context, status int, detail models.Error) {
	c.JSON(status, models.ErrorResponse{
		Success:   false,
		Error:     detail,
		RequestID: middleware.GetRequestID(c),
	})
}

// respondError maps service errors onto 400, 404 or 500
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, pricing.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, pricing.ErrNotFound):
		status = http.StatusNotFound
	}
	respondFailure(c, status, services.ErrorDetail(err))
}

func respondBindError(c *gin.Context, err error) {
	respondFailure(c, http.StatusBadRequest, models.Error{
		Code:    "INVALID_REQUEST",
		Message: err.Error(),
	})
}

// bulkStatus is 200 when every item succeeded, 207 on partial success and 400 when nothing did
func bulkStatus(result *models.BulkOperationResult) int {
	switch {
	case result.FailedCount == 0:
		return http.StatusOK
	case result.SuccessCount > 0 || result.SkippedCount > 0:
		return http.StatusMultiStatus
	default:
		return http.StatusBadRequest
	}
}

// actorFrom reads the caller identity set by the auth middleware
func actorFrom(c *gin.Context) events.Actor {
	info := gosharedmw.GetActorInfo(c)
	actor := events.Actor{
		ID:        info.ActorID,
		Name:      info.ActorName,
		Email:     info.ActorEmail,
		ClientIP:  info.ClientIP,
		UserAgent: info.UserAgent,
	}
	if actor.ID == "" {
		actor.ID = c.GetString("user_id")
	}
	if actor.Email == "" {
		actor.Email = c.GetString("user_email")
	}
	return actor
}

// uintParam parses a positive path parameter, writing a 400 when it is not one
func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondFailure(c, http.StatusBadRequest, models.Error{
			Code:    "INVALID_ID",
			Message: "Invalid " + name,
			Field:   name,
		})
		return 0, false
	}
	return uint(id), true
}

// queryUint returns nil when the parameter is absent
func queryUint(c *gin.Context, name string) (*uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, pricing.NewValidationError(name, "must be a positive integer")
	}
	v := uint(id)
	return &v, nil
}

func queryBool(c *gin.Context, name string) (*bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, pricing.NewValidationError(name, "must be true or false")
	}
	return &b, nil
}

func queryDecimal(c *gin.Context, name string) (*decimal.Decimal, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, pricing.NewValidationError(name, "must be a number")
	}
	return &d, nil
}

// pageParams reads page and limit, clamping limit to maxLimit
func pageParams(c *gin.Context, defaultLimit, maxLimit int) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	// keeps (page-1)*limit within int for repository offsets
	if limit > 0 && page > math.MaxInt32/limit {
		page = math.MaxInt32 / limit
	}
	return page, limit
}
