package registry

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/fraud-registry/pkg/common"
)

// LookupService is what the handler needs from Service
type LookupService interface {
	Lookup(ctx context.Context, raw string) (*NumberDetails, error)
	Check(ctx context.Context, raw string) (bool, error)
}

// Handler handles HTTP requests for number lookups
type Handler struct {
	service LookupService
}

// NewHandler creates a new registry handler
func NewHandler(service LookupService) *Handler {
	return &Handler{service: service}
}

// GetNumber returns the public fraud record of a number
// GET /api/v1/numbers/:phone
func (h *Handler) GetNumber(c *gin.Context) {
	details, err := h.service.Lookup(c.Request.Context(), c.Param("phone"))
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to look up number")
		return
	}

	common.SuccessResponse(c, details)
}

// CheckNumber answers whether a number has been reported
// POST /api/v1/numbers/check
func (h *Handler) CheckNumber(c *gin.Context) {
	var req LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	isFraud, err := h.service.Check(c.Request.Context(), req.PhoneNumber)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to check number")
		return
	}

	common.SuccessResponse(c, CheckResponse{IsFraud: isFraud})
}

// RegisterRoutes registers the public lookup routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	numbers := r.Group("/numbers")
	{
		numbers.POST("/check", h.CheckNumber)
		numbers.GET("/:phone", h.GetNumber)
	}
}
