package reports

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/fraud-registry/internal/session"
	"github.com/richxcame/fraud-registry/pkg/common"
	"github.com/richxcame/fraud-registry/pkg/jwtkeys"
	"github.com/richxcame/fraud-registry/pkg/middleware"
	"github.com/richxcame/fraud-registry/pkg/pagination"
)

// IntakeService is what the handler needs from Service
type IntakeService interface {
	Submit(ctx context.Context, sess session.Session, req SubmitReportRequest) (*Outcome, error)
	ListPending(ctx context.Context, limit, offset int) ([]*ReviewItem, int64, error)
	Resolve(ctx context.Context, sess session.Session, id uuid.UUID, req ResolveReviewRequest) (*ReviewItem, error)
}

// Handler handles HTTP requests for fraud reports
type Handler struct {
	service IntakeService
}

// NewHandler creates a new reports handler
func NewHandler(service IntakeService) *Handler {
	return &Handler{service: service}
}

// SubmitReport submits a fraud report for triage and recording
// POST /api/v1/reports
func (h *Handler) SubmitReport(c *gin.Context) {
	var req SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	outcome, err := h.service.Submit(c.Request.Context(), session.FromGin(c), req)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to submit report")
		return
	}

	status := http.StatusCreated
	if outcome.Status == StatusHeldForReview {
		status = http.StatusAccepted
	}
	common.SuccessResponseWithStatus(c, status, outcome)
}

// ListPendingReviews lists reports held for review (admin)
// GET /api/v1/admin/reviews
func (h *Handler) ListPendingReviews(c *gin.Context) {
	params := pagination.ParseParams(c)

	items, total, err := h.service.ListPending(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list reviews")
		return
	}

	common.SuccessResponseWithMeta(c, items, pagination.BuildMeta(params.Limit, params.Offset, total))
}

// ResolveReview confirms or dismisses a held report (admin)
// POST /api/v1/admin/reviews/:id/resolve
func (h *Handler) ResolveReview(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid review ID")
		return
	}

	var req ResolveReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.service.Resolve(c.Request.Context(), session.FromGin(c), id, req)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to resolve review")
		return
	}

	common.SuccessResponse(c, item)
}

// RegisterRoutes registers report and review routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, jwtProvider jwtkeys.KeyProvider) {
	reports := r.Group("/reports")
	reports.Use(middleware.AuthMiddlewareWithProvider(jwtProvider))
	{
		reports.POST("", h.SubmitReport)
	}

	admin := r.Group("/admin/reviews")
	admin.Use(middleware.AuthMiddlewareWithProvider(jwtProvider))
	admin.Use(middleware.RequireRole(middleware.RoleAdmin))
	{
		admin.GET("", h.ListPendingReviews)
		admin.POST("/:id/resolve", h.ResolveReview)
	}
}
