package comments

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/fraud-registry/internal/registry"
	"github.com/richxcame/fraud-registry/internal/session"
	"github.com/richxcame/fraud-registry/pkg/common"
	"github.com/richxcame/fraud-registry/pkg/jwtkeys"
	"github.com/richxcame/fraud-registry/pkg/middleware"
)

// CommentService is what the handler needs from Service
type CommentService interface {
	AddComment(ctx context.Context, sess session.Session, req AddCommentRequest) (*registry.Comment, error)
}

// Handler handles HTTP requests for comments
type Handler struct {
	service CommentService
}

// NewHandler creates a new comments handler
func NewHandler(service CommentService) *Handler {
	return &Handler{service: service}
}

type addCommentBody struct {
	Text string `json:"text"`
}

// AddComment appends a comment to a number's record
// POST /api/v1/numbers/:phone/comments
func (h *Handler) AddComment(c *gin.Context) {
	var body addCommentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	req := AddCommentRequest{PhoneNumber: c.Param("phone"), Text: body.Text}
	comment, err := h.service.AddComment(c.Request.Context(), session.FromGin(c), req)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to add comment")
		return
	}

	common.CreatedResponse(c, comment)
}

// RegisterRoutes registers comment routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, jwtProvider jwtkeys.KeyProvider) {
	numbers := r.Group("/numbers")
	numbers.Use(middleware.AuthMiddlewareWithProvider(jwtProvider))
	{
		numbers.POST("/:phone/comments", h.AddComment)
	}
}
