package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/papersetu/qgen-service/internal/services"
	"github.com/papersetu/qgen-service/internal/utils"
)

type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the pieces every handler shares.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c, h.logger).InfoContext(c.Request.Context(), msg, args...)
}

func (h BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err)
	utils.FromContext(c, h.logger).ErrorContext(c.Request.Context(), msg, args...)
}

// parseUUIDParam parses a path parameter as a UUID; on failure it
// writes the 400 itself and reports false.
func (h BaseHandler) parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "invalid " + name + " parameter",
			Details: err.Error(),
		})
		return uuid.Nil, false
	}
	return id, true
}

// currentUserID reads the authenticated user's id set by the auth
// middleware; on failure it writes the 401 itself and reports false.
func (h BaseHandler) currentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid user identity in context",
		})
		return uuid.Nil, false
	}
	return userID, true
}

// handleServiceError maps service errors onto HTTP statuses. Handlers
// share one error vocabulary, so the mapping lives here.
func (h BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	// A commit-phase failure rolled back and refunded; the client may
	// retry with the same client_request_id.
	var persistenceError *services.PersistenceError
	if errors.As(err, &persistenceError) {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "persistence_failure",
			Message: "Could not persist generated questions; credits were refunded, retry with the same client_request_id",
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrInsufficientCredits):
		c.JSON(http.StatusPaymentRequired, ErrorResponse{
			Error:   "insufficient_credits",
			Message: "Not enough credits for this request",
		})
	case errors.Is(err, services.ErrTotalGenerationFailure):
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "generation_failure",
			Message: "Question generation failed; credits were refunded",
		})
	case errors.Is(err, services.ErrConceptNotFound):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "One or more concept ids do not exist",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrActivityNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Activity not found",
		})
	case errors.Is(err, services.ErrDraftNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Draft not found",
		})
	case errors.Is(err, services.ErrSectionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Section not found",
		})
	case errors.Is(err, services.ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Question not found",
		})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "User not found",
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Internal server error",
		})
	}
}
