package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/papersetu/qgen-service/internal/models"
	"github.com/papersetu/qgen-service/internal/repositories"
	"github.com/papersetu/qgen-service/internal/services"
	"github.com/papersetu/qgen-service/internal/utils"
)

type GenerationHandler struct {
	BaseHandler
	generationService services.GenerationService
}

func NewGenerationHandler(generationService services.GenerationService, logger utils.Logger) *GenerationHandler {
	return &GenerationHandler{
		BaseHandler:       NewBaseHandler(logger),
		generationService: generationService,
	}
}

// Generate runs a question generation request for an activity.
// POST /api/v1/qgen/activities/:id/generate
func (h *GenerationHandler) Generate(c *gin.Context) {
	activityID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Generating questions",
		"activity_id", activityID,
		"client_request_id", req.ClientRequestID,
		"requested", req.TotalRequested())

	result, err := h.generationService.Generate(c.Request.Context(), activityID, userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListQuestions returns the generated questions of an activity.
// GET /api/v1/qgen/activities/:id/questions
func (h *GenerationHandler) ListQuestions(c *gin.Context) {
	activityID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	filters := parseQuestionFilters(c)
	list, err := h.generationService.ListQuestions(c.Request.Context(), activityID, userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func parseQuestionFilters(c *gin.Context) repositories.GenQuestionFilters {
	filters := repositories.GenQuestionFilters{
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "asc"),
	}

	if raw := c.Query("type"); raw != "" {
		if qt, ok := models.ResolveQuestionType(raw); ok {
			filters.Type = &qt
		}
	}
	if raw := c.Query("hardness"); raw != "" && models.IsValidHardness(raw) {
		hardness := models.HardnessLevel(raw)
		filters.Hardness = &hardness
	}
	if raw := c.Query("is_in_draft"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			filters.IsInDraft = &value
		}
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil && limit > 0 && limit <= 200 {
		filters.Limit = limit
	} else {
		filters.Limit = 50
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil && offset >= 0 {
		filters.Offset = offset
	}
	return filters
}
