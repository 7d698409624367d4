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

type ActivityHandler struct {
	BaseHandler
	activityService services.ActivityService
}

func NewActivityHandler(activityService services.ActivityService, logger utils.Logger) *ActivityHandler {
	return &ActivityHandler{
		BaseHandler:     NewBaseHandler(logger),
		activityService: activityService,
	}
}

// Create creates an activity; qgen activities also get an empty draft
// with one section.
// POST /api/v1/activities
func (h *ActivityHandler) Create(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	activity, err := h.activityService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Activity created", "activity_id", activity.ID)
	c.JSON(http.StatusCreated, activity)
}

// GetByID returns one activity with its draft id.
// GET /api/v1/activities/:id
func (h *ActivityHandler) GetByID(c *gin.Context) {
	activityID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	activity, err := h.activityService.GetByID(c.Request.Context(), activityID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, activity)
}

// List returns the caller's activities.
// GET /api/v1/activities
func (h *ActivityHandler) List(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	filters := repositories.ActivityFilters{
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	if raw := c.Query("product_type"); raw != "" {
		productType := models.ProductType(raw)
		filters.ProductType = &productType
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil && limit > 0 && limit <= 100 {
		filters.Limit = limit
	} else {
		filters.Limit = 20
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil && offset >= 0 {
		filters.Offset = offset
	}

	list, err := h.activityService.List(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// Delete removes an activity and everything hanging off it.
// DELETE /api/v1/activities/:id
func (h *ActivityHandler) Delete(c *gin.Context) {
	activityID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	if err := h.activityService.Delete(c.Request.Context(), activityID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Activity deleted", "activity_id", activityID)
	c.JSON(http.StatusOK, SuccessResponse{Message: "Activity deleted"})
}
