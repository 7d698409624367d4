package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/papersetu/qgen-service/internal/services"
	"github.com/papersetu/qgen-service/internal/utils"
)

type DraftHandler struct {
	BaseHandler
	draftService services.DraftService
}

func NewDraftHandler(draftService services.DraftService, logger utils.Logger) *DraftHandler {
	return &DraftHandler{
		BaseHandler:  NewBaseHandler(logger),
		draftService: draftService,
	}
}

// GetDraft returns a draft with its sections.
// GET /api/v1/qgen/drafts/:id
func (h *DraftHandler) GetDraft(c *gin.Context) {
	draftID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	draft, err := h.draftService.GetByID(c.Request.Context(), draftID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, draft)
}

// UpdateDraft sets paper metadata fields on a draft.
// PUT /api/v1/qgen/drafts/:id
func (h *DraftHandler) UpdateDraft(c *gin.Context) {
	draftID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	draft, err := h.draftService.Update(c.Request.Context(), draftID, userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, draft)
}

// CreateSection appends a section to a draft.
// POST /api/v1/qgen/drafts/:id/sections
func (h *DraftHandler) CreateSection(c *gin.Context) {
	draftID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	section, err := h.draftService.CreateSection(c.Request.Context(), draftID, userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Section created", "draft_id", draftID, "section_id", section.ID)
	c.JSON(http.StatusCreated, section)
}

// RenameSection changes a section's display name.
// PUT /api/v1/qgen/sections/:id
func (h *DraftHandler) RenameSection(c *gin.Context) {
	sectionID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.UpdateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	section, err := h.draftService.RenameSection(c.Request.Context(), sectionID, userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, section)
}

// SetPageBreak toggles the page-break flag below a placed question.
// PUT /api/v1/qgen/questions/:id/layout
func (h *DraftHandler) SetPageBreak(c *gin.Context) {
	questionID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.UpdateQuestionLayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.draftService.SetPageBreak(c.Request.Context(), questionID, userID, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Question layout updated"})
}

// PlaceQuestions appends questions to a section in request order.
// PUT /api/v1/qgen/sections/:id/questions
func (h *DraftHandler) PlaceQuestions(c *gin.Context) {
	sectionID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.PlaceQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.draftService.PlaceQuestions(c.Request.Context(), sectionID, userID, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Questions placed", "section_id", sectionID, "count", len(req.QuestionIDs))
	c.JSON(http.StatusOK, SuccessResponse{Message: "Questions placed"})
}

// AddInstruction appends a general instruction line to a draft.
// POST /api/v1/qgen/drafts/:id/instructions
func (h *DraftHandler) AddInstruction(c *gin.Context) {
	draftID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateInstructionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	instruction, err := h.draftService.AddInstruction(c.Request.Context(), draftID, userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, instruction)
}

// ListInstructions returns a draft's instruction lines in order.
// GET /api/v1/qgen/drafts/:id/instructions
func (h *DraftHandler) ListInstructions(c *gin.Context) {
	draftID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	instructions, err := h.draftService.ListInstructions(c.Request.Context(), draftID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"instructions": instructions})
}
