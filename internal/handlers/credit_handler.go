package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/papersetu/qgen-service/internal/services"
	"github.com/papersetu/qgen-service/internal/utils"
)

type CreditHandler struct {
	BaseHandler
	creditService services.CreditService
}

func NewCreditHandler(creditService services.CreditService, logger utils.Logger) *CreditHandler {
	return &CreditHandler{
		BaseHandler:   NewBaseHandler(logger),
		creditService: creditService,
	}
}

// TopUpRequest credits another user's balance; admin only.
type TopUpRequest struct {
	OwnerID uuid.UUID `json:"owner_id" binding:"required"`
	Amount  int       `json:"amount" binding:"required,gt=0"`
}

// Balance returns the caller's current credit balance.
// GET /api/v1/credits/balance
func (h *CreditHandler) Balance(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	balance, err := h.creditService.Balance(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, balance)
}

// History returns the caller's ledger entries, newest first.
// GET /api/v1/credits/history
func (h *CreditHandler) History(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	history, err := h.creditService.History(c.Request.Context(), userID, page, size)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

// TopUp credits a user's balance. Routed behind the admin role check.
// POST /api/v1/credits/topup
func (h *CreditHandler) TopUp(c *gin.Context) {
	var req TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.creditService.TopUp(c.Request.Context(), req.OwnerID, req.Amount); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Credits topped up", "owner_id", req.OwnerID, "amount", req.Amount)
	c.JSON(http.StatusOK, SuccessResponse{Message: "Credits added"})
}
