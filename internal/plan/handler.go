package plan

import (
	"errors"
	"net/http"
	"strconv"

	"washitek/internal/auth"
	"washitek/internal/user"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListPlans godoc
// @Summary      List membership plans
// @Description  Returns the purchasable plan catalog.
// @Tags         plans
// @Produce      json
// @Success      200  {array}  Plan
// @Router       /plans [get]
func (h *Handler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, Available())
}

// RequestPlan godoc
// @Summary      Request a membership plan
// @Description  Creates a pending plan request for admin review.
// @Tags         plans
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateRequestRequest  true  "Plan request"
// @Success      201      {object}  PlanRequest
// @Failure      400      {object}  gin.H
// @Failure      409      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /plans/request [post]
func (h *Handler) RequestPlan(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.Request(c.Request.Context(), userID, req.Plan, req.PaymentMethod, req.TxnID)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownPlan):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown plan"})
		case errors.Is(err, ErrPlanAlreadyActive):
			c.JSON(http.StatusConflict, gin.H{"error": "You already have an active plan"})
		case errors.Is(err, ErrRequestAlreadyPending):
			c.JSON(http.StatusConflict, gin.H{"error": "You already have a pending plan request"})
		case errors.Is(err, user.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create plan request"})
		}
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListPendingRequests godoc
// @Summary      List pending plan requests
// @Description  Returns plan requests awaiting review. Admin only.
// @Tags         plans
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   PlanRequest
// @Failure      500  {object}  gin.H
// @Router       /admin/plan-requests [get]
func (h *Handler) ListPendingRequests(c *gin.Context) {
	requests, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch plan requests"})
		return
	}

	c.JSON(http.StatusOK, requests)
}

// ApproveRequest godoc
// @Summary      Approve plan request
// @Description  Approves a pending plan request and activates the plan on the user. Admin only.
// @Tags         plans
// @Security     BearerAuth
// @Produce      json
// @Param        requestID  path      int  true  "Plan request ID"
// @Success      200        {object}  PlanRequest
// @Failure      400        {object}  gin.H
// @Failure      404        {object}  gin.H
// @Failure      409        {object}  gin.H
// @Failure      500        {object}  gin.H
// @Router       /admin/plan-requests/{requestID}/approve [post]
func (h *Handler) ApproveRequest(c *gin.Context) {
	requestID, err := strconv.Atoi(c.Param("requestID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	req, err := h.service.Approve(c.Request.Context(), requestID)
	if err != nil {
		switch {
		case errors.Is(err, ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Plan request not found"})
		case errors.Is(err, ErrAlreadyResolved):
			c.JSON(http.StatusConflict, gin.H{"error": "Plan request already resolved"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve plan request"})
		}
		return
	}

	c.JSON(http.StatusOK, req)
}

// RejectRequest godoc
// @Summary      Reject plan request
// @Description  Rejects a pending plan request with a reason. Admin only.
// @Tags         plans
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        requestID  path      int                   true  "Plan request ID"
// @Param        request    body      RejectRequestRequest  true  "Rejection reason"
// @Success      200        {object}  PlanRequest
// @Failure      400        {object}  gin.H
// @Failure      404        {object}  gin.H
// @Failure      409        {object}  gin.H
// @Failure      500        {object}  gin.H
// @Router       /admin/plan-requests/{requestID}/reject [post]
func (h *Handler) RejectRequest(c *gin.Context) {
	requestID, err := strconv.Atoi(c.Param("requestID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	var body RejectRequestRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rejection reason is required"})
		return
	}

	req, err := h.service.Reject(c.Request.Context(), requestID, body.Reason)
	if err != nil {
		switch {
		case errors.Is(err, ErrReasonRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Rejection reason is required"})
		case errors.Is(err, ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Plan request not found"})
		case errors.Is(err, ErrAlreadyResolved):
			c.JSON(http.StatusConflict, gin.H{"error": "Plan request already resolved"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject plan request"})
		}
		return
	}

	c.JSON(http.StatusOK, req)
}
