package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"washitek/internal/auth"
	"washitek/internal/credit"
	"washitek/internal/user"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func bookingID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking id"})
		return 0, false
	}
	return id, true
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
	case errors.Is(err, user.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Booking belongs to another user"})
	case errors.Is(err, ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "Booking is not in a state that allows this action"})
	case errors.Is(err, credit.ErrCreditLimitExceeded):
		c.JSON(http.StatusConflict, gin.H{"error": "Credit limit exceeded"})
	case errors.Is(err, ErrCreditOutstanding):
		c.JSON(http.StatusConflict, gin.H{"error": "Outstanding credit must be repaid before booking"})
	case errors.Is(err, ErrNotPlanBooking),
		errors.Is(err, ErrNotPayAsYouGo),
		errors.Is(err, ErrInvalidKg),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrPastPickupDate),
		errors.Is(err, ErrReasonRequired),
		errors.Is(err, ErrNoAmountDue):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}

// CreateBooking godoc
// @Summary      Create a booking
// @Description  Places a pickup request. Blocked while credit is outstanding.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateBookingRequest  true  "Booking details"
// @Success      201      {object}  Booking
// @Failure      400      {object}  gin.H
// @Failure      409      {object}  gin.H
// @Router       /bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListMyBookings godoc
// @Summary      List own bookings
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  Booking
// @Router       /bookings [get]
func (h *Handler) ListMyBookings(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	bookings, err := h.service.ListMine(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// GetBooking godoc
// @Summary      Get a booking
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Booking ID"
// @Success      200  {object}  Booking
// @Failure      403  {object}  gin.H
// @Failure      404  {object}  gin.H
// @Router       /bookings/{id} [get]
func (h *Handler) GetBooking(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	id, ok := bookingID(c)
	if !ok {
		return
	}

	role, _ := c.Get("user_role")
	b, err := h.service.Get(c.Request.Context(), userID, role == "admin", id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ListMyPayments godoc
// @Summary      List own payment records
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  Payment
// @Router       /payments [get]
func (h *Handler) ListMyPayments(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	payments, err := h.service.Payments(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

// InitiateCashPayment godoc
// @Summary      Choose cash on delivery
// @Description  Marks a completed booking as awaiting cash settlement.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Booking ID"
// @Success      200  {object}  Booking
// @Failure      409  {object}  gin.H
// @Router       /bookings/{id}/pay/cash [post]
func (h *Handler) InitiateCashPayment(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	id, ok := bookingID(c)
	if !ok {
		return
	}

	b, err := h.service.InitiateCash(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// PayWithCredit godoc
// @Summary      Settle a booking on credit
// @Description  Draws the amount due from the revolving credit line.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Booking ID"
// @Success      200  {object}  Booking
// @Failure      409  {object}  gin.H
// @Router       /bookings/{id}/pay/credit [post]
func (h *Handler) PayWithCredit(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	id, ok := bookingID(c)
	if !ok {
		return
	}

	b, err := h.service.PayWithCredit(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ListBookings godoc
// @Summary      List bookings by status
// @Description  Returns bookings in the given lifecycle state. Admin only.
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        status  query    string  false  "Lifecycle status"  default(pending)
// @Success      200     {array}  Booking
// @Failure      400     {object} gin.H
// @Router       /admin/bookings [get]
func (h *Handler) ListBookings(c *gin.Context) {
	raw := c.DefaultQuery("status", string(StatusPending))
	status, ok := ParseStatus(raw)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status"})
		return
	}

	bookings, err := h.service.ListByStatus(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// AcceptBooking godoc
// @Summary      Accept a pending booking
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Booking ID"
// @Success      200  {object}  Booking
// @Failure      409  {object}  gin.H
// @Router       /admin/bookings/{id}/accept [put]
func (h *Handler) AcceptBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.service.Accept(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// RejectBooking godoc
// @Summary      Reject a pending booking
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                   true  "Booking ID"
// @Param        request  body      RejectBookingRequest  true  "Rejection reason"
// @Success      200      {object}  Booking
// @Failure      409      {object}  gin.H
// @Router       /admin/bookings/{id}/reject [put]
func (h *Handler) RejectBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req RejectBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.service.Reject(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// FinalizeUsage godoc
// @Summary      Finalize a plan booking with measured usage
// @Description  Stamps weighed kilograms and the amount due at the per-kg rate.
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                   true  "Booking ID"
// @Param        request  body      FinalizeUsageRequest  true  "Measured usage"
// @Success      200      {object}  Booking
// @Failure      409      {object}  gin.H
// @Router       /admin/bookings/{id}/finalize-usage [put]
func (h *Handler) FinalizeUsage(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req FinalizeUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.service.FinalizeUsage(c.Request.Context(), id, req.KgUsed)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// FinalizeDirect godoc
// @Summary      Finalize and settle a pay-as-you-go booking
// @Description  Records the quoted amount and closes the booking as paid.
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                    true  "Booking ID"
// @Param        request  body      FinalizeDirectRequest  true  "Quoted amount"
// @Success      200      {object}  Booking
// @Failure      409      {object}  gin.H
// @Router       /admin/bookings/{id}/finalize-direct [put]
func (h *Handler) FinalizeDirect(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req FinalizeDirectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.service.FinalizeDirect(c.Request.Context(), id, req.AmountPaise)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ConfirmPayment godoc
// @Summary      Confirm settlement of a completed booking
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Booking ID"
// @Success      200  {object}  Booking
// @Failure      409  {object}  gin.H
// @Router       /admin/bookings/{id}/confirm-payment [put]
func (h *Handler) ConfirmPayment(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.service.ConfirmPayment(c.Request.Context(), id, MethodCash)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ConfirmCashPayment godoc
// @Summary      Confirm cash received on delivery
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Booking ID"
// @Success      200  {object}  Booking
// @Failure      409  {object}  gin.H
// @Router       /admin/bookings/{id}/confirm-cash [put]
func (h *Handler) ConfirmCashPayment(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.service.ConfirmCash(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ConfirmCreditRepayment godoc
// @Summary      Confirm repayment of a credit settlement
// @Description  Marks the booking paid and restores the drawn credit in one step.
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Booking ID"
// @Success      200  {object}  Booking
// @Failure      409  {object}  gin.H
// @Router       /admin/bookings/{id}/confirm-credit [put]
func (h *Handler) ConfirmCreditRepayment(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.service.ConfirmCreditRepayment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
