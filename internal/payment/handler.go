package payment

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"washitek/internal/api"
	"washitek/internal/auth"
	"washitek/internal/booking"
	"washitek/internal/logger"
	"washitek/internal/metrics"
)

type CreateOrderRequest struct {
	BookingID int `json:"bookingId" binding:"required"`
}

type VerifyRequest struct {
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
}

type Handler struct {
	gateway  Gateway
	secret   string
	bookings booking.Service
}

func NewHandler(gateway Gateway, secret string, bookings booking.Service) *Handler {
	return &Handler{gateway: gateway, secret: secret, bookings: bookings}
}

// CreateOrder godoc
// @Summary      Create a gateway order for a booking
// @Description  Opens an online payment for a completed booking's amount due.
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateOrderRequest  true  "Booking to pay for"
// @Success      200      {object}  Order
// @Failure      400      {object}  gin.H
// @Failure      409      {object}  gin.H
// @Failure      502      {object}  gin.H
// @Router       /payments/create-order [post]
func (h *Handler) CreateOrder(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.bookings.Get(c.Request.Context(), userID, false, req.BookingID)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	if b.Status != booking.StatusCompleted || b.AmountDuePaise == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Booking has no payment due"})
		return
	}

	order, err := h.gateway.CreateOrder(c.Request.Context(), *b.AmountDuePaise, b.Ref)
	if err != nil {
		logger.Errorf("Failed to create gateway order for booking %d: %v", b.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment gateway unavailable"})
		return
	}

	if _, err := h.bookings.BeginOnline(c.Request.Context(), userID, b.ID, order.ID); err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// VerifyPayment godoc
// @Summary      Verify a checkout callback
// @Description  Validates the gateway signature and settles the booking on success.
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      VerifyRequest  true  "Checkout callback fields"
// @Success      200      {object}  api.VerifyResponse
// @Failure      400      {object}  api.VerifyResponse
// @Router       /payments/verify [post]
func (h *Handler) VerifyPayment(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !VerifySignature(h.secret, req.OrderID, req.PaymentID, req.Signature) {
		metrics.RecordPaymentVerification("failure")
		logger.Infof("Payment signature mismatch for order %s", req.OrderID)
		c.JSON(http.StatusBadRequest, api.VerifyResponse{
			Verified: false,
			Message:  "Signature verification failed",
		})
		return
	}

	if _, err := h.bookings.CompleteOnline(c.Request.Context(), req.OrderID, req.PaymentID); err != nil {
		metrics.RecordPaymentVerification("failure")
		respondBookingError(c, err)
		return
	}

	metrics.RecordPaymentVerification("success")
	c.JSON(http.StatusOK, api.VerifyResponse{
		Verified: true,
		Message:  "Payment verified",
	})
}

func respondBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
	case errors.Is(err, booking.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Booking belongs to another user"})
	case errors.Is(err, booking.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "Booking is not awaiting this payment"})
	case errors.Is(err, booking.ErrNoAmountDue):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}
