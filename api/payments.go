package api

import (
	"net/http"

	"github.com/Domenick1991/flightreservation/internal/service/payment"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	service payment.PaymentUseCase
}

type cardRequest struct {
	Number string `json:"number" binding:"required"`
	Holder string `json:"holder"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

type processPaymentRequest struct {
	BookingID   int64        `json:"booking_id" binding:"required,gt=0"`
	AmountCents int64        `json:"amount_cents" binding:"required,gt=0"`
	Method      string       `json:"method" binding:"required"`
	Card        *cardRequest `json:"card"`
	PayPalEmail string       `json:"paypal_email" binding:"omitempty,email"`
}

func NewPaymentHandler(service payment.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	router.POST("/payments", h.process)
	router.POST("/payments/:id/refund", h.refund)
	router.GET("/bookings/:id/payment", h.forBooking)
}

func (h *PaymentHandler) process(c *gin.Context) {
	var req processPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := payment.ProcessPaymentInput{
		BookingID:   req.BookingID,
		AmountCents: req.AmountCents,
		Method:      req.Method,
		PayPalEmail: req.PayPalEmail,
	}
	if req.Card != nil {
		input.Card = &payment.CardDetails{Number: req.Card.Number, Holder: req.Card.Holder, Expiry: req.Card.Expiry, CVV: req.Card.CVV}
	}
	p, err := h.service.ProcessPayment(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PaymentHandler) refund(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.Refund(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PaymentHandler) forBooking(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.PaymentForBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
