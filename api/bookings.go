package api

import (
	"net/http"

	"github.com/Domenick1991/flightreservation/internal/domain"
	"github.com/Domenick1991/flightreservation/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type passengerRequest struct {
	FirstName      string `json:"first_name" binding:"required"`
	LastName       string `json:"last_name" binding:"required"`
	DocumentNumber string `json:"document_number"`
}

func (p passengerRequest) input() booking.PassengerInput {
	return booking.PassengerInput{FirstName: p.FirstName, LastName: p.LastName, DocumentNumber: p.DocumentNumber}
}

type createBookingRequest struct {
	CustomerID int64              `json:"customer_id" binding:"required,gt=0"`
	FlightID   int64              `json:"flight_id" binding:"required,gt=0"`
	Passengers []passengerRequest `json:"passengers" binding:"required,min=1,dive"`
}

type changeFlightRequest struct {
	FlightID int64 `json:"flight_id" binding:"required,gt=0"`
}

type promotionRequest struct {
	Message string `json:"message" binding:"required"`
}

type bookingResponse struct {
	*domain.Booking
	Reference string `json:"reference"`
}

func newBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{Booking: b, Reference: b.Reference()}
}

func newBookingList(bookings []domain.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, newBookingResponse(&bookings[i]))
	}
	return out
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.GET("/bookings", h.list)
	router.POST("/bookings", h.create)
	router.GET("/bookings/:id", h.get)
	router.GET("/bookings/:id/confirmation", h.confirmation)
	router.PUT("/bookings/:id/confirm", h.confirm)
	router.DELETE("/bookings/:id", h.cancel)
	router.PUT("/bookings/:id/flight", h.changeFlight)
	router.GET("/bookings/:id/passengers", h.passengers)
	router.PUT("/bookings/:id/passengers/:pid", h.updatePassenger)
	router.DELETE("/bookings/:id/passengers/:pid", h.removePassenger)
	router.GET("/customers/:id/bookings", h.customerBookings)
	router.GET("/flights/:id/bookings", h.flightBookings)
	router.POST("/promotions", h.broadcastPromotion)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := booking.CreateBookingInput{CustomerID: req.CustomerID, FlightID: req.FlightID}
	for _, p := range req.Passengers {
		input.Passengers = append(input.Passengers, p.input())
	}
	b, err := h.service.CreateBooking(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newBookingResponse(b))
}

func (h *BookingHandler) list(c *gin.Context) {
	bookings, err := h.service.ListBookings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingList(bookings))
}

func (h *BookingHandler) get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	b, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

func (h *BookingHandler) confirmation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	text, err := h.service.Confirmation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.String(http.StatusOK, text)
}

func (h *BookingHandler) confirm(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	b, err := h.service.ConfirmBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	b, err := h.service.CancelBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

func (h *BookingHandler) changeFlight(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req changeFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	change, err := h.service.ModifyBookingFlight(c.Request.Context(), id, req.FlightID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"booking":               newBookingResponse(change.Booking),
		"previous_flight_id":    change.PreviousFlightID,
		"previous_amount_cents": change.PreviousAmountCents,
		"new_amount_cents":      change.NewAmountCents,
		"delta_cents":           change.DeltaCents,
		"adjustment":            change.Adjustment,
	})
}

func (h *BookingHandler) passengers(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	passengers, err := h.service.Passengers(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, passengers)
}

func (h *BookingHandler) updatePassenger(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	pid, ok := parseID(c, "pid")
	if !ok {
		return
	}
	var req passengerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.service.UpdatePassengerDetails(c.Request.Context(), id, pid, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *BookingHandler) removePassenger(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	pid, ok := parseID(c, "pid")
	if !ok {
		return
	}
	b, err := h.service.RemovePassenger(c.Request.Context(), id, pid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

func (h *BookingHandler) customerBookings(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	bookings, err := h.service.CustomerBookings(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingList(bookings))
}

func (h *BookingHandler) flightBookings(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	bookings, err := h.service.FlightBookings(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingList(bookings))
}

func (h *BookingHandler) broadcastPromotion(c *gin.Context) {
	var req promotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n, err := h.service.BroadcastPromotion(c.Request.Context(), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"recipients": n})
}
