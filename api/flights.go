package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/flightreservation/internal/domain"
	"github.com/Domenick1991/flightreservation/internal/repository"
	"github.com/Domenick1991/flightreservation/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

type updateFlightStatusRequest struct {
	Status domain.FlightStatus `json:"status" binding:"required"`
}

// searchDateLayout is the format of the date query parameter on GET /flights.
const searchDateLayout = "2006-01-02"

type scheduleRequest struct {
	Airline       string    `json:"airline"`
	FromAirport   string    `json:"from_airport" binding:"required"`
	ToAirport     string    `json:"to_airport" binding:"required"`
	DepartureTime time.Time `json:"departure_time" binding:"required"`
	ArrivalTime   time.Time `json:"arrival_time" binding:"required"`
	PriceCents    int64     `json:"price_cents" binding:"gte=0"`
}

func (r scheduleRequest) input() flights.ScheduleInput {
	return flights.ScheduleInput{
		Airline:       r.Airline,
		FromAirport:   r.FromAirport,
		ToAirport:     r.ToAirport,
		DepartureTime: r.DepartureTime,
		ArrivalTime:   r.ArrivalTime,
		PriceCents:    r.PriceCents,
	}
}

type createFlightRequest struct {
	FlightNumber string `json:"flight_number" binding:"required"`
	TotalSeats   int    `json:"total_seats" binding:"required,gt=0"`
	scheduleRequest
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/flights", h.list)
	router.POST("/flights", h.create)
	router.GET("/flights/:id", h.get)
	router.PUT("/flights/:id", h.update)
	router.DELETE("/flights/:id", h.delete)
	router.GET("/flights/number/:number", h.getByNumber)
	router.PUT("/flights/:id/status", h.updateStatus)
}

func (h *FlightHandler) list(c *gin.Context) {
	filter := repository.FlightFilter{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
		Airline:     c.Query("airline"),
	}
	if raw := c.Query("date"); raw != "" {
		date, err := time.Parse(searchDateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected " + searchDateLayout})
			return
		}
		filter.Date = date
	}

	var (
		result []domain.Flight
		err    error
	)
	if filter.IsEmpty() {
		result, err = h.service.List(c.Request.Context())
	} else {
		result, err = h.service.Search(c.Request.Context(), filter)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *FlightHandler) create(c *gin.Context) {
	var req createFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	flight, err := h.service.Create(c.Request.Context(), flights.CreateFlightInput{
		FlightNumber:  req.FlightNumber,
		TotalSeats:    req.TotalSeats,
		ScheduleInput: req.input(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, flight)
}

func (h *FlightHandler) update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	flight, err := h.service.Update(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) getByNumber(c *gin.Context) {
	flight, err := h.service.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) updateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateFlightStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}
