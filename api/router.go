package api

import (
	"log/slog"
	"time"

	"github.com/Domenick1991/flightreservation/internal/service/booking"
	"github.com/Domenick1991/flightreservation/internal/service/flights"
	"github.com/Domenick1991/flightreservation/internal/service/payment"
	"github.com/gin-gonic/gin"
)

func NewRouter(log *slog.Logger, flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase, paymentSvc payment.PaymentUseCase) *gin.Engine {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	root := router.Group("/")
	NewFlightHandler(flightSvc).Register(root)
	NewBookingHandler(bookingSvc).Register(root)
	NewPaymentHandler(paymentSvc).Register(root)
	return router
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		}
		if len(c.Errors) > 0 {
			log.Error("request failed", append(attrs, "error", c.Errors.String())...)
			return
		}
		log.Info("request handled", attrs...)
	}
}
