package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// JWTSecret verifies bearer tokens on protected routes.
	JWTSecret []byte
	// RequestsPerMinute is the per-IP rate limit; zero disables it.
	RequestsPerMinute int

	// Booking endpoints
	CreateBookingHandler   gin.HandlerFunc
	GetBookingHandler      gin.HandlerFunc
	AcceptBookingHandler   gin.HandlerFunc
	RejectBookingHandler   gin.HandlerFunc
	CompleteBookingHandler gin.HandlerFunc
	CancelBookingHandler   gin.HandlerFunc
	PollStatusHandler      gin.HandlerFunc
	SendBuzzerHandler      gin.HandlerFunc

	// Negotiation endpoints
	ProposeNegotiationHandler gin.HandlerFunc
	RespondNegotiationHandler gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}

// NewHandlerBundle wires every booking endpoint of h into a bundle.
func NewHandlerBundle(h *BookingHandler, secret []byte, perMin int) *HandlerBundle {
	return &HandlerBundle{
		JWTSecret:         secret,
		RequestsPerMinute: perMin,

		CreateBookingHandler:   h.CreateBookingHandler,
		GetBookingHandler:      h.GetBookingHandler,
		AcceptBookingHandler:   h.AcceptBookingHandler,
		RejectBookingHandler:   h.RejectBookingHandler,
		CompleteBookingHandler: h.CompleteBookingHandler,
		CancelBookingHandler:   h.CancelBookingHandler,
		PollStatusHandler:      h.PollStatusHandler,
		SendBuzzerHandler:      h.SendBuzzerHandler,

		ProposeNegotiationHandler: h.ProposeNegotiationHandler,
		RespondNegotiationHandler: h.RespondNegotiationHandler,

		HealthHandler: HealthHandler,
	}
}
