package handlers

import (
	"net/http"

	"github.com/Hiteshmehtaa/yann-app-sub003/middleware"
	"github.com/Hiteshmehtaa/yann-app-sub003/models"
	"github.com/Hiteshmehtaa/yann-app-sub003/services/booking"
	"github.com/Hiteshmehtaa/yann-app-sub003/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking lifecycle over HTTP. The acting identity
// always comes from the auth middleware, never from the body.
type BookingHandler struct {
	Service booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

func actorID(c *gin.Context) string {
	return c.GetString(middleware.ActorIDKey)
}

// CreateBookingHandler handles POST /api/bookings.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	var draft models.BookingDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	res, err := h.Service.CreateBooking(c.Request.Context(), actorID(c), draft)
	if err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("Booking request created",
		zap.String("bookingId", res.BookingID),
		zap.Int("notifiedProviders", res.NotifiedProviders),
	)
	c.JSON(http.StatusCreated, res)
}

// GetBookingHandler handles GET /api/bookings/:id.
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	b, err := h.Service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// AcceptBookingHandler handles POST /api/bookings/:id/accept.
func (h *BookingHandler) AcceptBookingHandler(c *gin.Context) {
	var req struct {
		ProviderName string `json:"providerName"`
	}
	// The body is optional.
	_ = c.ShouldBindJSON(&req)

	b, err := h.Service.AcceptBooking(c.Request.Context(), c.Param("id"), actorID(c), req.ProviderName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bookingId":    b.ID,
		"status":       b.Status,
		"providerName": b.ProviderName,
	})
}

// RejectBookingHandler handles POST /api/bookings/:id/reject.
func (h *BookingHandler) RejectBookingHandler(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	b, err := h.Service.RejectBooking(c.Request.Context(), c.Param("id"), actorID(c), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookingId": b.ID})
}

// CompleteBookingHandler handles POST /api/bookings/:id/complete.
func (h *BookingHandler) CompleteBookingHandler(c *gin.Context) {
	b, err := h.Service.CompleteBooking(c.Request.Context(), c.Param("id"), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookingId": b.ID, "status": b.Status})
}

// CancelBookingHandler handles POST /api/bookings/:id/cancel.
func (h *BookingHandler) CancelBookingHandler(c *gin.Context) {
	b, err := h.Service.CancelBooking(c.Request.Context(), c.Param("id"), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookingId": b.ID, "status": b.Status})
}

// PollStatusHandler handles GET /api/bookings/:id/status.
func (h *BookingHandler) PollStatusHandler(c *gin.Context) {
	view, err := h.Service.PollBookingStatus(c.Request.Context(), c.Param("id"), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SendBuzzerHandler handles POST /api/bookings/:id/buzzer.
func (h *BookingHandler) SendBuzzerHandler(c *gin.Context) {
	if err := h.Service.SendBuzzer(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{})
}

// ProposeNegotiationHandler handles POST /api/bookings/:id/negotiation.
func (h *BookingHandler) ProposeNegotiationHandler(c *gin.Context) {
	var in booking.ProposeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	in.BookingID = c.Param("id")
	in.ProviderID = actorID(c)

	n, err := h.Service.ProposeNegotiation(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"negotiation": n})
}

// RespondNegotiationHandler handles POST /api/requests/:id/negotiation.
func (h *BookingHandler) RespondNegotiationHandler(c *gin.Context) {
	var req struct {
		Action models.NegotiationAction `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	out, err := h.Service.RespondToNegotiation(c.Request.Context(), c.Param("id"), req.Action, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": out})
}
