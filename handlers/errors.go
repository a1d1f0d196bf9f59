package handlers

import (
	"errors"
	"net/http"

	"github.com/Hiteshmehtaa/yann-app-sub003/services/booking"
	"github.com/Hiteshmehtaa/yann-app-sub003/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var statusByCode = map[string]int{
	booking.CodeValidation:          http.StatusBadRequest,
	booking.CodeUnpricedService:     http.StatusBadRequest,
	booking.CodeNotEligible:         http.StatusBadRequest,
	booking.CodeAlreadyResolved:     http.StatusBadRequest,
	booking.CodeNoActiveNegotiation: http.StatusBadRequest,
	booking.CodeInvalidState:        http.StatusBadRequest,
	booking.CodeInsufficientBalance: http.StatusBadRequest,
	booking.CodeNotFound:            http.StatusNotFound,
	booking.CodeForbidden:           http.StatusForbidden,
	booking.CodeNegotiationActive:   http.StatusConflict,
}

// respondError maps business errors onto their status; anything else is a 500.
func respondError(c *gin.Context, err error) {
	var be *booking.BookingError
	if errors.As(err, &be) {
		status, ok := statusByCode[be.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		utils.JSONErrorWithCode(c, status, utils.ErrorResponse{
			Message: be.Message,
			Code:    be.Code,
			Field:   be.Field,
		})
		return
	}
	getLogger(c).Error("Booking operation failed", zap.Error(err))
	utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred. Please try again later.")
}
