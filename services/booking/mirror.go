package booking

import (
	"context"
	"errors"
	"fmt"

	requestRepo "github.com/Hiteshmehtaa/yann-app-sub003/database/repository/request"
	"github.com/Hiteshmehtaa/yann-app-sub003/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ensureMirror returns the booking's resident request, creating it if the
// booking has none. The unique bookingId on requests keeps it to one mirror
// even when two callers race here.
func (s *DefaultBookingService) ensureMirror(ctx context.Context, b *models.Booking) (*models.ResidentRequest, error) {
	if b.ResidentRequestID != "" {
		req, err := s.requests.GetByID(ctx, b.ResidentRequestID)
		if err == nil {
			return req, nil
		}
		if !errors.Is(err, requestRepo.ErrRequestNotFound) {
			return nil, err
		}
	}

	req, err := s.requests.GetByBookingID(ctx, b.ID)
	if errors.Is(err, requestRepo.ErrRequestNotFound) {
		now := s.now()
		req = &models.ResidentRequest{
			ID:          uuid.New().String(),
			BookingID:   b.ID,
			ResidentID:  b.CustomerID,
			ServiceName: b.ServiceName,
			Status:      b.Status,
			Negotiation: b.Negotiation,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if createErr := s.requests.Create(ctx, req); createErr != nil {
			// Lost a creation race; use the winner's record.
			existing, getErr := s.requests.GetByBookingID(ctx, b.ID)
			if getErr != nil {
				return nil, fmt.Errorf("failed to create resident request: %w", createErr)
			}
			req = existing
		}
	} else if err != nil {
		return nil, err
	}

	if _, err := s.bookings.LinkResidentRequest(ctx, b.ID, req.ID); err != nil {
		return nil, fmt.Errorf("failed to link resident request: %w", err)
	}
	b.ResidentRequestID = req.ID
	return req, nil
}

// syncMirror copies a status change onto the resident request. Failures are
// logged; the booking is the source of truth.
func (s *DefaultBookingService) syncMirror(ctx context.Context, b *models.Booking, update requestRepo.StatusUpdate) {
	if b.ResidentRequestID == "" {
		return
	}
	update.At = s.now()
	if err := s.requests.UpdateStatus(ctx, b.ResidentRequestID, update); err != nil {
		s.logger.Warn("Failed to sync resident request status",
			zap.String("bookingId", b.ID),
			zap.String("requestId", b.ResidentRequestID),
			zap.Error(err),
		)
	}
}

func (s *DefaultBookingService) syncMirrorNegotiation(ctx context.Context, b *models.Booking) {
	if b.ResidentRequestID == "" {
		return
	}
	if err := s.requests.SetNegotiation(ctx, b.ResidentRequestID, b.Negotiation, s.now()); err != nil {
		s.logger.Warn("Failed to sync resident request negotiation",
			zap.String("bookingId", b.ID),
			zap.String("requestId", b.ResidentRequestID),
			zap.Error(err),
		)
	}
}
