package booking

import (
	"context"
	"errors"
	"fmt"

	bookingRepo "github.com/Hiteshmehtaa/yann-app-sub003/database/repository/booking"
	providerRepo "github.com/Hiteshmehtaa/yann-app-sub003/database/repository/provider"
	requestRepo "github.com/Hiteshmehtaa/yann-app-sub003/database/repository/request"
	"github.com/Hiteshmehtaa/yann-app-sub003/models"
	"github.com/Hiteshmehtaa/yann-app-sub003/services/events"
	"github.com/Hiteshmehtaa/yann-app-sub003/services/notification"

	"go.uber.org/zap"
)

var pendingOnly = []models.BookingStatus{models.StatusPending}

// AcceptBooking assigns the booking to providerID. The status change is one
// conditional write on "still pending", so concurrent accepts have exactly
// one winner and every loser gets AlreadyResolved.
func (s *DefaultBookingService) AcceptBooking(ctx context.Context, bookingID, providerID, providerName string) (*models.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	provider, err := s.loadProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOpen(ctx, b); err != nil {
		return nil, err
	}
	if !provider.Offers(b.ServiceName) {
		return nil, NewNotEligibleError(providerID, b.ServiceName)
	}
	if providerName == "" {
		providerName = provider.Name
	}

	now := s.now()
	accepted, err := s.bookings.SetStatus(ctx, bookingID, pendingOnly, models.StatusAccepted, bookingRepo.StatusFields{
		AssignedProvider: providerID,
		ProviderName:     providerName,
		AppendResponse: &models.ProviderResponse{
			ProviderID: providerID,
			Response:   models.ResponseAccepted,
			Timestamp:  now,
		},
		CloseNegotiation: models.NegotiationAccepted,
		At:               now,
	})
	if errors.Is(err, bookingRepo.ErrPreconditionFailed) {
		s.logger.Info("Accept lost the race",
			zap.String("bookingId", bookingID),
			zap.String("providerId", providerID),
		)
		return nil, NewAlreadyResolvedError()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to accept booking %s: %w", bookingID, err)
	}

	s.logger.Info("Booking accepted",
		zap.String("bookingId", bookingID),
		zap.String("providerId", providerID),
	)
	s.afterAccept(ctx, accepted, providerID)
	return accepted, nil
}

// afterAccept runs the best-effort follow-ups of an acceptance.
func (s *DefaultBookingService) afterAccept(ctx context.Context, b *models.Booking, actorID string) {
	s.syncMirror(ctx, b, requestRepo.StatusUpdate{
		Status:       models.StatusAccepted,
		ScheduledFor: b.Date,
		ProviderID:   b.AssignedProvider,
		ProviderName: b.ProviderName,
	})
	if b.CustomerID != "" {
		s.notify(ctx, notification.NewBookingAccepted(b.CustomerID, b))
	}
	s.publish(ctx, events.Event{
		Type:      events.BookingAccepted,
		BookingID: b.ID,
		Status:    b.Status,
		ActorID:   actorID,
		Data: map[string]interface{}{
			"assignedProvider": b.AssignedProvider,
			"totalPrice":       b.TotalPrice,
		},
	})
}

// RejectBooking records a provider's refusal. It never changes the status and
// succeeds for any existing booking.
func (s *DefaultBookingService) RejectBooking(ctx context.Context, bookingID, providerID, reason string) (*models.Booking, error) {
	updated, err := s.bookings.AppendProviderResponse(ctx, bookingID, models.ProviderResponse{
		ProviderID: providerID,
		Response:   models.ResponseRejected,
		Reason:     reason,
		Timestamp:  s.now(),
	})
	if errors.Is(err, bookingRepo.ErrBookingNotFound) {
		return nil, NewNotFoundError("booking", bookingID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record rejection on %s: %w", bookingID, err)
	}

	s.publish(ctx, events.Event{
		Type:      events.BookingRejected,
		BookingID: bookingID,
		Status:    updated.Status,
		ActorID:   providerID,
		Data:      map[string]interface{}{"reason": reason},
	})
	return updated, nil
}

// CompleteBooking closes an accepted booking. Only the assigned provider may.
func (s *DefaultBookingService) CompleteBooking(ctx context.Context, bookingID, providerID string) (*models.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.StatusAccepted {
		return nil, NewInvalidStateError(fmt.Sprintf("booking is %s, only accepted bookings can be completed", b.Status))
	}
	if b.AssignedProvider != providerID {
		return nil, NewForbiddenError("only the assigned provider can complete this booking")
	}

	completed, err := s.bookings.SetStatus(ctx, bookingID, []models.BookingStatus{models.StatusAccepted}, models.StatusCompleted,
		bookingRepo.StatusFields{At: s.now()})
	if errors.Is(err, bookingRepo.ErrPreconditionFailed) {
		return nil, NewInvalidStateError("booking changed while completing; refresh and try again")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to complete booking %s: %w", bookingID, err)
	}

	s.syncMirror(ctx, completed, requestRepo.StatusUpdate{Status: models.StatusCompleted})
	s.publish(ctx, events.Event{Type: events.BookingCompleted, BookingID: bookingID, Status: completed.Status, ActorID: providerID})
	return completed, nil
}

// CancelBooking withdraws a pending or accepted booking on the resident's
// behalf. Guest bookings carry no customer id and can be cancelled by id.
func (s *DefaultBookingService) CancelBooking(ctx context.Context, bookingID, actorID string) (*models.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != "" && b.CustomerID != actorID {
		return nil, NewForbiddenError("only the resident who created the booking can cancel it")
	}

	cancelled, err := s.bookings.SetStatus(ctx, bookingID,
		[]models.BookingStatus{models.StatusPending, models.StatusAccepted}, models.StatusCancelled,
		bookingRepo.StatusFields{CloseNegotiation: models.NegotiationDeclined, At: s.now()})
	if errors.Is(err, bookingRepo.ErrPreconditionFailed) {
		return nil, NewInvalidStateError("booking can no longer be cancelled")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to cancel booking %s: %w", bookingID, err)
	}

	s.syncMirror(ctx, cancelled, requestRepo.StatusUpdate{Status: models.StatusCancelled})
	if cancelled.Negotiation != nil {
		s.syncMirrorNegotiation(ctx, cancelled)
	}
	s.publish(ctx, events.Event{Type: events.BookingCancelled, BookingID: bookingID, Status: cancelled.Status, ActorID: actorID})
	return cancelled, nil
}

// checkOpen fails unless b can still be accepted. With server-side expiry a
// lapsed pending booking is expired on the spot.
func (s *DefaultBookingService) checkOpen(ctx context.Context, b *models.Booking) error {
	if b.Status != models.StatusPending {
		return NewAlreadyResolvedError()
	}
	if s.opts.ServerExpiry && !s.now().Before(b.ExpiresAt) {
		if _, err := s.expire(ctx, b.ID); err != nil {
			s.logger.Warn("Failed to expire lapsed booking", zap.String("bookingId", b.ID), zap.Error(err))
		}
		return NewAlreadyResolvedError()
	}
	return nil
}

func (s *DefaultBookingService) loadProvider(ctx context.Context, providerID string) (*models.ProviderCatalogEntry, error) {
	if providerID == "" {
		return nil, NewValidationError("providerId", "providerId is required")
	}
	p, err := s.providers.GetByID(ctx, providerID)
	if errors.Is(err, providerRepo.ErrProviderNotFound) {
		return nil, NewNotFoundError("provider", providerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load provider %s: %w", providerID, err)
	}
	return p, nil
}
