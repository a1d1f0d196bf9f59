package booking

import (
	"context"
	"errors"
	"fmt"

	bookingRepo "github.com/Hiteshmehtaa/yann-app-sub003/database/repository/booking"
	requestRepo "github.com/Hiteshmehtaa/yann-app-sub003/database/repository/request"
	"github.com/Hiteshmehtaa/yann-app-sub003/models"
	"github.com/Hiteshmehtaa/yann-app-sub003/services/events"
	"github.com/Hiteshmehtaa/yann-app-sub003/services/notification"
	"github.com/Hiteshmehtaa/yann-app-sub003/services/pricing"

	"go.uber.org/zap"
)

// ProposeNegotiation opens a counter-offer on a pending booking. Only one
// proposal can await the resident at a time.
func (s *DefaultBookingService) ProposeNegotiation(ctx context.Context, in ProposeInput) (*models.Negotiation, error) {
	if in.ProposedAmount <= 0 {
		return nil, NewValidationError("proposedAmount", "proposedAmount must be greater than zero")
	}
	b, err := s.load(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	provider, err := s.loadProvider(ctx, in.ProviderID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOpen(ctx, b); err != nil {
		return nil, err
	}
	if !provider.Offers(b.ServiceName) {
		return nil, NewNotEligibleError(in.ProviderID, b.ServiceName)
	}
	if in.ProviderName == "" {
		in.ProviderName = provider.Name
	}

	n := models.Negotiation{
		IsActive:       true,
		ProposedAmount: pricing.Round2(in.ProposedAmount),
		ProviderID:     in.ProviderID,
		ProviderName:   in.ProviderName,
		Note:           in.Note,
		Status:         models.NegotiationPending,
		ProposedAt:     s.now(),
	}
	updated, err := s.bookings.OpenNegotiation(ctx, b.ID, n)
	if errors.Is(err, bookingRepo.ErrPreconditionFailed) {
		current, loadErr := s.load(ctx, b.ID)
		if loadErr != nil {
			return nil, loadErr
		}
		if current.Status != models.StatusPending {
			return nil, NewAlreadyResolvedError()
		}
		return nil, NewNegotiationActiveError()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open negotiation on %s: %w", b.ID, err)
	}

	log := s.logger.With(zap.String("bookingId", b.ID), zap.String("providerId", in.ProviderID))
	log.Info("Negotiation proposed", zap.Float64("proposedAmount", n.ProposedAmount))

	req, err := s.ensureMirror(ctx, updated)
	if err != nil {
		log.Warn("Failed to create resident request for negotiation", zap.Error(err))
	} else {
		s.syncMirrorNegotiation(ctx, updated)
		if updated.CustomerID != "" {
			s.notify(ctx, notification.NewNegotiationOffer(updated.CustomerID, req.ID, updated, n))
		}
	}

	s.publish(ctx, events.Event{
		Type:      events.NegotiationProposed,
		BookingID: b.ID,
		Status:    updated.Status,
		ActorID:   in.ProviderID,
		Data:      map[string]interface{}{"proposedAmount": n.ProposedAmount},
	})
	return updated.Negotiation, nil
}

// RespondToNegotiation applies the resident's answer. requestID is normally a
// resident request id; a booking id is accepted too. Bookings with a customer
// can only be answered by that customer. Accepting folds into the
// accepted terminal state exactly like AcceptBooking; declining reopens the
// booking to other providers.
func (s *DefaultBookingService) RespondToNegotiation(ctx context.Context, requestID string, action models.NegotiationAction, residentID string) (*models.ResidentRequest, error) {
	if action != models.ActionAccept && action != models.ActionDecline {
		return nil, NewValidationError("action", "action must be accept or decline")
	}

	req, b, err := s.resolveRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != "" && residentID != b.CustomerID {
		return nil, NewForbiddenError("only the resident who created the booking can answer this offer")
	}
	if n := b.Negotiation; n != nil && residentID != "" && residentID == n.ProviderID {
		return nil, NewForbiddenError("a provider cannot answer their own offer")
	}
	if b.Status == models.StatusPending && s.opts.ServerExpiry && !s.now().Before(b.ExpiresAt) {
		// Expiring declines the open offer.
		if _, err := s.expire(ctx, b.ID); err != nil {
			s.logger.Warn("Failed to expire lapsed booking", zap.String("bookingId", b.ID), zap.Error(err))
		}
		return nil, NewNoActiveNegotiationError()
	}
	if !b.HasActiveNegotiation() {
		return nil, NewNoActiveNegotiationError()
	}

	var updated *models.Booking
	if action == models.ActionAccept {
		updated, err = s.acceptNegotiation(ctx, b)
	} else {
		updated, err = s.bookings.CloseNegotiation(ctx, b.ID, models.NegotiationDeclined, s.now())
		if errors.Is(err, bookingRepo.ErrPreconditionFailed) {
			err = NewNoActiveNegotiationError()
		}
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Negotiation resolved",
		zap.String("bookingId", b.ID),
		zap.String("outcome", string(updated.Negotiation.Status)),
	)

	if updated.ResidentRequestID == "" {
		updated.ResidentRequestID = req.ID
	}
	s.syncMirrorNegotiation(ctx, updated)
	if updated.Status == models.StatusAccepted {
		s.afterAccept(ctx, updated, residentID)
	}
	s.notify(ctx, notification.NewNegotiationOutcome(updated, *updated.Negotiation))
	s.publish(ctx, events.Event{
		Type:      events.NegotiationResolved,
		BookingID: b.ID,
		Status:    updated.Status,
		ActorID:   residentID,
		Data:      map[string]interface{}{"outcome": string(updated.Negotiation.Status)},
	})

	// Answer from the booking so a failed mirror write does not show stale data.
	req.Status = updated.Status
	req.Negotiation = updated.Negotiation
	if updated.Status == models.StatusAccepted {
		req.ScheduledFor = updated.Date
		req.ProviderID = updated.AssignedProvider
		req.ProviderName = updated.ProviderName
	}
	req.UpdatedAt = updated.UpdatedAt
	return req, nil
}

func (s *DefaultBookingService) acceptNegotiation(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	n := *b.Negotiation
	now := s.now()
	fields := bookingRepo.StatusFields{
		AssignedProvider: n.ProviderID,
		ProviderName:     n.ProviderName,
		AppendResponse: &models.ProviderResponse{
			ProviderID: n.ProviderID,
			Response:   models.ResponseAccepted,
			Reason:     "negotiated",
			Timestamp:  now,
		},
		CloseNegotiation:         models.NegotiationAccepted,
		RequireActiveNegotiation: true,
		At:                       now,
	}
	if n.ProposedAmount > 0 {
		total := n.ProposedAmount
		fields.TotalPrice = &total
		if b.PaymentPlan != nil {
			plan := pricing.Split(pricing.Round2(total+b.GST), s.pricing.Rules.UpfrontShare)
			plan.InitialPaid = b.PaymentPlan.InitialPaid
			fields.PaymentPlan = &plan
		}
	}

	updated, err := s.bookings.SetStatus(ctx, b.ID, pendingOnly, models.StatusAccepted, fields)
	if errors.Is(err, bookingRepo.ErrPreconditionFailed) {
		current, loadErr := s.load(ctx, b.ID)
		if loadErr != nil {
			return nil, loadErr
		}
		if !current.HasActiveNegotiation() {
			return nil, NewNoActiveNegotiationError()
		}
		return nil, NewAlreadyResolvedError()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to accept negotiation on %s: %w", b.ID, err)
	}
	return updated, nil
}

// resolveRequest finds the resident request and its booking, creating the
// mirror when the caller passed a booking id that has none.
func (s *DefaultBookingService) resolveRequest(ctx context.Context, id string) (*models.ResidentRequest, *models.Booking, error) {
	req, err := s.requests.GetByID(ctx, id)
	switch {
	case err == nil:
		b, err := s.load(ctx, req.BookingID)
		if err != nil {
			return nil, nil, err
		}
		return req, b, nil
	case !errors.Is(err, requestRepo.ErrRequestNotFound):
		return nil, nil, fmt.Errorf("failed to load resident request %s: %w", id, err)
	}

	b, err := s.bookings.GetByID(ctx, id)
	if errors.Is(err, bookingRepo.ErrBookingNotFound) {
		return nil, nil, NewNotFoundError("request", id)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load booking %s: %w", id, err)
	}
	req, err = s.ensureMirror(ctx, b)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve resident request for booking %s: %w", id, err)
	}
	return req, b, nil
}
