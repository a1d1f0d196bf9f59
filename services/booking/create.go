package booking

import (
	"context"
	"errors"
	"fmt"

	bookingRepo "github.com/Hiteshmehtaa/yann-app-sub003/database/repository/booking"
	providerRepo "github.com/Hiteshmehtaa/yann-app-sub003/database/repository/provider"
	"github.com/Hiteshmehtaa/yann-app-sub003/models"
	"github.com/Hiteshmehtaa/yann-app-sub003/services/events"
	"github.com/Hiteshmehtaa/yann-app-sub003/services/pricing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBooking validates and prices the draft, persists a pending booking and
// dispatches it. Dispatch failures never fail creation.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, actorID string, draft models.BookingDraft) (*models.CreateBookingResult, error) {
	if actorID != "" {
		draft.CustomerID = actorID
	}
	if err := ValidateDraft(&draft); err != nil {
		return nil, err
	}

	quote, err := s.quote(ctx, draft)
	if err != nil {
		return nil, err
	}

	var plan *models.PaymentPlan
	if draft.PaymentMethod == models.PaymentWallet {
		if draft.CustomerID == "" {
			return nil, NewValidationError("customerId", "wallet payment requires a signed-in resident")
		}
		balance, err := s.wallets.GetBalance(ctx, draft.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("failed to read wallet balance: %w", err)
		}
		if pricing.ToCents(balance) < pricing.ToCents(quote.Plan.InitialPayment) {
			return nil, NewInsufficientBalanceError(quote.Plan.InitialPayment, balance)
		}
		p := quote.Plan
		plan = &p
	}

	now := s.now()
	quantity := draft.Quantity
	if quantity < 1 {
		quantity = 1
	}
	b := &models.Booking{
		ID:                uuid.New().String(),
		ServiceID:         draft.ServiceID,
		ServiceName:       draft.ServiceName,
		Category:          draft.Category,
		BillingType:       draft.BillingType,
		Quantity:          quantity,
		CustomerID:        draft.CustomerID,
		CustomerName:      draft.CustomerName,
		CustomerPhone:     draft.CustomerPhone,
		Address:           draft.Address,
		ProviderID:        draft.ProviderID,
		Date:              draft.Date,
		StartTime:         draft.StartTime,
		EndTime:           draft.EndTime,
		BasePrice:         quote.BasePrice,
		Extras:            draft.Extras,
		GST:               quote.GST,
		TotalPrice:        quote.Total,
		PaymentMethod:     draft.PaymentMethod,
		PaymentPlan:       plan,
		DriverDetails:     quote.DriverDetails,
		Status:            models.StatusPending,
		ProviderResponses: []models.ProviderResponse{},
		ExpiresAt:         now.Add(s.opts.ResponseWindow),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	log := s.logger.With(zap.String("bookingId", b.ID))
	log.Info("Booking created",
		zap.String("serviceName", b.ServiceName),
		zap.Float64("grandTotal", quote.GrandTotal),
	)

	if s.opts.ServerExpiry && s.tasks != nil {
		if err := s.tasks.ScheduleExpiry(ctx, b.ID, b.ExpiresAt); err != nil {
			log.Warn("Failed to schedule expiry; sweep will catch it", zap.Error(err))
		}
	}
	if b.CustomerID != "" {
		if _, err := s.ensureMirror(ctx, b); err != nil {
			log.Warn("Failed to create resident request", zap.Error(err))
		}
	}

	result, err := s.dispatcher.Dispatch(ctx, b)
	if err != nil {
		log.Warn("Dispatch failed", zap.Error(err))
	}

	s.publish(ctx, events.Event{
		Type:      events.BookingCreated,
		BookingID: b.ID,
		Status:    b.Status,
		ActorID:   b.CustomerID,
		Data: map[string]interface{}{
			"serviceName":       b.ServiceName,
			"notifiedProviders": result.Notified,
		},
	})

	return &models.CreateBookingResult{
		BookingID:         b.ID,
		ComputedTotal:     quote.Total,
		GST:               quote.GST,
		GrandTotal:        quote.GrandTotal,
		PaymentPlan:       plan,
		DriverDetails:     quote.DriverDetails,
		NotifiedProviders: result.Notified,
		ExpiresAt:         b.ExpiresAt,
	}, nil
}

// quote resolves the named provider's rate and prices the draft.
func (s *DefaultBookingService) quote(ctx context.Context, draft models.BookingDraft) (*pricing.Quote, error) {
	provider, err := s.providers.GetByID(ctx, draft.ProviderID)
	if errors.Is(err, providerRepo.ErrProviderNotFound) {
		return nil, NewUnpricedServiceError(fmt.Sprintf("provider %s not found", draft.ProviderID))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load provider: %w", err)
	}

	base, hourly, err := pricing.ResolveRate(provider, draft.ServiceName)
	if err != nil {
		return nil, NewUnpricedServiceError(err.Error())
	}

	quote, err := s.pricing.Price(pricing.Input{
		ServiceName: draft.ServiceName,
		Category:    draft.Category,
		BillingType: draft.BillingType,
		Quantity:    draft.Quantity,
		BasePrice:   base,
		HourlyRate:  hourly,
		StartTime:   draft.StartTime,
		EndTime:     draft.EndTime,
		Extras:      draft.Extras,
		GSTRate:     draft.GSTRate,
	})
	switch {
	case errors.Is(err, pricing.ErrInvalidSchedule):
		return nil, NewValidationError("endTime", err.Error())
	case errors.Is(err, pricing.ErrUnpricedService):
		return nil, NewUnpricedServiceError(err.Error())
	case err != nil:
		return nil, err
	}
	return quote, nil
}

func (s *DefaultBookingService) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.load(ctx, bookingID)
}

// load maps a missing booking onto the NotFound business error.
func (s *DefaultBookingService) load(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if errors.Is(err, bookingRepo.ErrBookingNotFound) {
		return nil, NewNotFoundError("booking", bookingID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking %s: %w", bookingID, err)
	}
	return b, nil
}

func (s *DefaultBookingService) publish(ctx context.Context, e events.Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = s.now()
	}
	if err := s.events.Publish(ctx, e); err != nil {
		s.logger.Warn("Failed to publish booking event",
			zap.String("type", e.Type),
			zap.String("bookingId", e.BookingID),
			zap.Error(err),
		)
	}
}

// notify sends a push and logs failures; pushes never fail an operation.
func (s *DefaultBookingService) notify(ctx context.Context, n models.Notification) {
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Warn("Notification failed",
			zap.String("type", n.Type),
			zap.String("target", n.Target),
			zap.String("targetId", n.TargetID),
			zap.Error(err),
		)
	}
}
