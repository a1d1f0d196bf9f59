package booking

import (
	"context"
	"errors"
	"fmt"
	"math"

	bookingRepo "github.com/Hiteshmehtaa/yann-app-sub003/database/repository/booking"
	requestRepo "github.com/Hiteshmehtaa/yann-app-sub003/database/repository/request"
	"github.com/Hiteshmehtaa/yann-app-sub003/models"
	"github.com/Hiteshmehtaa/yann-app-sub003/services/events"
	"github.com/Hiteshmehtaa/yann-app-sub003/services/notification"

	"go.uber.org/zap"
)

// ExpireBooking marks a lapsed pending booking expired. Bookings that are
// resolved or still inside their window are returned unchanged, so queued
// expiry tasks are safe to run late or twice.
func (s *DefaultBookingService) ExpireBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !s.opts.ServerExpiry || b.Status != models.StatusPending || s.now().Before(b.ExpiresAt) {
		return b, nil
	}
	return s.expire(ctx, bookingID)
}

func (s *DefaultBookingService) expire(ctx context.Context, bookingID string) (*models.Booking, error) {
	expired, err := s.bookings.SetStatus(ctx, bookingID, pendingOnly, models.StatusExpired, bookingRepo.StatusFields{
		CloseNegotiation: models.NegotiationDeclined,
		At:               s.now(),
	})
	if errors.Is(err, bookingRepo.ErrPreconditionFailed) {
		// Someone resolved it first; report the current state.
		return s.load(ctx, bookingID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to expire booking %s: %w", bookingID, err)
	}

	s.logger.Info("Booking expired", zap.String("bookingId", bookingID))
	s.syncMirror(ctx, expired, requestRepo.StatusUpdate{Status: models.StatusExpired})
	if expired.Negotiation != nil {
		s.syncMirrorNegotiation(ctx, expired)
	}
	if expired.CustomerID != "" {
		s.notify(ctx, notification.NewBookingExpired(expired.CustomerID, expired))
	}
	s.publish(ctx, events.Event{Type: events.BookingExpired, BookingID: bookingID, Status: expired.Status})
	return expired, nil
}

// SweepExpired expires every lapsed pending booking, up to limit per call. It
// backs up the per-booking expiry tasks.
func (s *DefaultBookingService) SweepExpired(ctx context.Context, limit int) (int, error) {
	if !s.opts.ServerExpiry {
		return 0, nil
	}
	lapsed, err := s.bookings.ListExpired(ctx, s.now(), limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list lapsed bookings: %w", err)
	}

	count := 0
	for _, b := range lapsed {
		if ctx.Err() != nil {
			return count, ctx.Err()
		}
		updated, err := s.expire(ctx, b.ID)
		if err != nil {
			s.logger.Warn("Sweep failed to expire booking", zap.String("bookingId", b.ID), zap.Error(err))
			continue
		}
		if updated.Status == models.StatusExpired {
			count++
		}
	}
	return count, nil
}

// PollBookingStatus is what a waiting requester calls every few seconds.
func (s *DefaultBookingService) PollBookingStatus(ctx context.Context, bookingID, requesterID string) (*models.BookingStatusView, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if requesterID != "" && b.CustomerID != "" && requesterID != b.CustomerID && requesterID != b.AssignedProvider {
		return nil, NewForbiddenError("booking belongs to another resident")
	}
	if b.Status == models.StatusPending && s.opts.ServerExpiry && !s.now().Before(b.ExpiresAt) {
		expired, err := s.expire(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		b = expired
	}

	view := &models.BookingStatusView{
		BookingID:        b.ID,
		Status:           b.Status,
		AssignedProvider: b.AssignedProvider,
		ProviderName:     b.ProviderName,
	}
	if b.Status == models.StatusPending {
		remaining := b.ExpiresAt.Sub(s.now()).Seconds()
		view.RemainingSeconds = int(math.Max(0, math.Ceil(remaining)))
	}
	return view, nil
}

// SendBuzzer asks for a re-notification of a pending booking. It is fire and
// forget: delivery happens on the task queue, or in the background when no
// queue is configured, and repeated calls inside one buzzer interval are
// collapsed.
func (s *DefaultBookingService) SendBuzzer(ctx context.Context, bookingID string) error {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.Status != models.StatusPending {
		return nil
	}

	log := s.logger.With(zap.String("bookingId", bookingID))
	if s.buzzerGate != nil {
		allowed, err := s.buzzerGate.Allow(ctx, bookingID, s.opts.BuzzerInterval)
		if err != nil {
			log.Warn("Buzzer gate unavailable; sending anyway", zap.Error(err))
		} else if !allowed {
			log.Debug("Buzzer collapsed into the previous one")
			return nil
		}
	}

	if s.tasks != nil {
		if err := s.tasks.EnqueueBuzzer(ctx, bookingID); err != nil {
			log.Warn("Failed to enqueue buzzer", zap.Error(err))
		}
		return nil
	}
	go func() {
		if err := s.DeliverBuzzer(context.Background(), bookingID); err != nil {
			log.Warn("Buzzer delivery failed", zap.Error(err))
		}
	}()
	return nil
}

// DeliverBuzzer sends the buzzer notifications for a booking that is still pending.
func (s *DefaultBookingService) DeliverBuzzer(ctx context.Context, bookingID string) error {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.Status != models.StatusPending {
		return nil
	}
	res, err := s.dispatcher.Buzz(ctx, b)
	if err != nil {
		return err
	}
	s.logger.Debug("Buzzer delivered",
		zap.String("bookingId", bookingID),
		zap.Int("notified", res.Notified),
		zap.Int("failed", res.Failed),
	)
	return nil
}
