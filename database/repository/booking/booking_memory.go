package bookingRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Hiteshmehtaa/yann-app-sub003/models"
)

// MemoryBookingRepo keeps bookings in process. Each method holds the lock for
// the whole check-then-write, which gives it the same compare-and-swap
// semantics as the Mongo filters.
type MemoryBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
}

func NewMemoryBookingRepo() *MemoryBookingRepo {
	return &MemoryBookingRepo{bookings: make(map[string]*models.Booking)}
}

func (r *MemoryBookingRepo) Create(_ context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bookings[booking.ID]; exists {
		return fmt.Errorf("error creating booking: duplicate id %s", booking.ID)
	}
	r.bookings[booking.ID] = cloneBooking(booking)
	return nil
}

func (r *MemoryBookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

func (r *MemoryBookingRepo) AppendProviderResponse(_ context.Context, id string, resp models.ProviderResponse) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	b.ProviderResponses = append(b.ProviderResponses, resp)
	b.UpdatedAt = resp.Timestamp
	b.Version++
	return cloneBooking(b), nil
}

func (r *MemoryBookingRepo) SetStatus(_ context.Context, id string, from []models.BookingStatus, to models.BookingStatus, fields StatusFields) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	if !statusIn(b.Status, from) {
		return nil, ErrPreconditionFailed
	}
	if fields.RequireActiveNegotiation && !b.HasActiveNegotiation() {
		return nil, ErrPreconditionFailed
	}
	applyStatus(b, to, fields)
	return cloneBooking(b), nil
}

func (r *MemoryBookingRepo) OpenNegotiation(_ context.Context, id string, n models.Negotiation) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	if b.Status != models.StatusPending || b.HasActiveNegotiation() {
		return nil, ErrPreconditionFailed
	}
	b.Negotiation = &n
	b.UpdatedAt = n.ProposedAt
	b.Version++
	return cloneBooking(b), nil
}

func (r *MemoryBookingRepo) CloseNegotiation(_ context.Context, id string, outcome models.NegotiationStatus, at time.Time) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	if !b.HasActiveNegotiation() {
		return nil, ErrPreconditionFailed
	}
	b.Negotiation.Close(outcome, at)
	b.UpdatedAt = at
	b.Version++
	return cloneBooking(b), nil
}

func (r *MemoryBookingRepo) LinkResidentRequest(_ context.Context, id, requestID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return false, ErrBookingNotFound
	}
	if b.ResidentRequestID != "" {
		return false, nil
	}
	b.ResidentRequestID = requestID
	b.Version++
	return true, nil
}

func (r *MemoryBookingRepo) ListExpired(_ context.Context, now time.Time, limit int) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []models.Booking
	for _, b := range r.bookings {
		if b.Status == models.StatusPending && !b.ExpiresAt.IsZero() && !b.ExpiresAt.After(now) {
			expired = append(expired, *cloneBooking(b))
		}
	}
	sort.Slice(expired, func(i, j int) bool {
		return expired[i].ExpiresAt.Before(expired[j].ExpiresAt)
	})
	if limit > 0 && len(expired) > limit {
		expired = expired[:limit]
	}
	return expired, nil
}
