package bookingRepo

import (
	"context"
	"errors"
	"time"

	"github.com/Hiteshmehtaa/yann-app-sub003/models"
)

var (
	// ErrBookingNotFound is returned when no booking has the requested id.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrPreconditionFailed is returned when a conditional write finds the
	// booking in a different state than the caller expected. Callers must
	// re-read before deciding what happened.
	ErrPreconditionFailed = errors.New("booking precondition failed")
)

// StatusFields are written together with a status transition.
type StatusFields struct {
	AssignedProvider string
	ProviderName     string
	TotalPrice       *float64
	PaymentPlan      *models.PaymentPlan
	// AppendResponse is pushed onto providerResponses in the same write.
	AppendResponse *models.ProviderResponse
	// CloseNegotiation closes an active negotiation with this outcome. An
	// inactive or missing negotiation is left alone.
	CloseNegotiation models.NegotiationStatus
	// RequireActiveNegotiation adds "negotiation is active" to the precondition.
	RequireActiveNegotiation bool
	At                       time.Time
}

// BookingRepository owns Booking persistence. Every mutation is a single
// conditional write on the booking's current state.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// AppendProviderResponse pushes resp without touching status.
	AppendProviderResponse(ctx context.Context, id string, resp models.ProviderResponse) (*models.Booking, error)
	// SetStatus moves the booking to `to` only if its status is one of `from`.
	SetStatus(ctx context.Context, id string, from []models.BookingStatus, to models.BookingStatus, fields StatusFields) (*models.Booking, error)
	// OpenNegotiation starts an episode; requires status pending and no active negotiation.
	OpenNegotiation(ctx context.Context, id string, n models.Negotiation) (*models.Booking, error)
	// CloseNegotiation ends the active episode; requires an active negotiation.
	CloseNegotiation(ctx context.Context, id string, outcome models.NegotiationStatus, at time.Time) (*models.Booking, error)
	// LinkResidentRequest records the mirror id; reports false if one was already linked.
	LinkResidentRequest(ctx context.Context, id, requestID string) (bool, error)
	// ListExpired returns pending bookings whose response window closed at or before now.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]models.Booking, error)
}

func statusIn(s models.BookingStatus, from []models.BookingStatus) bool {
	for _, f := range from {
		if s == f {
			return true
		}
	}
	return false
}

// applyStatus mutates b in place the same way the Mongo pipeline does.
func applyStatus(b *models.Booking, to models.BookingStatus, fields StatusFields) {
	at := fields.At
	b.Status = to
	b.UpdatedAt = at
	b.Version++

	if fields.AssignedProvider != "" {
		b.AssignedProvider = fields.AssignedProvider
	}
	if fields.ProviderName != "" {
		b.ProviderName = fields.ProviderName
	}
	if fields.TotalPrice != nil {
		b.TotalPrice = *fields.TotalPrice
	}
	if fields.PaymentPlan != nil {
		plan := *fields.PaymentPlan
		b.PaymentPlan = &plan
	}
	if fields.AppendResponse != nil {
		b.ProviderResponses = append(b.ProviderResponses, *fields.AppendResponse)
	}
	if fields.CloseNegotiation != "" && b.HasActiveNegotiation() {
		b.Negotiation.Close(fields.CloseNegotiation, at)
	}

	switch to {
	case models.StatusAccepted:
		b.AcceptedAt = &at
	case models.StatusCompleted:
		b.CompletedAt = &at
	case models.StatusCancelled:
		b.CancelledAt = &at
	}
}

func cloneBooking(b *models.Booking) *models.Booking {
	if b == nil {
		return nil
	}
	c := *b
	if b.Extras != nil {
		c.Extras = append([]models.Extra(nil), b.Extras...)
	}
	if b.ProviderResponses != nil {
		c.ProviderResponses = append([]models.ProviderResponse(nil), b.ProviderResponses...)
	}
	if b.Negotiation != nil {
		n := *b.Negotiation
		if n.RespondedAt != nil {
			at := *n.RespondedAt
			n.RespondedAt = &at
		}
		c.Negotiation = &n
	}
	if b.PaymentPlan != nil {
		p := *b.PaymentPlan
		c.PaymentPlan = &p
	}
	if b.DriverDetails != nil {
		d := *b.DriverDetails
		c.DriverDetails = &d
	}
	c.AcceptedAt = cloneTime(b.AcceptedAt)
	c.CompletedAt = cloneTime(b.CompletedAt)
	c.CancelledAt = cloneTime(b.CancelledAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
