package requestRepo

import (
	"context"
	"errors"
	"time"

	"github.com/Hiteshmehtaa/yann-app-sub003/models"
)

var ErrRequestNotFound = errors.New("resident request not found")

// StatusUpdate mirrors a booking transition onto its resident request. Empty
// fields are left unchanged.
type StatusUpdate struct {
	Status       models.BookingStatus
	ScheduledFor string
	ProviderID   string
	ProviderName string
	At           time.Time
}

// RequestRepository stores the resident-facing mirror of bookings.
type RequestRepository interface {
	Create(ctx context.Context, req *models.ResidentRequest) error
	GetByID(ctx context.Context, id string) (*models.ResidentRequest, error)
	GetByBookingID(ctx context.Context, bookingID string) (*models.ResidentRequest, error)
	UpdateStatus(ctx context.Context, id string, update StatusUpdate) error
	// SetNegotiation overwrites the mirrored negotiation.
	SetNegotiation(ctx context.Context, id string, n *models.Negotiation, at time.Time) error
}
