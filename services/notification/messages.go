package notification

import (
	"fmt"
	"time"

	"github.com/Hiteshmehtaa/yann-app-sub003/models"

	"github.com/google/uuid"
)

func newNotification(target, targetID, kind, title, body string, b *models.Booking) models.Notification {
	return models.Notification{
		ID:       uuid.New().String(),
		Target:   target,
		TargetID: targetID,
		Type:     kind,
		Title:    title,
		Body:     body,
		Data: map[string]string{
			"bookingId":   b.ID,
			"serviceName": b.ServiceName,
		},
		CreatedAt: time.Now(),
	}
}

// NewBookingRequest offers b to one provider.
func NewBookingRequest(providerID string, b *models.Booking) models.Notification {
	n := newNotification(TargetProvider, providerID, models.NotifyNewBooking,
		"New booking request",
		fmt.Sprintf("%s on %s at %s. Accept before it expires.", b.ServiceName, b.Date, b.StartTime),
		b)
	n.Data["expiresAt"] = b.ExpiresAt.UTC().Format(time.RFC3339)
	n.Data["totalPrice"] = fmt.Sprintf("%.2f", b.TotalPrice)
	return n
}

// NewBuzzer re-alerts a provider about a still-pending booking.
func NewBuzzer(providerID string, b *models.Booking) models.Notification {
	n := newNotification(TargetProvider, providerID, models.NotifyBuzzer,
		"Booking still waiting",
		fmt.Sprintf("A resident is waiting for someone to accept %s.", b.ServiceName),
		b)
	n.Data["expiresAt"] = b.ExpiresAt.UTC().Format(time.RFC3339)
	return n
}

// NewBookingAccepted tells the resident who took the job.
func NewBookingAccepted(residentID string, b *models.Booking) models.Notification {
	return newNotification(TargetResident, residentID, models.NotifyBookingAccepted,
		"Booking confirmed",
		fmt.Sprintf("%s accepted your %s booking.", b.ProviderName, b.ServiceName),
		b)
}

// NewBookingExpired tells the resident nobody accepted in time.
func NewBookingExpired(residentID string, b *models.Booking) models.Notification {
	return newNotification(TargetResident, residentID, models.NotifyBookingExpired,
		"No provider available",
		fmt.Sprintf("No provider accepted your %s booking in time.", b.ServiceName),
		b)
}

// NewNegotiationOffer carries a provider's counter-offer to the resident.
func NewNegotiationOffer(residentID, requestID string, b *models.Booking, n models.Negotiation) models.Notification {
	out := newNotification(TargetResident, residentID, models.NotifyNegotiationOffer,
		"New price proposed",
		fmt.Sprintf("%s proposed %.2f for %s.", n.ProviderName, n.ProposedAmount, b.ServiceName),
		b)
	out.Data["requestId"] = requestID
	out.Data["proposedAmount"] = fmt.Sprintf("%.2f", n.ProposedAmount)
	return out
}

// NewNegotiationOutcome tells the proposing provider how the resident answered.
func NewNegotiationOutcome(b *models.Booking, n models.Negotiation) models.Notification {
	title := "Offer declined"
	if n.Status == models.NegotiationAccepted {
		title = "Offer accepted"
	}
	out := newNotification(TargetProvider, n.ProviderID, models.NotifyNegotiationOutcome,
		title,
		fmt.Sprintf("The resident answered your offer of %.2f for %s.", n.ProposedAmount, b.ServiceName),
		b)
	out.Data["outcome"] = string(n.Status)
	return out
}
