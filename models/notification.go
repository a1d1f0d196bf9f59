package models

import "time"

// Notification types sent by the booking core.
const (
	NotifyNewBooking         = "booking_request"
	NotifyBuzzer             = "booking_buzzer"
	NotifyBookingAccepted    = "booking_accepted"
	NotifyBookingExpired     = "booking_expired"
	NotifyNegotiationOffer   = "negotiation_offer"
	NotifyNegotiationOutcome = "negotiation_outcome"
)

type Notification struct {
	ID        string            `json:"id"`
	Target    string            `json:"target"` // "resident" or "provider"
	TargetID  string            `json:"targetId"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data"`
	CreatedAt time.Time         `json:"createdAt"`
}

// BookingTaskPayload is carried by queued booking tasks.
type BookingTaskPayload struct {
	BookingID  string `json:"bookingId"`
	ProviderID string `json:"providerId,omitempty"`
}
