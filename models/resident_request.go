package models

import "time"

// ResidentRequest is the resident-facing mirror of a Booking. It is kept
// eventually consistent with the booking by best-effort writes.
type ResidentRequest struct {
	ID           string        `bson:"id" json:"id"`
	BookingID    string        `bson:"bookingId" json:"bookingId"`
	ResidentID   string        `bson:"residentId,omitempty" json:"residentId,omitempty"`
	ServiceName  string        `bson:"serviceName" json:"serviceName"`
	Status       BookingStatus `bson:"status" json:"status"`
	ScheduledFor string        `bson:"scheduledFor,omitempty" json:"scheduledFor,omitempty"`
	ProviderID   string        `bson:"providerId,omitempty" json:"providerId,omitempty"`
	ProviderName string        `bson:"providerName,omitempty" json:"providerName,omitempty"`
	Negotiation  *Negotiation  `bson:"negotiation,omitempty" json:"negotiation,omitempty"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// NegotiationAction is the resident's answer to a counter-offer.
type NegotiationAction string

const (
	ActionAccept  NegotiationAction = "accept"
	ActionDecline NegotiationAction = "decline"
)
