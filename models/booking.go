package models

import "time"

// BookingStatus is the lifecycle state of a Booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusAccepted  BookingStatus = "accepted"
	StatusRejected  BookingStatus = "rejected"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
	StatusExpired   BookingStatus = "expired"
)

// IsTerminal reports whether no further accept can succeed from s.
func (s BookingStatus) IsTerminal() bool {
	return s != StatusPending
}

// ServiceCategory decides which pricing rule applies.
type ServiceCategory string

const (
	CategoryOrdinary     ServiceCategory = "ordinary"
	CategoryHourlyDriver ServiceCategory = "hourly_driver"
)

type BillingType string

const (
	BillingOneTime BillingType = "one_time"
	BillingMonthly BillingType = "monthly"
)

const (
	PaymentCash   = "cash"
	PaymentWallet = "wallet"
	PaymentCard   = "card"
)

// ResponseKind is a provider's answer to a dispatched booking.
type ResponseKind string

const (
	ResponseAccepted ResponseKind = "accepted"
	ResponseRejected ResponseKind = "rejected"
)

// ProviderResponse is one entry of the append-only response log.
type ProviderResponse struct {
	ProviderID string       `bson:"providerId" json:"providerId"`
	Response   ResponseKind `bson:"response" json:"response"`
	Reason     string       `bson:"reason,omitempty" json:"reason,omitempty"`
	Timestamp  time.Time    `bson:"timestamp" json:"timestamp"`
}

type NegotiationStatus string

const (
	NegotiationPending  NegotiationStatus = "pending"
	NegotiationAccepted NegotiationStatus = "accepted"
	NegotiationDeclined NegotiationStatus = "declined"
)

// Negotiation is a provider's counter-offer on the listed price.
type Negotiation struct {
	IsActive       bool              `bson:"isActive" json:"isActive"`
	ProposedAmount float64           `bson:"proposedAmount" json:"proposedAmount"`
	ProviderID     string            `bson:"providerId" json:"providerId"`
	ProviderName   string            `bson:"providerName" json:"providerName"`
	Note           string            `bson:"note,omitempty" json:"note,omitempty"`
	Status         NegotiationStatus `bson:"status" json:"status"`
	ProposedAt     time.Time         `bson:"proposedAt" json:"proposedAt"`
	RespondedAt    *time.Time        `bson:"respondedAt,omitempty" json:"respondedAt,omitempty"`
}

// Close ends the episode with the given outcome.
func (n *Negotiation) Close(outcome NegotiationStatus, at time.Time) {
	n.IsActive = false
	n.Status = outcome
	n.RespondedAt = &at
}

type Extra struct {
	Name  string  `bson:"name" json:"name"`
	Price float64 `bson:"price" json:"price"`
}

// DriverDetails is the hourly breakdown for hourly-driver bookings. Computed at
// creation and never rewritten.
type DriverDetails struct {
	StartTime          string  `bson:"startTime" json:"startTime"`
	EndTime            string  `bson:"endTime" json:"endTime"`
	TotalHours         float64 `bson:"totalHours" json:"totalHours"`
	BaseHours          float64 `bson:"baseHours" json:"baseHours"`
	HourlyRate         float64 `bson:"hourlyRate" json:"hourlyRate"`
	OvertimeHours      float64 `bson:"overtimeHours" json:"overtimeHours"`
	OvertimeMultiplier float64 `bson:"overtimeMultiplier" json:"overtimeMultiplier"`
	BaseCost           float64 `bson:"baseCost" json:"baseCost"`
	OvertimeCost       float64 `bson:"overtimeCost" json:"overtimeCost"`
}

// PaymentPlan is the staged wallet split of the grand total.
type PaymentPlan struct {
	InitialPayment    float64 `bson:"initialPayment" json:"initialPayment"`
	CompletionPayment float64 `bson:"completionPayment" json:"completionPayment"`
	InitialPaid       bool    `bson:"initialPaid" json:"initialPaid"`
}

// Booking is a single service request moving through the lifecycle.
type Booking struct {
	ID          string          `bson:"id" json:"id"`
	ServiceID   string          `bson:"serviceId" json:"serviceId"`
	ServiceName string          `bson:"serviceName" json:"serviceName"`
	Category    ServiceCategory `bson:"category" json:"category"`
	BillingType BillingType     `bson:"billingType" json:"billingType"`
	Quantity    int             `bson:"quantity" json:"quantity"`

	CustomerID       string `bson:"customerId,omitempty" json:"customerId,omitempty"`
	CustomerName     string `bson:"customerName" json:"customerName"`
	CustomerPhone    string `bson:"customerPhone" json:"customerPhone"`
	Address          string `bson:"address" json:"address"`
	ProviderID       string `bson:"providerId" json:"providerId"`
	AssignedProvider string `bson:"assignedProvider,omitempty" json:"assignedProvider,omitempty"`
	ProviderName     string `bson:"providerName,omitempty" json:"providerName,omitempty"`

	Date      string `bson:"date" json:"date"`
	StartTime string `bson:"startTime" json:"startTime"`
	EndTime   string `bson:"endTime,omitempty" json:"endTime,omitempty"`

	BasePrice     float64        `bson:"basePrice" json:"basePrice"`
	Extras        []Extra        `bson:"extras,omitempty" json:"extras,omitempty"`
	GST           float64        `bson:"gst" json:"gst"`
	TotalPrice    float64        `bson:"totalPrice" json:"totalPrice"`
	PaymentMethod string         `bson:"paymentMethod" json:"paymentMethod"`
	PaymentPlan   *PaymentPlan   `bson:"paymentPlan,omitempty" json:"paymentPlan,omitempty"`
	DriverDetails *DriverDetails `bson:"driverDetails,omitempty" json:"driverDetails,omitempty"`

	Status            BookingStatus      `bson:"status" json:"status"`
	ProviderResponses []ProviderResponse `bson:"providerResponses" json:"providerResponses"`
	Negotiation       *Negotiation       `bson:"negotiation,omitempty" json:"negotiation,omitempty"`
	ResidentRequestID string             `bson:"residentRequestId,omitempty" json:"residentRequestId,omitempty"`

	Version     int        `bson:"version" json:"version"`
	ExpiresAt   time.Time  `bson:"expiresAt" json:"expiresAt"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`
	AcceptedAt  *time.Time `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CancelledAt *time.Time `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
}

// GrandTotal is the total plus tax, the figure the resident pays.
func (b *Booking) GrandTotal() float64 {
	return b.TotalPrice + b.GST
}

// HasActiveNegotiation reports whether a counter-offer awaits the resident.
func (b *Booking) HasActiveNegotiation() bool {
	return b.Negotiation != nil && b.Negotiation.IsActive
}

// BookingDraft is the resident's create request before pricing.
type BookingDraft struct {
	ServiceID     string          `json:"serviceId"`
	ServiceName   string          `json:"serviceName"`
	Category      ServiceCategory `json:"category"`
	BillingType   BillingType     `json:"billingType"`
	Quantity      int             `json:"quantity"`
	CustomerID    string          `json:"customerId"`
	CustomerName  string          `json:"customerName"`
	CustomerPhone string          `json:"customerPhone"`
	Address       string          `json:"address"`
	Date          string          `json:"date"`
	StartTime     string          `json:"startTime"`
	EndTime       string          `json:"endTime"`
	ProviderID    string          `json:"providerId"`
	Extras        []Extra         `json:"extras"`
	PaymentMethod string          `json:"paymentMethod"`
	GSTRate       *float64        `json:"gstRate,omitempty"`
}

// CreateBookingResult is returned to the resident after creation.
type CreateBookingResult struct {
	BookingID         string         `json:"bookingId"`
	ComputedTotal     float64        `json:"computedTotal"`
	GST               float64        `json:"gst"`
	GrandTotal        float64        `json:"grandTotal"`
	PaymentPlan       *PaymentPlan   `json:"paymentPlan,omitempty"`
	DriverDetails     *DriverDetails `json:"driverDetails,omitempty"`
	NotifiedProviders int            `json:"notifiedProviders"`
	ExpiresAt         time.Time      `json:"expiresAt"`
}

// BookingStatusView is what a waiting requester polls.
type BookingStatusView struct {
	BookingID        string        `json:"bookingId"`
	Status           BookingStatus `json:"status"`
	RemainingSeconds int           `json:"remainingSeconds"`
	AssignedProvider string        `json:"assignedProvider,omitempty"`
	ProviderName     string        `json:"providerName,omitempty"`
}
