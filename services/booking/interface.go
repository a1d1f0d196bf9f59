package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/Hiteshmehtaa/yann-app-sub003/database/repository"
	"github.com/Hiteshmehtaa/yann-app-sub003/models"
	"github.com/Hiteshmehtaa/yann-app-sub003/services/dispatch"
	"github.com/Hiteshmehtaa/yann-app-sub003/services/events"
	"github.com/Hiteshmehtaa/yann-app-sub003/services/notification"
	"github.com/Hiteshmehtaa/yann-app-sub003/services/pricing"

	"go.uber.org/zap"
)

// ProposeInput is a provider's counter-offer.
type ProposeInput struct {
	BookingID      string  `json:"-"`
	ProviderID     string  `json:"-"`
	ProviderName   string  `json:"providerName"`
	ProposedAmount float64 `json:"proposedAmount"`
	Note           string  `json:"note"`
}

// BookingService is the booking lifecycle. Every operation takes the acting
// identity explicitly.
type BookingService interface {
	CreateBooking(ctx context.Context, actorID string, draft models.BookingDraft) (*models.CreateBookingResult, error)
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)

	AcceptBooking(ctx context.Context, bookingID, providerID, providerName string) (*models.Booking, error)
	RejectBooking(ctx context.Context, bookingID, providerID, reason string) (*models.Booking, error)
	CompleteBooking(ctx context.Context, bookingID, providerID string) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID, actorID string) (*models.Booking, error)

	ExpireBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	SweepExpired(ctx context.Context, limit int) (int, error)

	PollBookingStatus(ctx context.Context, bookingID, requesterID string) (*models.BookingStatusView, error)
	SendBuzzer(ctx context.Context, bookingID string) error
	DeliverBuzzer(ctx context.Context, bookingID string) error

	ProposeNegotiation(ctx context.Context, in ProposeInput) (*models.Negotiation, error)
	RespondToNegotiation(ctx context.Context, requestID string, action models.NegotiationAction, residentID string) (*models.ResidentRequest, error)
}

// Dispatcher fans bookings out to providers.
type Dispatcher interface {
	Dispatch(ctx context.Context, b *models.Booking) (dispatch.Result, error)
	Buzz(ctx context.Context, b *models.Booking) (dispatch.Result, error)
}

// TaskScheduler queues delayed booking work.
type TaskScheduler interface {
	ScheduleExpiry(ctx context.Context, bookingID string, at time.Time) error
	EnqueueBuzzer(ctx context.Context, bookingID string) error
}

// BuzzerGate rate-limits buzzers per booking across instances.
type BuzzerGate interface {
	Allow(ctx context.Context, bookingID string, interval time.Duration) (bool, error)
}

// Options are the lifecycle timings.
type Options struct {
	ResponseWindow time.Duration
	BuzzerInterval time.Duration
	// ServerExpiry marks pending bookings expired once their window lapses.
	// When false, late accepts succeed.
	ServerExpiry bool
}

// Deps are the collaborators of DefaultBookingService. Tasks and BuzzerGate
// are optional.
type Deps struct {
	Stores     *repository.Stores
	Pricing    *pricing.Engine
	Dispatcher Dispatcher
	Notifier   notification.NotificationService
	Events     events.Publisher
	Tasks      TaskScheduler
	BuzzerGate BuzzerGate
	Logger     *zap.Logger
	Now        func() time.Time
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	bookings  repository.BookingRepository
	requests  repository.RequestRepository
	providers repository.ProviderRepository
	wallets   repository.WalletRepository

	pricing    *pricing.Engine
	dispatcher Dispatcher
	notifier   notification.NotificationService
	events     events.Publisher
	tasks      TaskScheduler
	buzzerGate BuzzerGate
	logger     *zap.Logger
	now        func() time.Time

	opts Options
}

func NewDefaultBookingService(deps Deps, opts Options) (*DefaultBookingService, error) {
	if deps.Stores == nil || deps.Stores.Bookings == nil || deps.Stores.Requests == nil ||
		deps.Stores.Providers == nil || deps.Stores.Wallets == nil {
		return nil, fmt.Errorf("booking service initialization error: missing repository")
	}
	if deps.Dispatcher == nil || deps.Notifier == nil {
		return nil, fmt.Errorf("booking service initialization error: dispatcher or notifier is nil")
	}
	if deps.Pricing == nil {
		deps.Pricing = pricing.NewEngine(pricing.DefaultRules())
	}
	if deps.Events == nil {
		deps.Events = events.NopPublisher{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if opts.ResponseWindow <= 0 {
		opts.ResponseWindow = 180 * time.Second
	}
	if opts.BuzzerInterval <= 0 {
		opts.BuzzerInterval = 30 * time.Second
	}

	return &DefaultBookingService{
		bookings:   deps.Stores.Bookings,
		requests:   deps.Stores.Requests,
		providers:  deps.Stores.Providers,
		wallets:    deps.Stores.Wallets,
		pricing:    deps.Pricing,
		dispatcher: deps.Dispatcher,
		notifier:   deps.Notifier,
		events:     deps.Events,
		tasks:      deps.Tasks,
		buzzerGate: deps.BuzzerGate,
		logger:     deps.Logger,
		now:        deps.Now,
		opts:       opts,
	}, nil
}
