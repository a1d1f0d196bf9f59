package dispatch

import (
	"context"
	"fmt"
	"sync"

	providerRepo "github.com/Hiteshmehtaa/yann-app-sub003/database/repository/provider"
	"github.com/Hiteshmehtaa/yann-app-sub003/models"
	"github.com/Hiteshmehtaa/yann-app-sub003/services/notification"

	"go.uber.org/zap"
)

// Result summarises one fan-out. Notified counts successful sends only.
type Result struct {
	Eligible  int      `json:"eligible"`
	Notified  int      `json:"notified"`
	Failed    int      `json:"failed"`
	Providers []string `json:"providers,omitempty"`
}

// Dispatcher offers bookings to eligible providers.
type Dispatcher struct {
	providers providerRepo.ProviderRepository
	notifier  notification.NotificationService
	logger    *zap.Logger
}

func NewDispatcher(providers providerRepo.ProviderRepository, notifier notification.NotificationService, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{providers: providers, notifier: notifier, logger: logger}
}

// EligibleProviders returns active providers listing exactly the booking's
// service name. Names are compared byte for byte.
func (d *Dispatcher) EligibleProviders(ctx context.Context, serviceName string) ([]models.ProviderCatalogEntry, error) {
	candidates, err := d.providers.FindActiveByService(ctx, serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to load providers for %q: %w", serviceName, err)
	}
	eligible := candidates[:0]
	for _, p := range candidates {
		if p.Active && p.Offers(serviceName) {
			eligible = append(eligible, p)
		}
	}
	return eligible, nil
}

// Dispatch sends a booking request to every eligible provider concurrently.
// Individual send failures are logged and counted; only a catalog read error
// is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, b *models.Booking) (Result, error) {
	eligible, err := d.EligibleProviders(ctx, b.ServiceName)
	if err != nil {
		return Result{}, err
	}
	res := Result{Eligible: len(eligible)}
	if len(eligible) == 0 {
		d.logger.Warn("No eligible providers for booking",
			zap.String("bookingId", b.ID),
			zap.String("serviceName", b.ServiceName),
		)
		return res, nil
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, p := range eligible {
		wg.Add(1)
		go func(providerID string) {
			defer wg.Done()
			err := d.notifier.Notify(ctx, notification.NewBookingRequest(providerID, b))

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed++
				d.logger.Warn("Failed to notify provider",
					zap.String("bookingId", b.ID),
					zap.String("providerId", providerID),
					zap.Error(err),
				)
				return
			}
			res.Notified++
			res.Providers = append(res.Providers, providerID)
		}(p.ID)
	}
	wg.Wait()

	d.logger.Info("Booking dispatched",
		zap.String("bookingId", b.ID),
		zap.Int("eligible", res.Eligible),
		zap.Int("notified", res.Notified),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

// Buzz re-alerts providers about a still-pending booking. The targeted
// provider is buzzed when it is eligible; otherwise every eligible provider
// is. Providers that already rejected the booking are skipped.
func (d *Dispatcher) Buzz(ctx context.Context, b *models.Booking) (Result, error) {
	eligible, err := d.EligibleProviders(ctx, b.ServiceName)
	if err != nil {
		return Result{}, err
	}

	rejected := make(map[string]bool)
	for _, r := range b.ProviderResponses {
		if r.Response == models.ResponseRejected {
			rejected[r.ProviderID] = true
		}
	}

	var targets []string
	for _, p := range eligible {
		if p.ID == b.ProviderID && !rejected[p.ID] {
			targets = []string{p.ID}
			break
		}
		if !rejected[p.ID] {
			targets = append(targets, p.ID)
		}
	}

	res := Result{Eligible: len(eligible)}
	for _, id := range targets {
		if err := d.notifier.Notify(ctx, notification.NewBuzzer(id, b)); err != nil {
			res.Failed++
			d.logger.Debug("Buzzer send failed", zap.String("providerId", id), zap.Error(err))
			continue
		}
		res.Notified++
		res.Providers = append(res.Providers, id)
	}
	return res, nil
}
