package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	providerRepo "github.com/Hiteshmehtaa/yann-app-sub003/database/repository/provider"
	residentRepo "github.com/Hiteshmehtaa/yann-app-sub003/database/repository/resident"
	"github.com/Hiteshmehtaa/yann-app-sub003/models"

	"firebase.google.com/go/v4/messaging"
)

type fakePusher struct {
	mu   sync.Mutex
	sent []*messaging.Message
	err  error
}

func (f *fakePusher) Send(_ context.Context, msg *messaging.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "projects/x/messages/1", nil
}

func newService(t *testing.T, pusher Pusher) *DefaultNotificationService {
	t.Helper()
	providers := providerRepo.NewMemoryProviderRepo(
		models.ProviderCatalogEntry{ID: "p1", Name: "Asha", FCMToken: "tok-p1", Active: true},
		models.ProviderCatalogEntry{ID: "p2", Name: "Ravi", Active: true},
	)
	residents := residentRepo.NewMemoryResidentRepo(models.Resident{ID: "r1", FCMToken: "tok-r1"})
	svc, err := NewDefaultNotificationService(providers, residents, pusher, nil)
	if err != nil {
		t.Fatalf("NewDefaultNotificationService: %v", err)
	}
	return svc
}

func sampleBooking() *models.Booking {
	return &models.Booking{
		ID:          "b1",
		ServiceName: "Deep House Cleaning",
		Date:        "2026-11-02",
		StartTime:   "10:00",
		ExpiresAt:   time.Date(2026, 11, 1, 9, 3, 0, 0, time.UTC),
	}
}

func TestNotifyProviderUsesHighPriority(t *testing.T) {
	pusher := &fakePusher{}
	svc := newService(t, pusher)

	if err := svc.Notify(context.Background(), NewBookingRequest("p1", sampleBooking())); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(pusher.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(pusher.sent))
	}
	msg := pusher.sent[0]
	if msg.Token != "tok-p1" {
		t.Errorf("token = %s", msg.Token)
	}
	if msg.Android == nil || msg.Android.Priority != "high" {
		t.Errorf("provider push should be high priority")
	}
	if msg.Data["type"] != models.NotifyNewBooking || msg.Data["role"] != TargetProvider || msg.Data["bookingId"] != "b1" {
		t.Errorf("data = %v", msg.Data)
	}
}

func TestNotifyResident(t *testing.T) {
	pusher := &fakePusher{}
	svc := newService(t, pusher)

	b := sampleBooking()
	b.ProviderName = "Asha"
	if err := svc.Notify(context.Background(), NewBookingAccepted("r1", b)); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if got := pusher.sent[0]; got.Token != "tok-r1" || got.Android != nil {
		t.Errorf("unexpected resident message: %+v", got)
	}
}

func TestNotifyFailures(t *testing.T) {
	svc := newService(t, &fakePusher{})
	ctx := context.Background()

	if err := svc.Notify(ctx, NewBuzzer("p2", sampleBooking())); !errors.Is(err, ErrNoPushTarget) {
		t.Errorf("missing token err = %v, want ErrNoPushTarget", err)
	}
	if err := svc.Notify(ctx, NewBuzzer("ghost", sampleBooking())); !errors.Is(err, providerRepo.ErrProviderNotFound) {
		t.Errorf("unknown provider err = %v", err)
	}

	failing := newService(t, &fakePusher{err: errors.New("unavailable")})
	if err := failing.Notify(ctx, NewBuzzer("p1", sampleBooking())); err == nil {
		t.Error("expected send error to surface")
	}
}

func TestNotifyWithoutPusherLogsOnly(t *testing.T) {
	svc := newService(t, nil)
	if err := svc.Notify(context.Background(), NewBuzzer("p2", sampleBooking())); err != nil {
		t.Fatalf("log-only notify should not fail: %v", err)
	}
}
