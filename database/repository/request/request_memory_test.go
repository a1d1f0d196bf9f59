package requestRepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Hiteshmehtaa/yann-app-sub003/models"
)

func TestMemoryRequestLifecycle(t *testing.T) {
	repo := NewMemoryRequestRepo()
	ctx := context.Background()
	now := time.Now()

	req := &models.ResidentRequest{ID: "r1", BookingID: "b1", Status: models.StatusPending, CreatedAt: now}
	if err := repo.Create(ctx, req); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, &models.ResidentRequest{ID: "r2", BookingID: "b1"}); err == nil {
		t.Fatal("expected a second mirror for the same booking to be rejected")
	}

	if err := repo.UpdateStatus(ctx, "r1", StatusUpdate{Status: models.StatusAccepted, ScheduledFor: "2026-11-02", ProviderID: "p1", At: now}); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	n := &models.Negotiation{IsActive: true, ProposedAmount: 750, Status: models.NegotiationPending}
	if err := repo.SetNegotiation(ctx, "r1", n, now); err != nil {
		t.Fatalf("SetNegotiation: %v", err)
	}
	n.ProposedAmount = 1

	got, err := repo.GetByBookingID(ctx, "b1")
	if err != nil {
		t.Fatalf("GetByBookingID: %v", err)
	}
	if got.Status != models.StatusAccepted || got.ScheduledFor != "2026-11-02" || got.ProviderID != "p1" {
		t.Errorf("status fields not mirrored: %+v", got)
	}
	if got.Negotiation == nil || got.Negotiation.ProposedAmount != 750 {
		t.Errorf("negotiation = %+v, want a stored copy with amount 750", got.Negotiation)
	}
}

func TestMemoryRequestNotFound(t *testing.T) {
	repo := NewMemoryRequestRepo()
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, ErrRequestNotFound) {
		t.Errorf("GetByID err = %v", err)
	}
	if err := repo.UpdateStatus(ctx, "missing", StatusUpdate{}); !errors.Is(err, ErrRequestNotFound) {
		t.Errorf("UpdateStatus err = %v", err)
	}
}
