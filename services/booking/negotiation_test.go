package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Hiteshmehtaa/yann-app-sub003/models"
	"github.com/Hiteshmehtaa/yann-app-sub003/services/events"
)

func TestNegotiationAccepted(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	id := h.create(t, "r1", sampleDraft())

	n, err := h.svc.ProposeNegotiation(ctx, ProposeInput{BookingID: id, ProviderID: "p-other", ProposedAmount: 449.999, Note: "two rooms only"})
	if err != nil {
		t.Fatalf("ProposeNegotiation: %v", err)
	}
	if !n.IsActive || n.Status != models.NegotiationPending || n.ProposedAmount != 450 || n.ProviderName != "Ravi" {
		t.Fatalf("negotiation = %+v", n)
	}
	if _, err := h.svc.ProposeNegotiation(ctx, ProposeInput{BookingID: id, ProviderID: "p-clean", ProposedAmount: 480}); !errors.Is(err, ErrNegotiationActive) {
		t.Fatalf("second proposal: err = %v, want ErrNegotiationActive", err)
	}

	b := h.booking(t, id)
	if got := h.notifier.targets(models.NotifyNegotiationOffer); len(got) != 1 || got[0] != "r1" {
		t.Errorf("offer notifications = %v, want [r1]", got)
	}

	req, err := h.svc.RespondToNegotiation(ctx, b.ResidentRequestID, models.ActionAccept, "r1")
	if err != nil {
		t.Fatalf("RespondToNegotiation: %v", err)
	}
	if req.Status != models.StatusAccepted || req.ProviderID != "p-other" || req.ScheduledFor != "2026-11-02" {
		t.Errorf("request = %+v", req)
	}

	b = h.booking(t, id)
	if b.Status != models.StatusAccepted || b.AssignedProvider != "p-other" || b.TotalPrice != 450 {
		t.Errorf("booking = %s / %s / %v, want accepted by p-other at 450", b.Status, b.AssignedProvider, b.TotalPrice)
	}
	if b.Negotiation.IsActive || b.Negotiation.Status != models.NegotiationAccepted || b.Negotiation.RespondedAt == nil {
		t.Errorf("negotiation not closed as accepted: %+v", b.Negotiation)
	}
	if got := h.notifier.targets(models.NotifyNegotiationOutcome); len(got) != 1 || got[0] != "p-other" {
		t.Errorf("outcome notifications = %v, want [p-other]", got)
	}

	stored, err := h.stores.Requests.GetByID(ctx, b.ResidentRequestID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != models.StatusAccepted || stored.Negotiation == nil || stored.Negotiation.IsActive {
		t.Errorf("mirror = %+v", stored)
	}

	if _, err := h.svc.AcceptBooking(ctx, id, "p-clean", ""); !errors.Is(err, ErrAlreadyResolved) {
		t.Errorf("accept after negotiated accept: err = %v, want ErrAlreadyResolved", err)
	}
	if _, err := h.svc.RespondToNegotiation(ctx, b.ResidentRequestID, models.ActionAccept, "r1"); !errors.Is(err, ErrNoActiveNegotiation) {
		t.Errorf("second response: err = %v, want ErrNoActiveNegotiation", err)
	}
}

func TestNegotiationDeclinedReopensBooking(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	id := h.create(t, "r1", sampleDraft())

	if _, err := h.svc.ProposeNegotiation(ctx, ProposeInput{BookingID: id, ProviderID: "p-other", ProposedAmount: 450}); err != nil {
		t.Fatalf("ProposeNegotiation: %v", err)
	}
	req, err := h.svc.RespondToNegotiation(ctx, id, models.ActionDecline, "r1")
	if err != nil {
		t.Fatalf("RespondToNegotiation by booking id: %v", err)
	}
	if req.Status != models.StatusPending || req.Negotiation.Status != models.NegotiationDeclined {
		t.Errorf("request = %+v", req)
	}

	b := h.booking(t, id)
	if b.Status != models.StatusPending || b.Negotiation.IsActive || b.TotalPrice != 500 {
		t.Errorf("booking after decline = %s / %+v / %v", b.Status, b.Negotiation, b.TotalPrice)
	}
	if _, err := h.svc.RespondToNegotiation(ctx, req.ID, models.ActionDecline, "r1"); !errors.Is(err, ErrNoActiveNegotiation) {
		t.Errorf("decline twice: err = %v, want ErrNoActiveNegotiation", err)
	}

	if _, err := h.svc.ProposeNegotiation(ctx, ProposeInput{BookingID: id, ProviderID: "p-clean", ProposedAmount: 520}); err != nil {
		t.Fatalf("a new episode should open after a decline: %v", err)
	}
	accepted, err := h.svc.AcceptBooking(ctx, id, "p-noprice", "")
	if err != nil {
		t.Fatalf("AcceptBooking: %v", err)
	}
	if accepted.Negotiation.IsActive || accepted.Negotiation.Status != models.NegotiationAccepted {
		t.Errorf("direct accept must close the open negotiation: %+v", accepted.Negotiation)
	}
	if accepted.TotalPrice != 500 {
		t.Errorf("direct accept kept price %v, want listed 500", accepted.TotalPrice)
	}

	want := []string{
		events.BookingCreated, events.NegotiationProposed, events.NegotiationResolved,
		events.NegotiationProposed, events.BookingAccepted,
	}
	got := h.events.Types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestNegotiationRecomputesWalletPlan(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	h.stores.Wallets.SetBalance("r1", 1000)
	d := sampleDraft()
	d.PaymentMethod = models.PaymentWallet
	id := h.create(t, "r1", d)

	if _, err := h.svc.ProposeNegotiation(ctx, ProposeInput{BookingID: id, ProviderID: "p-other", ProposedAmount: 450}); err != nil {
		t.Fatalf("ProposeNegotiation: %v", err)
	}
	if _, err := h.svc.RespondToNegotiation(ctx, id, models.ActionAccept, "r1"); err != nil {
		t.Fatalf("RespondToNegotiation: %v", err)
	}
	plan := h.booking(t, id).PaymentPlan
	if plan == nil || plan.InitialPayment != 135 || plan.CompletionPayment != 405 {
		t.Errorf("plan = %+v, want 135 / 405", plan)
	}
}

func TestProposeNegotiationFailures(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	id := h.create(t, "r1", sampleDraft())

	tests := []struct {
		name string
		in   ProposeInput
		want error
	}{
		{"zero amount", ProposeInput{BookingID: id, ProviderID: "p-other"}, ErrValidation},
		{"unknown booking", ProposeInput{BookingID: "missing", ProviderID: "p-other", ProposedAmount: 400}, ErrNotFound},
		{"unknown provider", ProposeInput{BookingID: id, ProviderID: "ghost", ProposedAmount: 400}, ErrNotFound},
		{"different service", ProposeInput{BookingID: id, ProviderID: "p-near", ProposedAmount: 400}, ErrNotEligible},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := h.svc.ProposeNegotiation(ctx, tt.in); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := h.svc.AcceptBooking(ctx, id, "p-clean", ""); err != nil {
		t.Fatalf("AcceptBooking: %v", err)
	}
	if _, err := h.svc.ProposeNegotiation(ctx, ProposeInput{BookingID: id, ProviderID: "p-other", ProposedAmount: 400}); !errors.Is(err, ErrAlreadyResolved) {
		t.Errorf("propose on accepted booking: err = %v, want ErrAlreadyResolved", err)
	}
}

func TestRespondToNegotiationFailures(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	id := h.create(t, "r1", sampleDraft())

	if _, err := h.svc.RespondToNegotiation(ctx, id, "maybe", "r1"); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown action: err = %v, want ErrValidation", err)
	}
	if _, err := h.svc.RespondToNegotiation(ctx, "missing", models.ActionAccept, "r1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown request: err = %v, want ErrNotFound", err)
	}
	if _, err := h.svc.RespondToNegotiation(ctx, id, models.ActionAccept, "r1"); !errors.Is(err, ErrNoActiveNegotiation) {
		t.Errorf("no negotiation: err = %v, want ErrNoActiveNegotiation", err)
	}

	if _, err := h.svc.ProposeNegotiation(ctx, ProposeInput{BookingID: id, ProviderID: "p-other", ProposedAmount: 450}); err != nil {
		t.Fatalf("ProposeNegotiation: %v", err)
	}
	if _, err := h.svc.RespondToNegotiation(ctx, id, models.ActionAccept, "r2"); !errors.Is(err, ErrForbidden) {
		t.Errorf("another resident: err = %v, want ErrForbidden", err)
	}
}

func TestNegotiationLapsedWindow(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	id := h.create(t, "r1", sampleDraft())

	if _, err := h.svc.ProposeNegotiation(ctx, ProposeInput{BookingID: id, ProviderID: "p-other", ProposedAmount: 450}); err != nil {
		t.Fatalf("ProposeNegotiation: %v", err)
	}
	h.clock.Advance(3 * time.Minute)

	if _, err := h.svc.RespondToNegotiation(ctx, id, models.ActionAccept, "r1"); !errors.Is(err, ErrNoActiveNegotiation) {
		t.Fatalf("err = %v, want ErrNoActiveNegotiation", err)
	}
	b := h.booking(t, id)
	if b.Status != models.StatusExpired {
		t.Errorf("status = %s, want expired", b.Status)
	}
	if b.Negotiation.IsActive || b.Negotiation.Status != models.NegotiationDeclined {
		t.Errorf("expiry must close the open negotiation: %+v", b.Negotiation)
	}
}

func TestGuestNegotiationCreatesMirrorOnce(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	id := h.create(t, "", sampleDraft())
	if h.booking(t, id).ResidentRequestID != "" {
		t.Fatal("guest booking should not get a resident request at creation")
	}

	if _, err := h.svc.ProposeNegotiation(ctx, ProposeInput{BookingID: id, ProviderID: "p-other", ProposedAmount: 450}); err != nil {
		t.Fatalf("ProposeNegotiation: %v", err)
	}
	first := h.booking(t, id).ResidentRequestID
	if first == "" {
		t.Fatal("proposal should create the resident request")
	}
	req, err := h.svc.RespondToNegotiation(ctx, id, models.ActionDecline, "")
	if err != nil {
		t.Fatalf("RespondToNegotiation: %v", err)
	}
	if req.ID != first {
		t.Errorf("request id = %s, want existing %s", req.ID, first)
	}
}

func TestRespondToNegotiationOnlyByCustomer(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	id := h.create(t, "r1", sampleDraft())

	if _, err := h.svc.ProposeNegotiation(ctx, ProposeInput{BookingID: id, ProviderID: "p-clean", ProposedAmount: 99999}); err != nil {
		t.Fatalf("ProposeNegotiation: %v", err)
	}
	requestID := h.booking(t, id).ResidentRequestID

	callers := []struct {
		name       string
		id         string
		residentID string
	}{
		{"anonymous by booking id", id, ""},
		{"anonymous by request id", requestID, ""},
		{"proposing provider", id, "p-clean"},
		{"another resident", requestID, "r2"},
	}
	for _, c := range callers {
		t.Run(c.name, func(t *testing.T) {
			if _, err := h.svc.RespondToNegotiation(ctx, c.id, models.ActionAccept, c.residentID); !errors.Is(err, ErrForbidden) {
				t.Fatalf("err = %v, want ErrForbidden", err)
			}
		})
	}

	b := h.booking(t, id)
	if b.Status != models.StatusPending || b.TotalPrice != 500 || !b.HasActiveNegotiation() {
		t.Fatalf("booking changed by a refused answer: status %s total %v negotiation %+v", b.Status, b.TotalPrice, b.Negotiation)
	}
}

func TestGuestNegotiationNotAnsweredByProposer(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	id := h.create(t, "", sampleDraft())

	if _, err := h.svc.ProposeNegotiation(ctx, ProposeInput{BookingID: id, ProviderID: "p-other", ProposedAmount: 700}); err != nil {
		t.Fatalf("ProposeNegotiation: %v", err)
	}
	if _, err := h.svc.RespondToNegotiation(ctx, id, models.ActionAccept, "p-other"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if b := h.booking(t, id); b.Status != models.StatusPending {
		t.Errorf("status = %s, want pending", b.Status)
	}
}
