package pricing

import (
	"errors"
	"testing"

	"github.com/Hiteshmehtaa/yann-app-sub003/models"
)

func TestPriceOrdinary(t *testing.T) {
	engine := NewEngine(DefaultRules())

	tests := []struct {
		name      string
		in        Input
		wantTotal float64
		wantGST   float64
	}{
		{
			name:      "one time single visit",
			in:        Input{ServiceName: "Deep House Cleaning", BasePrice: 500, Quantity: 1},
			wantTotal: 500,
			wantGST:   90,
		},
		{
			name: "extras and quantity",
			in: Input{
				ServiceName: "Deep House Cleaning",
				BasePrice:   500,
				Quantity:    2,
				Extras:      []models.Extra{{Name: "Balcony", Price: 100}, {Name: "Fridge", Price: 49.5}},
			},
			wantTotal: 1299,
			wantGST:   90,
		},
		{
			name:      "monthly billing is four visits",
			in:        Input{ServiceName: "Garden Care", BasePrice: 250, BillingType: models.BillingMonthly},
			wantTotal: 1000,
			wantGST:   45,
		},
		{
			name:      "zero quantity counts as one",
			in:        Input{ServiceName: "Plumbing", BasePrice: 300, Quantity: 0},
			wantTotal: 300,
			wantGST:   54,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := engine.Price(tt.in)
			if err != nil {
				t.Fatalf("Price: %v", err)
			}
			if q.Total != tt.wantTotal {
				t.Errorf("Total = %v, want %v", q.Total, tt.wantTotal)
			}
			if q.GST != tt.wantGST {
				t.Errorf("GST = %v, want %v", q.GST, tt.wantGST)
			}
			if q.GrandTotal != Round2(tt.wantTotal+tt.wantGST) {
				t.Errorf("GrandTotal = %v, want %v", q.GrandTotal, tt.wantTotal+tt.wantGST)
			}
			if q.DriverDetails != nil {
				t.Error("ordinary booking should not carry driver details")
			}
		})
	}
}

func TestPriceDeclaredGSTRate(t *testing.T) {
	engine := NewEngine(DefaultRules())
	rate := 0.05

	q, err := engine.Price(Input{ServiceName: "Laundry", BasePrice: 200, GSTRate: &rate})
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if q.GST != 10 {
		t.Errorf("GST = %v, want 10", q.GST)
	}
}

func TestPriceHourlyOvertime(t *testing.T) {
	engine := NewEngine(Rules{BaseHours: 10, OvertimeMultiplier: 2})

	q, err := engine.Price(Input{
		ServiceName: "Driver",
		Category:    models.CategoryHourlyDriver,
		BasePrice:   1500,
		HourlyRate:  150,
		StartTime:   "08:00",
		EndTime:     "20:00",
	})
	if err != nil {
		t.Fatalf("Price: %v", err)
	}

	d := q.DriverDetails
	if d == nil {
		t.Fatal("expected driver details")
	}
	if d.TotalHours != 12 || d.OvertimeHours != 2 {
		t.Errorf("hours = %v total / %v overtime, want 12 / 2", d.TotalHours, d.OvertimeHours)
	}
	if d.BaseCost != 1500 {
		t.Errorf("BaseCost = %v, want 1500", d.BaseCost)
	}
	if d.OvertimeCost != 600 {
		t.Errorf("OvertimeCost = %v, want 600", d.OvertimeCost)
	}
	if q.Total != 2100 {
		t.Errorf("Total = %v, want 2100", q.Total)
	}
}

func TestPriceHourlyRateFallsBackToBasePrice(t *testing.T) {
	engine := NewEngine(DefaultRules())

	q, err := engine.Price(Input{
		ServiceName: "Driver",
		Category:    models.CategoryHourlyDriver,
		BasePrice:   1000,
		StartTime:   "9:00 am",
		EndTime:     "1:30 PM",
		Extras:      []models.Extra{{Name: "Tolls", Price: 35}},
	})
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if q.DriverDetails.HourlyRate != 100 {
		t.Errorf("HourlyRate = %v, want 100", q.DriverDetails.HourlyRate)
	}
	if q.DriverDetails.OvertimeHours != 0 {
		t.Errorf("OvertimeHours = %v, want 0", q.DriverDetails.OvertimeHours)
	}
	if q.Total != 485 {
		t.Errorf("Total = %v, want 485", q.Total)
	}
}

func TestPriceHourlyInvalidSchedule(t *testing.T) {
	engine := NewEngine(DefaultRules())

	cases := map[string][2]string{
		"end before start": {"18:00", "09:00"},
		"end equals start": {"09:00", "09:00"},
		"unparseable":      {"nine", "17:00"},
		"missing end":      {"09:00", ""},
	}
	for name, window := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := engine.Price(Input{
				ServiceName: "Driver",
				Category:    models.CategoryHourlyDriver,
				BasePrice:   1000,
				StartTime:   window[0],
				EndTime:     window[1],
			})
			if !errors.Is(err, ErrInvalidSchedule) {
				t.Fatalf("err = %v, want ErrInvalidSchedule", err)
			}
		})
	}
}

func TestPriceUnpriced(t *testing.T) {
	engine := NewEngine(DefaultRules())
	if _, err := engine.Price(Input{ServiceName: "Pest Control"}); !errors.Is(err, ErrUnpricedService) {
		t.Fatalf("err = %v, want ErrUnpricedService", err)
	}
}

func TestResolveRate(t *testing.T) {
	provider := &models.ProviderCatalogEntry{
		ID:          "p1",
		Services:    []string{"Deep House Cleaning", "Driver"},
		Prices:      map[string]float64{"Deep House Cleaning": 800, "Driver": 1200},
		HourlyRates: map[string]float64{"Driver": 150},
	}

	base, hourly, err := ResolveRate(provider, "Driver")
	if err != nil {
		t.Fatalf("ResolveRate: %v", err)
	}
	if base != 1200 || hourly != 150 {
		t.Errorf("got base %v hourly %v, want 1200 / 150", base, hourly)
	}

	if _, _, err := ResolveRate(provider, "Deep Cleaning"); !errors.Is(err, ErrUnpricedService) {
		t.Errorf("err = %v, want ErrUnpricedService for a near-miss name", err)
	}
	if _, _, err := ResolveRate(nil, "Driver"); !errors.Is(err, ErrUnpricedService) {
		t.Errorf("err = %v, want ErrUnpricedService for nil provider", err)
	}
}

func TestSplitSumsToTotal(t *testing.T) {
	totals := []float64{0, 0.01, 0.03, 1, 99.99, 100.03, 333.33, 1234.57, 2.675, 1e6 + 0.07}
	for _, total := range totals {
		plan := Split(total, DefaultUpfrontShare)
		if got := ToCents(plan.InitialPayment) + ToCents(plan.CompletionPayment); got != ToCents(total) {
			t.Errorf("Split(%v): %v + %v = %d cents, want %d", total, plan.InitialPayment, plan.CompletionPayment, got, ToCents(total))
		}
	}
}

func TestSplitRoundsUpfrontLeg(t *testing.T) {
	plan := Split(100.10, DefaultUpfrontShare)
	if plan.InitialPayment != 25.03 {
		t.Errorf("InitialPayment = %v, want 25.03", plan.InitialPayment)
	}
	if plan.CompletionPayment != 75.07 {
		t.Errorf("CompletionPayment = %v, want 75.07", plan.CompletionPayment)
	}
}

func TestRound2HalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{2.675, 2.68},
		{1.005, 1.01},
		{-1.005, -1.01},
		{0.125, 0.13},
		{10, 10},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
