package pricing

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Hiteshmehtaa/yann-app-sub003/models"
)

var (
	ErrInvalidSchedule = errors.New("invalid schedule")
	ErrUnpricedService = errors.New("provider has no rate for service")
)

const (
	monthlyVisits = 4

	DefaultGSTRate            = 0.18
	DefaultBaseHours          = 10.0
	DefaultOvertimeMultiplier = 2.0
	DefaultUpfrontShare       = 0.25
)

// Rules are the platform-wide pricing parameters.
type Rules struct {
	DefaultGSTRate     float64
	BaseHours          float64
	OvertimeMultiplier float64
	UpfrontShare       float64
}

// DefaultRules returns the platform defaults.
func DefaultRules() Rules {
	return Rules{
		DefaultGSTRate:     DefaultGSTRate,
		BaseHours:          DefaultBaseHours,
		OvertimeMultiplier: DefaultOvertimeMultiplier,
		UpfrontShare:       DefaultUpfrontShare,
	}
}

// Input is everything a quote depends on.
type Input struct {
	ServiceName string
	Category    models.ServiceCategory
	BillingType models.BillingType
	Quantity    int
	BasePrice   float64
	// HourlyRate overrides BasePrice/BaseHours for hourly categories when > 0.
	HourlyRate float64
	StartTime  string
	EndTime    string
	Extras     []models.Extra
	// GSTRate is the service's declared rate; nil uses the default.
	GSTRate *float64
}

// Quote is the computed price of a booking.
type Quote struct {
	BasePrice     float64               `json:"basePrice"`
	ExtrasTotal   float64               `json:"extrasTotal"`
	Total         float64               `json:"total"`
	GST           float64               `json:"gst"`
	GrandTotal    float64               `json:"grandTotal"`
	Plan          models.PaymentPlan    `json:"paymentPlan"`
	DriverDetails *models.DriverDetails `json:"driverDetails,omitempty"`
}

// Engine prices bookings. It has no dependencies and is safe for concurrent use.
type Engine struct {
	Rules Rules
}

func NewEngine(rules Rules) *Engine {
	if rules.DefaultGSTRate <= 0 {
		rules.DefaultGSTRate = DefaultGSTRate
	}
	if rules.BaseHours <= 0 {
		rules.BaseHours = DefaultBaseHours
	}
	if rules.OvertimeMultiplier <= 0 {
		rules.OvertimeMultiplier = DefaultOvertimeMultiplier
	}
	if rules.UpfrontShare <= 0 || rules.UpfrontShare >= 1 {
		rules.UpfrontShare = DefaultUpfrontShare
	}
	return &Engine{Rules: rules}
}

// ResolveRate looks up the provider's price for serviceName. The listed
// per-service price is the only source; an hourly rate, when present, is
// returned alongside it.
func ResolveRate(provider *models.ProviderCatalogEntry, serviceName string) (base float64, hourly float64, err error) {
	if provider == nil {
		return 0, 0, ErrUnpricedService
	}
	base, ok := provider.PriceFor(serviceName)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q from provider %s", ErrUnpricedService, serviceName, provider.ID)
	}
	hourly, _ = provider.HourlyRateFor(serviceName)
	return base, hourly, nil
}

// Price computes the quote for in.
func (e *Engine) Price(in Input) (*Quote, error) {
	if in.BasePrice <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnpricedService, in.ServiceName)
	}

	extras := sumExtras(in.Extras)
	q := &Quote{
		BasePrice:   Round2(in.BasePrice),
		ExtrasTotal: Round2(extras),
	}

	var total float64
	switch in.Category {
	case models.CategoryHourlyDriver:
		details, rawTotal, err := e.priceHourly(in, extras)
		if err != nil {
			return nil, err
		}
		q.DriverDetails = details
		total = rawTotal
	default:
		quantity := in.Quantity
		if quantity < 1 {
			quantity = 1
		}
		multiplier := 1.0
		if in.BillingType == models.BillingMonthly {
			multiplier = monthlyVisits
		}
		total = (in.BasePrice + extras) * multiplier * float64(quantity)
	}

	gstRate := e.Rules.DefaultGSTRate
	if in.GSTRate != nil && *in.GSTRate >= 0 {
		gstRate = *in.GSTRate
	}
	gst := in.BasePrice * gstRate

	q.Total = Round2(total)
	q.GST = Round2(gst)
	q.GrandTotal = Round2(total + gst)
	q.Plan = Split(q.GrandTotal, e.Rules.UpfrontShare)
	return q, nil
}

func (e *Engine) priceHourly(in Input, extras float64) (*models.DriverDetails, float64, error) {
	start, err := ParseClock(in.StartTime)
	if err != nil {
		return nil, 0, err
	}
	end, err := ParseClock(in.EndTime)
	if err != nil {
		return nil, 0, err
	}
	if end <= start {
		return nil, 0, fmt.Errorf("%w: end %s is not after start %s", ErrInvalidSchedule, in.EndTime, in.StartTime)
	}

	baseHours := e.Rules.BaseHours
	multiplier := e.Rules.OvertimeMultiplier
	duration := float64(end-start) / 60

	billableBase := math.Min(duration, baseHours)
	overtime := math.Max(0, duration-baseHours)

	rate := in.HourlyRate
	if rate <= 0 {
		rate = in.BasePrice / baseHours
	}

	baseCost := billableBase * rate
	overtimeCost := overtime * rate * multiplier

	details := &models.DriverDetails{
		StartTime:          in.StartTime,
		EndTime:            in.EndTime,
		TotalHours:         Round2(duration),
		BaseHours:          baseHours,
		HourlyRate:         Round2(rate),
		OvertimeHours:      Round2(overtime),
		OvertimeMultiplier: multiplier,
		BaseCost:           Round2(baseCost),
		OvertimeCost:       Round2(overtimeCost),
	}
	return details, baseCost + overtimeCost + extras, nil
}

// Split divides total into the upfront and completion legs. The legs are
// computed in whole cents so they always add back to total.
func Split(total float64, upfrontShare float64) models.PaymentPlan {
	totalCents := ToCents(total)
	initialCents := int64(math.Round(float64(totalCents) * upfrontShare))
	return models.PaymentPlan{
		InitialPayment:    FromCents(initialCents),
		CompletionPayment: FromCents(totalCents - initialCents),
	}
}

// Round2 rounds to two decimals, halves away from zero.
func Round2(x float64) float64 {
	return FromCents(ToCents(x))
}

// ToCents converts an amount to integer cents, halves away from zero.
func ToCents(x float64) int64 {
	scaled := x * 100
	// absorb binary representation noise (2.675*100 == 267.4999...)
	scaled = math.Round(scaled*1e6) / 1e6
	return int64(math.Round(scaled))
}

func FromCents(c int64) float64 {
	return float64(c) / 100
}

func sumExtras(extras []models.Extra) float64 {
	var sum float64
	for _, e := range extras {
		sum += e.Price
	}
	return sum
}

var clockLayouts = []string{"15:04", "3:04 PM", "3:04PM", "03:04 PM"}

// ParseClock parses a wall-clock time into minutes after midnight.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: missing time", ErrInvalidSchedule)
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, strings.ToUpper(s)); err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, fmt.Errorf("%w: cannot parse time %q", ErrInvalidSchedule, s)
}
