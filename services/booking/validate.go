package booking

import (
	"strings"
	"time"

	"github.com/Hiteshmehtaa/yann-app-sub003/models"
	"github.com/Hiteshmehtaa/yann-app-sub003/services/pricing"
)

type requiredField struct {
	name  string
	value string
}

// ValidateDraft checks required fields in declaration order and reports the
// first one missing. It normalises defaults on the draft in place.
func ValidateDraft(d *models.BookingDraft) error {
	if d.Category == "" {
		d.Category = models.CategoryOrdinary
	}
	if d.BillingType == "" {
		d.BillingType = models.BillingOneTime
	}
	if d.PaymentMethod == "" {
		d.PaymentMethod = models.PaymentCash
	}

	required := []requiredField{
		{"serviceId", d.ServiceID},
		{"serviceName", d.ServiceName},
		{"category", string(d.Category)},
		{"customerName", d.CustomerName},
		{"customerPhone", d.CustomerPhone},
		{"address", d.Address},
		{"date", d.Date},
		{"startTime", d.StartTime},
	}
	if d.Category == models.CategoryHourlyDriver {
		required = append(required, requiredField{"endTime", d.EndTime})
	}
	required = append(required, requiredField{"providerId", d.ProviderID})

	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return NewValidationError(f.name, f.name+" is required")
		}
	}

	switch d.Category {
	case models.CategoryOrdinary, models.CategoryHourlyDriver:
	default:
		return NewValidationError("category", "unknown category "+string(d.Category))
	}
	switch d.BillingType {
	case models.BillingOneTime, models.BillingMonthly:
	default:
		return NewValidationError("billingType", "unknown billing type "+string(d.BillingType))
	}
	switch d.PaymentMethod {
	case models.PaymentCash, models.PaymentWallet, models.PaymentCard:
	default:
		return NewValidationError("paymentMethod", "unknown payment method "+d.PaymentMethod)
	}
	if d.Quantity < 0 {
		return NewValidationError("quantity", "quantity cannot be negative")
	}
	if _, err := time.Parse("2006-01-02", d.Date); err != nil {
		return NewValidationError("date", "date must be YYYY-MM-DD")
	}
	if _, err := pricing.ParseClock(d.StartTime); err != nil {
		return NewValidationError("startTime", err.Error())
	}
	for _, e := range d.Extras {
		if e.Price < 0 {
			return NewValidationError("extras", "extra "+e.Name+" has a negative price")
		}
	}
	if d.GSTRate != nil && (*d.GSTRate < 0 || *d.GSTRate > 1) {
		return NewValidationError("gstRate", "gstRate must be between 0 and 1")
	}
	return nil
}
