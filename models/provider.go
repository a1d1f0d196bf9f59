package models

// ProviderCatalogEntry is the read-only view of a provider the booking core
// consults for eligibility and pricing.
type ProviderCatalogEntry struct {
	ID          string             `bson:"id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Services    []string           `bson:"services" json:"services"`
	Prices      map[string]float64 `bson:"prices" json:"prices"`
	HourlyRates map[string]float64 `bson:"hourlyRates,omitempty" json:"hourlyRates,omitempty"`
	Active      bool               `bson:"active" json:"active"`
	FCMToken    string             `bson:"fcmToken,omitempty" json:"-"`
}

// Offers reports whether the provider lists the service under exactly this name.
func (p *ProviderCatalogEntry) Offers(serviceName string) bool {
	for _, s := range p.Services {
		if s == serviceName {
			return true
		}
	}
	return false
}

// PriceFor returns the provider's listed price for the service.
func (p *ProviderCatalogEntry) PriceFor(serviceName string) (float64, bool) {
	price, ok := p.Prices[serviceName]
	if !ok || price <= 0 {
		return 0, false
	}
	return price, true
}

// HourlyRateFor returns an explicit hourly rate when the provider set one.
func (p *ProviderCatalogEntry) HourlyRateFor(serviceName string) (float64, bool) {
	rate, ok := p.HourlyRates[serviceName]
	if !ok || rate <= 0 {
		return 0, false
	}
	return rate, true
}

// Resident is the slice of the resident profile the core reads.
type Resident struct {
	ID       string `bson:"id" json:"id"`
	Name     string `bson:"name" json:"name"`
	FCMToken string `bson:"fcmToken,omitempty" json:"-"`
}

// Wallet holds a resident's prepaid balance.
type Wallet struct {
	ResidentID string  `bson:"residentId" json:"residentId"`
	Balance    float64 `bson:"balance" json:"balance"`
}
