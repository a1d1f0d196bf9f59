package repository

import (
	"fmt"

	bookingRepo "github.com/Hiteshmehtaa/yann-app-sub003/database/repository/booking"
	providerRepo "github.com/Hiteshmehtaa/yann-app-sub003/database/repository/provider"
	requestRepo "github.com/Hiteshmehtaa/yann-app-sub003/database/repository/request"
	residentRepo "github.com/Hiteshmehtaa/yann-app-sub003/database/repository/resident"
	walletRepo "github.com/Hiteshmehtaa/yann-app-sub003/database/repository/wallet"

	"go.mongodb.org/mongo-driver/mongo"
)

// Re-export the repository interfaces.
type (
	BookingRepository  = bookingRepo.BookingRepository
	RequestRepository  = requestRepo.RequestRepository
	ProviderRepository = providerRepo.ProviderRepository
	ResidentRepository = residentRepo.ResidentRepository
	WalletRepository   = walletRepo.WalletRepository
)

// Stores bundles every repository the booking core reads or writes.
type Stores struct {
	Bookings  BookingRepository
	Requests  RequestRepository
	Providers ProviderRepository
	Residents ResidentRepository
	Wallets   WalletRepository
}

// NewMongoStores builds the Mongo-backed repositories and their indexes.
func NewMongoStores(db *mongo.Database) (*Stores, error) {
	bookings, err := bookingRepo.NewMongoBookingRepo(db)
	if err != nil {
		return nil, fmt.Errorf("booking repository: %w", err)
	}
	requests, err := requestRepo.NewMongoRequestRepo(db)
	if err != nil {
		return nil, fmt.Errorf("request repository: %w", err)
	}
	providers, err := providerRepo.NewMongoProviderRepo(db)
	if err != nil {
		return nil, fmt.Errorf("provider repository: %w", err)
	}
	return &Stores{
		Bookings:  bookings,
		Requests:  requests,
		Providers: providers,
		Residents: residentRepo.NewMongoResidentRepo(db),
		Wallets:   walletRepo.NewMongoWalletRepo(db),
	}, nil
}

// MemoryStores exposes the concrete in-memory repositories so callers can seed them.
type MemoryStores struct {
	Bookings  *bookingRepo.MemoryBookingRepo
	Requests  *requestRepo.MemoryRequestRepo
	Providers *providerRepo.MemoryProviderRepo
	Residents *residentRepo.MemoryResidentRepo
	Wallets   *walletRepo.MemoryWalletRepo
}

func NewMemoryStores() *MemoryStores {
	return &MemoryStores{
		Bookings:  bookingRepo.NewMemoryBookingRepo(),
		Requests:  requestRepo.NewMemoryRequestRepo(),
		Providers: providerRepo.NewMemoryProviderRepo(),
		Residents: residentRepo.NewMemoryResidentRepo(),
		Wallets:   walletRepo.NewMemoryWalletRepo(),
	}
}

// Stores returns the in-memory repositories behind their interfaces.
func (m *MemoryStores) Stores() *Stores {
	return &Stores{
		Bookings:  m.Bookings,
		Requests:  m.Requests,
		Providers: m.Providers,
		Residents: m.Residents,
		Wallets:   m.Wallets,
	}
}
