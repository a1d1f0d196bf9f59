package providerRepo

import (
	"context"
	"errors"

	"github.com/Hiteshmehtaa/yann-app-sub003/models"
)

var ErrProviderNotFound = errors.New("provider not found")

// ProviderRepository is the read side of the provider catalog. The catalog is
// owned elsewhere; the booking core only looks providers up.
type ProviderRepository interface {
	// GetByID retrieves a provider by its unique ID.
	GetByID(ctx context.Context, id string) (*models.ProviderCatalogEntry, error)
	// FindActiveByService returns active providers listing exactly serviceName.
	FindActiveByService(ctx context.Context, serviceName string) ([]models.ProviderCatalogEntry, error)
}
